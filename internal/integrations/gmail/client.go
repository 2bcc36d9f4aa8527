// Package gmail is the Gmail API gateway. It builds RFC 2822 messages,
// sends them through users/me/messages/send, and reads the mailbox for
// the reply views.
package gmail

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"salesorch_backend/internal/integrations/repository"
	"salesorch_backend/internal/integrations/token"
	"salesorch_backend/platform/apperr"

	"github.com/google/uuid"
	gomail "github.com/wneessen/go-mail"
)

const defaultBaseURL = "https://gmail.googleapis.com/gmail/v1"

// ErrNotConnected means the org has no Gmail integration row.
var ErrNotConnected = repository.ErrNotFound

type integrationStore interface {
	GetByProvider(ctx context.Context, orgID uuid.UUID, provider repository.Provider) (repository.Integration, error)
}

type tokenSource interface {
	Valid(ctx context.Context, in repository.Integration) (string, error)
}

type Client struct {
	repo       integrationStore
	tokens     tokenSource
	httpClient *http.Client
	baseURL    string
}

func NewClient(repo *repository.Repository, tokens *token.Source) *Client {
	return &Client{
		repo:       repo,
		tokens:     tokens,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    defaultBaseURL,
	}
}

// Message is one mailbox message in the shape the API exposes.
type Message struct {
	ID       string `json:"id"`
	ThreadID string `json:"thread_id"`
	Subject  string `json:"subject"`
	From     string `json:"from"`
	To       string `json:"to"`
	Date     string `json:"date"`
	Body     string `json:"body"`
	Snippet  string `json:"snippet"`
}

// SendMessage delivers a plain-text email through the org's Gmail
// account and returns the Gmail message id.
func (c *Client) SendMessage(ctx context.Context, orgID uuid.UUID, to, subject, body string) (string, error) {
	in, err := c.repo.GetByProvider(ctx, orgID, repository.ProviderGmail)
	if err != nil {
		return "", err
	}

	raw, err := buildRawMessage(to, subject, body)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(map[string]string{"raw": raw})
	if err != nil {
		return "", err
	}

	respBody, err := c.do(ctx, in, http.MethodPost, "/users/me/messages/send", nil, payload)
	if err != nil {
		return "", err
	}

	var sent struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(respBody, &sent); err != nil {
		return "", apperr.Wrap(apperr.KindUpstream, "gmail send response malformed", err)
	}
	return sent.ID, nil
}

// ListMessages fetches up to maxResults mailbox messages, newest first,
// resolving each id to its full form.
func (c *Client) ListMessages(ctx context.Context, orgID uuid.UUID, query string, maxResults int) ([]Message, error) {
	in, err := c.repo.GetByProvider(ctx, orgID, repository.ProviderGmail)
	if err != nil {
		return nil, err
	}
	if maxResults <= 0 {
		maxResults = 50
	}

	params := url.Values{"maxResults": {strconv.Itoa(maxResults)}}
	if query != "" {
		params.Set("q", query)
	}
	listBody, err := c.do(ctx, in, http.MethodGet, "/users/me/messages", params, nil)
	if err != nil {
		return nil, err
	}

	var list struct {
		Messages []struct {
			ID string `json:"id"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(listBody, &list); err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "gmail list response malformed", err)
	}

	messages := make([]Message, 0, len(list.Messages))
	for _, ref := range list.Messages {
		if len(messages) >= maxResults {
			break
		}
		msgBody, err := c.do(ctx, in, http.MethodGet, "/users/me/messages/"+ref.ID, url.Values{"format": {"full"}}, nil)
		if err != nil {
			return nil, err
		}
		var raw rawMessage
		if err := json.Unmarshal(msgBody, &raw); err != nil {
			return nil, apperr.Wrap(apperr.KindUpstream, "gmail message response malformed", err)
		}
		messages = append(messages, raw.toMessage())
	}
	return messages, nil
}

// GetThreadReplies fetches every message in a thread.
func (c *Client) GetThreadReplies(ctx context.Context, orgID uuid.UUID, threadID string) ([]Message, error) {
	in, err := c.repo.GetByProvider(ctx, orgID, repository.ProviderGmail)
	if err != nil {
		return nil, err
	}

	body, err := c.do(ctx, in, http.MethodGet, "/users/me/threads/"+url.PathEscape(threadID), url.Values{"format": {"full"}}, nil)
	if err != nil {
		return nil, err
	}

	var thread struct {
		Messages []rawMessage `json:"messages"`
	}
	if err := json.Unmarshal(body, &thread); err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "gmail thread response malformed", err)
	}

	replies := make([]Message, 0, len(thread.Messages))
	for _, raw := range thread.Messages {
		replies = append(replies, raw.toMessage())
	}
	return replies, nil
}

func (c *Client) do(ctx context.Context, in repository.Integration, method, path string, params url.Values, body []byte) ([]byte, error) {
	access, err := c.tokens.Valid(ctx, in)
	if err != nil {
		return nil, err
	}

	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+access)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "gmail request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, apperr.UpstreamAuth("gmail rejected credentials")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperr.Upstream(fmt.Sprintf("gmail request failed: status %d: %s", resp.StatusCode, truncate(string(respBody), 512)))
	}
	return respBody, nil
}

// buildRawMessage renders the MIME message and encodes it the way the
// Gmail API expects: URL-safe base64 of the full RFC 2822 payload.
func buildRawMessage(to, subject, body string) (string, error) {
	msg := gomail.NewMsg()
	if err := msg.To(to); err != nil {
		return "", apperr.Wrap(apperr.KindValidation, "invalid recipient address", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		return "", fmt.Errorf("render mime message: %w", err)
	}
	return base64.URLEncoding.EncodeToString(buf.Bytes()), nil
}

type rawMessage struct {
	ID       string `json:"id"`
	ThreadID string `json:"threadId"`
	Snippet  string `json:"snippet"`
	Payload  struct {
		MimeType string `json:"mimeType"`
		Headers  []struct {
			Name  string `json:"name"`
			Value string `json:"value"`
		} `json:"headers"`
		Body  rawBody `json:"body"`
		Parts []struct {
			MimeType string  `json:"mimeType"`
			Body     rawBody `json:"body"`
		} `json:"parts"`
	} `json:"payload"`
}

type rawBody struct {
	Data string `json:"data"`
}

func (m rawMessage) toMessage() Message {
	headers := make(map[string]string, len(m.Payload.Headers))
	for _, h := range m.Payload.Headers {
		headers[h.Name] = h.Value
	}

	body := ""
	if len(m.Payload.Parts) > 0 {
		for _, part := range m.Payload.Parts {
			if part.MimeType == "text/plain" && part.Body.Data != "" {
				body = decodeBody(part.Body.Data)
				break
			}
		}
	} else if m.Payload.Body.Data != "" {
		body = decodeBody(m.Payload.Body.Data)
	}

	return Message{
		ID:       m.ID,
		ThreadID: m.ThreadID,
		Subject:  headers["Subject"],
		From:     headers["From"],
		To:       headers["To"],
		Date:     headers["Date"],
		Body:     body,
		Snippet:  m.Snippet,
	}
}

func decodeBody(data string) string {
	decoded, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(data)
	if err != nil {
		// Some messages arrive padded.
		decoded, err = base64.URLEncoding.DecodeString(data)
		if err != nil {
			return ""
		}
	}
	return string(decoded)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
