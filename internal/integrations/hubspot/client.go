// Package hubspot is the HubSpot CRM API gateway.
package hubspot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"salesorch_backend/internal/integrations/repository"
	"salesorch_backend/internal/integrations/token"
	"salesorch_backend/platform/apperr"

	"github.com/google/uuid"
)

const defaultBaseURL = "https://api.hubapi.com"

type integrationStore interface {
	GetByProvider(ctx context.Context, orgID uuid.UUID, provider repository.Provider) (repository.Integration, error)
}

type tokenSource interface {
	Valid(ctx context.Context, in repository.Integration) (string, error)
	ForceRefresh(ctx context.Context, in repository.Integration) (string, error)
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

// Contact is one CRM contact as HubSpot returns it.
type Contact struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties"`
	CreatedAt  string            `json:"createdAt"`
	UpdatedAt  string            `json:"updatedAt"`
}

// SyncContacts pulls the org's CRM contacts.
func (c *Client) SyncContacts(ctx context.Context, orgID uuid.UUID, limit int) ([]Contact, error) {
	if limit <= 0 {
		limit = 100
	}
	params := url.Values{"limit": {fmt.Sprintf("%d", limit)}}

	body, err := c.Request(ctx, orgID, http.MethodGet, "/crm/v3/objects/contacts", params, nil)
	if err != nil {
		return nil, err
	}

	var page struct {
		Results []Contact `json:"results"`
	}
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "hubspot contacts response malformed", err)
	}
	return page.Results, nil
}

// Request performs an authenticated HubSpot API call. A 401 triggers one
// forced token refresh and a single retry before giving up.
func (c *Client) Request(ctx context.Context, orgID uuid.UUID, method, path string, params url.Values, payload []byte) ([]byte, error) {
	in, err := c.repo.GetByProvider(ctx, orgID, repository.ProviderHubSpot)
	if err != nil {
		return nil, err
	}

	access, err := c.tokens.Valid(ctx, in)
	if err != nil {
		return nil, err
	}

	body, status, err := c.do(ctx, access, method, path, params, payload)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		access, err = c.tokens.ForceRefresh(ctx, in)
		if err != nil {
			return nil, err
		}
		body, status, err = c.do(ctx, access, method, path, params, payload)
		if err != nil {
			return nil, err
		}
		if status == http.StatusUnauthorized {
			return nil, apperr.UpstreamAuth("hubspot rejected credentials after refresh")
		}
	}
	if status < 200 || status > 299 {
		return nil, apperr.Upstream(fmt.Sprintf("hubspot request failed: status %d: %s", status, truncate(string(body), 512)))
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, access, method, path string, params url.Values, payload []byte) ([]byte, int, error) {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+access)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.KindUpstream, "hubspot request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, 0, err
	}
	return body, resp.StatusCode, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
