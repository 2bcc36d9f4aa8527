// Package client provides the HTTP client for Firecrawl website
// extraction.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"salesorch_backend/platform/apperr"
	"salesorch_backend/platform/logger"
)

const (
	firecrawlExtractEndpoint = "https://api.firecrawl.dev/v1/extract"
	defaultHTTPTimeout       = 60 * time.Second
)

// extractionSchema is the structured output Firecrawl is asked to pull
// from a lead's website. Only the description is required; the rest is
// best effort.
var extractionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"description": map[string]any{
			"type":        "string",
			"description": "One-paragraph description of what the company does",
		},
		"company_profile": map[string]any{
			"type":        "string",
			"description": "Industry, size and positioning of the company",
		},
		"recent_news": map[string]any{
			"type":        "string",
			"description": "Recent announcements or news mentioned on the site",
		},
		"social_links": map[string]any{
			"type":        "array",
			"items":       map[string]any{"type": "string"},
			"description": "Social media profile URLs found on the site",
		},
	},
	"required": []string{"description"},
}

// Client calls the Firecrawl extract API. The API key is per request
// because each org brings its own.
type Client struct {
	httpClient *http.Client
	endpoint   string
	log        *logger.Logger
}

func New(log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		endpoint:   firecrawlExtractEndpoint,
		log:        log,
	}
}

type extractRequest struct {
	URLs   []string       `json:"urls"`
	Prompt string         `json:"prompt"`
	Schema map[string]any `json:"schema"`
}

type extractResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// Extract pulls structured company data from a website.
func (c *Client) Extract(ctx context.Context, apiKey, websiteURL string) (json.RawMessage, error) {
	payload, err := json.Marshal(extractRequest{
		URLs:   []string{websiteURL},
		Prompt: "Extract a company overview from this website for sales research.",
		Schema: extractionSchema,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "firecrawl request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, apperr.UpstreamAuth("firecrawl rejected the api key")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperr.Upstream(fmt.Sprintf("firecrawl request failed: status %d", resp.StatusCode))
	}

	var out extractResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "firecrawl response malformed", err)
	}
	if !out.Success {
		msg := out.Error
		if msg == "" {
			msg = "extraction did not succeed"
		}
		return nil, apperr.Upstream("firecrawl: " + msg)
	}
	return out.Data, nil
}
