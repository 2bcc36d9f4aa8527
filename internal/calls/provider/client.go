// Package provider is the HTTP gateway to the external calling service.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"salesorch_backend/platform/apperr"
	"salesorch_backend/platform/config"
)

// InitiateRequest is the payload the calling service expects.
type InitiateRequest struct {
	LeadID      string `json:"lead_id"`
	LeadName    string `json:"lead_name"`
	Company     string `json:"company"`
	Product     string `json:"product"`
	Goal        string `json:"goal"`
	PhoneNumber string `json:"phone_number"`
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewClient(cfg config.CallingConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    cfg.GetCallProviderURL(),
		apiKey:     cfg.GetCallProviderAPIKey(),
	}
}

// Initiate asks the calling service to place an outbound call.
func (c *Client) Initiate(ctx context.Context, req InitiateRequest) error {
	if c.baseURL == "" {
		return apperr.Configuration("call provider is not configured")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/call/initiate/", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return apperr.Wrap(apperr.KindUpstream, "call provider request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return apperr.Upstream(fmt.Sprintf("call provider request failed: status %d: %s", resp.StatusCode, string(body)))
	}
	return nil
}
