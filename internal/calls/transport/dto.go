// Package transport defines the wire types for the calls API.
package transport

import "time"

type WebhookRequest struct {
	CallSID      string  `json:"call_sid"`
	RecordingURL string  `json:"recording_url"`
	Summary      string  `json:"summary"`
	LeadID       *string `json:"lead_id,omitempty" validate:"omitempty,uuid"`
}

type CallResponse struct {
	ID           string    `json:"id"`
	LeadID       *string   `json:"lead_id"`
	CallSID      string    `json:"call_sid"`
	RecordingURL string    `json:"recording_url"`
	Summary      string    `json:"summary"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
