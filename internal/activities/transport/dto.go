// Package transport defines the wire types for the activity feed.
package transport

import "time"

type ActivityResponse struct {
	ID           string         `json:"id"`
	Lead         string         `json:"lead"`
	LeadEmail    string         `json:"lead_email"`
	CampaignName string         `json:"campaign_name"`
	Step         *string        `json:"step"`
	Payload      map[string]any `json:"payload"`
	CreatedAt    time.Time      `json:"created_at"`
}
