package transport

import "time"

type PreviewRequest struct {
	LeadID  string `json:"lead_id" validate:"required,uuid"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type PreviewResponse struct {
	Lead    LeadSummary `json:"lead"`
	Subject string      `json:"subject"`
	Body    string      `json:"body"`
}

type LeadSummary struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Company   string `json:"company"`
	Status    string `json:"status"`
}

type SendRequest struct {
	EmailID *string `json:"email_id,omitempty" validate:"omitempty,uuid"`
	LeadID  *string `json:"lead_id,omitempty" validate:"omitempty,uuid"`
	Subject string  `json:"subject"`
	Body    string  `json:"body"`
}

type GenerateRequest struct {
	LeadID        string `json:"lead_id" validate:"required,uuid"`
	Prompt        string `json:"prompt" validate:"required"`
	SubjectPrompt string `json:"subject_prompt"`
}

type EmailResponse struct {
	ID        string         `json:"id"`
	LeadID    string         `json:"lead"`
	LeadName  string         `json:"lead_name"`
	LeadEmail string         `json:"lead_email"`
	Subject   string         `json:"subject"`
	Body      string         `json:"body"`
	Preview   string         `json:"preview"`
	Status    string         `json:"status"`
	SentAt    *time.Time     `json:"sent_at,omitempty"`
	Meta      map[string]any `json:"meta"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type StatsResponse struct {
	Stats    Stats          `json:"stats"`
	Timeline []TimelineItem `json:"timeline"`
}

type Stats struct {
	Total   int `json:"total"`
	Sent    int `json:"sent"`
	Drafts  int `json:"drafts"`
	Failed  int `json:"failed"`
	Opened  int `json:"opened"`
	Replied int `json:"replied"`
}

type TimelineItem struct {
	ID        string     `json:"id"`
	Subject   string     `json:"subject"`
	LeadEmail string     `json:"lead_email"`
	LeadName  string     `json:"lead_name"`
	SentAt    *time.Time `json:"sent_at"`
	OpenedAt  any        `json:"opened_at"`
	RepliedAt any        `json:"replied_at"`
	AIReply   any        `json:"ai_reply"`
}
