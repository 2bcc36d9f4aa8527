// Package transport defines the wire types for the integrations API.
package transport

import "time"

type AuthURLResponse struct {
	AuthURL string `json:"auth_url"`
}

type IntegrationSummary struct {
	ID        string     `json:"id"`
	Provider  string     `json:"provider"`
	ExpiresAt *time.Time `json:"expires_at"`
}

type StatusResponse struct {
	Integrations []IntegrationSummary `json:"integrations"`
}

type DisconnectResponse struct {
	Status string `json:"status"`
}

type ConnectedResponse struct {
	Message     string             `json:"message"`
	Integration IntegrationSummary `json:"integration"`
}

type MessageResponse struct {
	ID       string `json:"id"`
	ThreadID string `json:"thread_id"`
	Subject  string `json:"subject"`
	From     string `json:"from"`
	To       string `json:"to"`
	Date     string `json:"date"`
	Body     string `json:"body"`
	Snippet  string `json:"snippet"`
}

type MessagesResponse struct {
	Messages []MessageResponse `json:"messages"`
}

type ContactsResponse struct {
	Contacts []ContactResponse `json:"contacts"`
}

type ContactResponse struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties"`
	CreatedAt  string            `json:"createdAt"`
	UpdatedAt  string            `json:"updatedAt"`
}
