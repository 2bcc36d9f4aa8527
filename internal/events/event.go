// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"salesorch_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Lead Domain Events
// =============================================================================

// LeadCreated is published after a lead row is committed. The outreach
// module listens to it for best-effort auto-drafting.
type LeadCreated struct {
	BaseEvent
	LeadID uuid.UUID `json:"leadId"`
	OrgID  uuid.UUID `json:"orgId"`
	Email  string    `json:"email"`
	Phone  string    `json:"phone"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadEnriched is published when an enrichment job stores a result.
type LeadEnriched struct {
	BaseEvent
	LeadID uuid.UUID `json:"leadId"`
	OrgID  uuid.UUID `json:"orgId"`
}

func (e LeadEnriched) EventName() string { return "leads.lead.enriched" }

// =============================================================================
// Outreach Domain Events
// =============================================================================

// EmailSent is published after an email is marked sent, regardless of the
// Gmail disposition. The activities module records it on the timeline.
type EmailSent struct {
	BaseEvent
	EmailID     uuid.UUID `json:"emailId"`
	LeadID      uuid.UUID `json:"leadId"`
	OrgID       uuid.UUID `json:"orgId"`
	Subject     string    `json:"subject"`
	Disposition string    `json:"disposition"`
}

func (e EmailSent) EventName() string { return "outreach.email.sent" }

// =============================================================================
// Calls Domain Events
// =============================================================================

// CallRecorded is published when the call webhook upserts a call record.
type CallRecorded struct {
	BaseEvent
	CallID  uuid.UUID  `json:"callId"`
	LeadID  *uuid.UUID `json:"leadId,omitempty"`
	CallSID string     `json:"callSid"`
}

func (e CallRecorded) EventName() string { return "calls.call.recorded" }

// =============================================================================
// Integration Domain Events
// =============================================================================

// IntegrationConnected is published after an OAuth callback stores tokens.
type IntegrationConnected struct {
	BaseEvent
	OrgID    uuid.UUID `json:"orgId"`
	Provider string    `json:"provider"`
}

func (e IntegrationConnected) EventName() string { return "integrations.connected" }
