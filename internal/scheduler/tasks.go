package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// Task type names match the outbox kinds they are dispatched from.
const TaskEnrichLead = "leads.enrich"

const TaskInitiateCall = "calls.initiate"

type EnrichLeadPayload struct {
	OutboxID string `json:"outboxId"`
	OrgID    string `json:"orgId"`
	LeadID   string `json:"leadId"`
}

type InitiateCallPayload struct {
	OutboxID    string `json:"outboxId"`
	OrgID       string `json:"orgId"`
	LeadID      string `json:"leadId"`
	PhoneNumber string `json:"phoneNumber"`
}

func NewEnrichLeadTask(payload EnrichLeadPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskEnrichLead, data), nil
}

func ParseEnrichLeadPayload(task *asynq.Task) (EnrichLeadPayload, error) {
	var payload EnrichLeadPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return EnrichLeadPayload{}, err
	}
	return payload, nil
}

func NewInitiateCallTask(payload InitiateCallPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	// Three delivery attempts total with a fixed pause between them.
	return asynq.NewTask(TaskInitiateCall, data, asynq.MaxRetry(2)), nil
}

func ParseInitiateCallPayload(task *asynq.Task) (InitiateCallPayload, error) {
	var payload InitiateCallPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return InitiateCallPayload{}, err
	}
	return payload, nil
}
