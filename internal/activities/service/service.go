// Package service maintains the activity timeline. It tails domain
// events and appends an entry per outreach touch.
package service

import (
	"context"
	"log/slog"

	"salesorch_backend/internal/activities/repository"
	"salesorch_backend/internal/events"
	"salesorch_backend/platform/logger"

	"github.com/google/uuid"
)

const feedLimit = 25

type Service struct {
	repo *repository.Repository
	log  *logger.Logger
}

func New(repo *repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Feed returns the org's latest timeline entries.
func (s *Service) Feed(ctx context.Context, orgID uuid.UUID) ([]repository.Entry, error) {
	return s.repo.Feed(ctx, orgID, feedLimit)
}

// HandleEmailSent appends a timeline entry for every sent email.
// Timeline writes never fail the publishing flow.
func (s *Service) HandleEmailSent(ctx context.Context, event events.Event) error {
	e, ok := event.(events.EmailSent)
	if !ok {
		return nil
	}

	payload := map[string]any{
		"type":        "email_sent",
		"email_id":    e.EmailID.String(),
		"subject":     e.Subject,
		"disposition": e.Disposition,
	}
	if err := s.repo.Insert(ctx, e.LeadID, nil, payload); err != nil {
		s.log.Warn("timeline write failed",
			slog.String("event", e.EventName()),
			slog.String("lead_id", e.LeadID.String()),
			slog.String("error", err.Error()))
	}
	return nil
}

// HandleCallRecorded appends a timeline entry for calls the webhook tied
// to a lead. Calls without a lead have no timeline to land on.
func (s *Service) HandleCallRecorded(ctx context.Context, event events.Event) error {
	e, ok := event.(events.CallRecorded)
	if !ok || e.LeadID == nil {
		return nil
	}

	payload := map[string]any{
		"type":     "call_recorded",
		"call_id":  e.CallID.String(),
		"call_sid": e.CallSID,
	}
	if err := s.repo.Insert(ctx, *e.LeadID, nil, payload); err != nil {
		s.log.Warn("timeline write failed",
			slog.String("event", e.EventName()),
			slog.String("lead_id", e.LeadID.String()),
			slog.String("error", err.Error()))
	}
	return nil
}
