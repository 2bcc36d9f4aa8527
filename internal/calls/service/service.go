// Package service implements call initiation and the webhook that
// records finished calls.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"salesorch_backend/internal/calls/provider"
	"salesorch_backend/internal/calls/repository"
	"salesorch_backend/internal/events"
	identityrepo "salesorch_backend/internal/identity/repository"
	leadsrepo "salesorch_backend/internal/leads/repository"
	"salesorch_backend/platform/apperr"
	"salesorch_backend/platform/logger"

	"github.com/google/uuid"
)

// CallDialer asks the external calling service to place a call.
type CallDialer interface {
	Initiate(ctx context.Context, req provider.InitiateRequest) error
}

// CallStore persists recorded calls.
type CallStore interface {
	UpsertByCallSID(ctx context.Context, call repository.Call) (repository.Call, error)
	ListByOrg(ctx context.Context, orgID uuid.UUID, limit int) ([]repository.Call, error)
}

// LeadReader resolves leads referenced by call jobs and webhooks.
type LeadReader interface {
	GetByID(ctx context.Context, leadID uuid.UUID) (leadsrepo.Lead, error)
}

// ConfigReader supplies the org's product copy for the call goal.
type ConfigReader interface {
	GetConfiguration(ctx context.Context, orgID uuid.UUID) (identityrepo.OrgConfiguration, error)
}

type Service struct {
	repo      CallStore
	leads     LeadReader
	orgConfig ConfigReader
	dialer    CallDialer
	bus       events.Bus
	log       *logger.Logger
}

func New(repo CallStore, leads LeadReader, orgConfig ConfigReader, dialer CallDialer, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		repo:      repo,
		leads:     leads,
		orgConfig: orgConfig,
		dialer:    dialer,
		bus:       bus,
		log:       log,
	}
}

// InitiateCall places an outbound call for a lead. The background worker
// drives it off the call intent written at lead creation.
func (s *Service) InitiateCall(ctx context.Context, leadID uuid.UUID, phoneNumber string) error {
	lead, err := s.leads.GetByID(ctx, leadID)
	if errors.Is(err, leadsrepo.ErrNotFound) {
		// The lead was deleted before the job ran. Nothing to call.
		s.log.Info("skipping call for deleted lead", slog.String("lead_id", leadID.String()))
		return nil
	}
	if err != nil {
		return err
	}

	product := ""
	goal := "Introduce our product and schedule a follow-up call."
	cfg, err := s.orgConfig.GetConfiguration(ctx, lead.OrgID)
	if err != nil && !errors.Is(err, identityrepo.ErrNotFound) {
		return err
	}
	if err == nil {
		product = cfg.ProductName
		if cfg.ProductDescription != "" {
			goal = fmt.Sprintf("Introduce %s and schedule a follow-up call.", cfg.ProductName)
		}
	}

	return s.dialer.Initiate(ctx, provider.InitiateRequest{
		LeadID:      lead.ID.String(),
		LeadName:    lead.FullName(),
		Company:     lead.Company,
		Product:     product,
		Goal:        goal,
		PhoneNumber: phoneNumber,
	})
}

type WebhookParams struct {
	CallSID      string
	RecordingURL string
	Summary      string
	LeadID       *uuid.UUID
}

// RecordWebhook stores a finished call reported by the calling service.
// Repeated deliveries for the same call sid overwrite the prior result.
func (s *Service) RecordWebhook(ctx context.Context, params WebhookParams) (repository.Call, error) {
	if params.CallSID == "" || params.RecordingURL == "" || params.Summary == "" {
		return repository.Call{}, apperr.Validation("Missing required fields")
	}

	var orgID *uuid.UUID
	if params.LeadID != nil {
		lead, err := s.leads.GetByID(ctx, *params.LeadID)
		if errors.Is(err, leadsrepo.ErrNotFound) {
			return repository.Call{}, apperr.NotFound("lead not found")
		}
		if err != nil {
			return repository.Call{}, err
		}
		orgID = &lead.OrgID
	}

	call, err := s.repo.UpsertByCallSID(ctx, repository.Call{
		OrgID:        orgID,
		LeadID:       params.LeadID,
		CallSID:      params.CallSID,
		RecordingURL: params.RecordingURL,
		Summary:      params.Summary,
	})
	if err != nil {
		return repository.Call{}, err
	}

	s.bus.Publish(ctx, events.CallRecorded{
		BaseEvent: events.NewBaseEvent(),
		CallID:    call.ID,
		LeadID:    call.LeadID,
		CallSID:   call.CallSID,
	})
	return call, nil
}

// List returns the org's most recent calls.
func (s *Service) List(ctx context.Context, orgID uuid.UUID) ([]repository.Call, error) {
	return s.repo.ListByOrg(ctx, orgID, 50)
}
