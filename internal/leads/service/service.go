// Package service implements lead management and the lead lifecycle
// orchestrator. Creating a lead writes the row and its background-job
// intents (enrichment always, a call when a phone number is present) in
// one transaction, then announces the lead on the event bus so outreach
// can draft an intro email.
package service

import (
	"context"
	"errors"

	"salesorch_backend/internal/events"
	"salesorch_backend/internal/leads/repository"
	"salesorch_backend/internal/outbox"
	"salesorch_backend/platform/apperr"
	"salesorch_backend/platform/logger"
	"salesorch_backend/platform/phone"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Archiver stores raw bulk-import files. Nil when object storage is not
// configured.
type Archiver interface {
	Archive(ctx context.Context, objectName string, data []byte, contentType string) error
}

type Service struct {
	repo    *repository.Repository
	outbox  *outbox.Repository
	bus     events.Bus
	archive Archiver
	log     *logger.Logger
}

func New(repo *repository.Repository, ob *outbox.Repository, bus events.Bus, archive Archiver, log *logger.Logger) *Service {
	return &Service{repo: repo, outbox: ob, bus: bus, archive: archive, log: log}
}

func (s *Service) List(ctx context.Context, orgID uuid.UUID) ([]repository.Lead, error) {
	return s.repo.List(ctx, orgID)
}

func (s *Service) Get(ctx context.Context, orgID, leadID uuid.UUID) (repository.Lead, error) {
	lead, err := s.repo.Get(ctx, orgID, leadID)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Lead{}, apperr.NotFound("lead not found")
	}
	return lead, err
}

// CreateParams carries the writable lead fields accepted from the API
// and the bulk importer.
type CreateParams struct {
	CampaignID  *uuid.UUID
	FirstName   string
	LastName    string
	Email       string
	Company     string
	LinkedinURL string
	Website     string
	Phone       string
}

// Create inserts the lead together with its outbox intents. The intents
// commit with the row, so a visible lead always has its enrichment job
// (and call job, when a phone is known) on disk.
func (s *Service) Create(ctx context.Context, orgID uuid.UUID, p CreateParams) (repository.Lead, error) {
	if p.CampaignID != nil {
		if err := s.campaignForOrg(ctx, orgID, *p.CampaignID); err != nil {
			return repository.Lead{}, err
		}
	}

	var lead repository.Lead
	err := pgx.BeginFunc(ctx, s.repo.Pool(), func(tx pgx.Tx) error {
		var err error
		lead, err = s.repo.Create(ctx, tx, repository.Lead{
			OrgID:       orgID,
			CampaignID:  p.CampaignID,
			FirstName:   p.FirstName,
			LastName:    p.LastName,
			Email:       p.Email,
			Company:     p.Company,
			LinkedinURL: p.LinkedinURL,
			Website:     p.Website,
			Phone:       p.Phone,
		})
		if err != nil {
			return err
		}
		return s.insertIntents(ctx, tx, lead)
	})
	if errors.Is(err, repository.ErrDuplicateEmail) {
		return repository.Lead{}, apperr.Conflict("a lead with this email already exists")
	}
	if err != nil {
		return repository.Lead{}, err
	}

	s.announceCreated(ctx, lead)
	return lead, nil
}

// UpdatePatch holds the optional fields of a partial update.
type UpdatePatch struct {
	CampaignID  *uuid.UUID
	FirstName   *string
	LastName    *string
	Email       *string
	Company     *string
	LinkedinURL *string
	Website     *string
	Phone       *string
	Status      *repository.Status
}

func (s *Service) Update(ctx context.Context, orgID, leadID uuid.UUID, patch UpdatePatch) (repository.Lead, error) {
	lead, err := s.Get(ctx, orgID, leadID)
	if err != nil {
		return repository.Lead{}, err
	}

	if patch.CampaignID != nil {
		if err := s.campaignForOrg(ctx, orgID, *patch.CampaignID); err != nil {
			return repository.Lead{}, err
		}
		lead.CampaignID = patch.CampaignID
	}
	if patch.FirstName != nil {
		lead.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		lead.LastName = *patch.LastName
	}
	if patch.Email != nil {
		lead.Email = *patch.Email
	}
	if patch.Company != nil {
		lead.Company = *patch.Company
	}
	if patch.LinkedinURL != nil {
		lead.LinkedinURL = *patch.LinkedinURL
	}
	if patch.Website != nil {
		lead.Website = *patch.Website
	}
	if patch.Phone != nil {
		lead.Phone = *patch.Phone
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return repository.Lead{}, apperr.Validation("unknown lead status")
		}
		lead.Status = *patch.Status
	}

	updated, err := s.repo.Update(ctx, lead)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return repository.Lead{}, apperr.NotFound("lead not found")
	case errors.Is(err, repository.ErrDuplicateEmail):
		return repository.Lead{}, apperr.Conflict("a lead with this email already exists")
	}
	return updated, err
}

func (s *Service) Delete(ctx context.Context, orgID, leadID uuid.UUID) error {
	err := s.repo.Delete(ctx, orgID, leadID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("lead not found")
	}
	return err
}

// insertIntents appends the background-job intents for a freshly created
// lead to the outbox, inside the caller's transaction.
func (s *Service) insertIntents(ctx context.Context, tx outbox.DBTX, lead repository.Lead) error {
	if _, err := s.outbox.Insert(ctx, tx, outbox.InsertParams{
		OrgID:   lead.OrgID,
		Kind:    outbox.KindEnrichLead,
		Payload: outbox.EnrichLeadIntent{LeadID: lead.ID},
	}); err != nil {
		return err
	}

	if lead.Phone == "" {
		return nil
	}
	_, err := s.outbox.Insert(ctx, tx, outbox.InsertParams{
		OrgID: lead.OrgID,
		Kind:  outbox.KindInitiateCall,
		Payload: outbox.InitiateCallIntent{
			LeadID:      lead.ID,
			PhoneNumber: phone.NormalizeE164(lead.Phone),
		},
	})
	return err
}

func (s *Service) announceCreated(ctx context.Context, lead repository.Lead) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		OrgID:     lead.OrgID,
		Email:     lead.Email,
		Phone:     lead.Phone,
	})
}

func (s *Service) campaignForOrg(ctx context.Context, orgID, campaignID uuid.UUID) error {
	ok, err := s.repo.OrgOwnsCampaign(ctx, orgID, campaignID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("campaign not found")
	}
	return nil
}
