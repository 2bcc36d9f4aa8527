// Package service implements outreach email operations: preview,
// generation, the best-effort send flow, the email log/stats views, and
// the auto-draft reaction to new leads.
package service

import (
	"context"
	"errors"

	"salesorch_backend/internal/events"
	"salesorch_backend/internal/identity"
	identityrepo "salesorch_backend/internal/identity/repository"
	leadsrepo "salesorch_backend/internal/leads/repository"
	"salesorch_backend/internal/outreach/agent"
	"salesorch_backend/internal/outreach/repository"
	"salesorch_backend/internal/outreach/templates"
	"salesorch_backend/platform/apperr"
	"salesorch_backend/platform/logger"

	"github.com/google/uuid"
)

// ErrNoMailIntegration signals that the org has no connected Gmail
// account. The send flow treats it as the dashboard-only disposition,
// not a failure.
var ErrNoMailIntegration = errors.New("no mail integration connected")

// MailSender delivers an email through the org's Gmail integration and
// returns the provider message id.
type MailSender interface {
	SendLeadEmail(ctx context.Context, orgID uuid.UUID, to, subject, body string) (string, error)
}

// Drafter produces AI-written email copy. Nil disables AI drafting.
type Drafter interface {
	Draft(ctx context.Context, cfg agent.ModelConfig, input agent.DraftInput) (agent.Draft, error)
}

// EmailStore is the slice of the email repository the service uses.
type EmailStore interface {
	GetForOrg(ctx context.Context, orgID, emailID uuid.UUID) (repository.LeadEmail, error)
	FindDraftByLead(ctx context.Context, leadID uuid.UUID) (repository.LeadEmail, error)
	Create(ctx context.Context, email repository.LeadEmail) (repository.LeadEmail, error)
	UpdateDraftCopy(ctx context.Context, emailID uuid.UUID, subject, body, preview string) error
	MarkSent(ctx context.Context, emailID uuid.UUID, meta map[string]any) error
	List(ctx context.Context, orgID uuid.UUID) ([]repository.LeadEmail, error)
	SentTimeline(ctx context.Context, orgID uuid.UUID, limit int) ([]repository.LeadEmail, error)
	Stats(ctx context.Context, orgID uuid.UUID) (repository.Stats, error)
}

// LeadStore resolves leads and records their contact transitions.
type LeadStore interface {
	Get(ctx context.Context, orgID, leadID uuid.UUID) (leadsrepo.Lead, error)
	MarkContacted(ctx context.Context, leadID uuid.UUID) error
}

// ConfigStore supplies the org's product copy and AI settings.
type ConfigStore interface {
	GetConfiguration(ctx context.Context, orgID uuid.UUID) (identityrepo.OrgConfiguration, error)
}

type Service struct {
	repo      EmailStore
	leads     LeadStore
	orgConfig ConfigStore
	sender    MailSender
	drafter   Drafter
	bus       events.Bus
	log       *logger.Logger
}

func New(
	repo EmailStore,
	leads LeadStore,
	orgConfig ConfigStore,
	sender MailSender,
	drafter Drafter,
	bus events.Bus,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:      repo,
		leads:     leads,
		orgConfig: orgConfig,
		sender:    sender,
		drafter:   drafter,
		bus:       bus,
		log:       log,
	}
}

// Preview renders inline subject/body templates against a lead without
// persisting anything.
func (s *Service) Preview(ctx context.Context, orgID, leadID uuid.UUID, subject, body string) (leadsrepo.Lead, string, string, error) {
	lead, err := s.leadForOrg(ctx, orgID, leadID)
	if err != nil {
		return leadsrepo.Lead{}, "", "", err
	}
	fields := leadFields(lead)
	return lead, templates.Render(subject, fields), templates.Render(body, fields), nil
}

type SendParams struct {
	EmailID *uuid.UUID
	LeadID  *uuid.UUID
	Subject string
	Body    string
}

// Send produces or updates a draft, attempts Gmail delivery when an
// integration exists, and marks the email sent regardless of the
// outcome. The local record is the system of record for "sent"; the
// Gmail result only lands in the meta disposition.
func (s *Service) Send(ctx context.Context, orgID uuid.UUID, p SendParams) (repository.LeadEmail, error) {
	var (
		email    repository.LeadEmail
		lead     leadsrepo.Lead
		haveMail bool
		err      error
	)

	if p.EmailID != nil {
		email, err = s.repo.GetForOrg(ctx, orgID, *p.EmailID)
		if errors.Is(err, repository.ErrNotFound) {
			return repository.LeadEmail{}, apperr.NotFound("draft email not found")
		}
		if err != nil {
			return repository.LeadEmail{}, err
		}
		haveMail = true
		lead, err = s.leadForOrg(ctx, orgID, email.LeadID)
		if err != nil {
			return repository.LeadEmail{}, err
		}
	} else {
		if p.LeadID == nil {
			return repository.LeadEmail{}, apperr.Validation("lead_id is required when no email draft is provided")
		}
		lead, err = s.leadForOrg(ctx, orgID, *p.LeadID)
		if err != nil {
			return repository.LeadEmail{}, err
		}
	}

	fields := leadFields(lead)
	if !haveMail {
		body := templates.Render(p.Body, fields)
		email, err = s.repo.Create(ctx, repository.LeadEmail{
			LeadID:  lead.ID,
			Subject: templates.Render(p.Subject, fields),
			Body:    body,
			Preview: body,
			Status:  repository.StatusDraft,
			Meta:    map[string]any{"source": "salesorch_dashboard", "mode": "manual"},
		})
		if err != nil {
			return repository.LeadEmail{}, err
		}
	} else if p.Subject != "" || p.Body != "" {
		if p.Subject != "" {
			email.Subject = templates.Render(p.Subject, fields)
		}
		if p.Body != "" {
			body := templates.Render(p.Body, fields)
			email.Body = body
			email.Preview = body
		}
		if err := s.repo.UpdateDraftCopy(ctx, email.ID, email.Subject, email.Body, email.Preview); err != nil {
			return repository.LeadEmail{}, err
		}
	}

	meta := email.Meta
	if meta == nil {
		meta = map[string]any{}
	}
	disposition := s.attemptGmail(ctx, orgID, lead.Email, email, meta)

	if err := s.repo.MarkSent(ctx, email.ID, meta); err != nil {
		return repository.LeadEmail{}, err
	}
	if err := s.leads.MarkContacted(ctx, lead.ID); err != nil {
		return repository.LeadEmail{}, err
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.EmailSent{
			BaseEvent:   events.NewBaseEvent(),
			EmailID:     email.ID,
			LeadID:      lead.ID,
			OrgID:       orgID,
			Subject:     email.Subject,
			Disposition: disposition,
		})
	}

	return s.repo.GetForOrg(ctx, orgID, email.ID)
}

// attemptGmail tries provider delivery and records the disposition in
// meta. Failures never propagate.
func (s *Service) attemptGmail(ctx context.Context, orgID uuid.UUID, to string, email repository.LeadEmail, meta map[string]any) string {
	if s.sender == nil {
		meta["disposition"] = "sent_via_dashboard"
		return "sent_via_dashboard"
	}

	messageID, err := s.sender.SendLeadEmail(ctx, orgID, to, email.Subject, email.Body)
	switch {
	case err == nil:
		meta["disposition"] = "sent_via_gmail"
		meta["gmail_message_id"] = messageID
		return "sent_via_gmail"
	case errors.Is(err, ErrNoMailIntegration):
		meta["disposition"] = "sent_via_dashboard"
		return "sent_via_dashboard"
	default:
		s.log.Warn("gmail send failed", "emailId", email.ID.String(), "error", err)
		meta["disposition"] = "gmail_send_failed"
		meta["error"] = err.Error()
		return "gmail_send_failed"
	}
}

type GenerateParams struct {
	LeadID        uuid.UUID
	Prompt        string
	SubjectPrompt string
}

// Generate returns the lead's existing draft, or creates one. The copy
// comes from the AI drafter when the org has an AI key configured,
// otherwise from plain template substitution of the prompt.
func (s *Service) Generate(ctx context.Context, orgID uuid.UUID, p GenerateParams) (repository.LeadEmail, bool, error) {
	if p.Prompt == "" {
		return repository.LeadEmail{}, false, apperr.Validation("prompt is required")
	}
	if p.SubjectPrompt == "" {
		p.SubjectPrompt = "Quick intro from {{company}}"
	}

	lead, err := s.leadForOrg(ctx, orgID, p.LeadID)
	if err != nil {
		return repository.LeadEmail{}, false, err
	}

	existing, err := s.repo.FindDraftByLead(ctx, lead.ID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return repository.LeadEmail{}, false, err
	}

	fields := leadFields(lead)
	subject := templates.Render(p.SubjectPrompt, fields)
	body := templates.Render(p.Prompt, fields)

	if draft, ok := s.draftWithAI(ctx, orgID, lead, p.Prompt); ok {
		if draft.Subject != "" {
			subject = draft.Subject
		}
		body = draft.Body
	}

	email, err := s.repo.Create(ctx, repository.LeadEmail{
		LeadID:  lead.ID,
		Subject: subject,
		Body:    body,
		Preview: body,
		Status:  repository.StatusDraft,
		Meta:    map[string]any{"source": "salesorch_ai", "prompt": p.Prompt},
	})
	if err != nil {
		return repository.LeadEmail{}, false, err
	}
	return email, true, nil
}

// draftWithAI runs the drafter agent when the org has an AI key. Any
// drafter problem falls back to template substitution.
func (s *Service) draftWithAI(ctx context.Context, orgID uuid.UUID, lead leadsrepo.Lead, prompt string) (agent.Draft, bool) {
	if s.drafter == nil {
		return agent.Draft{}, false
	}

	cfg, err := s.orgConfig.GetConfiguration(ctx, orgID)
	if err != nil || cfg.AIModelAPIKey == "" {
		return agent.Draft{}, false
	}

	draft, err := s.drafter.Draft(ctx, agent.ModelConfig{
		Platform: identity.AIModelPlatform(cfg.AIModel),
		APIKey:   cfg.AIModelAPIKey,
	}, agent.DraftInput{
		LeadName:           lead.FullName(),
		LeadEmail:          lead.Email,
		Company:            lead.Company,
		Website:            lead.Website,
		Enriched:           string(lead.Enriched),
		CompanyName:        cfg.CompanyName,
		ProductName:        cfg.ProductName,
		ProductDescription: cfg.ProductDescription,
		Prompt:             prompt,
	})
	if err != nil {
		s.log.Warn("ai drafter failed, using template substitution", "leadId", lead.ID.String(), "error", err)
		return agent.Draft{}, false
	}
	return draft, true
}

func (s *Service) List(ctx context.Context, orgID uuid.UUID) ([]repository.LeadEmail, error) {
	return s.repo.List(ctx, orgID)
}

const timelineLimit = 50

func (s *Service) Stats(ctx context.Context, orgID uuid.UUID) (repository.Stats, []repository.LeadEmail, error) {
	stats, err := s.repo.Stats(ctx, orgID)
	if err != nil {
		return repository.Stats{}, nil, err
	}
	timeline, err := s.repo.SentTimeline(ctx, orgID, timelineLimit)
	if err != nil {
		return repository.Stats{}, nil, err
	}
	return stats, timeline, nil
}

func (s *Service) leadForOrg(ctx context.Context, orgID, leadID uuid.UUID) (leadsrepo.Lead, error) {
	lead, err := s.leads.Get(ctx, orgID, leadID)
	if errors.Is(err, leadsrepo.ErrNotFound) {
		return leadsrepo.Lead{}, apperr.NotFound("lead not found")
	}
	return lead, err
}

func leadFields(lead leadsrepo.Lead) templates.Fields {
	return templates.Fields{
		FirstName: lead.FirstName,
		LastName:  lead.LastName,
		Company:   lead.Company,
		Email:     lead.Email,
	}
}
