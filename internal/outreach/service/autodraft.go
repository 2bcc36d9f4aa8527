package service

import (
	"context"
	"errors"
	"fmt"

	"salesorch_backend/internal/events"
	identityrepo "salesorch_backend/internal/identity/repository"
	"salesorch_backend/internal/outreach/repository"
	"salesorch_backend/internal/outreach/templates"
)

const autoDraftBody = `Hi {{first_name}},

I'm reaching out from %s about %s.

%s

Would you be open to a quick conversation to see if this could be a good fit for your team?

Best regards`

// HandleLeadCreated drafts an intro email for a new lead when the org
// has product copy configured. Every skip and failure is logged and
// swallowed; auto-drafting never disturbs lead creation.
func (s *Service) HandleLeadCreated(ctx context.Context, event events.Event) error {
	created, ok := event.(events.LeadCreated)
	if !ok {
		return nil
	}
	log := s.log.WithOrgID(created.OrgID.String())

	cfg, err := s.orgConfig.GetConfiguration(ctx, created.OrgID)
	if errors.Is(err, identityrepo.ErrNotFound) {
		log.Debug("auto-draft skipped: no organization configuration", "leadId", created.LeadID.String())
		return nil
	}
	if err != nil {
		log.Warn("auto-draft failed to load configuration", "leadId", created.LeadID.String(), "error", err)
		return nil
	}
	if cfg.ProductName == "" {
		log.Debug("auto-draft skipped: no product configured", "leadId", created.LeadID.String())
		return nil
	}
	if created.Email == "" {
		log.Debug("auto-draft skipped: lead has no email", "leadId", created.LeadID.String())
		return nil
	}

	lead, err := s.leadForOrg(ctx, created.OrgID, created.LeadID)
	if err != nil {
		log.Warn("auto-draft failed to load lead", "leadId", created.LeadID.String(), "error", err)
		return nil
	}

	if _, err := s.repo.FindDraftByLead(ctx, lead.ID); err == nil {
		log.Debug("auto-draft skipped: draft exists", "leadId", lead.ID.String())
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		log.Warn("auto-draft failed to check drafts", "leadId", lead.ID.String(), "error", err)
		return nil
	}

	companyName := cfg.CompanyName
	if companyName == "" {
		companyName = "our company"
	}
	description := cfg.ProductDescription
	if description == "" {
		description = fmt.Sprintf("We help companies like yours with %s.", cfg.ProductName)
	}

	fields := leadFields(lead)
	subject := templates.Render(fmt.Sprintf("Quick intro from %s", companyName), fields)
	body := templates.Render(fmt.Sprintf(autoDraftBody, companyName, cfg.ProductName, description), fields)

	draft, err := s.repo.Create(ctx, repository.LeadEmail{
		LeadID:  lead.ID,
		Subject: subject,
		Body:    body,
		Preview: body,
		Status:  repository.StatusDraft,
		Meta: map[string]any{
			"source":  "auto_generated",
			"product": cfg.ProductName,
			"company": companyName,
		},
	})
	if err != nil {
		log.Warn("auto-draft failed to create email", "leadId", lead.ID.String(), "error", err)
		return nil
	}

	log.Info("auto-draft created", "leadId", lead.ID.String(), "emailId", draft.ID.String())
	return nil
}
