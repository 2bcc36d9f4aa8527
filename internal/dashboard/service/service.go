// Package service assembles the dashboard summary. Every section is
// loaded in parallel and degrades to its zero value on failure so one
// slow or broken query never blanks the whole dashboard.
package service

import (
	"context"
	"log/slog"

	campaignsrepo "salesorch_backend/internal/campaigns/repository"
	integrationsrepo "salesorch_backend/internal/integrations/repository"
	leadsrepo "salesorch_backend/internal/leads/repository"
	outreachrepo "salesorch_backend/internal/outreach/repository"
	"salesorch_backend/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const recentLimit = 5

type Metrics struct {
	TotalLeads      int
	TotalCampaigns  int
	EmailsSent      int
	ActiveSequences int
}

type CampaignPerformance struct {
	CampaignID   uuid.UUID
	CampaignName string
	Leads        int
	Contacted    int
	EmailsSent   int
}

type IntegrationStatus struct {
	Provider  string
	Connected bool
}

type Summary struct {
	Metrics       Metrics
	LeadsByStatus map[leadsrepo.Status]int
	RecentLeads   []leadsrepo.Lead
	RecentEmails  []outreachrepo.LeadEmail
	Campaigns     []CampaignPerformance
	Integrations  []IntegrationStatus
}

type Service struct {
	leads        *leadsrepo.Repository
	campaigns    *campaignsrepo.Repository
	emails       *outreachrepo.Repository
	integrations *integrationsrepo.Repository
	log          *logger.Logger
}

func New(leads *leadsrepo.Repository, campaigns *campaignsrepo.Repository, emails *outreachrepo.Repository, integrations *integrationsrepo.Repository, log *logger.Logger) *Service {
	return &Service{
		leads:        leads,
		campaigns:    campaigns,
		emails:       emails,
		integrations: integrations,
		log:          log,
	}
}

// Summary loads every dashboard section for the org.
func (s *Service) Summary(ctx context.Context, orgID uuid.UUID) (Summary, error) {
	var out Summary
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		out.Metrics.TotalLeads = s.intSection(gctx, orgID, "total_leads", s.leads.CountLeads)
		return nil
	})
	g.Go(func() error {
		out.Metrics.TotalCampaigns = s.intSection(gctx, orgID, "total_campaigns", s.campaigns.CountCampaigns)
		return nil
	})
	g.Go(func() error {
		out.Metrics.EmailsSent = s.intSection(gctx, orgID, "emails_sent", s.emails.CountSent)
		return nil
	})
	g.Go(func() error {
		out.Metrics.ActiveSequences = s.intSection(gctx, orgID, "active_sequences", s.campaigns.CountActiveSequences)
		return nil
	})
	g.Go(func() error {
		byStatus, err := s.leads.CountByStatus(gctx, orgID)
		if err != nil {
			s.warn(orgID, "leads_by_status", err)
			byStatus = map[leadsrepo.Status]int{}
		}
		out.LeadsByStatus = byStatus
		return nil
	})
	g.Go(func() error {
		recent, err := s.leads.ListRecent(gctx, orgID, recentLimit)
		if err != nil {
			s.warn(orgID, "recent_leads", err)
		}
		out.RecentLeads = recent
		return nil
	})
	g.Go(func() error {
		recent, err := s.emails.ListRecent(gctx, orgID, recentLimit)
		if err != nil {
			s.warn(orgID, "recent_emails", err)
		}
		out.RecentEmails = recent
		return nil
	})
	g.Go(func() error {
		performance, err := s.campaignPerformance(gctx, orgID)
		if err != nil {
			s.warn(orgID, "campaign_performance", err)
		}
		out.Campaigns = performance
		return nil
	})
	g.Go(func() error {
		integrations, err := s.integrationStatus(gctx, orgID)
		if err != nil {
			s.warn(orgID, "integrations", err)
			integrations = defaultIntegrationStatus()
		}
		out.Integrations = integrations
		return nil
	})

	g.Wait()
	return out, nil
}

func (s *Service) intSection(ctx context.Context, orgID uuid.UUID, name string, load func(context.Context, uuid.UUID) (int, error)) int {
	n, err := load(ctx, orgID)
	if err != nil {
		s.warn(orgID, name, err)
		return 0
	}
	return n
}

// campaignPerformance merges per-campaign lead counts with per-campaign
// sent email counts.
func (s *Service) campaignPerformance(ctx context.Context, orgID uuid.UUID) ([]CampaignPerformance, error) {
	counts, err := s.leads.CountByCampaign(ctx, orgID)
	if err != nil {
		return nil, err
	}
	sent, err := s.emails.CountSentByCampaign(ctx, orgID)
	if err != nil {
		return nil, err
	}

	sentByCampaign := make(map[uuid.UUID]int, len(sent))
	for _, c := range sent {
		sentByCampaign[c.CampaignID] = c.Sent
	}

	out := make([]CampaignPerformance, 0, len(counts))
	for _, c := range counts {
		out = append(out, CampaignPerformance{
			CampaignID:   c.CampaignID,
			CampaignName: c.CampaignName,
			Leads:        c.Leads,
			Contacted:    c.Contacted,
			EmailsSent:   sentByCampaign[c.CampaignID],
		})
	}
	return out, nil
}

func (s *Service) integrationStatus(ctx context.Context, orgID uuid.UUID) ([]IntegrationStatus, error) {
	connected, err := s.integrations.ListByOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}

	byProvider := make(map[integrationsrepo.Provider]bool, len(connected))
	for _, in := range connected {
		byProvider[in.Provider] = true
	}

	out := defaultIntegrationStatus()
	for i := range out {
		out[i].Connected = byProvider[integrationsrepo.Provider(out[i].Provider)]
	}
	return out, nil
}

func defaultIntegrationStatus() []IntegrationStatus {
	return []IntegrationStatus{
		{Provider: string(integrationsrepo.ProviderGmail)},
		{Provider: string(integrationsrepo.ProviderHubSpot)},
	}
}

func (s *Service) warn(orgID uuid.UUID, section string, err error) {
	s.log.Warn("dashboard section failed",
		slog.String("org_id", orgID.String()),
		slog.String("section", section),
		slog.String("error", err.Error()))
}
