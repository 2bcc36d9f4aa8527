// Package service runs website enrichment jobs: it pulls structured
// company data for a lead's website and stores the result on the lead.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"salesorch_backend/internal/events"
	identityrepo "salesorch_backend/internal/identity/repository"
	leadsrepo "salesorch_backend/internal/leads/repository"
	"salesorch_backend/internal/outbox"
	"salesorch_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Extractor pulls structured company data from a website.
type Extractor interface {
	Extract(ctx context.Context, apiKey, websiteURL string) (json.RawMessage, error)
}

// LeadStore is the slice of the leads repository enrichment reads and
// writes.
type LeadStore interface {
	GetByID(ctx context.Context, leadID uuid.UUID) (leadsrepo.Lead, error)
	UpdateEnriched(ctx context.Context, leadID uuid.UUID, enriched json.RawMessage) error
	ListForEnrichmentSweep(ctx context.Context, limit int) ([]leadsrepo.Lead, error)
	Pool() *pgxpool.Pool
}

// ConfigStore resolves the org configuration carrying the enrichment key.
type ConfigStore interface {
	GetConfiguration(ctx context.Context, orgID uuid.UUID) (identityrepo.OrgConfiguration, error)
}

// IntentWriter appends job intents to the outbox.
type IntentWriter interface {
	Insert(ctx context.Context, q outbox.DBTX, p outbox.InsertParams) (uuid.UUID, error)
}

type Service struct {
	leads     LeadStore
	orgConfig ConfigStore
	outbox    IntentWriter
	extractor Extractor
	bus       events.Bus
	log       *logger.Logger
	now       func() time.Time
}

func New(leads LeadStore, orgConfig ConfigStore, ob IntentWriter, extractor Extractor, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		leads:     leads,
		orgConfig: orgConfig,
		outbox:    ob,
		extractor: extractor,
		bus:       bus,
		log:       log,
		now:       time.Now,
	}
}

// EnrichLead runs one enrichment job. Only a successful extraction
// writes to the lead; a missing website or a failed extraction leaves
// `enriched` empty, so the daily sweep picks the lead up again. Both
// return nil so asynq never retries the task itself.
func (s *Service) EnrichLead(ctx context.Context, leadID uuid.UUID) error {
	lead, err := s.leads.GetByID(ctx, leadID)
	if errors.Is(err, leadsrepo.ErrNotFound) {
		s.log.Debug("skipping enrichment for deleted lead", slog.String("lead_id", leadID.String()))
		return nil
	}
	if err != nil {
		return err
	}

	if strings.TrimSpace(lead.Website) == "" {
		s.log.Debug("skipping enrichment, lead has no website", slog.String("lead_id", lead.ID.String()))
		return nil
	}

	cfg, err := s.orgConfig.GetConfiguration(ctx, lead.OrgID)
	if errors.Is(err, identityrepo.ErrNotFound) || (err == nil && cfg.FirecrawlAPIKey == "") {
		s.log.Debug("skipping enrichment, no firecrawl key", slog.String("org_id", lead.OrgID.String()))
		return nil
	}
	if err != nil {
		return err
	}

	website := NormalizeWebsiteURL(lead.Website)
	data, err := s.extractor.Extract(ctx, cfg.FirecrawlAPIKey, website)
	if err != nil {
		s.log.Warn("enrichment failed",
			slog.String("lead_id", lead.ID.String()),
			slog.String("website", website),
			slog.String("error", err.Error()))
		return nil
	}

	raw, err := json.Marshal(map[string]any{
		"status":      "ok",
		"data":        json.RawMessage(data),
		"enriched_at": s.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	if err := s.leads.UpdateEnriched(ctx, lead.ID, raw); err != nil {
		return err
	}

	s.bus.Publish(ctx, events.LeadEnriched{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		OrgID:     lead.OrgID,
	})
	return nil
}

// Sweep re-enqueues enrichment for leads that have a website but were
// never enriched, up to limit per pass.
func (s *Service) Sweep(ctx context.Context, limit int) (int, error) {
	leads, err := s.leads.ListForEnrichmentSweep(ctx, limit)
	if err != nil {
		return 0, err
	}

	enqueued := 0
	for _, lead := range leads {
		_, err := s.outbox.Insert(ctx, s.leads.Pool(), outbox.InsertParams{
			OrgID:   lead.OrgID,
			Kind:    outbox.KindEnrichLead,
			Payload: outbox.EnrichLeadIntent{LeadID: lead.ID},
		})
		if err != nil {
			s.log.Warn("sweep enqueue failed",
				slog.String("lead_id", lead.ID.String()),
				slog.String("error", err.Error()))
			continue
		}
		enqueued++
	}
	if enqueued > 0 {
		s.log.Info("enrichment sweep enqueued jobs", slog.Int("count", enqueued))
	}
	return enqueued, nil
}

// NormalizeWebsiteURL defaults bare hostnames to https.
func NormalizeWebsiteURL(raw string) string {
	website := strings.TrimSpace(raw)
	if website == "" {
		return ""
	}
	if !strings.Contains(website, "://") {
		return "https://" + website
	}
	return website
}
