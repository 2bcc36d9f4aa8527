package scheduler

import (
	"context"
	"time"

	enrichservice "salesorch_backend/internal/enrichment/service"
	"salesorch_backend/platform/config"
	"salesorch_backend/platform/logger"
)

const (
	defaultSweepInterval = 24 * time.Hour
	defaultSweepLimit    = 50
)

// EnrichmentSweeper periodically re-enqueues enrichment for leads that
// have a website but never got a result.
type EnrichmentSweeper struct {
	enrichment *enrichservice.Service
	interval   time.Duration
	limit      int
	log        *logger.Logger
}

func NewEnrichmentSweeper(cfg config.EnrichmentConfig, enrichment *enrichservice.Service, log *logger.Logger) *EnrichmentSweeper {
	interval := cfg.GetEnrichmentSweepInterval()
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	limit := cfg.GetEnrichmentSweepLimit()
	if limit <= 0 {
		limit = defaultSweepLimit
	}

	return &EnrichmentSweeper{
		enrichment: enrichment,
		interval:   interval,
		limit:      limit,
		log:        log,
	}
}

func (s *EnrichmentSweeper) Run(ctx context.Context) {
	if s == nil || s.enrichment == nil {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if _, err := s.enrichment.Sweep(ctx, s.limit); err != nil {
			s.log.Warn("enrichment sweep failed", "error", err)
		}
	}
}
