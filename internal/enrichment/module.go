// Package enrichment provides website enrichment: background jobs that
// extract company data for a lead's website through Firecrawl. It has
// no HTTP surface; the scheduler drives it.
package enrichment

import (
	"salesorch_backend/internal/enrichment/client"
	"salesorch_backend/internal/enrichment/service"
	"salesorch_backend/internal/events"
	identityrepo "salesorch_backend/internal/identity/repository"
	leadsrepo "salesorch_backend/internal/leads/repository"
	"salesorch_backend/internal/outbox"
	"salesorch_backend/platform/logger"
)

type Module struct {
	service *service.Service
}

func NewModule(leads *leadsrepo.Repository, orgConfig *identityrepo.Repository, ob *outbox.Repository, bus events.Bus, log *logger.Logger) *Module {
	cli := client.New(log)
	svc := service.New(leads, orgConfig, ob, cli, bus, log)
	return &Module{service: svc}
}

func (m *Module) Service() *service.Service {
	return m.service
}
