// Package dashboard provides the read-only summary endpoint that
// aggregates the other bounded contexts for the home screen.
package dashboard

import (
	campaignsrepo "salesorch_backend/internal/campaigns/repository"
	"salesorch_backend/internal/dashboard/handler"
	"salesorch_backend/internal/dashboard/service"
	apphttp "salesorch_backend/internal/http"
	integrationsrepo "salesorch_backend/internal/integrations/repository"
	leadsrepo "salesorch_backend/internal/leads/repository"
	outreachrepo "salesorch_backend/internal/outreach/repository"
	"salesorch_backend/platform/logger"
)

type Module struct {
	handler *handler.Handler
	service *service.Service
}

func NewModule(leads *leadsrepo.Repository, campaigns *campaignsrepo.Repository, emails *outreachrepo.Repository, integrations *integrationsrepo.Repository, log *logger.Logger) *Module {
	svc := service.New(leads, campaigns, emails, integrations, log)
	h := handler.New(svc)

	return &Module{handler: h, service: svc}
}

func (m *Module) Name() string {
	return "dashboard"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected)
}

var _ apphttp.Module = (*Module)(nil)
