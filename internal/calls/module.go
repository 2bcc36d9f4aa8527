// Package calls provides the outbound calling bounded context: placing
// calls through the external calling service and recording results the
// service reports back over its webhook.
package calls

import (
	"salesorch_backend/internal/calls/handler"
	"salesorch_backend/internal/calls/provider"
	"salesorch_backend/internal/calls/repository"
	"salesorch_backend/internal/calls/service"
	apphttp "salesorch_backend/internal/http"
	identityrepo "salesorch_backend/internal/identity/repository"
	leadsrepo "salesorch_backend/internal/leads/repository"
	"salesorch_backend/platform/config"
	"salesorch_backend/platform/events"
	"salesorch_backend/platform/logger"
	"salesorch_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Module struct {
	handler    *handler.Handler
	service    *service.Service
	repository *repository.Repository
}

func NewModule(pool *pgxpool.Pool, leads *leadsrepo.Repository, orgConfig *identityrepo.Repository, cfg config.CallingConfig, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	dialer := provider.NewClient(cfg)
	svc := service.New(repo, leads, orgConfig, dialer, bus, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc, repository: repo}
}

func (m *Module) Name() string {
	return "calls"
}

func (m *Module) Service() *service.Service {
	return m.service
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterProtectedRoutes(ctx.Protected)
	m.handler.RegisterPublicRoutes(ctx.V1)
}

var _ apphttp.Module = (*Module)(nil)
