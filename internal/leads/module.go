// Package leads provides the leads bounded context: org-scoped lead CRUD,
// bulk import, and the creation orchestrator that seeds enrichment and
// call jobs through the outbox.
package leads

import (
	"salesorch_backend/internal/events"
	apphttp "salesorch_backend/internal/http"
	"salesorch_backend/internal/leads/handler"
	"salesorch_backend/internal/leads/repository"
	"salesorch_backend/internal/leads/service"
	"salesorch_backend/internal/outbox"
	"salesorch_backend/platform/logger"
	"salesorch_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Module struct {
	handler    *handler.Handler
	service    *service.Service
	repository *repository.Repository
}

func NewModule(
	pool *pgxpool.Pool,
	ob *outbox.Repository,
	bus events.Bus,
	archive service.Archiver,
	maxUploadSize int64,
	val *validator.Validator,
	log *logger.Logger,
) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, ob, bus, archive, log)
	h := handler.New(svc, val, maxUploadSize)

	return &Module{handler: h, service: svc, repository: repo}
}

func (m *Module) Name() string {
	return "leads"
}

func (m *Module) Repository() *repository.Repository {
	return m.repository
}

func (m *Module) Service() *service.Service {
	return m.service
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected)
}

var _ apphttp.Module = (*Module)(nil)
