// Package activities provides the activity feed bounded context. It
// records outreach touches from domain events and serves the feed the
// dashboard renders.
package activities

import (
	"salesorch_backend/internal/activities/handler"
	"salesorch_backend/internal/activities/repository"
	"salesorch_backend/internal/activities/service"
	"salesorch_backend/internal/events"
	apphttp "salesorch_backend/internal/http"
	"salesorch_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Module struct {
	handler    *handler.Handler
	service    *service.Service
	repository *repository.Repository
}

func NewModule(pool *pgxpool.Pool, bus events.Bus, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	h := handler.New(svc)

	bus.Subscribe(events.EmailSent{}.EventName(), events.HandlerFunc(svc.HandleEmailSent))
	bus.Subscribe(events.CallRecorded{}.EventName(), events.HandlerFunc(svc.HandleCallRecorded))

	return &Module{handler: h, service: svc, repository: repo}
}

func (m *Module) Name() string {
	return "activities"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected)
}

var _ apphttp.Module = (*Module)(nil)
