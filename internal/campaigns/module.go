// Package campaigns provides the campaigns bounded context: campaigns and
// the sequence steps that belong to them. Step execution is out of scope;
// steps are data the dashboard and future executors read.
package campaigns

import (
	"salesorch_backend/internal/campaigns/handler"
	"salesorch_backend/internal/campaigns/repository"
	"salesorch_backend/internal/campaigns/service"
	apphttp "salesorch_backend/internal/http"
	"salesorch_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Module struct {
	handler    *handler.Handler
	service    *service.Service
	repository *repository.Repository
}

func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc, repository: repo}
}

func (m *Module) Name() string {
	return "campaigns"
}

func (m *Module) Repository() *repository.Repository {
	return m.repository
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected)
}

var _ apphttp.Module = (*Module)(nil)
