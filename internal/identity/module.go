package identity

import (
	apphttp "salesorch_backend/internal/http"
	"salesorch_backend/internal/identity/handler"
	"salesorch_backend/internal/identity/repository"
	"salesorch_backend/internal/identity/service"
	"salesorch_backend/platform/config"
	"salesorch_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Module struct {
	handler    *handler.Handler
	service    *service.Service
	repository *repository.Repository
}

func NewModule(pool *pgxpool.Pool, cfg config.AuthServiceConfig, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cfg)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc, repository: repo}
}

func (m *Module) Repository() *repository.Repository {
	return m.repository
}

func (m *Module) Name() string {
	return "identity"
}

func (m *Module) Service() *service.Service {
	return m.service
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	public := ctx.V1.Group("")
	public.Use(ctx.AuthRateLimiter.RateLimit())
	m.handler.RegisterPublicRoutes(public)
	m.handler.RegisterProtectedRoutes(ctx.Protected)
}

var _ apphttp.Module = (*Module)(nil)
