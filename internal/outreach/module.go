// Package outreach provides the outreach bounded context: lead emails,
// the template renderer, the AI drafter, and the best-effort Gmail send
// flow. It subscribes to lead creation for auto-drafting.
package outreach

import (
	"salesorch_backend/internal/events"
	apphttp "salesorch_backend/internal/http"
	identityrepo "salesorch_backend/internal/identity/repository"
	leadsrepo "salesorch_backend/internal/leads/repository"
	"salesorch_backend/internal/outreach/agent"
	"salesorch_backend/internal/outreach/handler"
	"salesorch_backend/internal/outreach/repository"
	"salesorch_backend/internal/outreach/service"
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
	leads *leadsrepo.Repository,
	orgConfig *identityrepo.Repository,
	sender service.MailSender,
	bus events.Bus,
	val *validator.Validator,
	log *logger.Logger,
) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, leads, orgConfig, sender, agent.NewDrafter(), bus, log)
	h := handler.New(svc, val)

	if bus != nil {
		bus.Subscribe(events.LeadCreated{}.EventName(), events.HandlerFunc(svc.HandleLeadCreated))
	}

	return &Module{handler: h, service: svc, repository: repo}
}

func (m *Module) Name() string {
	return "outreach"
}

func (m *Module) Repository() *repository.Repository {
	return m.repository
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected)
}

var _ apphttp.Module = (*Module)(nil)
