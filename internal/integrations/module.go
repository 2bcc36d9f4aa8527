// Package integrations provides the third-party connection bounded
// context: OAuth connect flows for Gmail and HubSpot, token refresh,
// mailbox reads, and CRM contact sync.
package integrations

import (
	apphttp "salesorch_backend/internal/http"
	identityrepo "salesorch_backend/internal/identity/repository"
	"salesorch_backend/internal/integrations/gmail"
	"salesorch_backend/internal/integrations/handler"
	"salesorch_backend/internal/integrations/hubspot"
	"salesorch_backend/internal/integrations/repository"
	"salesorch_backend/internal/integrations/service"
	"salesorch_backend/internal/integrations/token"
	"salesorch_backend/platform/config"
	"salesorch_backend/platform/events"
	"salesorch_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Module struct {
	handler    *handler.Handler
	service    *service.Service
	repository *repository.Repository
	mailer     *Mailer
	hubspot    *hubspot.Client
}

func NewModule(pool *pgxpool.Pool, users *identityrepo.Repository, bus events.Bus, cfg config.OAuthConfig, log *logger.Logger) *Module {
	repo := repository.New(pool)
	creds := service.NewCredentialResolver(users, cfg)
	tokens := token.NewSource(repo, creds)
	gmailClient := gmail.NewClient(repo, tokens)
	hubspotClient := hubspot.NewClient(repo, tokens)
	svc := service.New(repo, users, creds, gmailClient, hubspotClient, bus, cfg, log)
	h := handler.New(svc, cfg.GetFrontendBaseURL())

	return &Module{
		handler:    h,
		service:    svc,
		repository: repo,
		mailer:     NewMailer(gmailClient),
		hubspot:    hubspotClient,
	}
}

func (m *Module) Name() string {
	return "integrations"
}

func (m *Module) Repository() *repository.Repository {
	return m.repository
}

// Mailer is the Gmail send adapter the outreach module plugs in.
func (m *Module) Mailer() *Mailer {
	return m.mailer
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterProtectedRoutes(ctx.Protected)
	m.handler.RegisterPublicRoutes(ctx.V1)
}

var _ apphttp.Module = (*Module)(nil)
