package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"salesorch_backend/internal/activities"
	"salesorch_backend/internal/calls"
	"salesorch_backend/internal/campaigns"
	"salesorch_backend/internal/dashboard"
	"salesorch_backend/internal/events"
	apphttp "salesorch_backend/internal/http"
	"salesorch_backend/internal/http/router"
	"salesorch_backend/internal/identity"
	"salesorch_backend/internal/integrations"
	"salesorch_backend/internal/leads"
	leadsservice "salesorch_backend/internal/leads/service"
	"salesorch_backend/internal/outbox"
	"salesorch_backend/internal/outreach"
	"salesorch_backend/internal/storage"
	"salesorch_backend/platform/config"
	"salesorch_backend/platform/db"
	"salesorch_backend/platform/logger"
	"salesorch_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	outboxRepo := outbox.New(pool)

	// Import archive (MinIO). Optional: imports still work without it,
	// they just skip archiving the uploaded file.
	var archive leadsservice.Archiver
	if cfg.IsMinIOEnabled() {
		importArchive, err := storage.NewImportArchive(ctx, cfg)
		if err != nil {
			log.Error("failed to initialize import archive", "error", err)
			panic("failed to initialize import archive: " + err.Error())
		}
		archive = importArchive
		log.Info("import archive initialized", "bucket", cfg.GetMinioBucketLeadImports())
	} else {
		log.Warn("MINIO_ENDPOINT not configured; import archiving disabled")
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	identityModule := identity.NewModule(pool, cfg, val)
	campaignsModule := campaigns.NewModule(pool, val)
	leadsModule := leads.NewModule(pool, outboxRepo, eventBus, archive, cfg.GetMinIOMaxFileSize(), val, log)
	integrationsModule := integrations.NewModule(pool, identityModule.Repository(), eventBus, cfg, log)
	outreachModule := outreach.NewModule(pool, leadsModule.Repository(), identityModule.Repository(), integrationsModule.Mailer(), eventBus, val, log)
	callsModule := calls.NewModule(pool, leadsModule.Repository(), identityModule.Repository(), cfg, eventBus, val, log)
	activitiesModule := activities.NewModule(pool, eventBus, log)
	dashboardModule := dashboard.NewModule(leadsModule.Repository(), campaignsModule.Repository(), outreachModule.Repository(), integrationsModule.Repository(), log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			identityModule,
			campaignsModule,
			leadsModule,
			outreachModule,
			integrationsModule,
			callsModule,
			activitiesModule,
			dashboardModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		eventBus.Wait()
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
