package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"salesorch_backend/internal/calls/provider"
	callsrepo "salesorch_backend/internal/calls/repository"
	callsservice "salesorch_backend/internal/calls/service"
	"salesorch_backend/internal/enrichment"
	"salesorch_backend/internal/events"
	identityrepo "salesorch_backend/internal/identity/repository"
	leadsrepo "salesorch_backend/internal/leads/repository"
	"salesorch_backend/internal/outbox"
	"salesorch_backend/internal/scheduler"
	"salesorch_backend/platform/config"
	"salesorch_backend/platform/db"
	"salesorch_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	eventBus := events.NewInMemoryBus(log)

	leadsRepo := leadsrepo.New(pool)
	orgConfigRepo := identityrepo.New(pool)
	outboxRepo := outbox.New(pool)

	enrichmentModule := enrichment.NewModule(leadsRepo, orgConfigRepo, outboxRepo, eventBus, log)
	callsService := callsservice.New(callsrepo.New(pool), leadsRepo, orgConfigRepo, provider.NewClient(cfg), eventBus, log)

	worker, err := scheduler.NewWorker(cfg, pool, enrichmentModule.Service(), callsService, log)
	if err != nil {
		log.Error("failed to initialize worker", "error", err)
		panic("failed to initialize worker: " + err.Error())
	}

	dispatcher, err := scheduler.NewOutboxDispatcher(cfg, pool, log)
	if err != nil {
		log.Error("failed to initialize outbox dispatcher", "error", err)
		panic("failed to initialize outbox dispatcher: " + err.Error())
	}
	defer dispatcher.Close()

	sweeper := scheduler.NewEnrichmentSweeper(cfg, enrichmentModule.Service(), log)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		dispatcher.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		sweeper.Run(ctx)
	}()

	<-ctx.Done()
	log.Info("shutdown signal received, stopping scheduler")
	wg.Wait()
	eventBus.Wait()
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
