package scheduler

import (
	"context"
	"fmt"
	"time"

	callservice "salesorch_backend/internal/calls/service"
	enrichservice "salesorch_backend/internal/enrichment/service"
	"salesorch_backend/internal/outbox"
	"salesorch_backend/platform/config"
	"salesorch_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// retryDelay is the fixed pause between delivery attempts of a task.
const retryDelay = 10 * time.Second

type Worker struct {
	server     *asynq.Server
	mux        *asynq.ServeMux
	outbox     *outbox.Repository
	enrichment *enrichservice.Service
	calls      *callservice.Service
	log        *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, pool *pgxpool.Pool, enrichment *enrichservice.Service, calls *callservice.Service, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: 10,
		Queues: map[string]int{
			queue: 1,
		},
		RetryDelayFunc: func(n int, err error, task *asynq.Task) time.Duration {
			return retryDelay
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:     server,
		mux:        mux,
		outbox:     outbox.New(pool),
		enrichment: enrichment,
		calls:      calls,
		log:        log,
	}

	mux.HandleFunc(TaskEnrichLead, w.handleEnrichLead)
	mux.HandleFunc(TaskInitiateCall, w.handleInitiateCall)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleEnrichLead(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseEnrichLeadPayload(task)
	if err != nil {
		return err
	}
	leadID, err := uuid.Parse(payload.LeadID)
	if err != nil {
		return err
	}

	return w.track(ctx, payload.OutboxID, TaskEnrichLead, func() error {
		return w.enrichment.EnrichLead(ctx, leadID)
	})
}

func (w *Worker) handleInitiateCall(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseInitiateCallPayload(task)
	if err != nil {
		return err
	}
	leadID, err := uuid.Parse(payload.LeadID)
	if err != nil {
		return err
	}

	return w.track(ctx, payload.OutboxID, TaskInitiateCall, func() error {
		return w.calls.InitiateCall(ctx, leadID, payload.PhoneNumber)
	})
}

// track mirrors the job outcome onto its outbox row.
func (w *Worker) track(ctx context.Context, outboxID, taskName string, run func() error) error {
	id, err := uuid.Parse(outboxID)
	if err != nil {
		return err
	}

	if err := w.outbox.MarkProcessing(ctx, id); err != nil {
		w.log.Warn("outbox mark processing failed", "outbox_id", outboxID, "error", err)
	}
	w.log.JobEvent(taskName, "started", "outbox_id", outboxID)

	if err := run(); err != nil {
		_ = w.outbox.MarkFailed(ctx, id, err.Error())
		w.log.JobEvent(taskName, "failed", "outbox_id", outboxID, "error", err.Error())
		return err
	}

	if err := w.outbox.MarkSucceeded(ctx, id); err != nil {
		w.log.Warn("outbox mark succeeded failed", "outbox_id", outboxID, "error", err)
	}
	w.log.JobEvent(taskName, "succeeded", "outbox_id", outboxID)
	return nil
}
