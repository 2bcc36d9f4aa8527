package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"salesorch_backend/internal/outbox"
	"salesorch_backend/platform/config"
	"salesorch_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type taskEnqueuer interface {
	EnqueueEnrichLead(ctx context.Context, payload EnrichLeadPayload, runAt time.Time) error
	EnqueueInitiateCall(ctx context.Context, payload InitiateCallPayload, runAt time.Time) error
}

type outboxStore interface {
	ClaimPending(ctx context.Context, limit int) ([]outbox.Record, error)
	MarkPending(ctx context.Context, id uuid.UUID, lastError *string) error
	MarkFailed(ctx context.Context, id uuid.UUID, lastError string) error
}

// OutboxDispatcher polls the job outbox and converts due rows into
// asynq tasks. Rows that fail to enqueue fall back to pending so the
// next pass retries them.
type OutboxDispatcher struct {
	client taskEnqueuer
	repo   outboxStore
	log    *logger.Logger
	closer func() error
}

func NewOutboxDispatcher(cfg config.SchedulerConfig, pool *pgxpool.Pool, log *logger.Logger) (*OutboxDispatcher, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	return &OutboxDispatcher{
		client: client,
		repo:   outbox.New(pool),
		log:    log,
		closer: client.Close,
	}, nil
}

func (d *OutboxDispatcher) Close() error {
	if d == nil || d.closer == nil {
		return nil
	}
	return d.closer()
}

func (d *OutboxDispatcher) Run(ctx context.Context) {
	if d == nil || d.client == nil || d.repo == nil {
		return
	}

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		d.sweep(ctx)
	}
}

// sweep claims one batch of due rows and hands them to asynq. An
// enqueue failure returns the row to pending for the next pass.
func (d *OutboxDispatcher) sweep(ctx context.Context) {
	records, err := d.repo.ClaimPending(ctx, 50)
	if err != nil {
		d.log.Warn("outbox claim failed", "error", err)
		return
	}

	for _, rec := range records {
		if err := d.dispatch(ctx, rec); err != nil {
			msg := err.Error()
			_ = d.repo.MarkPending(ctx, rec.ID, &msg)
		}
	}
}

func (d *OutboxDispatcher) dispatch(ctx context.Context, rec outbox.Record) error {
	switch rec.Kind {
	case outbox.KindEnrichLead:
		var intent outbox.EnrichLeadIntent
		if err := json.Unmarshal(rec.Payload, &intent); err != nil {
			return d.drop(ctx, rec, fmt.Errorf("decode enrich intent: %w", err))
		}
		return d.client.EnqueueEnrichLead(ctx, EnrichLeadPayload{
			OutboxID: rec.ID.String(),
			OrgID:    rec.OrgID.String(),
			LeadID:   intent.LeadID.String(),
		}, rec.RunAt)
	case outbox.KindInitiateCall:
		var intent outbox.InitiateCallIntent
		if err := json.Unmarshal(rec.Payload, &intent); err != nil {
			return d.drop(ctx, rec, fmt.Errorf("decode call intent: %w", err))
		}
		return d.client.EnqueueInitiateCall(ctx, InitiateCallPayload{
			OutboxID:    rec.ID.String(),
			OrgID:       rec.OrgID.String(),
			LeadID:      intent.LeadID.String(),
			PhoneNumber: intent.PhoneNumber,
		}, rec.RunAt)
	default:
		return d.drop(ctx, rec, fmt.Errorf("unknown outbox kind %q", rec.Kind))
	}
}

// drop marks a row failed instead of retrying it. Undecodable rows
// would otherwise loop as pending forever.
func (d *OutboxDispatcher) drop(ctx context.Context, rec outbox.Record, cause error) error {
	_ = d.repo.MarkFailed(ctx, rec.ID, cause.Error())
	d.log.Warn("outbox row dropped", "outbox_id", rec.ID.String(), "kind", rec.Kind, "error", cause)
	return nil
}
