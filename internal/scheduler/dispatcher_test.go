package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"salesorch_backend/internal/outbox"
	"salesorch_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeEnqueuer struct {
	enrich []EnrichLeadPayload
	calls  []InitiateCallPayload
	runAts []time.Time
	err    error
}

func (f *fakeEnqueuer) EnqueueEnrichLead(_ context.Context, payload EnrichLeadPayload, runAt time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.enrich = append(f.enrich, payload)
	f.runAts = append(f.runAts, runAt)
	return nil
}

func (f *fakeEnqueuer) EnqueueInitiateCall(_ context.Context, payload InitiateCallPayload, runAt time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, payload)
	f.runAts = append(f.runAts, runAt)
	return nil
}

type fakeOutboxStore struct {
	records  []outbox.Record
	claimErr error
	pending  []uuid.UUID
	failed   map[uuid.UUID]string
}

func newFakeOutboxStore(records ...outbox.Record) *fakeOutboxStore {
	return &fakeOutboxStore{records: records, failed: make(map[uuid.UUID]string)}
}

func (f *fakeOutboxStore) ClaimPending(context.Context, int) ([]outbox.Record, error) {
	return f.records, f.claimErr
}

func (f *fakeOutboxStore) MarkPending(_ context.Context, id uuid.UUID, _ *string) error {
	f.pending = append(f.pending, id)
	return nil
}

func (f *fakeOutboxStore) MarkFailed(_ context.Context, id uuid.UUID, lastError string) error {
	f.failed[id] = lastError
	return nil
}

func outboxRecord(t *testing.T, kind string, payload any) outbox.Record {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return outbox.Record{
		ID:      uuid.New(),
		OrgID:   uuid.New(),
		Kind:    kind,
		Payload: raw,
		RunAt:   time.Now().Add(time.Minute).Truncate(time.Second),
	}
}

func newTestDispatcher(client taskEnqueuer, store outboxStore) *OutboxDispatcher {
	return &OutboxDispatcher{client: client, repo: store, log: logger.New("test")}
}

func TestSweepRoutesRowsToTasks(t *testing.T) {
	leadID := uuid.New()
	enrichRec := outboxRecord(t, outbox.KindEnrichLead, outbox.EnrichLeadIntent{LeadID: leadID})
	callRec := outboxRecord(t, outbox.KindInitiateCall, outbox.InitiateCallIntent{
		LeadID:      leadID,
		PhoneNumber: "+15551234567",
	})

	enq := &fakeEnqueuer{}
	store := newFakeOutboxStore(enrichRec, callRec)
	newTestDispatcher(enq, store).sweep(context.Background())

	if len(enq.enrich) != 1 || len(enq.calls) != 1 {
		t.Fatalf("enqueued %d enrich and %d call tasks, want 1 each", len(enq.enrich), len(enq.calls))
	}
	if got := enq.enrich[0]; got.OutboxID != enrichRec.ID.String() || got.LeadID != leadID.String() {
		t.Errorf("enrich payload = %+v", got)
	}
	if got := enq.calls[0]; got.PhoneNumber != "+15551234567" || got.OrgID != callRec.OrgID.String() {
		t.Errorf("call payload = %+v", got)
	}
	if !enq.runAts[0].Equal(enrichRec.RunAt) {
		t.Errorf("runAt = %v, want %v", enq.runAts[0], enrichRec.RunAt)
	}
	if len(store.pending) != 0 || len(store.failed) != 0 {
		t.Errorf("pending = %v, failed = %v, want none", store.pending, store.failed)
	}
}

func TestSweepReturnsRowToPendingOnEnqueueError(t *testing.T) {
	rec := outboxRecord(t, outbox.KindEnrichLead, outbox.EnrichLeadIntent{LeadID: uuid.New()})
	enq := &fakeEnqueuer{err: errors.New("redis unavailable")}
	store := newFakeOutboxStore(rec)

	newTestDispatcher(enq, store).sweep(context.Background())

	if len(store.pending) != 1 || store.pending[0] != rec.ID {
		t.Fatalf("pending = %v, want [%s]", store.pending, rec.ID)
	}
	if len(store.failed) != 0 {
		t.Errorf("failed = %v, want none", store.failed)
	}
}

func TestSweepDropsUndecodableAndUnknownRows(t *testing.T) {
	garbage := outbox.Record{
		ID:      uuid.New(),
		OrgID:   uuid.New(),
		Kind:    outbox.KindEnrichLead,
		Payload: json.RawMessage(`not json`),
		RunAt:   time.Now(),
	}
	unknown := outboxRecord(t, "reports.generate", outbox.EnrichLeadIntent{LeadID: uuid.New()})

	enq := &fakeEnqueuer{}
	store := newFakeOutboxStore(garbage, unknown)
	newTestDispatcher(enq, store).sweep(context.Background())

	if len(enq.enrich) != 0 || len(enq.calls) != 0 {
		t.Fatalf("enqueued tasks for dropped rows: %+v %+v", enq.enrich, enq.calls)
	}
	if len(store.failed) != 2 {
		t.Fatalf("failed %d rows, want 2", len(store.failed))
	}
	if len(store.pending) != 0 {
		t.Errorf("pending = %v, want none; dropped rows must not retry", store.pending)
	}
}
