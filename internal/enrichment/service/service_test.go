package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"salesorch_backend/internal/events"
	identityrepo "salesorch_backend/internal/identity/repository"
	leadsrepo "salesorch_backend/internal/leads/repository"
	"salesorch_backend/internal/outbox"
	"salesorch_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type fakeLeadStore struct {
	lead       leadsrepo.Lead
	leadErr    error
	sweepLeads []leadsrepo.Lead
	updates    []json.RawMessage
	updateErr  error
}

func (f *fakeLeadStore) GetByID(context.Context, uuid.UUID) (leadsrepo.Lead, error) {
	return f.lead, f.leadErr
}

func (f *fakeLeadStore) UpdateEnriched(_ context.Context, _ uuid.UUID, enriched json.RawMessage) error {
	f.updates = append(f.updates, enriched)
	return f.updateErr
}

func (f *fakeLeadStore) ListForEnrichmentSweep(context.Context, int) ([]leadsrepo.Lead, error) {
	return f.sweepLeads, nil
}

func (f *fakeLeadStore) Pool() *pgxpool.Pool { return nil }

type fakeConfigStore struct {
	cfg identityrepo.OrgConfiguration
	err error
}

func (f *fakeConfigStore) GetConfiguration(context.Context, uuid.UUID) (identityrepo.OrgConfiguration, error) {
	return f.cfg, f.err
}

type fakeExtractor struct {
	data json.RawMessage
	err  error
}

func (f *fakeExtractor) Extract(context.Context, string, string) (json.RawMessage, error) {
	return f.data, f.err
}

type fakeIntentWriter struct {
	inserted []outbox.InsertParams
	err      error
}

func (f *fakeIntentWriter) Insert(_ context.Context, _ outbox.DBTX, p outbox.InsertParams) (uuid.UUID, error) {
	if f.err != nil {
		return uuid.Nil, f.err
	}
	f.inserted = append(f.inserted, p)
	return uuid.New(), nil
}

type fakeBus struct {
	published []events.Event
}

func (f *fakeBus) Publish(_ context.Context, event events.Event) {
	f.published = append(f.published, event)
}

func (f *fakeBus) PublishSync(_ context.Context, event events.Event) error {
	f.published = append(f.published, event)
	return nil
}

func (f *fakeBus) Subscribe(string, events.Handler) {}

func testLead() leadsrepo.Lead {
	return leadsrepo.Lead{
		ID:      uuid.New(),
		OrgID:   uuid.New(),
		Email:   "jane@acme.io",
		Website: "acme.io",
	}
}

func TestEnrichLeadWithoutWebsiteLeavesEnrichedUntouched(t *testing.T) {
	lead := testLead()
	lead.Website = "   "
	store := &fakeLeadStore{lead: lead}
	bus := &fakeBus{}
	svc := New(store, &fakeConfigStore{}, &fakeIntentWriter{}, &fakeExtractor{}, bus, logger.New("test"))

	if err := svc.EnrichLead(context.Background(), lead.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.updates) != 0 {
		t.Errorf("enriched written %d times, want 0", len(store.updates))
	}
	if len(bus.published) != 0 {
		t.Errorf("published %d events, want 0", len(bus.published))
	}
}

func TestEnrichLeadExtractorFailureLeavesEnrichedUntouched(t *testing.T) {
	store := &fakeLeadStore{lead: testLead()}
	cfg := &fakeConfigStore{cfg: identityrepo.OrgConfiguration{FirecrawlAPIKey: "fc-key"}}
	extractor := &fakeExtractor{err: errors.New("upstream exploded")}
	svc := New(store, cfg, &fakeIntentWriter{}, extractor, &fakeBus{}, logger.New("test"))

	// nil keeps the task out of the asynq retry loop; the daily sweep
	// re-schedules the lead because enriched stayed empty.
	if err := svc.EnrichLead(context.Background(), store.lead.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.updates) != 0 {
		t.Errorf("enriched written %d times, want 0", len(store.updates))
	}
}

func TestEnrichLeadSuccessStoresResultAndPublishes(t *testing.T) {
	store := &fakeLeadStore{lead: testLead()}
	cfg := &fakeConfigStore{cfg: identityrepo.OrgConfiguration{FirecrawlAPIKey: "fc-key"}}
	extractor := &fakeExtractor{data: json.RawMessage(`{"description":"tooling company"}`)}
	bus := &fakeBus{}
	svc := New(store, cfg, &fakeIntentWriter{}, extractor, bus, logger.New("test"))

	if err := svc.EnrichLead(context.Background(), store.lead.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.updates) != 1 {
		t.Fatalf("enriched written %d times, want 1", len(store.updates))
	}

	var result map[string]any
	if err := json.Unmarshal(store.updates[0], &result); err != nil {
		t.Fatalf("stored payload is not valid json: %v", err)
	}
	if result["status"] != "ok" {
		t.Errorf("status = %v, want ok", result["status"])
	}
	if len(bus.published) != 1 {
		t.Fatalf("published %d events, want 1", len(bus.published))
	}
	if _, ok := bus.published[0].(events.LeadEnriched); !ok {
		t.Errorf("published %T, want events.LeadEnriched", bus.published[0])
	}
}

func TestEnrichLeadSkipsOrgWithoutEnrichmentKey(t *testing.T) {
	store := &fakeLeadStore{lead: testLead()}
	cfg := &fakeConfigStore{err: identityrepo.ErrNotFound}
	svc := New(store, cfg, &fakeIntentWriter{}, &fakeExtractor{}, &fakeBus{}, logger.New("test"))

	if err := svc.EnrichLead(context.Background(), store.lead.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.updates) != 0 {
		t.Errorf("enriched written %d times, want 0", len(store.updates))
	}
}

func TestSweepEnqueuesIntentPerLead(t *testing.T) {
	first, second := testLead(), testLead()
	store := &fakeLeadStore{sweepLeads: []leadsrepo.Lead{first, second}}
	writer := &fakeIntentWriter{}
	svc := New(store, &fakeConfigStore{}, writer, &fakeExtractor{}, &fakeBus{}, logger.New("test"))

	count, err := svc.Sweep(context.Background(), 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Errorf("enqueued = %d, want 2", count)
	}
	if len(writer.inserted) != 2 {
		t.Fatalf("outbox inserts = %d, want 2", len(writer.inserted))
	}
	for _, p := range writer.inserted {
		if p.Kind != outbox.KindEnrichLead {
			t.Errorf("kind = %q, want %q", p.Kind, outbox.KindEnrichLead)
		}
	}
}

func TestNormalizeWebsiteURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "bare hostname", in: "example.com", want: "https://example.com"},
		{name: "https kept", in: "https://example.com", want: "https://example.com"},
		{name: "http kept", in: "http://example.com/about", want: "http://example.com/about"},
		{name: "whitespace trimmed", in: "  acme.io  ", want: "https://acme.io"},
		{name: "empty", in: "", want: ""},
		{name: "whitespace only", in: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeWebsiteURL(tt.in); got != tt.want {
				t.Errorf("NormalizeWebsiteURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
