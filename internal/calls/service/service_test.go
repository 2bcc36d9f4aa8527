package service

import (
	"context"
	"errors"
	"testing"

	"salesorch_backend/internal/calls/repository"
	"salesorch_backend/internal/events"
	leadsrepo "salesorch_backend/internal/leads/repository"
	"salesorch_backend/platform/apperr"
	"salesorch_backend/platform/logger"

	"github.com/google/uuid"
)

// fakeCallStore keys calls by sid the way the repository's upsert does.
type fakeCallStore struct {
	bySID map[string]repository.Call
}

func newFakeCallStore() *fakeCallStore {
	return &fakeCallStore{bySID: make(map[string]repository.Call)}
}

func (f *fakeCallStore) UpsertByCallSID(_ context.Context, call repository.Call) (repository.Call, error) {
	existing, ok := f.bySID[call.CallSID]
	if !ok {
		call.ID = uuid.New()
		f.bySID[call.CallSID] = call
		return call, nil
	}
	existing.RecordingURL = call.RecordingURL
	existing.Summary = call.Summary
	if call.OrgID != nil {
		existing.OrgID = call.OrgID
	}
	if call.LeadID != nil {
		existing.LeadID = call.LeadID
	}
	f.bySID[call.CallSID] = existing
	return existing, nil
}

func (f *fakeCallStore) ListByOrg(context.Context, uuid.UUID, int) ([]repository.Call, error) {
	return nil, nil
}

type fakeLeadReader struct {
	lead leadsrepo.Lead
	err  error
}

func (f *fakeLeadReader) GetByID(context.Context, uuid.UUID) (leadsrepo.Lead, error) {
	return f.lead, f.err
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

func TestRecordWebhookRejectsIncompletePayloads(t *testing.T) {
	svc := New(nil, nil, nil, nil, nil, logger.New("test"))

	tests := []struct {
		name   string
		params WebhookParams
	}{
		{
			name:   "all fields missing",
			params: WebhookParams{},
		},
		{
			name:   "missing call sid",
			params: WebhookParams{RecordingURL: "https://example.com/rec.mp3", Summary: "spoke to lead"},
		},
		{
			name:   "missing recording url",
			params: WebhookParams{CallSID: "CA123", Summary: "spoke to lead"},
		},
		{
			name:   "missing summary",
			params: WebhookParams{CallSID: "CA123", RecordingURL: "https://example.com/rec.mp3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordWebhook(context.Background(), tt.params)
			if err == nil {
				t.Fatal("expected error")
			}
			var appErr *apperr.Error
			if !errors.As(err, &appErr) || appErr.Kind != apperr.KindValidation {
				t.Errorf("got %v, want validation error", err)
			}
		})
	}
}

func TestRecordWebhookRepeatedCallSIDUpdatesOneRecord(t *testing.T) {
	store := newFakeCallStore()
	bus := &fakeBus{}
	svc := New(store, &fakeLeadReader{}, nil, nil, bus, logger.New("test"))

	first, err := svc.RecordWebhook(context.Background(), WebhookParams{
		CallSID:      "CA123",
		RecordingURL: "https://example.com/rec-1.mp3",
		Summary:      "left a voicemail",
	})
	if err != nil {
		t.Fatalf("first delivery: %v", err)
	}

	second, err := svc.RecordWebhook(context.Background(), WebhookParams{
		CallSID:      "CA123",
		RecordingURL: "https://example.com/rec-2.mp3",
		Summary:      "spoke to the lead",
	})
	if err != nil {
		t.Fatalf("second delivery: %v", err)
	}

	if len(store.bySID) != 1 {
		t.Fatalf("stored %d calls, want 1", len(store.bySID))
	}
	if second.ID != first.ID {
		t.Errorf("second delivery created a new record: %s != %s", second.ID, first.ID)
	}
	if got := store.bySID["CA123"].Summary; got != "spoke to the lead" {
		t.Errorf("summary = %q, want latest delivery", got)
	}
	if got := store.bySID["CA123"].RecordingURL; got != "https://example.com/rec-2.mp3" {
		t.Errorf("recording url = %q, want latest delivery", got)
	}
	if len(bus.published) != 2 {
		t.Errorf("published %d events, want 2", len(bus.published))
	}
}

func TestRecordWebhookUnknownLeadIsNotFound(t *testing.T) {
	store := newFakeCallStore()
	leads := &fakeLeadReader{err: leadsrepo.ErrNotFound}
	svc := New(store, leads, nil, nil, &fakeBus{}, logger.New("test"))

	leadID := uuid.New()
	_, err := svc.RecordWebhook(context.Background(), WebhookParams{
		CallSID:      "CA456",
		RecordingURL: "https://example.com/rec.mp3",
		Summary:      "spoke to lead",
		LeadID:       &leadID,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindNotFound {
		t.Errorf("got %v, want not found", err)
	}
	if len(store.bySID) != 0 {
		t.Errorf("stored %d calls, want 0", len(store.bySID))
	}
}
