package service

import (
	"context"
	"errors"
	"testing"

	"salesorch_backend/internal/events"
	identityrepo "salesorch_backend/internal/identity/repository"
	leadsrepo "salesorch_backend/internal/leads/repository"
	"salesorch_backend/internal/outreach/repository"
	"salesorch_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeEmailStore struct {
	emails   map[uuid.UUID]repository.LeadEmail
	draft    *repository.LeadEmail
	created  []repository.LeadEmail
	sentMeta map[uuid.UUID]map[string]any
}

func newFakeEmailStore() *fakeEmailStore {
	return &fakeEmailStore{
		emails:   make(map[uuid.UUID]repository.LeadEmail),
		sentMeta: make(map[uuid.UUID]map[string]any),
	}
}

func (f *fakeEmailStore) GetForOrg(_ context.Context, _ uuid.UUID, emailID uuid.UUID) (repository.LeadEmail, error) {
	email, ok := f.emails[emailID]
	if !ok {
		return repository.LeadEmail{}, repository.ErrNotFound
	}
	return email, nil
}

func (f *fakeEmailStore) FindDraftByLead(context.Context, uuid.UUID) (repository.LeadEmail, error) {
	if f.draft != nil {
		return *f.draft, nil
	}
	return repository.LeadEmail{}, repository.ErrNotFound
}

func (f *fakeEmailStore) Create(_ context.Context, email repository.LeadEmail) (repository.LeadEmail, error) {
	email.ID = uuid.New()
	f.emails[email.ID] = email
	f.created = append(f.created, email)
	return email, nil
}

func (f *fakeEmailStore) UpdateDraftCopy(_ context.Context, emailID uuid.UUID, subject, body, preview string) error {
	email := f.emails[emailID]
	email.Subject, email.Body, email.Preview = subject, body, preview
	f.emails[emailID] = email
	return nil
}

func (f *fakeEmailStore) MarkSent(_ context.Context, emailID uuid.UUID, meta map[string]any) error {
	email := f.emails[emailID]
	email.Status = repository.StatusSent
	email.Meta = meta
	f.emails[emailID] = email
	f.sentMeta[emailID] = meta
	return nil
}

func (f *fakeEmailStore) List(context.Context, uuid.UUID) ([]repository.LeadEmail, error) {
	return nil, nil
}

func (f *fakeEmailStore) SentTimeline(context.Context, uuid.UUID, int) ([]repository.LeadEmail, error) {
	return nil, nil
}

func (f *fakeEmailStore) Stats(context.Context, uuid.UUID) (repository.Stats, error) {
	return repository.Stats{}, nil
}

type fakeLeadStore struct {
	lead      leadsrepo.Lead
	err       error
	contacted []uuid.UUID
}

func (f *fakeLeadStore) Get(context.Context, uuid.UUID, uuid.UUID) (leadsrepo.Lead, error) {
	return f.lead, f.err
}

func (f *fakeLeadStore) MarkContacted(_ context.Context, leadID uuid.UUID) error {
	f.contacted = append(f.contacted, leadID)
	return nil
}

type fakeConfigStore struct {
	cfg identityrepo.OrgConfiguration
	err error
}

func (f *fakeConfigStore) GetConfiguration(context.Context, uuid.UUID) (identityrepo.OrgConfiguration, error) {
	return f.cfg, f.err
}

type fakeSender struct {
	messageID string
	err       error
	calls     int
}

func (f *fakeSender) SendLeadEmail(context.Context, uuid.UUID, string, string, string) (string, error) {
	f.calls++
	return f.messageID, f.err
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
		Company: "Acme",
	}
}

func TestSendMarksSentWhenGmailFails(t *testing.T) {
	store := newFakeEmailStore()
	lead := testLead()
	leads := &fakeLeadStore{lead: lead}
	sender := &fakeSender{err: errors.New("gmail exploded")}
	bus := &fakeBus{}
	svc := New(store, leads, &fakeConfigStore{}, sender, nil, bus, logger.New("test"))

	email, err := svc.Send(context.Background(), lead.OrgID, SendParams{
		LeadID:  &lead.ID,
		Subject: "Hello {{first_name}}",
		Body:    "Quick question",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if email.Status != repository.StatusSent {
		t.Errorf("status = %v, want sent", email.Status)
	}
	meta := store.sentMeta[email.ID]
	if meta == nil {
		t.Fatal("MarkSent was not called")
	}
	if meta["disposition"] != "gmail_send_failed" {
		t.Errorf("disposition = %v, want gmail_send_failed", meta["disposition"])
	}
	if len(leads.contacted) != 1 || leads.contacted[0] != lead.ID {
		t.Errorf("contacted = %v, want [%s]", leads.contacted, lead.ID)
	}
	if len(bus.published) != 1 {
		t.Fatalf("published %d events, want 1", len(bus.published))
	}
	sent, ok := bus.published[0].(events.EmailSent)
	if !ok {
		t.Fatalf("published %T, want events.EmailSent", bus.published[0])
	}
	if sent.Disposition != "gmail_send_failed" {
		t.Errorf("event disposition = %q, want gmail_send_failed", sent.Disposition)
	}
}

func TestSendWithoutIntegrationUsesDashboardDisposition(t *testing.T) {
	store := newFakeEmailStore()
	lead := testLead()
	leads := &fakeLeadStore{lead: lead}
	sender := &fakeSender{err: ErrNoMailIntegration}
	svc := New(store, leads, &fakeConfigStore{}, sender, nil, &fakeBus{}, logger.New("test"))

	email, err := svc.Send(context.Background(), lead.OrgID, SendParams{
		LeadID:  &lead.ID,
		Subject: "Hello",
		Body:    "Quick question",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if email.Status != repository.StatusSent {
		t.Errorf("status = %v, want sent", email.Status)
	}
	if got := store.sentMeta[email.ID]["disposition"]; got != "sent_via_dashboard" {
		t.Errorf("disposition = %v, want sent_via_dashboard", got)
	}
}

func leadCreatedEvent(lead leadsrepo.Lead) events.LeadCreated {
	return events.LeadCreated{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		OrgID:     lead.OrgID,
		Email:     lead.Email,
		Phone:     lead.Phone,
	}
}

func TestHandleLeadCreatedSkips(t *testing.T) {
	existingDraft := repository.LeadEmail{ID: uuid.New(), Status: repository.StatusDraft}

	tests := []struct {
		name   string
		mutate func(lead *leadsrepo.Lead, store *fakeEmailStore, cfg *fakeConfigStore)
	}{
		{
			name: "no organization configuration",
			mutate: func(_ *leadsrepo.Lead, _ *fakeEmailStore, cfg *fakeConfigStore) {
				cfg.err = identityrepo.ErrNotFound
			},
		},
		{
			name: "no product configured",
			mutate: func(_ *leadsrepo.Lead, _ *fakeEmailStore, cfg *fakeConfigStore) {
				cfg.cfg.ProductName = ""
			},
		},
		{
			name: "lead has no email",
			mutate: func(lead *leadsrepo.Lead, _ *fakeEmailStore, _ *fakeConfigStore) {
				lead.Email = ""
			},
		},
		{
			name: "draft already exists",
			mutate: func(_ *leadsrepo.Lead, store *fakeEmailStore, _ *fakeConfigStore) {
				store.draft = &existingDraft
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeEmailStore()
			lead := testLead()
			cfg := &fakeConfigStore{cfg: identityrepo.OrgConfiguration{ProductName: "Widget"}}
			tt.mutate(&lead, store, cfg)

			svc := New(store, &fakeLeadStore{lead: lead}, cfg, nil, nil, &fakeBus{}, logger.New("test"))
			if err := svc.HandleLeadCreated(context.Background(), leadCreatedEvent(lead)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(store.created) != 0 {
				t.Errorf("created %d drafts, want 0", len(store.created))
			}
		})
	}
}

func TestHandleLeadCreatedDraftsIntroEmail(t *testing.T) {
	store := newFakeEmailStore()
	lead := testLead()
	lead.FirstName = "Jane"
	cfg := &fakeConfigStore{cfg: identityrepo.OrgConfiguration{
		CompanyName: "Initech",
		ProductName: "Widget",
	}}

	svc := New(store, &fakeLeadStore{lead: lead}, cfg, nil, nil, &fakeBus{}, logger.New("test"))
	if err := svc.HandleLeadCreated(context.Background(), leadCreatedEvent(lead)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.created) != 1 {
		t.Fatalf("created %d drafts, want 1", len(store.created))
	}
	draft := store.created[0]
	if draft.Status != repository.StatusDraft {
		t.Errorf("status = %v, want draft", draft.Status)
	}
	if draft.Subject != "Quick intro from Initech" {
		t.Errorf("subject = %q", draft.Subject)
	}
	if draft.LeadID != lead.ID {
		t.Errorf("lead id = %s, want %s", draft.LeadID, lead.ID)
	}
}
