package hubspot

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"salesorch_backend/internal/integrations/repository"
	"salesorch_backend/platform/apperr"

	"github.com/google/uuid"
)

type fakeStore struct {
	integration repository.Integration
}

func (f *fakeStore) GetByProvider(_ context.Context, _ uuid.UUID, _ repository.Provider) (repository.Integration, error) {
	return f.integration, nil
}

type fakeTokens struct {
	validToken   string
	refreshToken string
	refreshCalls int
	refreshErr   error
}

func (f *fakeTokens) Valid(_ context.Context, _ repository.Integration) (string, error) {
	return f.validToken, nil
}

func (f *fakeTokens) ForceRefresh(_ context.Context, _ repository.Integration) (string, error) {
	f.refreshCalls++
	if f.refreshErr != nil {
		return "", f.refreshErr
	}
	return f.refreshToken, nil
}

func newTestClient(t *testing.T, handler http.Handler, tokens *fakeTokens) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &Client{
		repo: &fakeStore{integration: repository.Integration{
			ID:       uuid.New(),
			OrgID:    uuid.New(),
			Provider: repository.ProviderHubSpot,
		}},
		tokens:     tokens,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    srv.URL,
	}
}

func TestSyncContactsParsesResults(t *testing.T) {
	tokens := &fakeTokens{validToken: "access-1"}
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer access-1" {
			t.Errorf("Authorization = %q, want %q", got, "Bearer access-1")
		}
		if r.URL.Path != "/crm/v3/objects/contacts" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[{"id":"101","properties":{"email":"ada@example.com","firstname":"Ada"}}]}`))
	}), tokens)

	contacts, err := c.SyncContacts(context.Background(), uuid.New(), 10)
	if err != nil {
		t.Fatalf("SyncContacts: %v", err)
	}
	if len(contacts) != 1 {
		t.Fatalf("got %d contacts, want 1", len(contacts))
	}
	if contacts[0].ID != "101" || contacts[0].Properties["email"] != "ada@example.com" {
		t.Errorf("unexpected contact: %+v", contacts[0])
	}
	if tokens.refreshCalls != 0 {
		t.Errorf("refreshCalls = %d, want 0", tokens.refreshCalls)
	}
}

func TestRequestRetriesOnceAfterUnauthorized(t *testing.T) {
	tokens := &fakeTokens{validToken: "stale", refreshToken: "fresh"}

	var requests int
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.Header.Get("Authorization") == "Bearer stale" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"results":[]}`))
	}), tokens)

	_, err := c.Request(context.Background(), uuid.New(), http.MethodGet, "/crm/v3/objects/contacts", nil, nil)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if requests != 2 {
		t.Errorf("requests = %d, want 2", requests)
	}
	if tokens.refreshCalls != 1 {
		t.Errorf("refreshCalls = %d, want 1", tokens.refreshCalls)
	}
}

func TestRequestGivesUpWhenStillUnauthorized(t *testing.T) {
	tokens := &fakeTokens{validToken: "stale", refreshToken: "still-stale"}
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}), tokens)

	_, err := c.Request(context.Background(), uuid.New(), http.MethodGet, "/crm/v3/objects/contacts", nil, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindUpstreamAuth {
		t.Errorf("got %v, want upstream auth error", err)
	}
	if tokens.refreshCalls != 1 {
		t.Errorf("refreshCalls = %d, want 1", tokens.refreshCalls)
	}
}

func TestRequestSurfacesUpstreamFailure(t *testing.T) {
	tokens := &fakeTokens{validToken: "access-1"}
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	}), tokens)

	_, err := c.Request(context.Background(), uuid.New(), http.MethodGet, "/crm/v3/objects/contacts", nil, nil)
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindUpstream {
		t.Errorf("got %v, want upstream error", err)
	}
}
