package token

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"salesorch_backend/internal/integrations/repository"
	"salesorch_backend/platform/apperr"

	"github.com/google/uuid"
)

type fakeStore struct {
	mu           sync.Mutex
	accessToken  string
	refreshToken string
	calls        int
}

func (f *fakeStore) UpdateTokens(_ context.Context, _ uuid.UUID, accessToken, refreshToken string, _ *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accessToken = accessToken
	f.refreshToken = refreshToken
	f.calls++
	return nil
}

type fakeCreds struct {
	err error
}

func (f *fakeCreds) OAuthCredentials(context.Context, uuid.UUID, repository.Provider) (string, string, error) {
	if f.err != nil {
		return "", "", f.err
	}
	return "client-id", "client-secret", nil
}

func newTestSource(t *testing.T, handler http.HandlerFunc, store *fakeStore, creds *fakeCreds) (*Source, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	src := NewSource(store, creds)
	src.googleTokenURL = srv.URL
	src.hubspotTokenURL = srv.URL
	return src, srv
}

func integrationExpiring(in time.Duration) repository.Integration {
	exp := time.Now().Add(in)
	return repository.Integration{
		ID:           uuid.New(),
		OrgID:        uuid.New(),
		Provider:     repository.ProviderGmail,
		AccessToken:  "stored-access",
		RefreshToken: "stored-refresh",
		ExpiresAt:    &exp,
	}
}

func TestValidSkipsRefreshWhenTokenFresh(t *testing.T) {
	store := &fakeStore{}
	src, _ := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("refresh endpoint should not be called")
	}, store, &fakeCreds{})

	got, err := src.Valid(context.Background(), integrationExpiring(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "stored-access" {
		t.Errorf("token = %q, want stored-access", got)
	}
	if store.calls != 0 {
		t.Errorf("store calls = %d, want 0", store.calls)
	}
}

func TestValidRefreshesInsideSkewWindow(t *testing.T) {
	store := &fakeStore{}
	var gotGrant string
	src, _ := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		gotGrant = r.PostForm.Get("grant_type")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"fresh-access","expires_in":3600}`))
	}, store, &fakeCreds{})

	got, err := src.Valid(context.Background(), integrationExpiring(2*time.Minute))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "fresh-access" {
		t.Errorf("token = %q, want fresh-access", got)
	}
	if gotGrant != "refresh_token" {
		t.Errorf("grant_type = %q", gotGrant)
	}
	if store.accessToken != "fresh-access" {
		t.Errorf("persisted access token = %q", store.accessToken)
	}
	// No rotation in the response keeps the stored refresh token.
	if store.refreshToken != "" {
		t.Errorf("persisted refresh token = %q, want empty passthrough", store.refreshToken)
	}
}

func TestValidServesCachedHubSpotTokenInsideSkewWindow(t *testing.T) {
	store := &fakeStore{}
	src, _ := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("refresh endpoint should not be called for a cached hubspot token")
	}, store, &fakeCreds{})

	in := integrationExpiring(2 * time.Minute)
	in.Provider = repository.ProviderHubSpot

	got, err := src.Valid(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "stored-access" {
		t.Errorf("token = %q, want stored-access", got)
	}
	if store.calls != 0 {
		t.Errorf("store calls = %d, want 0", store.calls)
	}
}

func TestValidRefreshesHubSpotWithoutAccessToken(t *testing.T) {
	store := &fakeStore{}
	src, _ := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"minted","expires_in":1800}`))
	}, store, &fakeCreds{})

	in := integrationExpiring(time.Hour)
	in.Provider = repository.ProviderHubSpot
	in.AccessToken = ""

	got, err := src.Valid(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "minted" {
		t.Errorf("token = %q, want minted", got)
	}
}

func TestForceRefreshRotatesRefreshToken(t *testing.T) {
	store := &fakeStore{}
	src, _ := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"a2","refresh_token":"r2","expires_in":21600}`))
	}, store, &fakeCreds{})

	in := integrationExpiring(time.Hour)
	in.Provider = repository.ProviderHubSpot

	got, err := src.ForceRefresh(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "a2" {
		t.Errorf("token = %q", got)
	}
	if store.refreshToken != "r2" {
		t.Errorf("rotated refresh token = %q, want r2", store.refreshToken)
	}
}

func TestForceRefreshProviderRejection(t *testing.T) {
	src, _ := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}, &fakeStore{}, &fakeCreds{})

	_, err := src.ForceRefresh(context.Background(), integrationExpiring(0))
	if err == nil {
		t.Fatal("expected error")
	}
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindUpstreamAuth {
		t.Fatalf("expected upstream auth error, got %v", err)
	}
}

func TestForceRefreshMissingCredentials(t *testing.T) {
	cfgErr := apperr.Configuration("oauth is not configured")
	src, _ := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("refresh endpoint should not be called")
	}, &fakeStore{}, &fakeCreds{err: cfgErr})

	_, err := src.ForceRefresh(context.Background(), integrationExpiring(0))
	if !errors.Is(err, cfgErr) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestForceRefreshSingleflight(t *testing.T) {
	store := &fakeStore{}
	var mu sync.Mutex
	requests := 0
	release := make(chan struct{})

	src, _ := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests++
		mu.Unlock()
		<-release
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"shared","expires_in":3600}`))
	}, store, &fakeCreds{})

	in := integrationExpiring(0)
	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tok, err := src.ForceRefresh(context.Background(), in)
			if err != nil {
				t.Errorf("refresh %d: %v", i, err)
				return
			}
			results[i] = tok
		}(i)
	}

	// Let the goroutines pile onto the in-flight refresh, then finish it.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i, tok := range results {
		if tok != "shared" {
			t.Errorf("result %d = %q, want shared", i, tok)
		}
	}
	mu.Lock()
	defer mu.Unlock()
	if requests != 1 {
		t.Errorf("provider requests = %d, want 1", requests)
	}
}
