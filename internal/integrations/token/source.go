// Package token keeps provider access tokens fresh. Refreshes are
// serialized per integration with singleflight so concurrent callers
// trigger at most one provider round-trip and share its result.
package token

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"salesorch_backend/internal/integrations/repository"
	"salesorch_backend/platform/apperr"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

const (
	googleTokenURL  = "https://oauth2.googleapis.com/token"
	hubspotTokenURL = "https://api.hubapi.com/oauth/v1/token"

	// refreshSkew refreshes proactively this long before expiry.
	refreshSkew = 5 * time.Minute
)

// Store persists refreshed tokens.
type Store interface {
	UpdateTokens(ctx context.Context, id uuid.UUID, accessToken, refreshToken string, expiresAt *time.Time) error
}

// CredentialSource resolves the OAuth client credentials for an org and
// provider.
type CredentialSource interface {
	OAuthCredentials(ctx context.Context, orgID uuid.UUID, provider repository.Provider) (clientID, clientSecret string, err error)
}

type Source struct {
	store      Store
	creds      CredentialSource
	httpClient *http.Client
	group      singleflight.Group
	now        func() time.Time

	googleTokenURL  string
	hubspotTokenURL string
}

func NewSource(store Store, creds CredentialSource) *Source {
	return &Source{
		store:           store,
		creds:           creds,
		httpClient:      &http.Client{Timeout: 15 * time.Second},
		now:             time.Now,
		googleTokenURL:  googleTokenURL,
		hubspotTokenURL: hubspotTokenURL,
	}
}

// Valid returns a usable access token. Gmail refreshes proactively when
// the stored token expires within the skew window. HubSpot is reactive:
// the cached token is served until the gateway observes a 401 and calls
// ForceRefresh itself.
func (s *Source) Valid(ctx context.Context, in repository.Integration) (string, error) {
	if in.Provider == repository.ProviderHubSpot {
		if in.AccessToken != "" {
			return in.AccessToken, nil
		}
		return s.ForceRefresh(ctx, in)
	}
	if in.ExpiresAt == nil || s.now().Before(in.ExpiresAt.Add(-refreshSkew)) {
		return in.AccessToken, nil
	}
	return s.ForceRefresh(ctx, in)
}

// ForceRefresh exchanges the refresh token for a new access token and
// persists it. Concurrent calls for the same integration share one
// refresh.
func (s *Source) ForceRefresh(ctx context.Context, in repository.Integration) (string, error) {
	access, err, _ := s.group.Do(in.ID.String(), func() (interface{}, error) {
		return s.refresh(ctx, in)
	})
	if err != nil {
		return "", err
	}
	return access.(string), nil
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

func (s *Source) refresh(ctx context.Context, in repository.Integration) (string, error) {
	if in.RefreshToken == "" {
		return "", apperr.UpstreamAuth("no refresh token stored for " + string(in.Provider))
	}

	clientID, clientSecret, err := s.creds.OAuthCredentials(ctx, in.OrgID, in.Provider)
	if err != nil {
		return "", err
	}

	endpoint := s.googleTokenURL
	if in.Provider == repository.ProviderHubSpot {
		endpoint = s.hubspotTokenURL
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {clientID},
		"client_secret": {clientSecret},
		"refresh_token": {in.RefreshToken},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", apperr.Wrap(apperr.KindUpstream, "token refresh request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", apperr.UpstreamAuth(fmt.Sprintf("%s rejected token refresh: status %d: %s", in.Provider, resp.StatusCode, truncate(string(body), 512)))
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return "", apperr.Wrap(apperr.KindUpstream, "token refresh response malformed", err)
	}
	if tok.AccessToken == "" {
		return "", apperr.UpstreamAuth(string(in.Provider) + " returned no access token")
	}

	var expiresAt *time.Time
	if tok.ExpiresIn > 0 {
		t := s.now().Add(time.Duration(tok.ExpiresIn) * time.Second)
		expiresAt = &t
	}

	// An empty refresh token keeps the stored one; providers rotate only
	// sometimes.
	if err := s.store.UpdateTokens(ctx, in.ID, tok.AccessToken, tok.RefreshToken, expiresAt); err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
