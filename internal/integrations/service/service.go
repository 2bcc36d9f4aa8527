// Package service implements the OAuth connect flows and the
// provider-facing operations for connected integrations.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"salesorch_backend/internal/events"
	identityrepo "salesorch_backend/internal/identity/repository"
	"salesorch_backend/internal/integrations/gmail"
	"salesorch_backend/internal/integrations/hubspot"
	"salesorch_backend/internal/integrations/repository"
	"salesorch_backend/platform/apperr"
	"salesorch_backend/platform/config"
	"salesorch_backend/platform/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	googleAuthURL   = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL  = "https://oauth2.googleapis.com/token"
	hubspotAuthURL  = "https://app-na2.hubspot.com/oauth/authorize"
	hubspotTokenURL = "https://api.hubapi.com/oauth/v1/token"

	// stateTTL bounds how long a pending OAuth redirect stays valid.
	stateTTL = 10 * time.Minute

	statePurpose = "oauth_state"
)

var googleScopes = []string{
	"openid",
	"email",
	"profile",
	"https://www.googleapis.com/auth/gmail.readonly",
	"https://www.googleapis.com/auth/gmail.send",
	"https://www.googleapis.com/auth/gmail.modify",
}

var hubspotScopes = []string{
	"crm.objects.contacts.read",
	"crm.objects.contacts.write",
	"crm.schemas.contacts.read",
	"crm.schemas.contacts.write",
	"oauth",
}

type Service struct {
	repo       *repository.Repository
	users      *identityrepo.Repository
	creds      *CredentialResolver
	gmail      *gmail.Client
	hubspot    *hubspot.Client
	bus        events.Bus
	cfg        config.OAuthConfig
	httpClient *http.Client
	log        *logger.Logger

	googleTokenURL  string
	hubspotTokenURL string
}

func New(repo *repository.Repository, users *identityrepo.Repository, creds *CredentialResolver, gmailClient *gmail.Client, hubspotClient *hubspot.Client, bus events.Bus, cfg config.OAuthConfig, log *logger.Logger) *Service {
	return &Service{
		repo:            repo,
		users:           users,
		creds:           creds,
		gmail:           gmailClient,
		hubspot:         hubspotClient,
		bus:             bus,
		cfg:             cfg,
		httpClient:      &http.Client{Timeout: 15 * time.Second},
		log:             log,
		googleTokenURL:  googleTokenURL,
		hubspotTokenURL: hubspotTokenURL,
	}
}

// InitGoogleAuth builds the Google consent URL for the user's org.
// access_type=offline with prompt=consent forces a refresh token grant.
func (s *Service) InitGoogleAuth(ctx context.Context, userID, orgID uuid.UUID) (string, error) {
	clientID, _, err := s.creds.OAuthCredentials(ctx, orgID, repository.ProviderGmail)
	if err != nil {
		return "", err
	}
	state, err := s.signState(userID, repository.ProviderGmail)
	if err != nil {
		return "", err
	}

	params := url.Values{
		"client_id":     {clientID},
		"redirect_uri":  {s.cfg.GetGoogleRedirectURL()},
		"response_type": {"code"},
		"scope":         {strings.Join(googleScopes, " ")},
		"access_type":   {"offline"},
		"prompt":        {"consent"},
		"state":         {state},
	}
	return googleAuthURL + "?" + params.Encode(), nil
}

// InitHubSpotAuth builds the HubSpot consent URL for the user's org.
func (s *Service) InitHubSpotAuth(ctx context.Context, userID, orgID uuid.UUID) (string, error) {
	clientID, _, err := s.creds.OAuthCredentials(ctx, orgID, repository.ProviderHubSpot)
	if err != nil {
		return "", err
	}
	state, err := s.signState(userID, repository.ProviderHubSpot)
	if err != nil {
		return "", err
	}

	params := url.Values{
		"client_id":    {clientID},
		"redirect_uri": {s.cfg.GetHubSpotRedirectURL()},
		"scope":        {strings.Join(hubspotScopes, " ")},
		"state":        {state},
	}
	return hubspotAuthURL + "?" + params.Encode(), nil
}

// HandleGoogleCallback exchanges the authorization code and stores the
// Gmail integration for the state-encoded user's org.
func (s *Service) HandleGoogleCallback(ctx context.Context, code, state string) (repository.Integration, error) {
	return s.handleCallback(ctx, code, state, repository.ProviderGmail, s.googleTokenURL, s.cfg.GetGoogleRedirectURL())
}

// HandleHubSpotCallback exchanges the authorization code and stores the
// HubSpot integration for the state-encoded user's org.
func (s *Service) HandleHubSpotCallback(ctx context.Context, code, state string) (repository.Integration, error) {
	return s.handleCallback(ctx, code, state, repository.ProviderHubSpot, s.hubspotTokenURL, s.cfg.GetHubSpotRedirectURL())
}

func (s *Service) handleCallback(ctx context.Context, code, state string, provider repository.Provider, tokenURL, redirectURL string) (repository.Integration, error) {
	if code == "" {
		return repository.Integration{}, apperr.Validation("missing authorization code")
	}

	userID, err := s.parseState(state, provider)
	if err != nil {
		return repository.Integration{}, err
	}
	orgID, err := s.orgForUser(ctx, userID)
	if err != nil {
		return repository.Integration{}, err
	}

	clientID, clientSecret, err := s.creds.OAuthCredentials(ctx, orgID, provider)
	if err != nil {
		return repository.Integration{}, err
	}

	tokens, err := s.exchangeCode(ctx, tokenURL, clientID, clientSecret, redirectURL, code)
	if err != nil {
		return repository.Integration{}, err
	}

	var expiresAt *time.Time
	if tokens.ExpiresIn > 0 {
		t := time.Now().Add(time.Duration(tokens.ExpiresIn) * time.Second)
		expiresAt = &t
	}

	in, err := s.repo.Upsert(ctx, repository.Integration{
		OrgID:        orgID,
		Provider:     provider,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    expiresAt,
	})
	if err != nil {
		return repository.Integration{}, err
	}

	s.bus.Publish(ctx, events.IntegrationConnected{
		BaseEvent: events.NewBaseEvent(),
		OrgID:     orgID,
		Provider:  string(provider),
	})
	s.log.WithContext(ctx).Info("integration connected",
		slog.String("provider", string(provider)),
		slog.String("org_id", orgID.String()))
	return in, nil
}

// Status lists the org's connected providers.
func (s *Service) Status(ctx context.Context, orgID uuid.UUID) ([]repository.Integration, error) {
	return s.repo.ListByOrg(ctx, orgID)
}

// Disconnect removes the stored integration for a provider.
func (s *Service) Disconnect(ctx context.Context, orgID uuid.UUID, provider string) error {
	p := repository.Provider(provider)
	if !p.Valid() {
		return apperr.Validation(fmt.Sprintf("unknown provider %q", provider))
	}
	err := s.repo.Delete(ctx, orgID, p)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(fmt.Sprintf("%s is not connected", provider))
	}
	return err
}

// Messages fetches the org's Gmail inbox messages.
func (s *Service) Messages(ctx context.Context, orgID uuid.UUID, query string, maxResults int) ([]gmail.Message, error) {
	msgs, err := s.gmail.ListMessages(ctx, orgID, query, maxResults)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("gmail is not connected")
	}
	return msgs, err
}

// ThreadReplies fetches every message in a Gmail thread.
func (s *Service) ThreadReplies(ctx context.Context, orgID uuid.UUID, threadID string) ([]gmail.Message, error) {
	msgs, err := s.gmail.GetThreadReplies(ctx, orgID, threadID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("gmail is not connected")
	}
	return msgs, err
}

// SyncContacts pulls the org's HubSpot CRM contacts.
func (s *Service) SyncContacts(ctx context.Context, orgID uuid.UUID) ([]hubspot.Contact, error) {
	contacts, err := s.hubspot.SyncContacts(ctx, orgID, 100)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("hubspot is not connected")
	}
	return contacts, err
}

func (s *Service) orgForUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	user, err := s.users.GetUser(ctx, userID)
	if errors.Is(err, identityrepo.ErrNotFound) {
		return uuid.Nil, apperr.Unauthorized("unknown user in oauth state")
	}
	if err != nil {
		return uuid.Nil, err
	}
	if user.OrgID == nil {
		return uuid.Nil, apperr.Forbidden("user has no organization")
	}
	return *user.OrgID, nil
}

func (s *Service) signState(userID uuid.UUID, provider repository.Provider) (string, error) {
	claims := jwt.MapClaims{
		"sub":      userID.String(),
		"purpose":  statePurpose,
		"provider": string(provider),
		"exp":      time.Now().Add(stateTTL).Unix(),
		"iat":      time.Now().Unix(),
	}
	tokenObj := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tokenObj.SignedString([]byte(s.cfg.GetJWTAccessSecret()))
}

func (s *Service) parseState(state string, provider repository.Provider) (uuid.UUID, error) {
	if state == "" {
		return uuid.Nil, apperr.Unauthorized("missing oauth state")
	}

	parsed, err := jwt.Parse(state, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.GetJWTAccessSecret()), nil
	})
	if err != nil || !parsed.Valid {
		return uuid.Nil, apperr.Unauthorized("invalid oauth state")
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, apperr.Unauthorized("invalid oauth state")
	}
	if purpose, _ := claims["purpose"].(string); purpose != statePurpose {
		return uuid.Nil, apperr.Unauthorized("invalid oauth state")
	}
	if p, _ := claims["provider"].(string); p != string(provider) {
		return uuid.Nil, apperr.Unauthorized("oauth state provider mismatch")
	}

	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, apperr.Unauthorized("invalid oauth state")
	}
	return userID, nil
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

func (s *Service) exchangeCode(ctx context.Context, tokenURL, clientID, clientSecret, redirectURL, code string) (tokenResponse, error) {
	form := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"client_id":     {clientID},
		"client_secret": {clientSecret},
		"redirect_uri":  {redirectURL},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return tokenResponse{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return tokenResponse{}, apperr.Wrap(apperr.KindUpstream, "oauth code exchange failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return tokenResponse{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return tokenResponse{}, apperr.UpstreamAuth(fmt.Sprintf("oauth code exchange failed: status %d: %s", resp.StatusCode, truncate(string(body), 512)))
	}

	var tokens tokenResponse
	if err := json.Unmarshal(body, &tokens); err != nil {
		return tokenResponse{}, apperr.Wrap(apperr.KindUpstream, "oauth token response malformed", err)
	}
	if tokens.AccessToken == "" {
		return tokenResponse{}, apperr.UpstreamAuth("oauth token response contained no access token")
	}
	return tokens, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
