package service

import (
	"context"
	"errors"
	"fmt"

	identityrepo "salesorch_backend/internal/identity/repository"
	"salesorch_backend/internal/integrations/repository"
	"salesorch_backend/platform/apperr"
	"salesorch_backend/platform/config"

	"github.com/google/uuid"
)

// CredentialResolver resolves OAuth client credentials per org. Org
// configuration wins, environment settings are the fallback for orgs
// that have not brought their own app.
type CredentialResolver struct {
	orgConfig *identityrepo.Repository
	cfg       config.OAuthConfig
}

func NewCredentialResolver(orgConfig *identityrepo.Repository, cfg config.OAuthConfig) *CredentialResolver {
	return &CredentialResolver{orgConfig: orgConfig, cfg: cfg}
}

func (r *CredentialResolver) OAuthCredentials(ctx context.Context, orgID uuid.UUID, provider repository.Provider) (string, string, error) {
	cfg, err := r.orgConfig.GetConfiguration(ctx, orgID)
	if err != nil && !errors.Is(err, identityrepo.ErrNotFound) {
		return "", "", err
	}

	var clientID, clientSecret string
	switch provider {
	case repository.ProviderGmail:
		clientID, clientSecret = cfg.GoogleClientID, cfg.GoogleClientSecret
		if clientID == "" || clientSecret == "" {
			clientID, clientSecret = r.cfg.GetGoogleClientID(), r.cfg.GetGoogleClientSecret()
		}
	case repository.ProviderHubSpot:
		clientID, clientSecret = cfg.HubSpotClientID, cfg.HubSpotClientSecret
		if clientID == "" || clientSecret == "" {
			clientID, clientSecret = r.cfg.GetHubSpotClientID(), r.cfg.GetHubSpotClientSecret()
		}
	default:
		return "", "", apperr.Validation(fmt.Sprintf("unknown provider %q", provider))
	}

	if clientID == "" || clientSecret == "" {
		return "", "", apperr.Configuration(fmt.Sprintf("%s OAuth is not configured for this organization", provider))
	}
	return clientID, clientSecret, nil
}
