package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not found")

// Provider identifies a supported third-party connection.
type Provider string

const (
	ProviderGmail   Provider = "gmail"
	ProviderHubSpot Provider = "hubspot"
)

func (p Provider) Valid() bool {
	return p == ProviderGmail || p == ProviderHubSpot
}

// Integration stores one org's OAuth tokens for a provider. One row per
// (org, provider).
type Integration struct {
	ID           uuid.UUID
	OrgID        uuid.UUID
	Provider     Provider
	AccessToken  string
	RefreshToken string
	ExpiresAt    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanIntegration(row pgx.Row) (Integration, error) {
	var in Integration
	var provider string
	err := row.Scan(
		&in.ID, &in.OrgID, &provider, &in.AccessToken, &in.RefreshToken,
		&in.ExpiresAt, &in.CreatedAt, &in.UpdatedAt,
	)
	if err != nil {
		return Integration{}, err
	}
	in.Provider = Provider(provider)
	return in, nil
}

func (r *Repository) GetByProvider(ctx context.Context, orgID uuid.UUID, provider Provider) (Integration, error) {
	in, err := scanIntegration(r.pool.QueryRow(ctx, `
    SELECT id, org_id, provider, access_token, refresh_token, expires_at, created_at, updated_at
    FROM integrations
    WHERE org_id = $1 AND provider = $2
  `, orgID, provider))
	if errors.Is(err, pgx.ErrNoRows) {
		return Integration{}, ErrNotFound
	}
	return in, err
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Integration, error) {
	in, err := scanIntegration(r.pool.QueryRow(ctx, `
    SELECT id, org_id, provider, access_token, refresh_token, expires_at, created_at, updated_at
    FROM integrations
    WHERE id = $1
  `, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Integration{}, ErrNotFound
	}
	return in, err
}

func (r *Repository) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]Integration, error) {
	rows, err := r.pool.Query(ctx, `
    SELECT id, org_id, provider, access_token, refresh_token, expires_at, created_at, updated_at
    FROM integrations
    WHERE org_id = $1
    ORDER BY provider
  `, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	integrations := make([]Integration, 0)
	for rows.Next() {
		in, err := scanIntegration(rows)
		if err != nil {
			return nil, err
		}
		integrations = append(integrations, in)
	}
	return integrations, rows.Err()
}

// Upsert stores fresh tokens for (org, provider), replacing any previous
// connection.
func (r *Repository) Upsert(ctx context.Context, in Integration) (Integration, error) {
	out, err := scanIntegration(r.pool.QueryRow(ctx, `
    INSERT INTO integrations (org_id, provider, access_token, refresh_token, expires_at)
    VALUES ($1, $2, $3, $4, $5)
    ON CONFLICT (org_id, provider) DO UPDATE SET
      access_token = EXCLUDED.access_token,
      refresh_token = EXCLUDED.refresh_token,
      expires_at = EXCLUDED.expires_at,
      updated_at = now()
    RETURNING id, org_id, provider, access_token, refresh_token, expires_at, created_at, updated_at
  `, in.OrgID, in.Provider, in.AccessToken, in.RefreshToken, in.ExpiresAt))
	return out, err
}

// UpdateTokens persists a refresh result. An empty refreshToken keeps
// the stored one; providers only rotate it sometimes.
func (r *Repository) UpdateTokens(ctx context.Context, id uuid.UUID, accessToken, refreshToken string, expiresAt *time.Time) error {
	_, err := r.pool.Exec(ctx, `
    UPDATE integrations
    SET access_token = $2,
        refresh_token = CASE WHEN $3 = '' THEN refresh_token ELSE $3 END,
        expires_at = $4,
        updated_at = now()
    WHERE id = $1
  `, id, accessToken, refreshToken, expiresAt)
	return err
}

func (r *Repository) Delete(ctx context.Context, orgID uuid.UUID, provider Provider) error {
	tag, err := r.pool.Exec(ctx, `
    DELETE FROM integrations
    WHERE org_id = $1 AND provider = $2
  `, orgID, provider)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
