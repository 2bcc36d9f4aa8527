package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not found")
var ErrDuplicateEmail = errors.New("email already registered")

type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Pool exposes the underlying pool for transaction control in the service.
func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}

type Organization struct {
	ID          uuid.UUID
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type User struct {
	ID           uuid.UUID
	OrgID        *uuid.UUID
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type OrgConfiguration struct {
	ID                  uuid.UUID
	OrgID               uuid.UUID
	CompanyName         string
	CompanyDetails      string
	ProductName         string
	ProductDescription  string
	AIModel             string
	AIModelAPIKey       string
	GoogleClientID      string
	GoogleClientSecret  string
	FirecrawlAPIKey     string
	SlackClientID       string
	SlackClientSecret   string
	HubSpotClientID     string
	HubSpotClientSecret string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (r *Repository) CreateOrganization(ctx context.Context, q DBTX, name, description string) (Organization, error) {
	var org Organization
	err := q.QueryRow(ctx, `
    INSERT INTO organizations (name, description)
    VALUES ($1, $2)
    RETURNING id, name, description, created_at, updated_at
  `, name, description).Scan(&org.ID, &org.Name, &org.Description, &org.CreatedAt, &org.UpdatedAt)
	return org, err
}

func (r *Repository) GetOrganization(ctx context.Context, orgID uuid.UUID) (Organization, error) {
	var org Organization
	err := r.pool.QueryRow(ctx, `
    SELECT id, name, description, created_at, updated_at
    FROM organizations
    WHERE id = $1
  `, orgID).Scan(&org.ID, &org.Name, &org.Description, &org.CreatedAt, &org.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Organization{}, ErrNotFound
	}
	return org, err
}

func (r *Repository) CreateUser(ctx context.Context, q DBTX, orgID uuid.UUID, email, passwordHash, role string) (User, error) {
	var user User
	err := q.QueryRow(ctx, `
    INSERT INTO users (org_id, email, password_hash, role)
    VALUES ($1, $2, $3, $4)
    RETURNING id, org_id, email, password_hash, role, created_at, updated_at
  `, orgID, email, passwordHash, role).Scan(
		&user.ID, &user.OrgID, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt, &user.UpdatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return User{}, ErrDuplicateEmail
	}
	return user, err
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var user User
	err := r.pool.QueryRow(ctx, `
    SELECT id, org_id, email, password_hash, role, created_at, updated_at
    FROM users
    WHERE lower(email) = lower($1)
  `, email).Scan(&user.ID, &user.OrgID, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return user, err
}

func (r *Repository) GetUser(ctx context.Context, userID uuid.UUID) (User, error) {
	var user User
	err := r.pool.QueryRow(ctx, `
    SELECT id, org_id, email, password_hash, role, created_at, updated_at
    FROM users
    WHERE id = $1
  `, userID).Scan(&user.ID, &user.OrgID, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return user, err
}

func (r *Repository) GetConfiguration(ctx context.Context, orgID uuid.UUID) (OrgConfiguration, error) {
	var cfg OrgConfiguration
	err := r.pool.QueryRow(ctx, `
    SELECT id, org_id,
           coalesce(company_name, ''), coalesce(company_details, ''),
           coalesce(product_name, ''), coalesce(product_description, ''),
           ai_model, coalesce(ai_model_api_key, ''),
           coalesce(google_client_id, ''), coalesce(google_client_secret, ''),
           coalesce(firecrawl_api_key, ''),
           coalesce(slack_client_id, ''), coalesce(slack_client_secret, ''),
           coalesce(hubspot_client_id, ''), coalesce(hubspot_client_secret, ''),
           created_at, updated_at
    FROM organization_configurations
    WHERE org_id = $1
  `, orgID).Scan(
		&cfg.ID, &cfg.OrgID,
		&cfg.CompanyName, &cfg.CompanyDetails,
		&cfg.ProductName, &cfg.ProductDescription,
		&cfg.AIModel, &cfg.AIModelAPIKey,
		&cfg.GoogleClientID, &cfg.GoogleClientSecret,
		&cfg.FirecrawlAPIKey,
		&cfg.SlackClientID, &cfg.SlackClientSecret,
		&cfg.HubSpotClientID, &cfg.HubSpotClientSecret,
		&cfg.CreatedAt, &cfg.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return OrgConfiguration{}, ErrNotFound
	}
	return cfg, err
}

func (r *Repository) UpsertConfiguration(ctx context.Context, cfg OrgConfiguration) (OrgConfiguration, error) {
	var out OrgConfiguration
	err := r.pool.QueryRow(ctx, `
    INSERT INTO organization_configurations (
      org_id, company_name, company_details, product_name, product_description,
      ai_model, ai_model_api_key, google_client_id, google_client_secret,
      firecrawl_api_key, slack_client_id, slack_client_secret,
      hubspot_client_id, hubspot_client_secret
    )
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
    ON CONFLICT (org_id) DO UPDATE SET
      company_name = EXCLUDED.company_name,
      company_details = EXCLUDED.company_details,
      product_name = EXCLUDED.product_name,
      product_description = EXCLUDED.product_description,
      ai_model = EXCLUDED.ai_model,
      ai_model_api_key = EXCLUDED.ai_model_api_key,
      google_client_id = EXCLUDED.google_client_id,
      google_client_secret = EXCLUDED.google_client_secret,
      firecrawl_api_key = EXCLUDED.firecrawl_api_key,
      slack_client_id = EXCLUDED.slack_client_id,
      slack_client_secret = EXCLUDED.slack_client_secret,
      hubspot_client_id = EXCLUDED.hubspot_client_id,
      hubspot_client_secret = EXCLUDED.hubspot_client_secret,
      updated_at = now()
    RETURNING id, org_id,
              coalesce(company_name, ''), coalesce(company_details, ''),
              coalesce(product_name, ''), coalesce(product_description, ''),
              ai_model, coalesce(ai_model_api_key, ''),
              coalesce(google_client_id, ''), coalesce(google_client_secret, ''),
              coalesce(firecrawl_api_key, ''),
              coalesce(slack_client_id, ''), coalesce(slack_client_secret, ''),
              coalesce(hubspot_client_id, ''), coalesce(hubspot_client_secret, ''),
              created_at, updated_at
  `,
		cfg.OrgID, cfg.CompanyName, cfg.CompanyDetails, cfg.ProductName, cfg.ProductDescription,
		cfg.AIModel, cfg.AIModelAPIKey, cfg.GoogleClientID, cfg.GoogleClientSecret,
		cfg.FirecrawlAPIKey, cfg.SlackClientID, cfg.SlackClientSecret,
		cfg.HubSpotClientID, cfg.HubSpotClientSecret,
	).Scan(
		&out.ID, &out.OrgID,
		&out.CompanyName, &out.CompanyDetails,
		&out.ProductName, &out.ProductDescription,
		&out.AIModel, &out.AIModelAPIKey,
		&out.GoogleClientID, &out.GoogleClientSecret,
		&out.FirecrawlAPIKey,
		&out.SlackClientID, &out.SlackClientSecret,
		&out.HubSpotClientID, &out.HubSpotClientSecret,
		&out.CreatedAt, &out.UpdatedAt,
	)
	return out, err
}
