package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("duplicate email")
)

// DBTX lets writes compose with the caller's transaction, so a lead row
// and its outbox intents commit together.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Status is the lead lifecycle state. Transitions move forward in
// practice (new -> contacted -> replied) but are not enforced.
type Status string

const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusReplied   Status = "replied"
)

func (s Status) Valid() bool {
	return s == StatusNew || s == StatusContacted || s == StatusReplied
}

type Lead struct {
	ID              uuid.UUID
	OrgID           uuid.UUID
	CampaignID      *uuid.UUID
	CampaignName    string
	FirstName       string
	LastName        string
	Email           string
	Company         string
	LinkedinURL     string
	Website         string
	Phone           string
	Enriched        json.RawMessage
	Status          Status
	LastContactedAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// FullName is first+last, falling back to the email address.
func (l Lead) FullName() string {
	name := l.FirstName
	if l.LastName != "" {
		if name != "" {
			name += " "
		}
		name += l.LastName
	}
	if name == "" {
		return l.Email
	}
	return name
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}

const leadColumns = `
  l.id, l.org_id, l.campaign_id, coalesce(c.name, ''),
  l.first_name, l.last_name, l.email, l.company, l.linkedin_url,
  l.website, l.phone, l.enriched, l.status, l.last_contacted_at,
  l.created_at, l.updated_at`

const leadJoin = `
  FROM leads l
  LEFT JOIN campaigns c ON c.id = l.campaign_id`

func scanLead(row pgx.Row) (Lead, error) {
	var l Lead
	var status string
	err := row.Scan(
		&l.ID, &l.OrgID, &l.CampaignID, &l.CampaignName,
		&l.FirstName, &l.LastName, &l.Email, &l.Company, &l.LinkedinURL,
		&l.Website, &l.Phone, &l.Enriched, &status, &l.LastContactedAt,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return Lead{}, err
	}
	l.Status = Status(status)
	return l, nil
}

func (r *Repository) List(ctx context.Context, orgID uuid.UUID) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, `
    SELECT `+leadColumns+leadJoin+`
    WHERE l.org_id = $1
    ORDER BY l.created_at DESC
  `, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLeads(rows)
}

func (r *Repository) ListRecent(ctx context.Context, orgID uuid.UUID, limit int) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, `
    SELECT `+leadColumns+leadJoin+`
    WHERE l.org_id = $1
    ORDER BY l.created_at DESC
    LIMIT $2
  `, orgID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLeads(rows)
}

func (r *Repository) Get(ctx context.Context, orgID, leadID uuid.UUID) (Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `
    SELECT `+leadColumns+leadJoin+`
    WHERE l.id = $1 AND l.org_id = $2
  `, leadID, orgID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

// GetByID loads a lead without an org filter. Background jobs carry the
// org in their payload and look leads up by id alone.
func (r *Repository) GetByID(ctx context.Context, leadID uuid.UUID) (Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `
    SELECT `+leadColumns+leadJoin+`
    WHERE l.id = $1
  `, leadID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

// Create inserts a new lead. Pass the enclosing transaction as q when the
// insert must commit together with outbox intents.
func (r *Repository) Create(ctx context.Context, q DBTX, lead Lead) (Lead, error) {
	if q == nil {
		q = r.pool
	}
	if lead.Status == "" {
		lead.Status = StatusNew
	}
	if len(lead.Enriched) == 0 {
		lead.Enriched = json.RawMessage(`{}`)
	}

	var id uuid.UUID
	err := q.QueryRow(ctx, `
    INSERT INTO leads (org_id, campaign_id, first_name, last_name, email, company, linkedin_url, website, phone, enriched, status)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    RETURNING id
  `, lead.OrgID, lead.CampaignID, lead.FirstName, lead.LastName, lead.Email,
		lead.Company, lead.LinkedinURL, lead.Website, lead.Phone, lead.Enriched, lead.Status,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Lead{}, ErrDuplicateEmail
		}
		return Lead{}, err
	}
	lead.ID = id
	return lead, nil
}

// UpsertByEmail inserts or updates a lead keyed by (org_id, email).
// The created flag distinguishes fresh rows from refreshed ones so bulk
// import can report {created, updated} and only orchestrate new leads.
func (r *Repository) UpsertByEmail(ctx context.Context, q DBTX, lead Lead) (Lead, bool, error) {
	if q == nil {
		q = r.pool
	}
	if lead.Status == "" {
		lead.Status = StatusNew
	}
	if len(lead.Enriched) == 0 {
		lead.Enriched = json.RawMessage(`{}`)
	}

	var id uuid.UUID
	var created bool
	err := q.QueryRow(ctx, `
    INSERT INTO leads (org_id, campaign_id, first_name, last_name, email, company, linkedin_url, website, phone, enriched, status)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    ON CONFLICT (org_id, email) DO UPDATE SET
      campaign_id = COALESCE(EXCLUDED.campaign_id, leads.campaign_id),
      first_name = EXCLUDED.first_name,
      last_name = EXCLUDED.last_name,
      company = EXCLUDED.company,
      linkedin_url = EXCLUDED.linkedin_url,
      website = EXCLUDED.website,
      phone = EXCLUDED.phone,
      updated_at = now()
    RETURNING id, (xmax = 0)
  `, lead.OrgID, lead.CampaignID, lead.FirstName, lead.LastName, lead.Email,
		lead.Company, lead.LinkedinURL, lead.Website, lead.Phone, lead.Enriched, lead.Status,
	).Scan(&id, &created)
	if err != nil {
		return Lead{}, false, err
	}
	lead.ID = id
	return lead, created, nil
}

func (r *Repository) Update(ctx context.Context, lead Lead) (Lead, error) {
	tag, err := r.pool.Exec(ctx, `
    UPDATE leads
    SET campaign_id = $3, first_name = $4, last_name = $5, email = $6,
        company = $7, linkedin_url = $8, website = $9, phone = $10,
        status = $11, updated_at = now()
    WHERE id = $1 AND org_id = $2
  `, lead.ID, lead.OrgID, lead.CampaignID, lead.FirstName, lead.LastName,
		lead.Email, lead.Company, lead.LinkedinURL, lead.Website, lead.Phone, lead.Status)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Lead{}, ErrDuplicateEmail
		}
		return Lead{}, err
	}
	if tag.RowsAffected() == 0 {
		return Lead{}, ErrNotFound
	}
	return r.Get(ctx, lead.OrgID, lead.ID)
}

func (r *Repository) Delete(ctx context.Context, orgID, leadID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
    DELETE FROM leads
    WHERE id = $1 AND org_id = $2
  `, leadID, orgID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkContacted forces the sending side effect: status contacted and a
// fresh last_contacted_at, regardless of the current state.
func (r *Repository) MarkContacted(ctx context.Context, leadID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
    UPDATE leads
    SET status = 'contacted', last_contacted_at = now(), updated_at = now()
    WHERE id = $1
  `, leadID)
	return err
}

// UpdateEnriched overwrites the enrichment blob.
func (r *Repository) UpdateEnriched(ctx context.Context, leadID uuid.UUID, enriched json.RawMessage) error {
	_, err := r.pool.Exec(ctx, `
    UPDATE leads
    SET enriched = $2, updated_at = now()
    WHERE id = $1
  `, leadID, enriched)
	return err
}

// ListForEnrichmentSweep returns up to limit leads that have a website but
// no enrichment yet, restricted to orgs whose configuration carries an
// enrichment API key. Ordered oldest-first so stragglers drain eventually.
func (r *Repository) ListForEnrichmentSweep(ctx context.Context, limit int) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, `
    SELECT `+leadColumns+leadJoin+`
    JOIN organization_configurations oc ON oc.org_id = l.org_id
    WHERE l.website <> ''
      AND (l.enriched IS NULL OR l.enriched = '{}'::jsonb)
      AND coalesce(oc.firecrawl_api_key, '') <> ''
    ORDER BY l.created_at ASC
    LIMIT $1
  `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLeads(rows)
}

// OrgOwnsCampaign reports whether the campaign exists and belongs to
// the organization.
func (r *Repository) OrgOwnsCampaign(ctx context.Context, orgID, campaignID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
    SELECT EXISTS (SELECT 1 FROM campaigns WHERE id = $1 AND org_id = $2)
  `, campaignID, orgID).Scan(&exists)
	return exists, err
}

func (r *Repository) CountLeads(ctx context.Context, orgID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
    SELECT count(*) FROM leads WHERE org_id = $1
  `, orgID).Scan(&count)
	return count, err
}

// CountByStatus returns lead counts keyed by lifecycle status.
func (r *Repository) CountByStatus(ctx context.Context, orgID uuid.UUID) (map[Status]int, error) {
	rows, err := r.pool.Query(ctx, `
    SELECT status, count(*)
    FROM leads
    WHERE org_id = $1
    GROUP BY status
  `, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[Status]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[Status(status)] = count
	}
	return counts, rows.Err()
}

// CampaignCounts holds per-campaign lead volume for the dashboard.
type CampaignCounts struct {
	CampaignID   uuid.UUID
	CampaignName string
	Leads        int
	Contacted    int
}

func (r *Repository) CountByCampaign(ctx context.Context, orgID uuid.UUID) ([]CampaignCounts, error) {
	rows, err := r.pool.Query(ctx, `
    SELECT c.id, c.name,
      count(l.id),
      count(l.id) FILTER (WHERE l.status <> 'new')
    FROM campaigns c
    LEFT JOIN leads l ON l.campaign_id = c.id
    WHERE c.org_id = $1
    GROUP BY c.id, c.name
    ORDER BY c.created_at DESC
  `, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CampaignCounts
	for rows.Next() {
		var cc CampaignCounts
		if err := rows.Scan(&cc.CampaignID, &cc.CampaignName, &cc.Leads, &cc.Contacted); err != nil {
			return nil, err
		}
		out = append(out, cc)
	}
	return out, rows.Err()
}

func collectLeads(rows pgx.Rows) ([]Lead, error) {
	leads := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}
