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

// Status is the lead email lifecycle state.
type Status string

const (
	StatusDraft  Status = "draft"
	StatusSent   Status = "sent"
	StatusFailed Status = "failed"
)

// LeadEmail is one outreach email for a lead, joined with the lead
// fields the API exposes alongside it.
type LeadEmail struct {
	ID        uuid.UUID
	LeadID    uuid.UUID
	OrgID     uuid.UUID
	Subject   string
	Body      string
	Preview   string
	Status    Status
	SentAt    *time.Time
	Meta      map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time

	LeadEmailAddress string
	LeadFirstName    string
	LeadLastName     string
}

// LeadName is first+last, falling back to the lead's email address.
func (e LeadEmail) LeadName() string {
	name := e.LeadFirstName
	if e.LeadLastName != "" {
		if name != "" {
			name += " "
		}
		name += e.LeadLastName
	}
	if name == "" {
		return e.LeadEmailAddress
	}
	return name
}

type Stats struct {
	Total   int
	Sent    int
	Drafts  int
	Failed  int
	Opened  int
	Replied int
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const emailColumns = `
  e.id, e.lead_id, l.org_id, e.subject, e.body, e.preview, e.status,
  e.sent_at, e.meta, e.created_at, e.updated_at,
  l.email, l.first_name, l.last_name`

const emailJoin = `
  FROM lead_emails e
  JOIN leads l ON l.id = e.lead_id`

func scanEmail(row pgx.Row) (LeadEmail, error) {
	var e LeadEmail
	var status string
	err := row.Scan(
		&e.ID, &e.LeadID, &e.OrgID, &e.Subject, &e.Body, &e.Preview, &status,
		&e.SentAt, &e.Meta, &e.CreatedAt, &e.UpdatedAt,
		&e.LeadEmailAddress, &e.LeadFirstName, &e.LeadLastName,
	)
	if err != nil {
		return LeadEmail{}, err
	}
	e.Status = Status(status)
	return e, nil
}

// GetForOrg loads an email, enforcing that its lead belongs to the org.
func (r *Repository) GetForOrg(ctx context.Context, orgID, emailID uuid.UUID) (LeadEmail, error) {
	email, err := scanEmail(r.pool.QueryRow(ctx, `
    SELECT `+emailColumns+emailJoin+`
    WHERE e.id = $1 AND l.org_id = $2
  `, emailID, orgID))
	if errors.Is(err, pgx.ErrNoRows) {
		return LeadEmail{}, ErrNotFound
	}
	return email, err
}

// FindDraftByLead returns the oldest draft for a lead, if any. One
// conceptual current draft per lead is expected but not enforced.
func (r *Repository) FindDraftByLead(ctx context.Context, leadID uuid.UUID) (LeadEmail, error) {
	email, err := scanEmail(r.pool.QueryRow(ctx, `
    SELECT `+emailColumns+emailJoin+`
    WHERE e.lead_id = $1 AND e.status = 'draft'
    ORDER BY e.created_at ASC
    LIMIT 1
  `, leadID))
	if errors.Is(err, pgx.ErrNoRows) {
		return LeadEmail{}, ErrNotFound
	}
	return email, err
}

func (r *Repository) Create(ctx context.Context, email LeadEmail) (LeadEmail, error) {
	if email.Status == "" {
		email.Status = StatusDraft
	}
	if email.Meta == nil {
		email.Meta = map[string]any{}
	}

	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
    INSERT INTO lead_emails (lead_id, subject, body, preview, status, meta)
    VALUES ($1, $2, $3, $4, $5, $6)
    RETURNING id
  `, email.LeadID, email.Subject, email.Body, email.Preview, email.Status, email.Meta).Scan(&id)
	if err != nil {
		return LeadEmail{}, err
	}
	return r.getByID(ctx, id)
}

// UpdateDraftCopy replaces the subject/body of a draft before sending.
func (r *Repository) UpdateDraftCopy(ctx context.Context, emailID uuid.UUID, subject, body, preview string) error {
	_, err := r.pool.Exec(ctx, `
    UPDATE lead_emails
    SET subject = $2, body = $3, preview = $4, updated_at = now()
    WHERE id = $1
  `, emailID, subject, body, preview)
	return err
}

// MarkSent transitions the email to sent with a fresh timestamp and the
// final metadata blob. Called unconditionally after a send attempt.
func (r *Repository) MarkSent(ctx context.Context, emailID uuid.UUID, meta map[string]any) error {
	_, err := r.pool.Exec(ctx, `
    UPDATE lead_emails
    SET status = 'sent', sent_at = now(), meta = $2, updated_at = now()
    WHERE id = $1
  `, emailID, meta)
	return err
}

func (r *Repository) List(ctx context.Context, orgID uuid.UUID) ([]LeadEmail, error) {
	rows, err := r.pool.Query(ctx, `
    SELECT `+emailColumns+emailJoin+`
    WHERE l.org_id = $1
    ORDER BY e.created_at DESC
  `, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEmails(rows)
}

func (r *Repository) ListRecent(ctx context.Context, orgID uuid.UUID, limit int) ([]LeadEmail, error) {
	rows, err := r.pool.Query(ctx, `
    SELECT `+emailColumns+emailJoin+`
    WHERE l.org_id = $1
    ORDER BY e.created_at DESC
    LIMIT $2
  `, orgID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEmails(rows)
}

// SentTimeline returns the most recently sent emails, newest first.
func (r *Repository) SentTimeline(ctx context.Context, orgID uuid.UUID, limit int) ([]LeadEmail, error) {
	rows, err := r.pool.Query(ctx, `
    SELECT `+emailColumns+emailJoin+`
    WHERE l.org_id = $1 AND e.status = 'sent'
    ORDER BY e.sent_at DESC NULLS LAST
    LIMIT $2
  `, orgID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEmails(rows)
}

// Stats aggregates email counts. Opened and replied are derived from the
// meta blob keys engagement webhooks write.
func (r *Repository) Stats(ctx context.Context, orgID uuid.UUID) (Stats, error) {
	var s Stats
	err := r.pool.QueryRow(ctx, `
    SELECT
      count(*),
      count(*) FILTER (WHERE e.status = 'sent'),
      count(*) FILTER (WHERE e.status = 'draft'),
      count(*) FILTER (WHERE e.status = 'failed'),
      count(*) FILTER (WHERE coalesce(e.meta->>'opened_at', '') <> ''),
      count(*) FILTER (WHERE coalesce(e.meta->>'replied_at', '') <> '')
    `+emailJoin+`
    WHERE l.org_id = $1
  `, orgID).Scan(&s.Total, &s.Sent, &s.Drafts, &s.Failed, &s.Opened, &s.Replied)
	return s, err
}

func (r *Repository) CountSent(ctx context.Context, orgID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
    SELECT count(*)
    `+emailJoin+`
    WHERE l.org_id = $1 AND e.status = 'sent'
  `, orgID).Scan(&count)
	return count, err
}

// CampaignSentCounts holds sent-email volume per campaign for the
// dashboard.
type CampaignSentCounts struct {
	CampaignID uuid.UUID
	Sent       int
}

func (r *Repository) CountSentByCampaign(ctx context.Context, orgID uuid.UUID) ([]CampaignSentCounts, error) {
	rows, err := r.pool.Query(ctx, `
    SELECT l.campaign_id, count(*)
    `+emailJoin+`
    WHERE l.org_id = $1 AND e.status = 'sent' AND l.campaign_id IS NOT NULL
    GROUP BY l.campaign_id
  `, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CampaignSentCounts
	for rows.Next() {
		var cc CampaignSentCounts
		if err := rows.Scan(&cc.CampaignID, &cc.Sent); err != nil {
			return nil, err
		}
		out = append(out, cc)
	}
	return out, rows.Err()
}

func (r *Repository) getByID(ctx context.Context, emailID uuid.UUID) (LeadEmail, error) {
	email, err := scanEmail(r.pool.QueryRow(ctx, `
    SELECT `+emailColumns+emailJoin+`
    WHERE e.id = $1
  `, emailID))
	if errors.Is(err, pgx.ErrNoRows) {
		return LeadEmail{}, ErrNotFound
	}
	return email, err
}

func collectEmails(rows pgx.Rows) ([]LeadEmail, error) {
	emails := make([]LeadEmail, 0)
	for rows.Next() {
		email, err := scanEmail(rows)
		if err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}
