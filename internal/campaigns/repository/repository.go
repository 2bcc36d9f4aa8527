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

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Campaign struct {
	ID        uuid.UUID
	OrgID     uuid.UUID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StepAction is what a sequence step does when executed.
type StepAction string

const (
	ActionSendEmail StepAction = "send_email"
	ActionWait      StepAction = "wait"
)

func (a StepAction) Valid() bool {
	return a == ActionSendEmail || a == ActionWait
}

type SequenceStep struct {
	ID         uuid.UUID
	CampaignID uuid.UUID
	Order      int
	Action     StepAction
	WaitDays   int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (r *Repository) ListCampaigns(ctx context.Context, orgID uuid.UUID) ([]Campaign, error) {
	rows, err := r.pool.Query(ctx, `
    SELECT id, org_id, name, created_at, updated_at
    FROM campaigns
    WHERE org_id = $1
    ORDER BY created_at DESC
  `, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	campaigns := make([]Campaign, 0)
	for rows.Next() {
		var c Campaign
		if err := rows.Scan(&c.ID, &c.OrgID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

func (r *Repository) GetCampaign(ctx context.Context, orgID, campaignID uuid.UUID) (Campaign, error) {
	var c Campaign
	err := r.pool.QueryRow(ctx, `
    SELECT id, org_id, name, created_at, updated_at
    FROM campaigns
    WHERE id = $1 AND org_id = $2
  `, campaignID, orgID).Scan(&c.ID, &c.OrgID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Campaign{}, ErrNotFound
	}
	return c, err
}

func (r *Repository) CreateCampaign(ctx context.Context, orgID uuid.UUID, name string) (Campaign, error) {
	var c Campaign
	err := r.pool.QueryRow(ctx, `
    INSERT INTO campaigns (org_id, name)
    VALUES ($1, $2)
    RETURNING id, org_id, name, created_at, updated_at
  `, orgID, name).Scan(&c.ID, &c.OrgID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *Repository) UpdateCampaign(ctx context.Context, orgID, campaignID uuid.UUID, name string) (Campaign, error) {
	var c Campaign
	err := r.pool.QueryRow(ctx, `
    UPDATE campaigns
    SET name = $3, updated_at = now()
    WHERE id = $1 AND org_id = $2
    RETURNING id, org_id, name, created_at, updated_at
  `, campaignID, orgID, name).Scan(&c.ID, &c.OrgID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Campaign{}, ErrNotFound
	}
	return c, err
}

func (r *Repository) DeleteCampaign(ctx context.Context, orgID, campaignID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
    DELETE FROM campaigns
    WHERE id = $1 AND org_id = $2
  `, campaignID, orgID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) ListSteps(ctx context.Context, campaignID uuid.UUID) ([]SequenceStep, error) {
	rows, err := r.pool.Query(ctx, `
    SELECT id, campaign_id, step_order, action, wait_days, created_at, updated_at
    FROM sequence_steps
    WHERE campaign_id = $1
    ORDER BY step_order ASC
  `, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	steps := make([]SequenceStep, 0)
	for rows.Next() {
		var s SequenceStep
		if err := rows.Scan(&s.ID, &s.CampaignID, &s.Order, &s.Action, &s.WaitDays, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		steps = append(steps, s)
	}
	return steps, rows.Err()
}

func (r *Repository) CreateStep(ctx context.Context, step SequenceStep) (SequenceStep, error) {
	var s SequenceStep
	err := r.pool.QueryRow(ctx, `
    INSERT INTO sequence_steps (campaign_id, step_order, action, wait_days)
    VALUES ($1, $2, $3, $4)
    RETURNING id, campaign_id, step_order, action, wait_days, created_at, updated_at
  `, step.CampaignID, step.Order, step.Action, step.WaitDays).Scan(
		&s.ID, &s.CampaignID, &s.Order, &s.Action, &s.WaitDays, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

func (r *Repository) GetStep(ctx context.Context, orgID, stepID uuid.UUID) (SequenceStep, error) {
	var s SequenceStep
	err := r.pool.QueryRow(ctx, `
    SELECT ss.id, ss.campaign_id, ss.step_order, ss.action, ss.wait_days, ss.created_at, ss.updated_at
    FROM sequence_steps ss
    JOIN campaigns c ON c.id = ss.campaign_id
    WHERE ss.id = $1 AND c.org_id = $2
  `, stepID, orgID).Scan(&s.ID, &s.CampaignID, &s.Order, &s.Action, &s.WaitDays, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return SequenceStep{}, ErrNotFound
	}
	return s, err
}

func (r *Repository) UpdateStep(ctx context.Context, step SequenceStep) (SequenceStep, error) {
	var s SequenceStep
	err := r.pool.QueryRow(ctx, `
    UPDATE sequence_steps
    SET step_order = $2, action = $3, wait_days = $4, updated_at = now()
    WHERE id = $1
    RETURNING id, campaign_id, step_order, action, wait_days, created_at, updated_at
  `, step.ID, step.Order, step.Action, step.WaitDays).Scan(
		&s.ID, &s.CampaignID, &s.Order, &s.Action, &s.WaitDays, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return SequenceStep{}, ErrNotFound
	}
	return s, err
}

func (r *Repository) DeleteStep(ctx context.Context, orgID, stepID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
    DELETE FROM sequence_steps ss
    USING campaigns c
    WHERE ss.id = $1 AND ss.campaign_id = c.id AND c.org_id = $2
  `, stepID, orgID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) CountCampaigns(ctx context.Context, orgID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM campaigns WHERE org_id = $1`, orgID).Scan(&count)
	return count, err
}

// CountActiveSequences counts campaigns that have at least one step.
func (r *Repository) CountActiveSequences(ctx context.Context, orgID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
    SELECT count(DISTINCT c.id)
    FROM campaigns c
    JOIN sequence_steps ss ON ss.campaign_id = c.id
    WHERE c.org_id = $1
  `, orgID).Scan(&count)
	return count, err
}
