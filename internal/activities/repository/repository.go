// Package repository provides data access for the activity timeline.
package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Entry is one timeline row. The feed joins lead and campaign context
// so the dashboard does not chase ids.
type Entry struct {
	ID           uuid.UUID
	LeadID       uuid.UUID
	StepID       *uuid.UUID
	Payload      map[string]any
	CreatedAt    time.Time
	LeadEmail    string
	CampaignName string
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Insert(ctx context.Context, leadID uuid.UUID, stepID *uuid.UUID, payload map[string]any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	query := `INSERT INTO activity_timeline (lead_id, step_id, payload) VALUES ($1, $2, $3)`
	_, err = r.pool.Exec(ctx, query, leadID, stepID, raw)
	return err
}

// Feed returns the org's newest timeline entries with lead and campaign
// context joined in.
func (r *Repository) Feed(ctx context.Context, orgID uuid.UUID, limit int) ([]Entry, error) {
	query := `
		SELECT a.id, a.lead_id, a.step_id, a.payload, a.created_at,
		       l.email, coalesce(c.name, '')
		FROM activity_timeline a
		JOIN leads l ON l.id = a.lead_id
		LEFT JOIN campaigns c ON c.id = l.campaign_id
		WHERE l.org_id = $1
		ORDER BY a.created_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, orgID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var raw []byte
		if err := rows.Scan(&e.ID, &e.LeadID, &e.StepID, &raw, &e.CreatedAt, &e.LeadEmail, &e.CampaignName); err != nil {
			return nil, err
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &e.Payload); err != nil {
				return nil, err
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
