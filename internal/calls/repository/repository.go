// Package repository provides data access for outbound call records.
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

// Call is one outbound call result. OrgID and LeadID are nullable
// because the webhook may report a call we cannot tie to a lead.
type Call struct {
	ID           uuid.UUID
	OrgID        *uuid.UUID
	LeadID       *uuid.UUID
	CallSID      string
	RecordingURL string
	Summary      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const callColumns = `id, org_id, lead_id, call_sid, recording_url, summary, created_at, updated_at`

func scanCall(row pgx.Row) (Call, error) {
	var c Call
	err := row.Scan(&c.ID, &c.OrgID, &c.LeadID, &c.CallSID, &c.RecordingURL, &c.Summary, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// UpsertByCallSID stores a call result keyed on the provider's call sid.
// Repeated webhooks for the same call overwrite the recording and summary.
func (r *Repository) UpsertByCallSID(ctx context.Context, call Call) (Call, error) {
	query := `
		INSERT INTO calls (org_id, lead_id, call_sid, recording_url, summary)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (call_sid) DO UPDATE SET
			org_id = COALESCE(EXCLUDED.org_id, calls.org_id),
			lead_id = COALESCE(EXCLUDED.lead_id, calls.lead_id),
			recording_url = EXCLUDED.recording_url,
			summary = EXCLUDED.summary,
			updated_at = now()
		RETURNING ` + callColumns

	return scanCall(r.pool.QueryRow(ctx, query,
		call.OrgID, call.LeadID, call.CallSID, call.RecordingURL, call.Summary))
}

func (r *Repository) GetByCallSID(ctx context.Context, callSID string) (Call, error) {
	query := `SELECT ` + callColumns + ` FROM calls WHERE call_sid = $1`

	call, err := scanCall(r.pool.QueryRow(ctx, query, callSID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Call{}, ErrNotFound
	}
	return call, err
}

func (r *Repository) ListByOrg(ctx context.Context, orgID uuid.UUID, limit int) ([]Call, error) {
	query := `
		SELECT ` + callColumns + `
		FROM calls
		WHERE org_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, orgID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var calls []Call
	for rows.Next() {
		call, err := scanCall(rows)
		if err != nil {
			return nil, err
		}
		calls = append(calls, call)
	}
	return calls, rows.Err()
}
