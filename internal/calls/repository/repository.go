package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("call not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Call struct {
	ID                 uuid.UUID
	LeadID             *uuid.UUID
	VapiCallID         *string
	Direction          string
	DurationSeconds    int
	Transcript         *string
	Summary            *string
	Objections         []string
	CompetitorMentions []string
	RiskFlags          []string
	ActionItems        []string
	RecordingKey       *string
	CreatedAt          time.Time
}

const callColumns = `id, lead_id, vapi_call_id, direction, duration_seconds, transcript, summary,
		objections, competitor_mentions, risk_flags, action_items, recording_key, created_at`

func scanCall(row pgx.Row) (Call, error) {
	var c Call
	err := row.Scan(
		&c.ID, &c.LeadID, &c.VapiCallID, &c.Direction, &c.DurationSeconds, &c.Transcript,
		&c.Summary, &c.Objections, &c.CompetitorMentions, &c.RiskFlags, &c.ActionItems,
		&c.RecordingKey, &c.CreatedAt,
	)
	return c, err
}

type CreateCallParams struct {
	LeadID     *uuid.UUID
	VapiCallID *string
	Direction  string
}

func (r *Repository) Create(ctx context.Context, params CreateCallParams) (Call, error) {
	if params.Direction == "" {
		params.Direction = "inbound"
	}
	call, err := scanCall(r.pool.QueryRow(ctx, `
		INSERT INTO calls (lead_id, vapi_call_id, direction)
		VALUES ($1, $2, $3)
		RETURNING `+callColumns+`
	`, params.LeadID, params.VapiCallID, params.Direction))
	if err != nil {
		return Call{}, fmt.Errorf("create call: %w", err)
	}
	return call, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Call, error) {
	call, err := scanCall(r.pool.QueryRow(ctx, `
		SELECT `+callColumns+`
		FROM calls
		WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Call{}, ErrNotFound
	}
	if err != nil {
		return Call{}, fmt.Errorf("get call: %w", err)
	}
	return call, nil
}

func (r *Repository) GetByVapiCallID(ctx context.Context, vapiCallID string) (Call, error) {
	call, err := scanCall(r.pool.QueryRow(ctx, `
		SELECT `+callColumns+`
		FROM calls
		WHERE vapi_call_id = $1
	`, vapiCallID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Call{}, ErrNotFound
	}
	if err != nil {
		return Call{}, fmt.Errorf("get call by provider id: %w", err)
	}
	return call, nil
}

func (r *Repository) List(ctx context.Context) ([]Call, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+callColumns+`
		FROM calls
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list calls: %w", err)
	}
	defer rows.Close()

	calls := make([]Call, 0)
	for rows.Next() {
		call, err := scanCall(rows)
		if err != nil {
			return nil, err
		}
		calls = append(calls, call)
	}
	return calls, rows.Err()
}

type ReportParams struct {
	Transcript         string
	DurationSeconds    int
	Summary            string
	Objections         []string
	CompetitorMentions []string
	RiskFlags          []string
	ActionItems        []string
	LeadID             *uuid.UUID
}

// ApplyReport stores the end-of-call analysis on an existing call row.
func (r *Repository) ApplyReport(ctx context.Context, id uuid.UUID, params ReportParams) (Call, error) {
	call, err := scanCall(r.pool.QueryRow(ctx, `
		UPDATE calls SET
			transcript = $2,
			duration_seconds = $3,
			summary = $4,
			objections = $5,
			competitor_mentions = $6,
			risk_flags = $7,
			action_items = $8,
			lead_id = COALESCE($9, lead_id)
		WHERE id = $1
		RETURNING `+callColumns+`
	`, id, params.Transcript, params.DurationSeconds, params.Summary, params.Objections,
		params.CompetitorMentions, params.RiskFlags, params.ActionItems, params.LeadID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Call{}, ErrNotFound
	}
	if err != nil {
		return Call{}, fmt.Errorf("apply call report: %w", err)
	}
	return call, nil
}

func (r *Repository) SetRecordingKey(ctx context.Context, id uuid.UUID, key string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE calls SET recording_key = $2
		WHERE id = $1
	`, id, key)
	if err != nil {
		return fmt.Errorf("set recording key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
