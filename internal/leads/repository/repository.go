package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("lead not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Lead struct {
	ID             uuid.UUID
	Name           string
	Phone          *string
	Email          *string
	LeadType       string
	Status         string
	BudgetRange    *string
	Location       *string
	Urgency        *string
	Timeline       *string
	Motivation     *string
	IntentScore    int
	UrgencyScore   int
	ReadinessScore int
	NextAction     *string
	ManagerSummary *string
	LastContactAt  *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

const leadColumns = `id, name, phone, email, lead_type, status, budget_range, location, urgency, timeline,
		motivation, intent_score, urgency_score, readiness_score, next_action, manager_summary,
		last_contact_at, created_at, updated_at`

func scanLead(row pgx.Row) (Lead, error) {
	var l Lead
	err := row.Scan(
		&l.ID, &l.Name, &l.Phone, &l.Email, &l.LeadType, &l.Status, &l.BudgetRange, &l.Location,
		&l.Urgency, &l.Timeline, &l.Motivation, &l.IntentScore, &l.UrgencyScore, &l.ReadinessScore,
		&l.NextAction, &l.ManagerSummary, &l.LastContactAt, &l.CreatedAt, &l.UpdatedAt,
	)
	return l, err
}

type CreateLeadParams struct {
	Name     string
	Phone    *string
	Email    *string
	LeadType string
}

func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `
		INSERT INTO leads (name, phone, email, lead_type, status)
		VALUES ($1, $2, $3, $4, 'new')
		RETURNING `+leadColumns+`
	`, params.Name, params.Phone, params.Email, params.LeadType))
	if err != nil {
		return Lead{}, fmt.Errorf("create lead: %w", err)
	}
	return lead, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	if err != nil {
		return Lead{}, fmt.Errorf("get lead: %w", err)
	}
	return lead, nil
}

// GetByPhone matches a lead by normalized phone number, used by the voice
// webhook to attach calls to known leads.
func (r *Repository) GetByPhone(ctx context.Context, phone string) (Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE phone = $1
		ORDER BY updated_at DESC
		LIMIT 1
	`, phone))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	if err != nil {
		return Lead{}, fmt.Errorf("get lead by phone: %w", err)
	}
	return lead, nil
}

func (r *Repository) List(ctx context.Context) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

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

type UpdateLeadParams struct {
	Name     *string
	Phone    *string
	Email    *string
	LeadType *string
	Status   *string
}

// Update applies a partial update; nil fields are left untouched.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateLeadParams) (Lead, error) {
	sets := []string{"updated_at = now()"}
	args := []interface{}{id}

	addSet := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if params.Name != nil {
		addSet("name", *params.Name)
	}
	if params.Phone != nil {
		addSet("phone", *params.Phone)
	}
	if params.Email != nil {
		addSet("email", *params.Email)
	}
	if params.LeadType != nil {
		addSet("lead_type", *params.LeadType)
	}
	if params.Status != nil {
		addSet("status", *params.Status)
	}

	lead, err := scanLead(r.pool.QueryRow(ctx, `
		UPDATE leads SET `+strings.Join(sets, ", ")+`
		WHERE id = $1
		RETURNING `+leadColumns+`
	`, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	if err != nil {
		return Lead{}, fmt.Errorf("update lead: %w", err)
	}
	return lead, nil
}

// QualificationUpdate carries the lead fields a reasoning turn may refresh.
// Nil value fields keep the existing column (extraction did not mention them).
type QualificationUpdate struct {
	LeadType       string
	IntentScore    int
	UrgencyScore   int
	ReadinessScore int
	NextAction     string
	Status         string
	BudgetRange    *string
	Location       *string
	Urgency        *string
	Timeline       *string
	Motivation     *string
}

// ApplyQualification updates an existing lead from a reasoning turn.
func (r *Repository) ApplyQualification(ctx context.Context, id uuid.UUID, u QualificationUpdate) (Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `
		UPDATE leads SET
			lead_type = $2,
			intent_score = $3,
			urgency_score = $4,
			readiness_score = $5,
			next_action = $6,
			status = $7,
			budget_range = COALESCE($8, budget_range),
			location = COALESCE($9, location),
			urgency = COALESCE($10, urgency),
			timeline = COALESCE($11, timeline),
			motivation = COALESCE($12, motivation),
			last_contact_at = now(),
			updated_at = now()
		WHERE id = $1
		RETURNING `+leadColumns+`
	`, id, u.LeadType, u.IntentScore, u.UrgencyScore, u.ReadinessScore, u.NextAction, u.Status,
		u.BudgetRange, u.Location, u.Urgency, u.Timeline, u.Motivation))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	if err != nil {
		return Lead{}, fmt.Errorf("apply qualification: %w", err)
	}
	return lead, nil
}

// CreateFromQualification inserts a new lead discovered mid-conversation.
func (r *Repository) CreateFromQualification(ctx context.Context, u QualificationUpdate) (Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `
		INSERT INTO leads (
			name, lead_type, intent_score, urgency_score, readiness_score, next_action, status,
			budget_range, location, urgency, timeline, motivation, last_contact_at
		) VALUES ('New Lead', $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())
		RETURNING `+leadColumns+`
	`, u.LeadType, u.IntentScore, u.UrgencyScore, u.ReadinessScore, u.NextAction, u.Status,
		u.BudgetRange, u.Location, u.Urgency, u.Timeline, u.Motivation))
	if err != nil {
		return Lead{}, fmt.Errorf("create lead from qualification: %w", err)
	}
	return lead, nil
}

// Delete removes a lead. Appointments cascade at the database level; calls
// and reasoning logs survive with their lead reference cleared.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) SetManagerSummary(ctx context.Context, id uuid.UUID, summary string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET manager_summary = $2, updated_at = now()
		WHERE id = $1
	`, id, summary)
	if err != nil {
		return fmt.Errorf("set manager summary: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
