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

var ErrNotFound = errors.New("appointment not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Appointment struct {
	ID              uuid.UUID
	LeadID          uuid.UUID
	Date            time.Time
	TimeSlot        string
	PropertyAddress *string
	Status          string
	Notes           *string
	CreatedAt       time.Time
}

// AppointmentWithLead joins basic lead contact details for the agenda view.
type AppointmentWithLead struct {
	Appointment
	LeadName  string
	LeadPhone *string
	LeadEmail *string
}

const appointmentColumns = `id, lead_id, date, time_slot, property_address, status, notes, created_at`

func scanAppointment(row pgx.Row) (Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.LeadID, &a.Date, &a.TimeSlot, &a.PropertyAddress, &a.Status, &a.Notes, &a.CreatedAt)
	return a, err
}

type CreateParams struct {
	LeadID          uuid.UUID
	Date            time.Time
	TimeSlot        string
	PropertyAddress *string
	Notes           *string
}

func (r *Repository) Create(ctx context.Context, params CreateParams) (Appointment, error) {
	appt, err := scanAppointment(r.pool.QueryRow(ctx, `
		INSERT INTO appointments (lead_id, date, time_slot, property_address, status, notes)
		VALUES ($1, $2, $3, COALESCE($4, 'TBD'), 'proposed', $5)
		RETURNING `+appointmentColumns+`
	`, params.LeadID, params.Date, params.TimeSlot, params.PropertyAddress, params.Notes))
	if err != nil {
		return Appointment{}, fmt.Errorf("create appointment: %w", err)
	}
	return appt, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Appointment, error) {
	appt, err := scanAppointment(r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Appointment{}, ErrNotFound
	}
	if err != nil {
		return Appointment{}, fmt.Errorf("get appointment: %w", err)
	}
	return appt, nil
}

// List returns the agenda, upcoming first, with lead contact details joined.
func (r *Repository) List(ctx context.Context) ([]AppointmentWithLead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.id, a.lead_id, a.date, a.time_slot, a.property_address, a.status, a.notes, a.created_at,
			l.name, l.phone, l.email
		FROM appointments a
		JOIN leads l ON l.id = a.lead_id
		ORDER BY a.date ASC, a.time_slot ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	items := make([]AppointmentWithLead, 0)
	for rows.Next() {
		var item AppointmentWithLead
		if err := rows.Scan(
			&item.ID, &item.LeadID, &item.Date, &item.TimeSlot, &item.PropertyAddress,
			&item.Status, &item.Notes, &item.CreatedAt,
			&item.LeadName, &item.LeadPhone, &item.LeadEmail,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// BookedSlots returns the time slots already taken on a date, excluding
// cancelled appointments.
func (r *Repository) BookedSlots(ctx context.Context, date time.Time) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT time_slot
		FROM appointments
		WHERE date = $1 AND status != 'cancelled'
	`, date)
	if err != nil {
		return nil, fmt.Errorf("booked slots: %w", err)
	}
	defer rows.Close()

	slots := make([]string, 0)
	for rows.Next() {
		var slot string
		if err := rows.Scan(&slot); err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

type UpdateParams struct {
	Status   *string
	Date     *time.Time
	TimeSlot *string
}

// Update applies a partial update; nil fields are left untouched.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (Appointment, error) {
	sets := []string{}
	args := []interface{}{id}

	addSet := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if params.Status != nil {
		addSet("status", *params.Status)
	}
	if params.Date != nil {
		addSet("date", *params.Date)
	}
	if params.TimeSlot != nil {
		addSet("time_slot", *params.TimeSlot)
	}
	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	appt, err := scanAppointment(r.pool.QueryRow(ctx, `
		UPDATE appointments SET `+strings.Join(sets, ", ")+`
		WHERE id = $1
		RETURNING `+appointmentColumns+`
	`, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Appointment{}, ErrNotFound
	}
	if err != nil {
		return Appointment{}, fmt.Errorf("update appointment: %w", err)
	}
	return appt, nil
}

// MarkLeadBooked moves the lead into the appointment pipeline stage.
func (r *Repository) MarkLeadBooked(ctx context.Context, leadID uuid.UUID, nextAction string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE leads SET status = 'appointment_set', next_action = $2, updated_at = now()
		WHERE id = $1
	`, leadID, nextAction)
	if err != nil {
		return fmt.Errorf("mark lead booked: %w", err)
	}
	return nil
}
