package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Read-only projections over the calls and appointments tables, used to
// assemble the lead detail view and the manager summary input. Writes to
// those tables belong to their own modules.

type CallRecord struct {
	ID                 uuid.UUID  `json:"id"`
	LeadID             *uuid.UUID `json:"lead_id"`
	Direction          string     `json:"direction"`
	DurationSeconds    int        `json:"duration_seconds"`
	Summary            *string    `json:"summary"`
	Objections         []string   `json:"objections"`
	CompetitorMentions []string   `json:"competitor_mentions"`
	RiskFlags          []string   `json:"risk_flags"`
	ActionItems        []string   `json:"action_items"`
	CreatedAt          time.Time  `json:"created_at"`
}

func (r *Repository) ListCallsForLead(ctx context.Context, leadID uuid.UUID) ([]CallRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, direction, duration_seconds, summary, objections,
			competitor_mentions, risk_flags, action_items, created_at
		FROM calls
		WHERE lead_id = $1
		ORDER BY created_at DESC
	`, leadID)
	if err != nil {
		return nil, fmt.Errorf("list calls for lead: %w", err)
	}
	defer rows.Close()

	calls := make([]CallRecord, 0)
	for rows.Next() {
		var call CallRecord
		if err := rows.Scan(
			&call.ID, &call.LeadID, &call.Direction, &call.DurationSeconds, &call.Summary,
			&call.Objections, &call.CompetitorMentions, &call.RiskFlags, &call.ActionItems,
			&call.CreatedAt,
		); err != nil {
			return nil, err
		}
		calls = append(calls, call)
	}
	return calls, rows.Err()
}

type AppointmentRecord struct {
	ID              uuid.UUID `json:"id"`
	LeadID          uuid.UUID `json:"lead_id"`
	Date            time.Time `json:"date"`
	TimeSlot        string    `json:"time_slot"`
	PropertyAddress *string   `json:"property_address"`
	Status          string    `json:"status"`
	Notes           *string   `json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
}

func (r *Repository) ListAppointmentsForLead(ctx context.Context, leadID uuid.UUID) ([]AppointmentRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, date, time_slot, property_address, status, notes, created_at
		FROM appointments
		WHERE lead_id = $1
		ORDER BY date ASC
	`, leadID)
	if err != nil {
		return nil, fmt.Errorf("list appointments for lead: %w", err)
	}
	defer rows.Close()

	appointments := make([]AppointmentRecord, 0)
	for rows.Next() {
		var appt AppointmentRecord
		if err := rows.Scan(
			&appt.ID, &appt.LeadID, &appt.Date, &appt.TimeSlot, &appt.PropertyAddress,
			&appt.Status, &appt.Notes, &appt.CreatedAt,
		); err != nil {
			return nil, err
		}
		appointments = append(appointments, appt)
	}
	return appointments, rows.Err()
}
