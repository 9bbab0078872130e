// Package transport defines the HTTP request/response shapes for the
// appointments module.
package transport

import (
	"time"

	"leadpilot_backend/internal/appointments/repository"

	"github.com/google/uuid"
)

type CreateAppointmentRequest struct {
	LeadID          uuid.UUID `json:"lead_id" validate:"required"`
	Date            string    `json:"date" validate:"required,datetime=2006-01-02"`
	TimeSlot        string    `json:"time_slot" validate:"required"`
	PropertyAddress *string   `json:"property_address,omitempty" validate:"omitempty,max=300"`
	Notes           *string   `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type UpdateAppointmentRequest struct {
	Status   *string `json:"status,omitempty" validate:"omitempty,oneof=proposed confirmed rescheduled cancelled"`
	Date     *string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	TimeSlot *string `json:"time_slot,omitempty"`
}

type AppointmentResponse struct {
	ID              uuid.UUID `json:"id"`
	LeadID          uuid.UUID `json:"lead_id"`
	Date            string    `json:"date"`
	TimeSlot        string    `json:"time_slot"`
	PropertyAddress *string   `json:"property_address"`
	Status          string    `json:"status"`
	Notes           *string   `json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
}

func ToAppointmentResponse(a repository.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:              a.ID,
		LeadID:          a.LeadID,
		Date:            a.Date.Format("2006-01-02"),
		TimeSlot:        a.TimeSlot,
		PropertyAddress: a.PropertyAddress,
		Status:          a.Status,
		Notes:           a.Notes,
		CreatedAt:       a.CreatedAt,
	}
}

type AgendaItemResponse struct {
	AppointmentResponse
	LeadName  string  `json:"lead_name"`
	LeadPhone *string `json:"lead_phone"`
	LeadEmail *string `json:"lead_email"`
}

func ToAgendaResponses(items []repository.AppointmentWithLead) []AgendaItemResponse {
	out := make([]AgendaItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, AgendaItemResponse{
			AppointmentResponse: ToAppointmentResponse(item.Appointment),
			LeadName:            item.LeadName,
			LeadPhone:           item.LeadPhone,
			LeadEmail:           item.LeadEmail,
		})
	}
	return out
}

type AvailableSlotsResponse struct {
	Date           string   `json:"date"`
	AvailableSlots []string `json:"available_slots"`
}
