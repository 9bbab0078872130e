// Package service contains the appointment scheduling business logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leadpilot_backend/internal/appointments/repository"
	"leadpilot_backend/internal/events"
	"leadpilot_backend/platform/apperr"
	"leadpilot_backend/platform/logger"

	"github.com/google/uuid"
)

// allSlots is the showing grid offered to leads. Slots already booked on a
// date are filtered out.
var allSlots = []string{
	"9:00 AM", "10:00 AM", "11:00 AM",
	"1:00 PM", "2:00 PM", "3:00 PM", "4:00 PM",
}

// reminderLead is how long before the showing the reminder fires.
const reminderLead = 24 * time.Hour

// Store is the persistence surface the service depends on.
type Store interface {
	Create(ctx context.Context, params repository.CreateParams) (repository.Appointment, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.Appointment, error)
	List(ctx context.Context) ([]repository.AppointmentWithLead, error)
	BookedSlots(ctx context.Context, date time.Time) ([]string, error)
	Update(ctx context.Context, id uuid.UUID, params repository.UpdateParams) (repository.Appointment, error)
	MarkLeadBooked(ctx context.Context, leadID uuid.UUID, nextAction string) error
}

// ReminderScheduler enqueues a delayed appointment reminder. Nil disables
// reminders.
type ReminderScheduler interface {
	ScheduleReminder(ctx context.Context, appointmentID, leadID uuid.UUID, at time.Time) error
}

type Service struct {
	repo      Store
	bus       events.Bus
	scheduler ReminderScheduler
	log       *logger.Logger
}

func New(repo Store, bus events.Bus, scheduler ReminderScheduler, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, scheduler: scheduler, log: log}
}

// AvailableSlots returns the open showing slots on a date.
func (s *Service) AvailableSlots(ctx context.Context, date time.Time) ([]string, error) {
	booked, err := s.repo.BookedSlots(ctx, date)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load booked slots", err).WithOp("appointments.AvailableSlots")
	}

	taken := make(map[string]bool, len(booked))
	for _, slot := range booked {
		taken[slot] = true
	}

	open := make([]string, 0, len(allSlots))
	for _, slot := range allSlots {
		if !taken[slot] {
			open = append(open, slot)
		}
	}
	return open, nil
}

type ProposeInput struct {
	LeadID          uuid.UUID
	Date            time.Time
	TimeSlot        string
	PropertyAddress *string
	Notes           *string
}

// Propose creates a proposed appointment, moves the lead into the
// appointment stage and schedules a reminder.
func (s *Service) Propose(ctx context.Context, input ProposeInput) (repository.Appointment, error) {
	if !validSlot(input.TimeSlot) {
		return repository.Appointment{}, apperr.Validation(fmt.Sprintf("time_slot %q is not offered", input.TimeSlot))
	}

	open, err := s.AvailableSlots(ctx, input.Date)
	if err != nil {
		return repository.Appointment{}, err
	}
	if !contains(open, input.TimeSlot) {
		return repository.Appointment{}, apperr.Conflict(fmt.Sprintf("slot %s on %s is already booked", input.TimeSlot, input.Date.Format("2006-01-02")))
	}

	appt, err := s.repo.Create(ctx, repository.CreateParams{
		LeadID:          input.LeadID,
		Date:            input.Date,
		TimeSlot:        input.TimeSlot,
		PropertyAddress: input.PropertyAddress,
		Notes:           input.Notes,
	})
	if err != nil {
		return repository.Appointment{}, apperr.Wrap(apperr.KindInternal, "failed to create appointment", err).WithOp("appointments.Propose")
	}

	nextAction := fmt.Sprintf("Showing: %s at %s", appt.Date.Format("2006-01-02"), appt.TimeSlot)
	if err := s.repo.MarkLeadBooked(ctx, input.LeadID, nextAction); err != nil {
		s.log.DatabaseError("appointments.Propose", err)
	}

	s.bus.Publish(ctx, events.AppointmentProposed{
		BaseEvent:       events.NewBaseEvent(),
		AppointmentID:   appt.ID,
		LeadID:          appt.LeadID,
		Date:            appt.Date.Format("2006-01-02"),
		TimeSlot:        appt.TimeSlot,
		PropertyAddress: stringOrEmpty(appt.PropertyAddress),
	})

	s.scheduleReminder(ctx, appt)

	return appt, nil
}

func (s *Service) scheduleReminder(ctx context.Context, appt repository.Appointment) {
	if s.scheduler == nil {
		return
	}

	at := appt.Date.Add(-reminderLead)
	if !at.After(time.Now()) {
		return
	}
	if err := s.scheduler.ScheduleReminder(ctx, appt.ID, appt.LeadID, at); err != nil {
		s.log.Error("failed to schedule appointment reminder", "error", err, "appointmentId", appt.ID)
	}
}

func (s *Service) List(ctx context.Context) ([]repository.AppointmentWithLead, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list appointments", err).WithOp("appointments.List")
	}
	return items, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (repository.Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.Appointment{}, apperr.NotFound("appointment not found")
		}
		return repository.Appointment{}, apperr.Wrap(apperr.KindInternal, "failed to load appointment", err).WithOp("appointments.Get")
	}
	return appt, nil
}

type UpdateInput struct {
	Status   *string
	Date     *time.Time
	TimeSlot *string
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (repository.Appointment, error) {
	if input.TimeSlot != nil && !validSlot(*input.TimeSlot) {
		return repository.Appointment{}, apperr.Validation(fmt.Sprintf("time_slot %q is not offered", *input.TimeSlot))
	}

	appt, err := s.repo.Update(ctx, id, repository.UpdateParams{
		Status:   input.Status,
		Date:     input.Date,
		TimeSlot: input.TimeSlot,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.Appointment{}, apperr.NotFound("appointment not found")
		}
		return repository.Appointment{}, apperr.Wrap(apperr.KindInternal, "failed to update appointment", err).WithOp("appointments.Update")
	}

	// a reschedule gets a fresh reminder
	if input.Date != nil || input.TimeSlot != nil {
		s.scheduleReminder(ctx, appt)
	}

	return appt, nil
}

func validSlot(slot string) bool {
	return contains(allSlots, slot)
}

func contains(slots []string, slot string) bool {
	for _, s := range slots {
		if s == slot {
			return true
		}
	}
	return false
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
