package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadpilot_backend/internal/appointments/repository"
	"leadpilot_backend/internal/events"
	"leadpilot_backend/platform/apperr"
	"leadpilot_backend/platform/logger"
)

type fakeStore struct {
	appointments map[uuid.UUID]repository.Appointment
	leadActions  map[uuid.UUID]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		appointments: map[uuid.UUID]repository.Appointment{},
		leadActions:  map[uuid.UUID]string{},
	}
}

func (f *fakeStore) Create(_ context.Context, params repository.CreateParams) (repository.Appointment, error) {
	appt := repository.Appointment{
		ID:              uuid.New(),
		LeadID:          params.LeadID,
		Date:            params.Date,
		TimeSlot:        params.TimeSlot,
		PropertyAddress: params.PropertyAddress,
		Status:          "proposed",
		Notes:           params.Notes,
	}
	f.appointments[appt.ID] = appt
	return appt, nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (repository.Appointment, error) {
	appt, ok := f.appointments[id]
	if !ok {
		return repository.Appointment{}, repository.ErrNotFound
	}
	return appt, nil
}

func (f *fakeStore) List(_ context.Context) ([]repository.AppointmentWithLead, error) { return nil, nil }

func (f *fakeStore) BookedSlots(_ context.Context, date time.Time) ([]string, error) {
	slots := []string{}
	for _, appt := range f.appointments {
		if appt.Date.Equal(date) && appt.Status != "cancelled" {
			slots = append(slots, appt.TimeSlot)
		}
	}
	return slots, nil
}

func (f *fakeStore) Update(_ context.Context, id uuid.UUID, params repository.UpdateParams) (repository.Appointment, error) {
	appt, ok := f.appointments[id]
	if !ok {
		return repository.Appointment{}, repository.ErrNotFound
	}
	if params.Status != nil {
		appt.Status = *params.Status
	}
	if params.Date != nil {
		appt.Date = *params.Date
	}
	if params.TimeSlot != nil {
		appt.TimeSlot = *params.TimeSlot
	}
	f.appointments[id] = appt
	return appt, nil
}

func (f *fakeStore) MarkLeadBooked(_ context.Context, leadID uuid.UUID, nextAction string) error {
	f.leadActions[leadID] = nextAction
	return nil
}

type fakeBus struct {
	published []events.Event
}

func (f *fakeBus) Publish(_ context.Context, e events.Event) { f.published = append(f.published, e) }
func (f *fakeBus) PublishSync(_ context.Context, e events.Event) error {
	f.published = append(f.published, e)
	return nil
}
func (f *fakeBus) Subscribe(string, events.Handler) {}

type fakeScheduler struct {
	reminders []time.Time
}

func (f *fakeScheduler) ScheduleReminder(_ context.Context, _, _ uuid.UUID, at time.Time) error {
	f.reminders = append(f.reminders, at)
	return nil
}

func tomorrow() time.Time {
	return time.Now().AddDate(0, 0, 2).Truncate(24 * time.Hour)
}

func TestProposeBooksSlotAndUpdatesLead(t *testing.T) {
	store := newFakeStore()
	bus := &fakeBus{}
	sched := &fakeScheduler{}
	svc := New(store, bus, sched, logger.New("development"))

	leadID := uuid.New()
	appt, err := svc.Propose(context.Background(), ProposeInput{
		LeadID:   leadID,
		Date:     tomorrow(),
		TimeSlot: "2:00 PM",
	})
	require.NoError(t, err)

	assert.Equal(t, "proposed", appt.Status)
	assert.Contains(t, store.leadActions[leadID], "2:00 PM")

	require.Len(t, bus.published, 1)
	proposed, ok := bus.published[0].(events.AppointmentProposed)
	require.True(t, ok)
	assert.Equal(t, appt.ID, proposed.AppointmentID)

	require.Len(t, sched.reminders, 1)
	assert.WithinDuration(t, appt.Date.Add(-24*time.Hour), sched.reminders[0], time.Second)
}

func TestProposeRejectsUnknownSlot(t *testing.T) {
	svc := New(newFakeStore(), &fakeBus{}, nil, logger.New("development"))

	_, err := svc.Propose(context.Background(), ProposeInput{
		LeadID:   uuid.New(),
		Date:     tomorrow(),
		TimeSlot: "5:30 AM",
	})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestProposeRejectsDoubleBooking(t *testing.T) {
	store := newFakeStore()
	svc := New(store, &fakeBus{}, nil, logger.New("development"))
	date := tomorrow()

	_, err := svc.Propose(context.Background(), ProposeInput{LeadID: uuid.New(), Date: date, TimeSlot: "2:00 PM"})
	require.NoError(t, err)

	_, err = svc.Propose(context.Background(), ProposeInput{LeadID: uuid.New(), Date: date, TimeSlot: "2:00 PM"})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestAvailableSlotsFiltersBooked(t *testing.T) {
	store := newFakeStore()
	svc := New(store, &fakeBus{}, nil, logger.New("development"))
	date := tomorrow()

	_, err := svc.Propose(context.Background(), ProposeInput{LeadID: uuid.New(), Date: date, TimeSlot: "9:00 AM"})
	require.NoError(t, err)

	slots, err := svc.AvailableSlots(context.Background(), date)
	require.NoError(t, err)
	assert.NotContains(t, slots, "9:00 AM")
	assert.Contains(t, slots, "10:00 AM")
	assert.Len(t, slots, 6)
}

func TestCancelledSlotBecomesAvailable(t *testing.T) {
	store := newFakeStore()
	svc := New(store, &fakeBus{}, nil, logger.New("development"))
	date := tomorrow()

	appt, err := svc.Propose(context.Background(), ProposeInput{LeadID: uuid.New(), Date: date, TimeSlot: "9:00 AM"})
	require.NoError(t, err)

	cancelled := "cancelled"
	_, err = svc.Update(context.Background(), appt.ID, UpdateInput{Status: &cancelled})
	require.NoError(t, err)

	slots, err := svc.AvailableSlots(context.Background(), date)
	require.NoError(t, err)
	assert.Contains(t, slots, "9:00 AM")
}

func TestRescheduleGetsFreshReminder(t *testing.T) {
	store := newFakeStore()
	sched := &fakeScheduler{}
	svc := New(store, &fakeBus{}, sched, logger.New("development"))

	appt, err := svc.Propose(context.Background(), ProposeInput{LeadID: uuid.New(), Date: tomorrow(), TimeSlot: "9:00 AM"})
	require.NoError(t, err)
	require.Len(t, sched.reminders, 1)

	newDate := tomorrow().AddDate(0, 0, 3)
	_, err = svc.Update(context.Background(), appt.ID, UpdateInput{Date: &newDate})
	require.NoError(t, err)
	assert.Len(t, sched.reminders, 2)
}
