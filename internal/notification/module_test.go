package notification

import (
	"context"
	"testing"
	"time"

	apptrepo "leadpilot_backend/internal/appointments/repository"
	"leadpilot_backend/internal/events"
	leadsrepo "leadpilot_backend/internal/leads/repository"
	"leadpilot_backend/platform/apperr"
	"leadpilot_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEmailConfig struct{}

func (testEmailConfig) GetSMTPHost() string          { return "smtp.example.com" }
func (testEmailConfig) GetSMTPPort() int             { return 587 }
func (testEmailConfig) GetSMTPUsername() string      { return "" }
func (testEmailConfig) GetSMTPPassword() string      { return "" }
func (testEmailConfig) GetEmailFromName() string     { return "Premier Realty" }
func (testEmailConfig) GetEmailFromAddress() string  { return "noreply@example.com" }
func (testEmailConfig) GetAgentInboxAddress() string { return "agents@example.com" }
func (testEmailConfig) IsEmailEnabled() bool         { return true }

type testSender struct {
	handoffCalls     int
	qualifiedCalls   int
	appointmentCalls int
	followUpCalls    int

	lastTo       string
	lastLeadName string
	lastScore    int
	lastSlot     string
	lastNote     string
}

func (s *testSender) SendHandoffAlertEmail(_ context.Context, to, leadName, _, _ string) error {
	s.handoffCalls++
	s.lastTo = to
	s.lastLeadName = leadName
	return nil
}

func (s *testSender) SendLeadQualifiedEmail(_ context.Context, to, leadName string, score int, _ string) error {
	s.qualifiedCalls++
	s.lastTo = to
	s.lastLeadName = leadName
	s.lastScore = score
	return nil
}

func (s *testSender) SendAppointmentNoticeEmail(_ context.Context, to, leadName, _, timeSlot, _ string) error {
	s.appointmentCalls++
	s.lastTo = to
	s.lastLeadName = leadName
	s.lastSlot = timeSlot
	return nil
}

func (s *testSender) SendFollowUpDueEmail(_ context.Context, to, leadName, note string) error {
	s.followUpCalls++
	s.lastTo = to
	s.lastLeadName = leadName
	s.lastNote = note
	return nil
}

type testLeadReader struct {
	leads map[uuid.UUID]leadsrepo.Lead
}

func (r *testLeadReader) GetByID(_ context.Context, id uuid.UUID) (leadsrepo.Lead, error) {
	lead, ok := r.leads[id]
	if !ok {
		return leadsrepo.Lead{}, apperr.NotFound("lead not found")
	}
	return lead, nil
}

type testAppointmentReader struct {
	appointments map[uuid.UUID]apptrepo.Appointment
}

func (r *testAppointmentReader) GetByID(_ context.Context, id uuid.UUID) (apptrepo.Appointment, error) {
	appt, ok := r.appointments[id]
	if !ok {
		return apptrepo.Appointment{}, apperr.NotFound("appointment not found")
	}
	return appt, nil
}

func newTestModule(sender *testSender, leads *testLeadReader, appts *testAppointmentReader) *Module {
	if leads == nil {
		leads = &testLeadReader{leads: map[uuid.UUID]leadsrepo.Lead{}}
	}
	if appts == nil {
		appts = &testAppointmentReader{appointments: map[uuid.UUID]apptrepo.Appointment{}}
	}
	return NewModule(sender, leads, appts, testEmailConfig{}, logger.New("development"))
}

func TestHandleHandoffRequestedWithKnownLead(t *testing.T) {
	leadID := uuid.New()
	phone := "+15550001234"
	leads := &testLeadReader{leads: map[uuid.UUID]leadsrepo.Lead{
		leadID: {ID: leadID, Name: "Dana Reyes", Phone: &phone},
	}}
	sender := &testSender{}
	m := newTestModule(sender, leads, nil)

	err := m.Handle(context.Background(), events.HandoffRequested{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    &leadID,
		Reasoning: "caller asked for a human agent",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, sender.handoffCalls)
	assert.Equal(t, "agents@example.com", sender.lastTo)
	assert.Equal(t, "Dana Reyes", sender.lastLeadName)
}

func TestHandleHandoffRequestedWithoutLead(t *testing.T) {
	sender := &testSender{}
	m := newTestModule(sender, nil, nil)

	err := m.Handle(context.Background(), events.HandoffRequested{
		BaseEvent: events.NewBaseEvent(),
		Reasoning: "frustrated caller, no lead on file",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, sender.handoffCalls)
	assert.Equal(t, "Unknown caller", sender.lastLeadName)
}

func TestHandleLeadQualified(t *testing.T) {
	leadID := uuid.New()
	leads := &testLeadReader{leads: map[uuid.UUID]leadsrepo.Lead{
		leadID: {ID: leadID, Name: "Sam Okafor"},
	}}
	sender := &testSender{}
	m := newTestModule(sender, leads, nil)

	err := m.Handle(context.Background(), events.LeadQualified{
		BaseEvent:      events.NewBaseEvent(),
		LeadID:         leadID,
		Strategy:       "book_now",
		ReadinessScore: 83,
		NextAction:     "offer showing slots",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, sender.qualifiedCalls)
	assert.Equal(t, 83, sender.lastScore)
}

func TestHandleLeadQualifiedUnknownLead(t *testing.T) {
	sender := &testSender{}
	m := newTestModule(sender, nil, nil)

	err := m.Handle(context.Background(), events.LeadQualified{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    uuid.New(),
	})

	require.Error(t, err)
	assert.Zero(t, sender.qualifiedCalls)
}

func TestHandleFollowUpDueUsesNextAction(t *testing.T) {
	leadID := uuid.New()
	next := "share new listings in Maple Grove"
	leads := &testLeadReader{leads: map[uuid.UUID]leadsrepo.Lead{
		leadID: {ID: leadID, Name: "Ira Blum", NextAction: &next},
	}}
	sender := &testSender{}
	m := newTestModule(sender, leads, nil)

	err := m.Handle(context.Background(), events.LeadFollowUpDue{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    leadID,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, sender.followUpCalls)
	assert.Contains(t, sender.lastNote, next)
}

func TestHandleAppointmentReminderSkipsCancelled(t *testing.T) {
	apptID := uuid.New()
	leadID := uuid.New()
	appts := &testAppointmentReader{appointments: map[uuid.UUID]apptrepo.Appointment{
		apptID: {ID: apptID, LeadID: leadID, Status: "cancelled", Date: time.Now(), TimeSlot: "2:00 PM"},
	}}
	sender := &testSender{}
	m := newTestModule(sender, nil, appts)

	err := m.Handle(context.Background(), events.AppointmentReminderDue{
		BaseEvent:     events.NewBaseEvent(),
		AppointmentID: apptID,
		LeadID:        leadID,
	})

	require.NoError(t, err)
	assert.Zero(t, sender.appointmentCalls)
}

func TestHandleAppointmentReminderSendsNotice(t *testing.T) {
	apptID := uuid.New()
	leadID := uuid.New()
	leads := &testLeadReader{leads: map[uuid.UUID]leadsrepo.Lead{
		leadID: {ID: leadID, Name: "Dana Reyes"},
	}}
	appts := &testAppointmentReader{appointments: map[uuid.UUID]apptrepo.Appointment{
		apptID: {ID: apptID, LeadID: leadID, Status: "confirmed", Date: time.Now().Add(24 * time.Hour), TimeSlot: "11:00 AM"},
	}}
	sender := &testSender{}
	m := newTestModule(sender, leads, appts)

	err := m.Handle(context.Background(), events.AppointmentReminderDue{
		BaseEvent:     events.NewBaseEvent(),
		AppointmentID: apptID,
		LeadID:        leadID,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, sender.appointmentCalls)
	assert.Equal(t, "11:00 AM", sender.lastSlot)
}

func TestHandleIgnoresUnknownEvents(t *testing.T) {
	sender := &testSender{}
	m := newTestModule(sender, nil, nil)

	err := m.Handle(context.Background(), events.LeadCreated{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    uuid.New(),
	})

	require.NoError(t, err)
	assert.Zero(t, sender.handoffCalls+sender.qualifiedCalls+sender.appointmentCalls+sender.followUpCalls)
}
