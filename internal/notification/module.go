// Package notification subscribes to domain events and sends agent email.
// Domain modules publish events without knowing about SMTP or templates;
// this module inverts that dependency.
package notification

import (
	"context"
	"fmt"

	apptrepo "leadpilot_backend/internal/appointments/repository"
	"leadpilot_backend/internal/email"
	"leadpilot_backend/internal/events"
	leadsrepo "leadpilot_backend/internal/leads/repository"
	"leadpilot_backend/platform/config"
	"leadpilot_backend/platform/logger"

	"github.com/google/uuid"
)

// LeadReader loads lead records for notification content.
type LeadReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (leadsrepo.Lead, error)
}

// AppointmentReader loads appointment records for reminder content.
type AppointmentReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (apptrepo.Appointment, error)
}

// Module handles all notification-related event subscriptions.
type Module struct {
	sender       email.Sender
	leads        LeadReader
	appointments AppointmentReader
	cfg          config.EmailConfig
	log          *logger.Logger
}

func NewModule(sender email.Sender, leads LeadReader, appointments AppointmentReader, cfg config.EmailConfig, log *logger.Logger) *Module {
	return &Module{
		sender:       sender,
		leads:        leads,
		appointments: appointments,
		cfg:          cfg,
		log:          log,
	}
}

// RegisterHandlers subscribes to all relevant domain events on the event bus.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.HandoffRequested{}.EventName(), m)
	bus.Subscribe(events.LeadQualified{}.EventName(), m)
	bus.Subscribe(events.LeadFollowUpDue{}.EventName(), m)
	bus.Subscribe(events.AppointmentProposed{}.EventName(), m)
	bus.Subscribe(events.AppointmentReminderDue{}.EventName(), m)

	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.HandoffRequested:
		return m.handleHandoffRequested(ctx, e)
	case events.LeadQualified:
		return m.handleLeadQualified(ctx, e)
	case events.LeadFollowUpDue:
		return m.handleLeadFollowUpDue(ctx, e)
	case events.AppointmentProposed:
		return m.handleAppointmentProposed(ctx, e)
	case events.AppointmentReminderDue:
		return m.handleAppointmentReminderDue(ctx, e)
	default:
		return nil
	}
}

func (m *Module) handleHandoffRequested(ctx context.Context, e events.HandoffRequested) error {
	name := "Unknown caller"
	phone := ""
	if e.LeadID != nil {
		if lead, err := m.leads.GetByID(ctx, *e.LeadID); err == nil {
			name = lead.Name
			phone = stringOrEmpty(lead.Phone)
		}
	}
	return m.sender.SendHandoffAlertEmail(ctx, m.cfg.GetAgentInboxAddress(), name, phone, e.Reasoning)
}

func (m *Module) handleLeadQualified(ctx context.Context, e events.LeadQualified) error {
	lead, err := m.leads.GetByID(ctx, e.LeadID)
	if err != nil {
		return fmt.Errorf("load qualified lead: %w", err)
	}
	return m.sender.SendLeadQualifiedEmail(ctx, m.cfg.GetAgentInboxAddress(), lead.Name, e.ReadinessScore, e.NextAction)
}

func (m *Module) handleLeadFollowUpDue(ctx context.Context, e events.LeadFollowUpDue) error {
	lead, err := m.leads.GetByID(ctx, e.LeadID)
	if err != nil {
		return fmt.Errorf("load follow-up lead: %w", err)
	}
	note := "The nurture window for this lead has elapsed. Reach out before the interest cools."
	if lead.NextAction != nil && *lead.NextAction != "" {
		note = fmt.Sprintf("Suggested next step: %s", *lead.NextAction)
	}
	return m.sender.SendFollowUpDueEmail(ctx, m.cfg.GetAgentInboxAddress(), lead.Name, note)
}

func (m *Module) handleAppointmentProposed(ctx context.Context, e events.AppointmentProposed) error {
	lead, err := m.leads.GetByID(ctx, e.LeadID)
	if err != nil {
		return fmt.Errorf("load appointment lead: %w", err)
	}
	return m.sender.SendAppointmentNoticeEmail(ctx, m.cfg.GetAgentInboxAddress(), lead.Name, e.Date, e.TimeSlot, e.PropertyAddress)
}

func (m *Module) handleAppointmentReminderDue(ctx context.Context, e events.AppointmentReminderDue) error {
	appt, err := m.appointments.GetByID(ctx, e.AppointmentID)
	if err != nil {
		return fmt.Errorf("load reminded appointment: %w", err)
	}
	// cancelled showings do not get a reminder
	if appt.Status == "cancelled" {
		return nil
	}
	lead, err := m.leads.GetByID(ctx, appt.LeadID)
	if err != nil {
		return fmt.Errorf("load reminded lead: %w", err)
	}
	return m.sender.SendAppointmentNoticeEmail(ctx,
		m.cfg.GetAgentInboxAddress(),
		lead.Name,
		appt.Date.Format("2006-01-02"),
		appt.TimeSlot,
		stringOrEmpty(appt.PropertyAddress),
	)
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
