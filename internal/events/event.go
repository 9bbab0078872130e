// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"leadpilot_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var (
	NewBaseEvent   = events.NewBaseEvent
	NewInMemoryBus = events.NewInMemoryBus
)

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadCreated is published when a new lead record is created.
type LeadCreated struct {
	BaseEvent
	LeadID   uuid.UUID `json:"leadId"`
	LeadType string    `json:"leadType"`
	Source   string    `json:"source,omitempty"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadQualified is published after a reasoning turn updates a lead with a
// qualifying strategy (qualify or book_now).
type LeadQualified struct {
	BaseEvent
	LeadID         uuid.UUID `json:"leadId"`
	Strategy       string    `json:"strategy"`
	ReadinessScore int       `json:"readinessScore"`
	NextAction     string    `json:"nextAction"`
}

func (e LeadQualified) EventName() string { return "leads.lead.qualified" }

// HandoffRequested is published when the reasoning engine decides a human
// agent must take over the conversation.
type HandoffRequested struct {
	BaseEvent
	LeadID    *uuid.UUID `json:"leadId,omitempty"`
	Reasoning string     `json:"reasoning"`
	UserInput string     `json:"userInput"`
}

func (e HandoffRequested) EventName() string { return "leads.handoff.requested" }

// LeadFollowUpDue is published by the worker when a scheduled nurture
// follow-up comes due.
type LeadFollowUpDue struct {
	BaseEvent
	LeadID uuid.UUID `json:"leadId"`
}

func (e LeadFollowUpDue) EventName() string { return "leads.followup.due" }

// =============================================================================
// Appointments Domain Events
// =============================================================================

// AppointmentProposed is published when a new appointment is proposed for a lead.
type AppointmentProposed struct {
	BaseEvent
	AppointmentID   uuid.UUID `json:"appointmentId"`
	LeadID          uuid.UUID `json:"leadId"`
	Date            string    `json:"date"`
	TimeSlot        string    `json:"timeSlot"`
	PropertyAddress string    `json:"propertyAddress,omitempty"`
}

func (e AppointmentProposed) EventName() string { return "appointments.appointment.proposed" }

// AppointmentReminderDue is published by the worker when a scheduled
// appointment reminder comes due.
type AppointmentReminderDue struct {
	BaseEvent
	AppointmentID uuid.UUID `json:"appointmentId"`
	LeadID        uuid.UUID `json:"leadId"`
}

func (e AppointmentReminderDue) EventName() string { return "appointments.reminder.due" }

// =============================================================================
// Calls Domain Events
// =============================================================================

// CallEnded is published after an end-of-call report has been processed and
// the call summary persisted.
type CallEnded struct {
	BaseEvent
	CallID          uuid.UUID  `json:"callId"`
	LeadID          *uuid.UUID `json:"leadId,omitempty"`
	DurationSeconds int        `json:"durationSeconds"`
	RiskFlags       []string   `json:"riskFlags,omitempty"`
}

func (e CallEnded) EventName() string { return "calls.call.ended" }
