// Package voice receives webhooks from the Vapi voice provider and routes
// them into the lead, appointment and call services. The assistant drives
// the conversation; this layer executes its tool calls and files the
// end-of-call report.
package voice

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	apptrepo "leadpilot_backend/internal/appointments/repository"
	apptsvc "leadpilot_backend/internal/appointments/service"
	callsrepo "leadpilot_backend/internal/calls/repository"
	callsvc "leadpilot_backend/internal/calls/service"
	leadsrepo "leadpilot_backend/internal/leads/repository"
	leadsvc "leadpilot_backend/internal/leads/service"
	"leadpilot_backend/internal/reasoning"
	"leadpilot_backend/platform/httpkit"
	"leadpilot_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LeadGateway is the slice of the leads service the webhook needs.
type LeadGateway interface {
	Reason(ctx context.Context, input leadsvc.ReasonInput) leadsvc.ReasonOutput
	FindByPhone(ctx context.Context, phone string) (leadsrepo.Lead, error)
}

// AppointmentGateway is the slice of the appointments service the webhook
// needs.
type AppointmentGateway interface {
	Propose(ctx context.Context, input apptsvc.ProposeInput) (apptrepo.Appointment, error)
	AvailableSlots(ctx context.Context, date time.Time) ([]string, error)
}

// CallGateway is the slice of the calls service the webhook needs.
type CallGateway interface {
	StartCall(ctx context.Context, vapiCallID string, leadID *uuid.UUID) (callsrepo.Call, error)
	RecordEndOfCall(ctx context.Context, input callsvc.EndOfCallInput) (callsrepo.Call, error)
}

type Handler struct {
	leads        LeadGateway
	appointments AppointmentGateway
	calls        CallGateway
	log          *logger.Logger
}

func NewHandler(leads LeadGateway, appointments AppointmentGateway, calls CallGateway, log *logger.Logger) *Handler {
	return &Handler{leads: leads, appointments: appointments, calls: calls, log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/vapi", h.Webhook)
}

// Webhook is the single provider entry point. Unknown or partial payloads
// are acknowledged with 200 so the provider does not retry them forever.
func (h *Handler) Webhook(c *gin.Context) {
	var envelope webhookEnvelope
	if err := c.ShouldBindJSON(&envelope); err != nil || envelope.Message == nil {
		httpkit.OK(c, gin.H{"received": true})
		return
	}

	msg := envelope.Message
	ctx := c.Request.Context()

	switch msg.Type {
	case "function-call":
		h.handleFunctionCall(c, msg)

	case "status-update":
		h.handleStatusUpdate(ctx, msg)
		httpkit.OK(c, gin.H{"received": true})

	case "end-of-call-report":
		h.handleEndOfCall(ctx, msg)
		httpkit.OK(c, gin.H{"received": true})

	case "transcript":
		h.log.Debug("voice transcript fragment", "role", msg.Role, "transcript", msg.Transcript)
		httpkit.OK(c, gin.H{"received": true})

	default:
		httpkit.OK(c, gin.H{"received": true})
	}
}

func (h *Handler) handleFunctionCall(c *gin.Context, msg *webhookMessage) {
	if msg.FunctionCall == nil {
		httpkit.Error(c, http.StatusBadRequest, "no function call data", nil)
		return
	}

	switch msg.FunctionCall.Name {
	case "process_lead_input":
		h.processLeadInput(c, msg.FunctionCall.Parameters)

	case "book_appointment":
		h.bookAppointment(c, msg.FunctionCall.Parameters)

	case "get_available_slots":
		h.availableSlots(c, msg.FunctionCall.Parameters)

	default:
		httpkit.Error(c, http.StatusBadRequest, fmt.Sprintf("unknown function: %s", msg.FunctionCall.Name), nil)
	}
}

func (h *Handler) processLeadInput(c *gin.Context, raw json.RawMessage) {
	var params processLeadInputParams
	if err := json.Unmarshal(raw, &params); err != nil || params.UserInput == "" {
		httpkit.Error(c, http.StatusBadRequest, "user_input is required", nil)
		return
	}

	history := make([]reasoning.Message, 0, len(params.ConversationHistory))
	for _, m := range params.ConversationHistory {
		history = append(history, reasoning.Message{Role: m.Role, Content: m.Content})
	}

	out := h.leads.Reason(c.Request.Context(), leadsvc.ReasonInput{
		UserInput: params.UserInput,
		LeadID:    parseOptionalUUID(params.LeadID),
		CallID:    parseOptionalUUID(params.CallID),
		History:   history,
	})

	// the assistant only needs the conversational surface of the result
	httpkit.OK(c, gin.H{"result": gin.H{
		"strategy":        out.Result.Strategy,
		"response":        out.Result.ResponseToUser,
		"readiness_score": out.Result.ReadinessScore,
		"next_action":     out.Result.NextAction,
		"lead_id":         out.LeadID,
	}})
}

func (h *Handler) bookAppointment(c *gin.Context, raw json.RawMessage) {
	var params bookAppointmentParams
	if err := json.Unmarshal(raw, &params); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid parameters", nil)
		return
	}

	leadID := parseOptionalUUID(params.LeadID)
	if leadID == nil {
		httpkit.Error(c, http.StatusBadRequest, "lead_id is required", nil)
		return
	}
	date, err := time.Parse("2006-01-02", params.Date)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "date must be YYYY-MM-DD", nil)
		return
	}

	input := apptsvc.ProposeInput{LeadID: *leadID, Date: date, TimeSlot: params.TimeSlot}
	if params.PropertyAddress != "" {
		input.PropertyAddress = &params.PropertyAddress
	}

	appt, err := h.appointments.Propose(c.Request.Context(), input)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"result": gin.H{
		"success":        true,
		"appointment_id": appt.ID,
		"message":        fmt.Sprintf("Appointment proposed for %s at %s", params.Date, params.TimeSlot),
	}})
}

func (h *Handler) availableSlots(c *gin.Context, raw json.RawMessage) {
	var params availableSlotsParams
	if err := json.Unmarshal(raw, &params); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid parameters", nil)
		return
	}

	date, err := time.Parse("2006-01-02", params.Date)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "date must be YYYY-MM-DD", nil)
		return
	}

	slots, err := h.appointments.AvailableSlots(c.Request.Context(), date)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"result": gin.H{"date": params.Date, "available_slots": slots}})
}

func (h *Handler) handleStatusUpdate(ctx context.Context, msg *webhookMessage) {
	if msg.Call == nil || msg.Call.ID == "" {
		return
	}
	h.log.Info("voice call status", "callId", msg.Call.ID, "status", msg.Status)

	if msg.Status != "in-progress" {
		return
	}

	var leadID *uuid.UUID
	if number := callerNumber(msg); number != "" {
		if lead, err := h.leads.FindByPhone(ctx, number); err == nil {
			leadID = &lead.ID
		}
	}
	if _, err := h.calls.StartCall(ctx, msg.Call.ID, leadID); err != nil {
		h.log.Error("failed to register started call", "error", err, "callId", msg.Call.ID)
	}
}

func (h *Handler) handleEndOfCall(ctx context.Context, msg *webhookMessage) {
	if msg.Call == nil || msg.Call.ID == "" {
		return
	}

	var leadID *uuid.UUID
	if number := callerNumber(msg); number != "" {
		if lead, err := h.leads.FindByPhone(ctx, number); err == nil {
			leadID = &lead.ID
		}
	}

	if _, err := h.calls.RecordEndOfCall(ctx, callsvc.EndOfCallInput{
		VapiCallID:      msg.Call.ID,
		LeadID:          leadID,
		Transcript:      msg.Transcript,
		DurationSeconds: int(math.Round(msg.DurationSeconds)),
		RecordingURL:    msg.RecordingURL,
	}); err != nil {
		h.log.Error("failed to record end of call", "error", err, "callId", msg.Call.ID)
	}
}

func callerNumber(msg *webhookMessage) string {
	if msg.Call == nil || msg.Call.Customer == nil {
		return ""
	}
	return msg.Call.Customer.Number
}

func parseOptionalUUID(s string) *uuid.UUID {
	if s == "" {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return &id
}
