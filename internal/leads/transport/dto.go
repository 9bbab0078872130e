// Package transport defines the HTTP request/response shapes for the leads
// module.
package transport

import (
	"encoding/json"
	"time"

	"leadpilot_backend/internal/leads/repository"
	"leadpilot_backend/internal/reasoning"
	"leadpilot_backend/platform/validator"

	"github.com/google/uuid"
)

// RegisterValidations installs the lead enum tags the DTOs in this package
// rely on. Called once by the module constructor.
func RegisterValidations(val *validator.Validator) {
	val.Register("lead_type", validator.OneOf(
		reasoning.LeadTypeBuyer, reasoning.LeadTypeSeller, reasoning.LeadTypeInvestor, reasoning.LeadTypeRenter,
	))
	val.Register("lead_status", validator.OneOf(
		"new", "contacted", "qualified", "appointment_set", "closed", "lost",
	))
}

// Request DTOs

type CreateLeadRequest struct {
	Name     string  `json:"name" validate:"omitempty,max=200"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,min=5,max=20"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	LeadType string  `json:"lead_type" validate:"omitempty,lead_type"`
}

type UpdateLeadRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,min=5,max=20"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	LeadType *string `json:"lead_type,omitempty" validate:"omitempty,lead_type"`
	Status   *string `json:"status,omitempty" validate:"omitempty,lead_status"`
}

type ReasonRequest struct {
	UserInput           string              `json:"user_input" validate:"required,min=1,max=4000"`
	LeadID              *uuid.UUID          `json:"lead_id,omitempty"`
	CallID              *uuid.UUID          `json:"call_id,omitempty"`
	ConversationHistory []reasoning.Message `json:"conversation_history,omitempty" validate:"max=100"`
}

// Response DTOs

type LeadResponse struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Phone          *string    `json:"phone"`
	Email          *string    `json:"email"`
	LeadType       string     `json:"lead_type"`
	Status         string     `json:"status"`
	BudgetRange    *string    `json:"budget_range"`
	Location       *string    `json:"location"`
	Urgency        *string    `json:"urgency"`
	Timeline       *string    `json:"timeline"`
	Motivation     *string    `json:"motivation"`
	IntentScore    int        `json:"intent_score"`
	UrgencyScore   int        `json:"urgency_score"`
	ReadinessScore int        `json:"readiness_score"`
	NextAction     *string    `json:"next_action"`
	ManagerSummary *string    `json:"manager_summary,omitempty"`
	LastContactAt  *time.Time `json:"last_contact_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func ToLeadResponse(lead repository.Lead) LeadResponse {
	return LeadResponse{
		ID:             lead.ID,
		Name:           lead.Name,
		Phone:          lead.Phone,
		Email:          lead.Email,
		LeadType:       lead.LeadType,
		Status:         lead.Status,
		BudgetRange:    lead.BudgetRange,
		Location:       lead.Location,
		Urgency:        lead.Urgency,
		Timeline:       lead.Timeline,
		Motivation:     lead.Motivation,
		IntentScore:    lead.IntentScore,
		UrgencyScore:   lead.UrgencyScore,
		ReadinessScore: lead.ReadinessScore,
		NextAction:     lead.NextAction,
		ManagerSummary: lead.ManagerSummary,
		LastContactAt:  lead.LastContactAt,
		CreatedAt:      lead.CreatedAt,
		UpdatedAt:      lead.UpdatedAt,
	}
}

func ToLeadResponses(leads []repository.Lead) []LeadResponse {
	out := make([]LeadResponse, 0, len(leads))
	for _, lead := range leads {
		out = append(out, ToLeadResponse(lead))
	}
	return out
}

type ReasoningLogResponse struct {
	ID                   uuid.UUID       `json:"id"`
	LeadID               *uuid.UUID      `json:"lead_id"`
	CallID               *uuid.UUID      `json:"call_id"`
	UserInput            string          `json:"user_input"`
	ExtractedData        json.RawMessage `json:"extracted_data"`
	Reasoning            string          `json:"reasoning"`
	StrategyChosen       string          `json:"strategy_chosen"`
	AlternativesRejected json.RawMessage `json:"alternatives_rejected"`
	ReadinessScore       int             `json:"readiness_score"`
	Confidence           float64         `json:"confidence"`
	ActionTaken          *string         `json:"action_taken"`
	CreatedAt            time.Time       `json:"created_at"`
}

func ToReasoningLogResponses(logs []repository.ReasoningLog) []ReasoningLogResponse {
	out := make([]ReasoningLogResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, ReasoningLogResponse{
			ID:                   l.ID,
			LeadID:               l.LeadID,
			CallID:               l.CallID,
			UserInput:            l.UserInput,
			ExtractedData:        l.ExtractedData,
			Reasoning:            l.Reasoning,
			StrategyChosen:       l.StrategyChosen,
			AlternativesRejected: l.AlternativesRejected,
			ReadinessScore:       l.ReadinessScore,
			Confidence:           l.Confidence,
			ActionTaken:          l.ActionTaken,
			CreatedAt:            l.CreatedAt,
		})
	}
	return out
}

type LeadDetailResponse struct {
	Lead          LeadResponse                   `json:"lead"`
	ReasoningLogs []ReasoningLogResponse         `json:"reasoning_logs"`
	Calls         []repository.CallRecord        `json:"calls"`
	Appointments  []repository.AppointmentRecord `json:"appointments"`
}

type ReasonResponse struct {
	Success        bool             `json:"success"`
	Result         reasoning.Result `json:"result"`
	LeadID         *uuid.UUID       `json:"lead_id"`
	ReasoningLogID *uuid.UUID       `json:"reasoning_log_id"`
}

type ManagerSummaryResponse struct {
	Summary string `json:"summary"`
}
