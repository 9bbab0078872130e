package handler

import (
	"net/http"
	"time"

	"leadpilot_backend/internal/calls/repository"
	"leadpilot_backend/internal/calls/service"
	"leadpilot_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:id", h.GetByID)
	rg.GET("/:id/recording", h.RecordingURL)
}

type callResponse struct {
	ID                 uuid.UUID  `json:"id"`
	LeadID             *uuid.UUID `json:"lead_id"`
	VapiCallID         *string    `json:"vapi_call_id"`
	Direction          string     `json:"direction"`
	DurationSeconds    int        `json:"duration_seconds"`
	Transcript         *string    `json:"transcript"`
	Summary            *string    `json:"summary"`
	Objections         []string   `json:"objections"`
	CompetitorMentions []string   `json:"competitor_mentions"`
	RiskFlags          []string   `json:"risk_flags"`
	ActionItems        []string   `json:"action_items"`
	HasRecording       bool       `json:"has_recording"`
	CreatedAt          time.Time  `json:"created_at"`
}

func toCallResponse(call repository.Call) callResponse {
	return callResponse{
		ID:                 call.ID,
		LeadID:             call.LeadID,
		VapiCallID:         call.VapiCallID,
		Direction:          call.Direction,
		DurationSeconds:    call.DurationSeconds,
		Transcript:         call.Transcript,
		Summary:            call.Summary,
		Objections:         call.Objections,
		CompetitorMentions: call.CompetitorMentions,
		RiskFlags:          call.RiskFlags,
		ActionItems:        call.ActionItems,
		HasRecording:       call.RecordingKey != nil,
		CreatedAt:          call.CreatedAt,
	}
}

func (h *Handler) List(c *gin.Context) {
	calls, err := h.svc.List(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]callResponse, 0, len(calls))
	for _, call := range calls {
		out = append(out, toCallResponse(call))
	}
	httpkit.OK(c, gin.H{"calls": out})
}

func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}

	call, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"call": toCallResponse(call)})
}

func (h *Handler) RecordingURL(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}

	url, expiresAt, err := h.svc.RecordingURL(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"url": url, "expires_at": expiresAt})
}
