package handler

import (
	"net/http"

	"leadpilot_backend/internal/leads/service"
	"leadpilot_backend/internal/leads/transport"
	"leadpilot_backend/platform/httpkit"
	"leadpilot_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// ReasonHandler serves the public reasoning endpoint consumed by the chat
// widget and the voice layer. It is rate limited per IP because every
// request triggers a completion-service call.
type ReasonHandler struct {
	svc *service.Service
	val *validator.Validator
}

func NewReasonHandler(svc *service.Service, val *validator.Validator) *ReasonHandler {
	return &ReasonHandler{svc: svc, val: val}
}

func (h *ReasonHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/reason", h.Reason)
}

func (h *ReasonHandler) Reason(c *gin.Context) {
	var req transport.ReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "user_input is required", err.Error())
		return
	}

	out := h.svc.Reason(c.Request.Context(), service.ReasonInput{
		UserInput: req.UserInput,
		LeadID:    req.LeadID,
		CallID:    req.CallID,
		History:   req.ConversationHistory,
	})

	httpkit.OK(c, transport.ReasonResponse{
		Success:        true,
		Result:         out.Result,
		LeadID:         out.LeadID,
		ReasoningLogID: out.ReasoningLogID,
	})
}
