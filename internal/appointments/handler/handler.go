package handler

import (
	"net/http"
	"time"

	"leadpilot_backend/internal/appointments/service"
	"leadpilot_backend/internal/appointments/transport"
	"leadpilot_backend/platform/httpkit"
	"leadpilot_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"

	dateLayout = "2006-01-02"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/slots", h.AvailableSlots)
	rg.PATCH("/:id", h.Update)
}

func (h *Handler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"appointments": transport.ToAgendaResponses(items)})
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, "date must be YYYY-MM-DD")
		return
	}

	appt, err := h.svc.Propose(c.Request.Context(), service.ProposeInput{
		LeadID:          req.LeadID,
		Date:            date,
		TimeSlot:        req.TimeSlot,
		PropertyAddress: req.PropertyAddress,
		Notes:           req.Notes,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, gin.H{"appointment": transport.ToAppointmentResponse(appt)})
}

func (h *Handler) AvailableSlots(c *gin.Context) {
	dateParam := c.Query("date")
	date, err := time.Parse(dateLayout, dateParam)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, "date query must be YYYY-MM-DD")
		return
	}

	slots, err := h.svc.AvailableSlots(c.Request.Context(), date)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.AvailableSlotsResponse{Date: dateParam, AvailableSlots: slots})
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	input := service.UpdateInput{Status: req.Status, TimeSlot: req.TimeSlot}
	if req.Date != nil {
		date, err := time.Parse(dateLayout, *req.Date)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, "date must be YYYY-MM-DD")
			return
		}
		input.Date = &date
	}

	appt, err := h.svc.Update(c.Request.Context(), id, input)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"appointment": transport.ToAppointmentResponse(appt)})
}
