package voice

import (
	apphttp "leadpilot_backend/internal/http"
	"leadpilot_backend/platform/logger"
)

// Module is the voice webhook module implementing http.Module.
type Module struct {
	handler *Handler
}

// NewModule wires the webhook handler to the lead, appointment and call
// services.
func NewModule(leads LeadGateway, appointments AppointmentGateway, calls CallGateway, log *logger.Logger) *Module {
	return &Module{handler: NewHandler(leads, appointments, calls, log)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "voice"
}

// RegisterRoutes mounts the provider webhook. The webhook group already
// carries secret header verification.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Webhooks)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
