// Package appointments provides the appointment scheduling bounded context
// module.
package appointments

import (
	"leadpilot_backend/internal/appointments/handler"
	"leadpilot_backend/internal/appointments/repository"
	"leadpilot_backend/internal/appointments/service"
	"leadpilot_backend/internal/events"
	apphttp "leadpilot_backend/internal/http"
	"leadpilot_backend/platform/logger"
	"leadpilot_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the appointments bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	svc     *service.Service
	repo    *repository.Repository
}

// NewModule creates and initializes the appointments module. The reminder
// scheduler may be nil when no worker is deployed.
func NewModule(
	pool *pgxpool.Pool,
	eventBus events.Bus,
	scheduler service.ReminderScheduler,
	val *validator.Validator,
	log *logger.Logger,
) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, eventBus, scheduler, log)

	return &Module{
		handler: handler.New(svc, val),
		svc:     svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "appointments"
}

// Service returns the appointment service for use by the voice webhook.
func (m *Module) Service() *service.Service {
	return m.svc
}

// Repository returns the appointment repository for read-only cross-module
// access (notification content).
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts appointment routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/appointments"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
