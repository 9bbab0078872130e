// Package leads provides the lead management bounded context module:
// CRUD, the reasoning turn endpoint and manager summaries.
package leads

import (
	"leadpilot_backend/internal/events"
	apphttp "leadpilot_backend/internal/http"
	"leadpilot_backend/internal/leads/handler"
	"leadpilot_backend/internal/leads/repository"
	"leadpilot_backend/internal/leads/service"
	"leadpilot_backend/internal/leads/transport"
	"leadpilot_backend/internal/reasoning"
	"leadpilot_backend/platform/logger"
	"leadpilot_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler       *handler.Handler
	reasonHandler *handler.ReasonHandler
	svc           *service.Service
	repo          *repository.Repository
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(
	pool *pgxpool.Pool,
	engine *reasoning.Engine,
	eventBus events.Bus,
	scheduler service.FollowUpScheduler,
	val *validator.Validator,
	log *logger.Logger,
) *Module {
	transport.RegisterValidations(val)

	repo := repository.New(pool)
	svc := service.New(repo, engine, eventBus, scheduler, log)

	return &Module{
		handler:       handler.New(svc, val),
		reasonHandler: handler.NewReasonHandler(svc, val),
		svc:           svc,
		repo:          repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the lead service for use by other modules (voice webhook).
func (m *Module) Service() *service.Service {
	return m.svc
}

// Repository returns the lead repository for read-only cross-module access
// (notification content).
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Lead management requires authentication
	m.handler.RegisterRoutes(ctx.Protected.Group("/leads"))

	// The reasoning endpoint is public but rate limited: every request costs
	// a completion call.
	reasonGroup := ctx.V1.Group("")
	reasonGroup.Use(ctx.ReasoningRateLimiter.RateLimit())
	m.reasonHandler.RegisterRoutes(reasonGroup)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
