// Package calls provides the call lifecycle bounded context module.
package calls

import (
	"leadpilot_backend/internal/calls/handler"
	"leadpilot_backend/internal/calls/repository"
	"leadpilot_backend/internal/calls/service"
	"leadpilot_backend/internal/events"
	apphttp "leadpilot_backend/internal/http"
	"leadpilot_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the calls bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	svc     *service.Service
}

// NewModule creates and initializes the calls module. The recording archiver
// may be nil when object storage is not configured.
func NewModule(
	pool *pgxpool.Pool,
	summarizer service.Summarizer,
	recordings service.RecordingArchiver,
	eventBus events.Bus,
	log *logger.Logger,
) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, summarizer, recordings, eventBus, log)

	return &Module{
		handler: handler.New(svc),
		svc:     svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "calls"
}

// Service returns the call service for use by the voice webhook.
func (m *Module) Service() *service.Service {
	return m.svc
}

// RegisterRoutes mounts call routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/calls"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
