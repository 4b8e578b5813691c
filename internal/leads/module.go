// Package leads provides the leads bounded context module.
package leads

import (
	"prmhub_backend/internal/events"
	apphttp "prmhub_backend/internal/http"
	"prmhub_backend/internal/leads/handler"
	"prmhub_backend/internal/leads/repository"
	"prmhub_backend/internal/leads/service"
	"prmhub_backend/platform/logger"
	"prmhub_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the leads module. The scorer is the
// partners scoring engine, invoked on every status transition of a lead
// with an assigned partner.
func NewModule(
	pool *pgxpool.Pool,
	eventBus events.Bus,
	log *logger.Logger,
	val *validator.Validator,
	scorer service.PerformanceScorer,
) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, scorer, eventBus, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts lead routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	leadsGroup := ctx.Protected.Group("/leads")
	m.handler.RegisterRoutes(leadsGroup)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
