// Package partners provides the partners bounded context module.
package partners

import (
	"prmhub_backend/internal/events"
	apphttp "prmhub_backend/internal/http"
	leadsrepo "prmhub_backend/internal/leads/repository"
	"prmhub_backend/internal/partners/handler"
	"prmhub_backend/internal/partners/repository"
	"prmhub_backend/internal/partners/scoring"
	"prmhub_backend/internal/partners/service"
	"prmhub_backend/platform/logger"
	"prmhub_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the partners bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	engine  *scoring.Service
}

// NewModule creates and initializes the partners module with all its
// dependencies. The scoring engine reads lead creation timestamps through
// the leads repository.
func NewModule(
	pool *pgxpool.Pool,
	eventBus events.Bus,
	log *logger.Logger,
	val *validator.Validator,
	cache service.PercentageCache,
) *Module {
	repo := repository.New(pool)
	engine := scoring.New(leadsrepo.New(pool), repo, log)
	engine.SetEventBus(eventBus)
	if inv, ok := cache.(scoring.Invalidator); ok && cache != nil {
		engine.SetCacheInvalidator(inv)
	}

	svc := service.New(repo, engine)
	if cache != nil {
		svc.SetPercentageCache(cache)
	}
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc, engine: engine}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "partners"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// ScoringEngine returns the performance scoring engine for the leads
// lifecycle to invoke on status transitions.
func (m *Module) ScoringEngine() *scoring.Service {
	return m.engine
}

// RegisterRoutes mounts partner routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	partnersGroup := ctx.Protected.Group("/partners")
	m.handler.RegisterRoutes(partnersGroup)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
