// Package feed provides reactions and comments on lead status history
// entries.
package feed

import (
	"prmhub_backend/internal/feed/handler"
	"prmhub_backend/internal/feed/repository"
	"prmhub_backend/internal/feed/service"
	apphttp "prmhub_backend/internal/http"
	"prmhub_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the feed bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the feed module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "feed"
}

// RegisterRoutes mounts feed routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	feedGroup := ctx.Protected.Group("/feed")
	m.handler.RegisterRoutes(feedGroup)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
