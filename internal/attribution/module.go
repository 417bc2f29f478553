// Package attribution provides the event-correlation and attribution domain module.
package attribution

import (
	"salesops_backend/internal/attribution/domain"
	"salesops_backend/internal/attribution/handler"
	"salesops_backend/internal/attribution/repository"
	"salesops_backend/internal/attribution/service"
	apphttp "salesops_backend/internal/http"
	"salesops_backend/platform/config"
	"salesops_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the attribution domain module.
type Module struct {
	handler *handler.Handler
	Service *service.Service
	Repo    *repository.Repository
}

// NewModule creates a new attribution module with all dependencies wired.
// The configured window sizes become the policy defaults for requests that
// do not set their own.
func NewModule(pool *pgxpool.Pool, cfg config.AttributionConfig, log *logger.Logger) *Module {
	defaults := domain.SessionLinkingPolicy{
		AttributionMode:       domain.ModePrimary,
		TimeWindowDays:        cfg.GetDefaultTimeWindowDays(),
		SameCallWindowMinutes: cfg.GetDefaultSameCallWindowMinutes(),
	}

	repo := repository.New(pool)
	svc := service.New(repo, log)
	h := handler.New(svc, defaults)

	return &Module{
		handler: h,
		Service: svc,
		Repo:    repo,
	}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "attribution"
}

// RegisterRoutes registers the module's routes under /api/v1/metrics.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	metrics := ctx.Protected.Group("/metrics")
	m.handler.RegisterRoutes(metrics)
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)
