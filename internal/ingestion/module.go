// Package ingestion provides the conversion-ingestion domain module: the
// webhook surface, replay protection, and the real-time claim linker.
package ingestion

import (
	"context"

	"salesops_backend/internal/http"
	"salesops_backend/internal/ingestion/dedup"
	"salesops_backend/internal/ingestion/handler"
	"salesops_backend/internal/ingestion/repository"
	"salesops_backend/internal/ingestion/service"
	"salesops_backend/platform/events"
	"salesops_backend/platform/logger"
	"salesops_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the ingestion domain module.
type Module struct {
	handler *handler.Handler
	repo    *repository.Repository
	Service *service.Service
	log     *logger.Logger
}

// NewModule creates a new ingestion module with all dependencies wired.
// The replay store may be nil when redis is not configured; replay
// protection then degrades to accepting every delivery.
func NewModule(pool *pgxpool.Pool, replay dedup.Store, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, replay, bus, log)
	h := handler.New(svc, repo, val)

	return &Module{
		handler: h,
		repo:    repo,
		Service: svc,
		log:     log,
	}
}

// RegisterHandlers subscribes the module's domain event handlers.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(service.DialClaimedEventName, events.HandlerFunc(func(ctx context.Context, ev events.Event) error {
		claimed, ok := ev.(service.DialClaimedEvent)
		if !ok {
			return nil
		}
		m.log.Info("dial claimed by conversion",
			"account_id", claimed.AccountID,
			"dial_id", claimed.DialID,
			"conversion_id", claimed.ConversionID,
			"conversion_kind", claimed.ConversionKind,
		)
		return nil
	}))
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "ingestion"
}

// RegisterRoutes registers the webhook surface and key management routes.
func (m *Module) RegisterRoutes(ctx *http.RouterContext) {
	webhook := ctx.Webhooks.Group("")
	webhook.Use(handler.APIKeyAuth(m.repo))
	m.handler.RegisterWebhookRoutes(webhook)

	keys := ctx.Protected.Group("/webhook-keys")
	m.handler.RegisterKeyRoutes(keys)
}

// Compile-time check that Module implements http.Module.
var _ http.Module = (*Module)(nil)
