// Package messaging stores messages between booking participants and
// serves the receiver's inbox.
package messaging

import (
	"business_services_hub/internal/events"
	apphttp "business_services_hub/internal/http"
	"business_services_hub/internal/messaging/handler"
	"business_services_hub/internal/messaging/repository"
	"business_services_hub/internal/messaging/service"
	"business_services_hub/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the messaging bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates the messaging module.
func NewModule(pool *pgxpool.Pool, bus events.Bus, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), bus, log)
	return &Module{
		handler: handler.New(svc),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "messaging"
}

// Service returns the messaging service for use by other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts message routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/messages"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
