// Package invoices keeps the invoice draft created for approved bookings.
package invoices

import (
	"business_services_hub/internal/events"
	apphttp "business_services_hub/internal/http"
	"business_services_hub/internal/invoices/handler"
	"business_services_hub/internal/invoices/repository"
	"business_services_hub/internal/invoices/service"
	"business_services_hub/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the invoices bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates the invoices module.
func NewModule(pool *pgxpool.Pool, bus events.Bus, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), bus, log)
	return &Module{handler: handler.New(svc), service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "invoices"
}

// Service returns the invoice service used by the scheduler worker.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts invoice routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/bookings/:id/invoice", m.handler.GetForBooking)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
