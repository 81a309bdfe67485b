// Package bookings provides the bookings bounded context module: the smart
// status of a booking, its contextual actions and the approval endpoint.
package bookings

import (
	"fmt"

	"business_services_hub/internal/bookings/approval"
	"business_services_hub/internal/bookings/handler"
	"business_services_hub/internal/bookings/repository"
	"business_services_hub/internal/bookings/service"
	"business_services_hub/internal/bookings/templates"
	"business_services_hub/internal/bookings/transport"
	"business_services_hub/internal/events"
	apphttp "business_services_hub/internal/http"
	"business_services_hub/platform/config"
	"business_services_hub/platform/logger"
	"business_services_hub/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Deps are the collaborators the bookings module needs from the composition root.
type Deps struct {
	Pool      *pgxpool.Pool
	Approval  config.ApprovalConfig
	Redis     redis.UniversalClient
	Messenger service.Messenger
	Invoices  service.InvoiceScheduler
	EventBus  events.Bus
	Validator *validator.Validator
	Logger    *logger.Logger
}

// Module is the bookings bounded context module implementing http.Module.
type Module struct {
	handler  *handler.Handler
	status   *service.StatusService
	executor *service.ActionExecutor
	repo     *repository.Repo
}

// NewModule creates and initializes the bookings module with all its dependencies.
func NewModule(deps Deps) (*Module, error) {
	if err := transport.RegisterValidations(deps.Validator); err != nil {
		return nil, fmt.Errorf("register booking validations: %w", err)
	}

	planner, err := templates.Load()
	if err != nil {
		return nil, err
	}

	repo := repository.New(deps.Pool, deps.Logger)
	status := service.NewStatusService(repo, deps.Logger)
	executor := service.NewActionExecutor(service.ExecutorDeps{
		Store:     repo,
		Approver:  approval.NewClient(deps.Approval, deps.Logger),
		Guard:     approval.NewGuard(deps.Redis, deps.Approval.GetApprovalLockTTL()),
		Messenger: deps.Messenger,
		Invoices:  deps.Invoices,
		Planner:   planner,
		EventBus:  deps.EventBus,
	}, deps.Logger)
	approvals := service.NewApprovalService(repo, deps.Invoices, deps.EventBus, deps.Logger)

	return &Module{
		handler:  handler.New(status, executor, approvals, deps.Validator),
		status:   status,
		executor: executor,
		repo:     repo,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "bookings"
}

// Status returns the status service for external use.
func (m *Module) Status() *service.StatusService {
	return m.status
}

// Executor returns the action executor for external use.
func (m *Module) Executor() *service.ActionExecutor {
	return m.executor
}

// Repository returns the repository for direct access if needed.
func (m *Module) Repository() *repository.Repo {
	return m.repo
}

// RegisterRoutes mounts booking routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/bookings/:id")
	group.GET("/smart-status", m.handler.GetSmartStatus)
	group.GET("/actions", m.handler.ListActions)
	group.POST("/actions", ctx.ActionRateLimiter.RateLimit(), m.handler.ExecuteAction)

	// Called by the approval client with a short-lived service token.
	ctx.Protected.POST("/internal/bookings/approve", m.handler.ApproveBooking)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
