package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"business_services_hub/internal/adapters"
	"business_services_hub/internal/bookings"
	"business_services_hub/internal/email"
	"business_services_hub/internal/events"
	apphttp "business_services_hub/internal/http"
	"business_services_hub/internal/http/router"
	"business_services_hub/internal/invoices"
	"business_services_hub/internal/messaging"
	"business_services_hub/internal/notification"
	"business_services_hub/internal/scheduler"
	"business_services_hub/platform/config"
	"business_services_hub/platform/db"
	"business_services_hub/platform/logger"
	"business_services_hub/platform/redisconn"
	"business_services_hub/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	redisClient := mustRedis(ctx, cfg, log)
	defer func() { _ = redisClient.Close() }()

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	jobClient, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize job queue client", "error", err)
		panic("failed to initialize job queue client: " + err.Error())
	}
	defer func() { _ = jobClient.Close() }()

	sender, err := email.NewSender(cfg)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	messagingModule := messaging.NewModule(pool, eventBus, log)
	invoicesModule := invoices.NewModule(pool, eventBus, log)

	bookingsModule, err := bookings.NewModule(bookings.Deps{
		Pool:      pool,
		Approval:  cfg,
		Redis:     redisClient,
		Messenger: adapters.NewBookingMessenger(messagingModule.Service()),
		Invoices:  jobClient,
		EventBus:  eventBus,
		Validator: val,
		Logger:    log,
	})
	if err != nil {
		log.Error("failed to initialize bookings module", "error", err)
		panic("failed to initialize bookings module: " + err.Error())
	}

	// Notification module subscribes to domain events and serves the SSE stream
	notificationModule := notification.New(bookingsModule.Repository(), sender, cfg, log)
	notificationModule.RegisterHandlers(eventBus)
	defer notificationModule.SSE().Close()

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			bookingsModule,
			messagingModule,
			invoicesModule,
			notificationModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// mustRedis connects the client backing the approval lock.
func mustRedis(ctx context.Context, cfg config.SchedulerConfig, log *logger.Logger) *redis.Client {
	client, err := redisconn.NewClient(cfg.GetRedisURL(), cfg.GetRedisTLSInsecure())
	if errors.Is(err, redisconn.ErrNotConfigured) {
		panic("REDIS_URL is required for booking approvals")
	}
	if err != nil {
		log.Error("failed to parse redis url", "error", err)
		panic("failed to parse redis url: " + err.Error())
	}

	if err := withRetry(ctx, log, "redis connection", 5, time.Second, func() error {
		return client.Ping(ctx).Err()
	}); err != nil {
		log.Error("failed to connect to redis", "error", err)
		panic("failed to connect to redis: " + err.Error())
	}
	log.Info("redis connection established")
	return client
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
