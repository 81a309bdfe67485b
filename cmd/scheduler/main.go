package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	bookingrepo "business_services_hub/internal/bookings/repository"
	"business_services_hub/internal/email"
	"business_services_hub/internal/events"
	"business_services_hub/internal/invoices"
	"business_services_hub/internal/notification"
	"business_services_hub/internal/scheduler"
	"business_services_hub/platform/config"
	"business_services_hub/platform/db"
	"business_services_hub/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	eventBus := events.NewInMemoryBus(log)

	sender, err := email.NewSender(cfg)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}

	bookingRepo := bookingrepo.New(pool, log)

	// Jobs publish on this process's bus; only the email side of the
	// notification module has an audience here.
	notificationModule := notification.New(bookingRepo, sender, cfg, log)
	notificationModule.RegisterHandlers(eventBus)

	invoicesModule := invoices.NewModule(pool, eventBus, log)

	sweep := scheduler.NewOverdueSweep(bookingRepo, eventBus, log, cfg.GetOverdueSweepInterval())
	go sweep.Run(ctx)

	worker, err := scheduler.NewWorker(cfg, invoicesModule.Service(), log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
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
