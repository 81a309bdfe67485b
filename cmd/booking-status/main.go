// Command booking-status prints the smart status of one booking as JSON, as
// the given participant role would see it.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"business_services_hub/internal/bookings/domain"
	"business_services_hub/internal/bookings/repository"
	"business_services_hub/internal/bookings/service"
	"business_services_hub/internal/bookings/transport"
	"business_services_hub/platform/db"
	"business_services_hub/platform/logger"

	"github.com/alecthomas/kingpin/v2"
	"github.com/google/uuid"
)

type options struct {
	bookingID   string
	role        string
	databaseURL string
	timeout     time.Duration
	debug       bool
}

// GetDatabaseURL lets the options satisfy config.DatabaseConfig.
func (o options) GetDatabaseURL() string { return o.databaseURL }

// statusReader is the part of the status service the command needs.
type statusReader interface {
	GetSmartStatus(ctx context.Context, bookingID uuid.UUID, role domain.Role) (domain.SmartBookingStatus, error)
}

func parseArgs(args []string) (options, error) {
	var opts options

	app := kingpin.New("booking-status", "Print the smart status of a booking as JSON.")
	app.Flag("booking", "Booking ID.").Required().StringVar(&opts.bookingID)
	app.Flag("role", "Role to derive the status for.").Default(string(domain.RoleClient)).
		EnumVar(&opts.role, string(domain.RoleClient), string(domain.RoleProvider), string(domain.RoleAdmin))
	app.Flag("database-url", "PostgreSQL connection URL.").Envar("DATABASE_URL").Required().StringVar(&opts.databaseURL)
	app.Flag("timeout", "Maximum time to fetch the booking.").Default("15s").DurationVar(&opts.timeout)
	app.Flag("debug", "Log to stderr.").BoolVar(&opts.debug)

	if _, err := app.Parse(args); err != nil {
		return options{}, fmt.Errorf("invalid command configuration: %w", err)
	}
	return opts, nil
}

// Run parses args, derives the status and writes it to stdout.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseArgs(args)
	if err != nil {
		return err
	}

	bookingID, err := uuid.Parse(opts.bookingID)
	if err != nil {
		return fmt.Errorf("invalid booking id %q: %w", opts.bookingID, err)
	}

	log := logger.Discard()
	if opts.debug {
		log = logger.NewWithWriter(stderr, "development")
	}

	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	pool, err := db.NewPool(ctx, opts)
	if err != nil {
		return fmt.Errorf("could not connect to database: %w", err)
	}
	defer pool.Close()

	status := service.NewStatusService(repository.New(pool, log), log)
	return printStatus(ctx, status, bookingID, domain.Role(opts.role), stdout)
}

func printStatus(ctx context.Context, status statusReader, bookingID uuid.UUID, role domain.Role, stdout io.Writer) error {
	s, err := status.GetSmartStatus(ctx, bookingID, role)
	if err != nil {
		return fmt.Errorf("could not get booking status: %w", err)
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(transport.FromSmartStatus(s, role)); err != nil {
		return fmt.Errorf("could not print status: %w", err)
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		stop()
		os.Exit(1)
	}
}
