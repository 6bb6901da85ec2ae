// Command taskboard manages the task tracker database: it applies migrations,
// seeds sample data and prints statistics reports.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/rezkam/taskboard/internal/application/tracker"
	"github.com/rezkam/taskboard/internal/config"
	"github.com/rezkam/taskboard/internal/infrastructure/observability"
	"github.com/rezkam/taskboard/internal/infrastructure/persistence/postgres"
	"github.com/rezkam/taskboard/internal/infrastructure/persistence/sqlite"
)

const shutdownTimeout = 5 * time.Second

// store is a tracker.Store that owns its connections.
type store interface {
	tracker.Store
	Close() error
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s <migrate|seed|report>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := run(flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "failed to run: %v\n", err)
		os.Exit(1)
	}
}

func run(command string) error {
	if command == "" {
		flag.Usage()
		return errors.New("missing command")
	}

	// A .env file is optional; real environment variables take precedence.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := config.LoadServerConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	providers, logger, err := observability.Init(ctx, observability.Config{
		Enabled:     cfg.Observability.OTelEnabled,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		return fmt.Errorf("failed to init observability: %w", err)
	}
	slog.SetDefault(logger)
	defer func() {
		// Bounded so an unreachable collector cannot hang exit.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "failed to shutdown telemetry providers", "error", err)
		}
	}()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			slog.ErrorContext(ctx, "failed to close store", "error", err)
		}
	}()

	app := newApp(st, time.Now, os.Stdout)

	switch command {
	case "migrate":
		// Opening the store applies pending migrations.
		slog.InfoContext(ctx, "migrations applied", "backend", cfg.Storage.Backend)
		return nil
	case "seed":
		return app.seed(ctx)
	case "report":
		return app.report(ctx)
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func openStore(ctx context.Context, cfg *config.ServerConfig) (store, error) {
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		st, err := postgres.Open(ctx, postgres.DBConfig{
			DSN:             cfg.Database.DSN,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres store: %w", err)
		}
		slog.InfoContext(ctx, "storage initialized", "backend", cfg.Storage.Backend)
		return st, nil
	default:
		st, err := sqlite.Open(ctx, sqlite.Config{Path: cfg.SQLite.Path})
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		slog.InfoContext(ctx, "storage initialized", "backend", cfg.Storage.Backend, "path", cfg.SQLite.Path)
		return st, nil
	}
}
