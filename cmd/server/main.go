/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the leave engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load config (.env + environment)
  2. Parse command-line flags (override config)
  3. Initialize SQLite store
  4. Create leave service and API handler
  5. Configure HTTP router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: APP_PORT or 8080)
  -db      SQLite database path (default: DB_PATH or leave.db)
           Use ":memory:" for in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/leave.db"

  # Run with in-memory database
  ./server -db=":memory:"

SEE ALSO:
  - config/config.go: Environment variables
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/leave-engine/api"
	"github.com/warp/leave-engine/config"
	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/store/sqlite"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Flags
	port := flag.Int("port", cfg.App.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.Database.Path, "SQLite database path")
	flag.Parse()

	logger := api.NewLogger(cfg.App)
	slog.SetDefault(logger)

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	service := leave.NewService(store, logger, cfg.App.Location)
	handler := api.NewHandler(store, service, logger)
	router := api.NewRouter(handler, api.RouterOptions{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		LogLevel:       cfg.App.SlogLevel(),
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			slog.Int("port", *port),
			slog.String("db", *dbPath),
			slog.String("timezone", cfg.App.Location.String()),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
