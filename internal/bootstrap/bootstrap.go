// Package bootstrap holds the start-up and shutdown steps the three service
// binaries share.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"facturacion/internal/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// SetupLogging configures the global logrus logger.
func SetupLogging(cfg config.Log) {
	switch strings.ToLower(cfg.Format) {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		log.SetFormatter(&log.TextFormatter{
			FullTimestamp: true,
		})
	}
	log.SetOutput(os.Stdout)

	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		log.WithField("level", cfg.Level).Warn("Unknown LOG_LEVEL, using debug")
		level = log.DebugLevel
	}
	log.SetLevel(level)
}

// SetupEncoding makes decimal amounts marshal as JSON numbers instead of
// strings. It must run before the server starts.
func SetupEncoding() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Migrate applies the PostgreSQL migrations found at path. Oracle schemas are
// managed with the scripts under db/oracle and are skipped here.
func Migrate(cfg config.DB, path string) error {
	if cfg.Driver != config.DriverPostgres {
		log.WithField("driver", cfg.Driver).Info("Skipping automatic migrations")
		return nil
	}
	if cfg.MigrationsPath != "" {
		path = cfg.MigrationsPath
	}

	log.WithField("path", path).Info("Starting database migration...")
	m, err := migrate.New("file://"+path, cfg.URL)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not apply migration: %w", err)
	}
	log.Info("Database migration finished successfully.")
	return nil
}

// Serve runs e on port until ctx is cancelled, then shuts it down within
// timeout.
func Serve(ctx context.Context, e *echo.Echo, port, service string, timeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", port).Infof("%s service is starting with Echo", service)
		if err := e.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info("Server exited gracefully")
	return nil
}
