package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"facturacion/internal/bootstrap"
	"facturacion/internal/config"
	"facturacion/internal/metrics"
	"facturacion/internal/publisher"
	"facturacion/internal/repository"
	"facturacion/internal/server"
	"facturacion/internal/service"

	log "github.com/sirupsen/logrus"
)

const serviceName = "clientes"

func main() {
	config.LoadDotEnv()

	cfg, err := config.LoadClientes()
	if err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}
	bootstrap.SetupLogging(cfg.Log)
	bootstrap.SetupEncoding()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bootstrap.Migrate(cfg.DB, "db/migrations/clientes"); err != nil {
		log.WithError(err).Fatal("Database migration failed")
	}

	db, dialect, err := repository.Open(ctx, cfg.DB)
	if err != nil {
		log.WithError(err).Fatal("Could not connect to the database")
	}
	defer db.Close()

	sink, err := publisher.NewSink(cfg.Audit, serviceName)
	if err != nil {
		log.WithError(err).Fatal("Could not create audit sink")
	}
	defer sink.Close()

	m := metrics.New(serviceName)

	// Create repository
	clienteRepository := repository.NewClienteRepository(db, dialect)

	// Create services
	auditService := service.NewAuditService(sink, m)
	clienteService := service.NewClienteService(clienteRepository, auditService)

	// Setup Echo
	e := server.New(serviceName, db, m)
	server.NewClienteServer(clienteService).Register(e.Group("/api/clientes"))

	if err := bootstrap.Serve(ctx, e, cfg.HTTP.Port, "Clientes", cfg.HTTP.ShutdownTimeout); err != nil {
		log.WithError(err).Error("Echo server failed")
	}

	auditService.Wait()
}
