package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"facturacion/internal/bootstrap"
	"facturacion/internal/config"
	"facturacion/internal/gateway"
	"facturacion/internal/metrics"
	"facturacion/internal/publisher"
	"facturacion/internal/repository"
	"facturacion/internal/server"
	"facturacion/internal/service"

	log "github.com/sirupsen/logrus"
)

const serviceName = "facturas"

func main() {
	config.LoadDotEnv()

	cfg, err := config.LoadFacturas()
	if err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}
	bootstrap.SetupLogging(cfg.Log)
	bootstrap.SetupEncoding()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bootstrap.Migrate(cfg.DB, "db/migrations/facturas"); err != nil {
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

	facturaRepository := repository.NewFacturaRepository(db, dialect)
	clientesGateway := gateway.NewHTTPClienteGateway(cfg.ClientesURL, cfg.PeerTimeout, m)

	auditService := service.NewAuditService(sink, m)
	facturaService := service.NewFacturaService(facturaRepository, clientesGateway, auditService)

	e := server.New(serviceName, db, m)
	server.NewFacturaServer(facturaService).Register(e.Group("/api/facturas"))

	if err := bootstrap.Serve(ctx, e, cfg.HTTP.Port, "Facturas", cfg.HTTP.ShutdownTimeout); err != nil {
		log.WithError(err).Error("Echo server failed")
	}

	auditService.Wait()
}
