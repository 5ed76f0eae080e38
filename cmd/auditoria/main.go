package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"facturacion/internal/bootstrap"
	"facturacion/internal/config"
	"facturacion/internal/consumer"
	"facturacion/internal/metrics"
	"facturacion/internal/repository"
	"facturacion/internal/server"
	"facturacion/internal/service"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const serviceName = "auditoria"

func main() {
	config.LoadDotEnv()

	cfg, err := config.LoadAuditoria()
	if err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}
	bootstrap.SetupLogging(cfg.Log)
	bootstrap.SetupEncoding()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := repository.ConnectMongo(ctx, cfg.Mongo)
	if err != nil {
		log.WithError(err).Fatal("Could not connect to MongoDB")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.WithError(err).Warn("Failed to disconnect from MongoDB")
		}
	}()

	eventoRepository := repository.NewEventoRepository(client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection))
	if err := eventoRepository.EnsureIndexes(ctx); err != nil {
		log.WithError(err).Warn("Could not create eventos indexes")
	}

	m := metrics.New(serviceName)
	eventoService := service.NewEventoService(eventoRepository)

	var wg sync.WaitGroup
	if cfg.Kafka.Brokers != "" {
		auditConsumer, err := consumer.NewAuditConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.AuditTopic, eventoService, m)
		if err != nil {
			log.WithError(err).Fatal("Could not create audit consumer")
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := auditConsumer.Run(ctx); err != nil {
				log.WithError(err).Error("Audit consumer stopped")
			}
		}()
	}

	mongoPinger := server.PingFunc(func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	})

	e := server.New(serviceName, mongoPinger, m)
	server.NewAuditoriaServer(eventoService, m).Register(e)

	if err := bootstrap.Serve(ctx, e, cfg.HTTP.Port, "Auditoría", cfg.HTTP.ShutdownTimeout); err != nil {
		log.WithError(err).Error("Echo server failed")
	}

	stop()
	wg.Wait()
}
