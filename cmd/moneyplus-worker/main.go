package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"moneyplus/internal/amqp"
	"moneyplus/internal/backend"
	"moneyplus/internal/config"
	"moneyplus/internal/ledger"
	"moneyplus/internal/log"
	"moneyplus/internal/services"
	"moneyplus/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()

	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Component: log.ComponentApp,
	})
	log.SetDefault(logger)

	logger.Info("Starting moneyplus-worker")

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	records, err := backend.New(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize record store", log.FieldError, err)
		os.Exit(1)
	}

	store := ledger.NewStore(records, cfg.PersistTimeout, logger)
	defer store.Close()

	dispatcher := services.NewDispatcher(store, logger)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPCommandQueue, cfg.AMQPReplyQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	logger.Info("AMQP transport ready",
		log.FieldExchange, cfg.AMQPExchange,
		log.FieldQueue, cfg.AMQPCommandQueue)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return worker.NewCommandWorker(amqpClient, dispatcher, logger).Run(ctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped", log.FieldError, err)
		os.Exit(1)
	}

	logger.Info("Shutdown complete")
}
