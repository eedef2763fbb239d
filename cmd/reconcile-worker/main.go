package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"splittracker/internal/backend"
	"splittracker/internal/config"
	"splittracker/internal/events"
	"splittracker/internal/worker"
	"splittracker/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	logging.Setup()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		slog.Error("AMQP_URL is required for the reconcile worker")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := backend.Open(ctx, backend.Config{
		Type:         backend.Type(cfg.DataBackend),
		SQLiteDBPath: cfg.SQLiteDBPath,
		MongoURI:     cfg.MongoURI,
		MongoDBName:  cfg.MongoDBName,
	}, slog.Default())
	if err != nil {
		slog.Error("Failed to initialize storage backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer store.Close()

	client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		slog.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	rec := worker.NewReconciler(store, cfg.ReconcileTimeout)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return client.ConsumePaymentApplied(gctx, func(msg *events.PaymentApplied) error {
			return rec.HandlePaymentApplied(gctx, msg)
		})
	})

	g.Go(func() error {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-sigChan:
			slog.Info("Shutdown signal received", "signal", sig.String())
			cancel()
			return nil
		case <-gctx.Done():
			return nil
		}
	})

	slog.Info("Reconcile worker started",
		"queue", cfg.AMQPQueue,
		"exchange", cfg.AMQPExchange,
		"backend", cfg.DataBackend)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	slog.Info("Worker stopped gracefully")
}
