/**
 * @description
 * Entry point for the reconciliation worker. It drains the pending-task
 * queue on a schedule and replays failed second-phase writes against the
 * finance service.
 */
package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/financeplanner/aggregator-service/internal/config"
	"github.com/financeplanner/aggregator-service/internal/reconcile"
	"github.com/financeplanner/aggregator-service/pkg/downstream"
	"github.com/financeplanner/aggregator-service/pkg/rabbitmq"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if cfg.RabbitMQURL == "" {
		logger.Error("RABBITMQ_URL is required for the reconciler")
		os.Exit(1)
	}

	consumer, err := rabbitmq.NewConsumer(cfg.RabbitMQURL)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	financeClient := downstream.NewClient("finance-service", cfg.FinanceServiceURL,
		downstream.WithRetry(cfg.ClientRetryCount, cfg.BackoffUnit()),
		downstream.WithTimeout(cfg.ClientTimeout()),
		downstream.WithLogger(logger),
	)

	worker := reconcile.NewWorker(consumer, financeClient, cfg, logger)
	if err := worker.Start(); err != nil {
		logger.Error("failed to start reconciliation worker", "error", err)
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutdown signal received, stopping worker")
	worker.Stop()
	logger.Info("worker stopped")
}
