/**
 * @description
 * This is the main entry point for the aggregator service. It wires
 * together configuration, the three downstream clients, the paycheck
 * orchestrator, the finance aggregation service, the reconciliation
 * recorder, and the HTTP router, then starts the server and handles
 * graceful shutdown.
 */
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/financeplanner/aggregator-service/internal/api"
	"github.com/financeplanner/aggregator-service/internal/app"
	"github.com/financeplanner/aggregator-service/internal/config"
	"github.com/financeplanner/aggregator-service/internal/reconcile"
	"github.com/financeplanner/aggregator-service/pkg/downstream"
	"github.com/financeplanner/aggregator-service/pkg/rabbitmq"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// A missing .env is fine; configuration also comes from the environment.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	clientOptions := []downstream.Option{
		downstream.WithRetry(cfg.ClientRetryCount, cfg.BackoffUnit()),
		downstream.WithTimeout(cfg.ClientTimeout()),
		downstream.WithLogger(logger),
	}
	wageClient := downstream.NewClient("wage-service", cfg.WageServiceURL, clientOptions...)
	taxClient := downstream.NewClient("tax-service", cfg.TaxServiceURL, clientOptions...)
	financeClient := downstream.NewClient("finance-service", cfg.FinanceServiceURL, clientOptions...)

	// The reconciliation recorder is queue-backed when RabbitMQ is
	// configured; otherwise pending writes are only logged.
	var recorder reconcile.Recorder = &reconcile.LogRecorder{Logger: logger}
	if cfg.RabbitMQURL != "" {
		producer, err := rabbitmq.NewProducer(cfg.RabbitMQURL)
		if err != nil {
			logger.Error("failed to connect to RabbitMQ", "error", err)
			os.Exit(1)
		}
		defer producer.Close()
		recorder = &reconcile.QueueRecorder{
			Producer:   producer,
			Exchange:   cfg.ReconcileExchange,
			RoutingKey: cfg.ReconcileRoutingKey,
			Logger:     logger,
		}
		logger.Info("reconciliation queue connected", "exchange", cfg.ReconcileExchange)
	}

	payCheckService := app.NewPayCheckService(wageClient, taxClient, cfg, logger)
	financeService := app.NewFinanceService(financeClient, payCheckService, recorder, cfg, logger)
	handler := api.NewHandler(financeService, logger, cfg.IsDevelopment())
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 75 * time.Second,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("starting server", "port", cfg.ServerPort, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-sigCh
	logger.Info("shutdown signal received, gracefully shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}

	logger.Info("server stopped")
}
