package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/spbu-ds-practicum-2025/ledger-service/internal/config"
	"github.com/spbu-ds-practicum-2025/ledger-service/internal/db"
	"github.com/spbu-ds-practicum-2025/ledger-service/internal/domain"
	"github.com/spbu-ds-practicum-2025/ledger-service/internal/events"
	"github.com/spbu-ds-practicum-2025/ledger-service/internal/httpapi"
)

func main() {
	// Load .env for local runs; in containers the environment is already set
	_ = godotenv.Load()

	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()

	// Initialize database connection pool
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to create database pool", zap.Error(err))
	}
	defer pool.Close()
	logger.Info("database connection pool initialized")

	// Create repositories
	accountRepo := db.NewAccountRepository(pool.Pool)
	transactionRepo := db.NewTransactionRepository(pool.Pool)
	txManager := db.NewTransactionManager(pool.Pool, logger)

	// Event publishing is optional; an empty URL disables it
	var publisher domain.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		rabbitPublisher, err := events.NewRabbitMQPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.RoutingKey)
		if err != nil {
			logger.Fatal("failed to create rabbitmq publisher", zap.Error(err))
		}
		defer rabbitPublisher.Close()
		publisher = rabbitPublisher
		logger.Info("rabbitmq publisher initialized",
			zap.String("exchange", cfg.RabbitMQ.Exchange),
			zap.String("routing_key", cfg.RabbitMQ.RoutingKey))
	}

	// Create domain service
	ledgerService := domain.NewLedgerService(accountRepo, transactionRepo, txManager, publisher, logger)
	logger.Info("domain services initialized")

	// Create HTTP server
	handler := httpapi.NewHandler(ledgerService, logger)
	router := httpapi.NewRouter(handler, logger)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("ledger-service HTTP server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	logger.Info("HTTP server stopped")
}
