package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"nichescout/internal/analyzer"
	"nichescout/internal/api"
	"nichescout/internal/billing"
	"nichescout/internal/config"
	"nichescout/internal/fetcher"
	"nichescout/internal/monitoring"
	"nichescout/internal/scanner"
	"nichescout/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// Initialize structured logger
	logger := newLogger(cfg.LogLevel)
	defer logger.Sync()

	ctx := context.Background()

	// Initialize Storage Layer
	pgStore, err := storage.NewPostgresStore(ctx, cfg.PostgresURL)
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pgStore.Close()
	if err := pgStore.EnsureSchema(ctx); err != nil {
		logger.Fatal("failed to ensure database schema", zap.Error(err))
	}
	redisStore := storage.NewRedisStore(cfg.RedisAddr)
	defer redisStore.Close()

	// Initialize Monitoring and the Analysis Pipeline
	metrics := monitoring.NewMetrics()
	browser := fetcher.NewBrowser(cfg, metrics, logger)
	analysis := analyzer.NewService(cfg, browser, analyzer.NewWeightedScorer(), metrics, logger)

	// Initialize Billing
	subscriptions := billing.NewMemoryStore()
	paypal := billing.NewPayPalClient(cfg.PayPalBaseURL, cfg.PayPalClientID, cfg.PayPalClientSecret, logger)
	if !paypal.Configured() {
		logger.Warn("paypal credentials not set, billing endpoints disabled")
	}

	// Initialize Background Scanner
	keywordScanner := scanner.New(cfg, analysis, pgStore, redisStore, metrics, logger)
	keywordScanner.Start()

	// Initialize API Server
	server := api.NewServer(cfg, analysis, keywordScanner, pgStore, redisStore, subscriptions, paypal, metrics, logger)

	// Graceful Shutdown
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("could not start server", zap.Error(err))
		}
	}()

	logger.Info("server started", zap.String("port", cfg.ServerPort))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	keywordScanner.Stop()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exiting")
}

func newLogger(level string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := zcfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}
