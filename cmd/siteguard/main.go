package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"siteguard/internal/api"
	"siteguard/internal/browser"
	"siteguard/internal/config"
	"siteguard/internal/crawl"
	"siteguard/internal/links"
	"siteguard/internal/monitoring"
	"siteguard/internal/storage"
)

func main() {
	// Initialize structured logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("could not load config", zap.Error(err))
	}

	// Initialize Storage Layer
	pgStore, err := storage.NewPostgresStore(cfg.PostgresURL)
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	redisStore := storage.NewRedisStore(cfg.RedisAddr)

	// Initialize Monitoring
	metrics := monitoring.NewMetrics()

	// Initialize Browser Driver and Link Classifier
	br := browser.New(browser.Options{
		NavTimeout:    time.Duration(cfg.NavTimeoutSec) * time.Second,
		CommitTimeout: time.Duration(cfg.CommitTimeoutSec) * time.Second,
		SettleDelay:   time.Duration(cfg.SettleDelayMS) * time.Millisecond,
	}, logger)
	checker := browser.NewHTTPChecker(browser.NewAgentRotator(nil, time.Now().UnixNano()))
	classifier := links.NewClassifier(checker, time.Duration(cfg.LinkCheckSec)*time.Second, cfg.MaxLinkChecks, logger)

	// Initialize the Scan Pipeline
	orch := crawl.NewOrchestrator(crawl.NewBrowserNavigator(br), classifier, metrics, logger, crawl.Options{
		PageDelay:        time.Duration(cfg.PageDelayMS) * time.Millisecond,
		AnomalyThreshold: cfg.AnomalyThreshold,
		Screenshots:      cfg.Screenshots,
		ScreenshotDir:    cfg.ScreenshotDir,
		DefaultPageLimit: cfg.MaxPagesDefault,
	})
	runner := crawl.NewRunner(orch, pgStore, redisStore, metrics, logger, crawl.RunnerOptions{
		Workers:          cfg.ScanWorkers,
		ReportDir:        cfg.ReportDir,
		DedupTTL:         time.Duration(cfg.DeduplicationDays) * 24 * time.Hour,
		NarrativeTimeout: time.Duration(cfg.NarrativeSec) * time.Second,
	})
	runner.Start()

	// Initialize API Server
	server := api.NewServer(cfg, runner, pgStore, redisStore, metrics, logger)

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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Stop accepting requests before the worker pool goes away.
	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
	runner.Stop()

	logger.Info("server exiting")
}
