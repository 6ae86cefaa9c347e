package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/portfolio-tracker/internal/advisor"
	"github.com/dvloznov/portfolio-tracker/internal/api"
	"github.com/dvloznov/portfolio-tracker/internal/api/handlers"
	"github.com/dvloznov/portfolio-tracker/internal/config"
	"github.com/dvloznov/portfolio-tracker/internal/genlang"
	"github.com/dvloznov/portfolio-tracker/internal/ledger"
	"github.com/dvloznov/portfolio-tracker/internal/logger"
	"github.com/dvloznov/portfolio-tracker/internal/metrics"
)

func main() {
	var configPath = flag.String("config", "", "directory containing config.yaml (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLog := logger.New("info")
		bootLog.Fatal().Err(err).Msg("Failed to load config")
	}

	log := logger.New(cfg.Logging.Level)

	if cfg.Provider.APIKey == "" {
		log.Warn().Msg("No provider API key configured - advisory calls will be rejected by the provider")
	}

	store, err := ledger.Open(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Database.Path).Msg("Failed to open ledger store")
	}
	defer store.Close()

	metricsSvc := metrics.NewService(store)

	client := genlang.NewClient(cfg.Provider.BaseURL, cfg.Provider.APIKey, cfg.Provider.Temperature)
	directory := genlang.NewDirectory(client,
		cfg.Provider.PreferredPatterns, cfg.Provider.DefaultModels,
		cfg.Provider.ModelCacheTTL, log)

	window := advisor.NewWindow(cfg.Advisor.WindowCapacity)
	gateway := advisor.NewGateway(client, directory, metricsSvc, metrics.Render, window,
		advisor.Options{
			Timeout:       cfg.Advisor.Timeout,
			RetryAttempts: cfg.Advisor.RetryAttempts,
			RetryBackoff:  cfg.Advisor.RetryBackoff,
			QueueSize:     cfg.Advisor.QueueSize,
		}, log)
	gateway.Start()
	defer gateway.Close()

	router := api.NewRouter(
		handlers.NewLedgerHandler(store, metricsSvc, log),
		handlers.NewAdvisorHandler(gateway, log),
		log,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Advisor.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}
}
