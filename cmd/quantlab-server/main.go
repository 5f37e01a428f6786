package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quantlab/internal/config"
	"quantlab/internal/engine"
	"quantlab/internal/httpapi"
	"quantlab/internal/marketdata"
	"quantlab/internal/store"
	"quantlab/internal/strategy"
	"quantlab/internal/strategy/builtins"
	"quantlab/internal/util"
)

func main() {
	// Load config.
	cfgPath := os.Getenv("QUANTLAB_CONFIG")
	if cfgPath == "" {
		if _, err := os.Stat("config/quantlab.yaml"); err == nil {
			cfgPath = "config/quantlab.yaml"
		}
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	// Setup logging.
	logger := util.NewLogger(cfg.Logging.Level)
	util.SetDefault(logger)

	// Create bar store and provider chain.
	barStore, closeStore, err := newBarStore(cfg)
	if err != nil {
		log.Fatalf("initializing bar store: %v", err)
	}
	defer closeStore()

	var upstream marketdata.Provider
	if cfg.Alpaca.APIKey != "" {
		upstream = marketdata.NewAlpacaProvider(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, cfg.Alpaca.DataURL, cfg.Alpaca.Feed)
		logger.Info("alpaca upstream enabled", "feed", cfg.Alpaca.Feed)
	} else {
		logger.Warn("no alpaca credentials, serving cached bars only")
	}
	provider := marketdata.NewStoreProvider(barStore, upstream)

	// Register strategies and build the engine.
	registry := strategy.NewRegistry()
	builtins.RegisterAll(registry)

	eng := engine.New(provider, registry,
		engine.WithMaxWorkers(cfg.Engine.MaxWorkers),
		engine.WithMonteCarloWorkers(cfg.Engine.MonteCarloWorkers),
		engine.WithMonteCarloSims(cfg.Engine.MonteCarloSimulations),
		engine.WithLogger(logger),
	)

	srv := httpapi.NewServer(eng, registry, logger)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: srv.Handler(),
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		logger.Info("quantlab server listening", "addr", httpServer.Addr, "strategies", registry.List())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down quantlab server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

// newBarStore builds the configured store backend. The returned func releases
// backend resources on shutdown.
func newBarStore(cfg *config.Config) (store.BarStore, func(), error) {
	switch cfg.Storage.Backend {
	case "sqlite":
		s, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	case "", "parquet":
		return store.NewParquetStore(cfg.Storage.DataDir), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
