// Package main provides the entry point for the QR Shield analysis server,
// a thin HTTP wrapper around the offline URL verdict engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/qrshield/engine/internal/api"
	"github.com/qrshield/engine/internal/cache"
	"github.com/qrshield/engine/internal/config"
	"github.com/qrshield/engine/internal/engine"
	"github.com/qrshield/engine/internal/observability"
)

// Version information (injected at build time via ldflags)
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("qrshield-server %s (commit: %s, built: %s)\n", Version, GitCommit, BuildTime)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		// Missing config is fine for local runs; defaults cover everything.
		cfg = config.DefaultConfig()
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting qrshield server",
		zap.String("version", Version),
		zap.String("config", *configPath))

	eng, err := engine.New(logger)
	if err != nil {
		logger.Fatal("engine initialization failed", zap.Error(err))
	}
	stats := eng.TableStats()
	logger.Info("static tables loaded",
		zap.Int("brands", stats.Brands),
		zap.Int("risky_tlds", stats.RiskyTLDs),
		zap.Int("blocklist", stats.Blocklist))

	store, err := cache.New(cfg.Cache, logger)
	if err != nil {
		logger.Fatal("cache initialization failed", zap.Error(err))
	}
	defer store.Close()

	srv := api.NewServer(eng, store, cfg, logger, Version)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      srv.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	sig := <-sigChan
	logger.Info("shutting down", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}

	logger.Info("server stopped")
}
