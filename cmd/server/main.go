package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bmcnally/sasadiff/internal/api"
	"github.com/bmcnally/sasadiff/internal/config"
	"github.com/bmcnally/sasadiff/internal/engine"
	"github.com/bmcnally/sasadiff/internal/notify"
	"github.com/bmcnally/sasadiff/internal/report"
	"github.com/bmcnally/sasadiff/internal/store"
	"github.com/bmcnally/sasadiff/internal/tree"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Stores with background TTL eviction.
	trees := store.New[*tree.Tree](cfg.TreeTTL)
	trees.StartCleanup(ctx, cfg.CleanupInterval)
	reports := store.New[report.Report](cfg.TreeTTL)
	reports.StartCleanup(ctx, cfg.CleanupInterval)

	// Optional report webhook.
	var notifier *notify.Client
	if cfg.WebhookURL != "" {
		notifier = notify.NewClient(cfg.WebhookURL, cfg.WebhookAPIKey)
	}

	eng := &engine.Stub{}

	srv := api.NewServer(eng, trees, reports, notifier, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		if notifier != nil {
			notifier.Close()
		}
		cancel()
	}()

	log.Info("starting sasadiff", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
