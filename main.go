package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/rally-tribble/internal/config"
	"github.com/mauv0809/rally-tribble/internal/database"
	server "github.com/mauv0809/rally-tribble/internal/http"
	"github.com/mauv0809/rally-tribble/internal/metrics"
	"github.com/mauv0809/rally-tribble/internal/notifier/slack"
	"github.com/mauv0809/rally-tribble/internal/processor"
	"github.com/mauv0809/rally-tribble/internal/pubsub"
	"github.com/mauv0809/rally-tribble/internal/snapshot"
	"github.com/mauv0809/rally-tribble/internal/tournament"
)

func main() {
	// Start profiling timer
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()
	db, dbTeardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken, cfg.MigrationsDir)
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	log.Info("Database initialization time recorded", "duration_ms", time.Since(startTime).Milliseconds())
	defer func() {
		log.Info("Closing database connection")
		dbTeardown()
	}()

	store := tournament.New(db)
	counters := metrics.New(db)
	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()

	var notifier *slack.Notifier
	if cfg.Slack.Enabled() {
		notifier = slack.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID, metricsSvc)
	} else {
		log.Warn("Slack not configured, tournament results are only logged")
		notifier = slack.NewNotifierWithAPI(nil, cfg.Slack.ChannelID, metricsSvc)
	}

	loader := snapshot.NewLoader(store, cfg.SnapshotTTL, nil, metricsSvc)
	stopPrefetch, err := loader.StartPrefetch(cfg.RefreshInterval)
	if err != nil {
		log.Fatalf("Failed to start snapshot prefetch: %s", err)
	}
	defer func() {
		if err := stopPrefetch(); err != nil {
			log.Error("Failed to stop snapshot prefetch", "error", err)
		}
	}()

	proc := processor.New(store, loader, notifier, metricsSvc, counters)

	var events pubsub.PubSubClient
	if cfg.ProjectID != "" {
		events, err = pubsub.New(context.Background(), cfg.ProjectID)
		if err != nil {
			log.Fatalf("Failed to initialize pubsub: %s", err)
		}
	} else {
		log.Info("GCP_PROJECT not set, delivering events in-process")
		local := pubsub.NewLocal(nil)
		local.SetDeliver(proc.Deliver(local))
		events = local
	}
	defer events.Close()

	s := server.NewServer(
		store,
		loader,
		metricsSvc,
		metricsHandler,
		counters,
		cfg,
		notifier,
		proc,
		events,
	)

	// --- Record startup time ---
	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	// --- Graceful shutdown setup ---
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: s,
	}

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	go func() {
		log.Info("Server started", "port", cfg.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Error("Server error", "error", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}

	log.Info("Server process shutting down")
}
