package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	zlog "github.com/rs/zerolog/log"
	"github.com/zatekoja/wardtracker/internal/adapters/database"
	"github.com/zatekoja/wardtracker/internal/api/handlers"
	"github.com/zatekoja/wardtracker/internal/api/routes"
	"github.com/zatekoja/wardtracker/internal/application/services"
	"github.com/zatekoja/wardtracker/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/wardtracker/internal/infrastructure/observability"
	"github.com/zatekoja/wardtracker/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env, cfg.Server.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			zlog.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					zlog.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			zlog.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL client: %v", err)
	}
	defer pgClient.Close()

	if err := database.EnsureSchema(ctx, pgClient); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	patientAdapter := database.NewPatientAdapter(pgClient, metrics)
	noteAdapter := database.NewMedicalNoteAdapter(pgClient, metrics)

	rep := connectReplication(ctx, cfg, metrics)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rep.Close(ctx); err != nil {
			zlog.Error().Err(err).Msg("Error closing mirror backends")
		}
	}()

	replicator := services.NewMirrorReplicator(rep.mirror, rep.bus, cfg.Mirror.Timeout)

	worker := startMirrorWorker(rep, replicator, cfg.Mirror.Timeout)

	var scheduler *services.ResyncScheduler
	if rep.mirror != nil && cfg.Mirror.ResyncSchedule != "" {
		resync := services.NewResyncService(patientAdapter, noteAdapter, rep.mirror, metrics, cfg.Mirror.ResyncPageSize)
		scheduler, err = services.NewResyncScheduler(resync, cfg.Mirror.ResyncSchedule, 30*time.Minute)
		if err != nil {
			log.Fatalf("Failed to schedule mirror resync: %v", err)
		}
		scheduler.Start()
	}

	recordService := services.NewRecordService(patientAdapter, noteAdapter, replicator)

	router := routes.NewRouter(
		handlers.NewPatientHandler(recordService),
		handlers.NewNoteHandler(recordService),
		handlers.NewSpecialtyHandler(recordService),
		handlers.NewHealthHandler(pgClient),
		routes.Options{
			BasePath:       cfg.Server.BasePath,
			AllowedOrigins: cfg.Server.AllowedOrigins,
			Metrics:        metrics,
		},
	)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zlog.Info().
			Str("addr", serverAddr).
			Str("base_path", cfg.Server.BasePath).
			Str("mirror_mode", rep.mode()).
			Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info().Msg("Server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Err(err).Msg("Error during server shutdown")
	}

	if scheduler != nil {
		scheduler.Stop()
	}
	if worker != nil {
		worker.Stop()
	}
	replicator.Close()

	zlog.Info().Msg("Server stopped")
}
