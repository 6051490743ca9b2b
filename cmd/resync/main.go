package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	zlog "github.com/rs/zerolog/log"
	"github.com/zatekoja/wardtracker/internal/adapters/database"
	"github.com/zatekoja/wardtracker/internal/adapters/mirror"
	"github.com/zatekoja/wardtracker/internal/application/services"
	"github.com/zatekoja/wardtracker/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/wardtracker/internal/infrastructure/observability"
	"github.com/zatekoja/wardtracker/pkg/config"
)

func main() {
	var pageSize int
	var timeout time.Duration

	flag.IntVar(&pageSize, "page-size", 0, "Records read per page (defaults to MIRROR_RESYNC_PAGE_SIZE)")
	flag.DurationVar(&timeout, "timeout", 0, "Abort the run after this long (0 means no limit)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	observability.InitLogger(cfg.OTEL.ServiceName+"-resync", cfg.Server.Env, cfg.Server.LogLevel)

	if pageSize <= 0 {
		pageSize = cfg.Mirror.ResyncPageSize
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if timeout > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, timeout)
		defer cancelTimeout()
	}

	if !cfg.MirrorEnabled() {
		log.Fatalf("No mirror backend enabled; set MONGO_ENABLED or TYPESENSE_ENABLED")
	}

	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pgClient.Close()

	fanout, closeMirror, err := mirror.Connect(ctx, cfg, nil)
	if fanout == nil {
		log.Fatalf("No mirror backend reachable: %v", err)
	}
	if err != nil {
		zlog.Warn().Err(err).Msg("Resyncing the reachable mirror backends only")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = closeMirror(ctx)
	}()

	svc := services.NewResyncService(
		database.NewPatientAdapter(pgClient, nil),
		database.NewMedicalNoteAdapter(pgClient, nil),
		fanout,
		nil,
		pageSize,
	)

	zlog.Info().Int("backends", fanout.Len()).Int("page_size", pageSize).Msg("Starting mirror resync")
	stats, err := svc.Run(ctx)
	event := zlog.Info()
	if err != nil || stats.Failed() > 0 {
		event = zlog.Warn().Err(err)
	}
	event.
		Int("patients", stats.PatientsProcessed).
		Int("patients_failed", stats.PatientsFailed).
		Int("notes", stats.NotesProcessed).
		Int("notes_failed", stats.NotesFailed).
		Dur("duration", stats.Duration).
		Msg("Mirror resync finished")

	if err != nil {
		os.Exit(1)
	}
}
