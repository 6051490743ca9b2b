package services

import (
	"context"
	"fmt"
	"time"

	"github.com/zatekoja/wardtracker/internal/domain/entities"
	"github.com/zatekoja/wardtracker/internal/domain/providers"
	"github.com/zatekoja/wardtracker/internal/domain/repositories"
	"github.com/zatekoja/wardtracker/internal/infrastructure/observability"
)

// ResyncStats summarizes one reconciliation run
type ResyncStats struct {
	PatientsProcessed int
	PatientsFailed    int
	NotesProcessed    int
	NotesFailed       int
	Duration          time.Duration
}

// Processed is the number of records replayed
func (s ResyncStats) Processed() int {
	return s.PatientsProcessed + s.NotesProcessed
}

// Failed is the number of records the mirror rejected
func (s ResyncStats) Failed() int {
	return s.PatientsFailed + s.NotesFailed
}

// Succeeded is the number of records the mirror accepted
func (s ResyncStats) Succeeded() int {
	return s.Processed() - s.Failed()
}

// ResyncService replays the primary store into the mirror. Every write is an
// upsert so a run can be repeated at any time.
type ResyncService struct {
	patients repositories.PatientRepository
	notes    repositories.MedicalNoteRepository
	mirror   providers.RecordMirror
	metrics  *observability.Metrics
	pageSize int
}

// NewResyncService creates a new resync service
func NewResyncService(
	patients repositories.PatientRepository,
	notes repositories.MedicalNoteRepository,
	mirror providers.RecordMirror,
	metrics *observability.Metrics,
	pageSize int,
) *ResyncService {
	if pageSize <= 0 {
		pageSize = 200
	}
	return &ResyncService{
		patients: patients,
		notes:    notes,
		mirror:   mirror,
		metrics:  metrics,
		pageSize: pageSize,
	}
}

// latest re-reads an active patient just before it is written. A discharge
// committed after the page was listed would otherwise be overwritten in the
// mirror by the stale active row. Discharged rows never change again.
func (s *ResyncService) latest(ctx context.Context, patient *entities.Patient) *entities.Patient {
	if !patient.IsActive() {
		return patient
	}
	current, err := s.patients.GetByMRN(ctx, patient.MRN)
	if err != nil {
		observability.LoggerFromContext(ctx).Debug().Err(err).Str("mrn", patient.MRN).Msg("Resync kept the listed patient row")
		return patient
	}
	return current
}

// Run upserts every patient and note into the mirror. Mirror failures are
// counted and logged; only a primary-store read failure aborts the run.
func (s *ResyncService) Run(ctx context.Context) (ResyncStats, error) {
	ctx, span := observability.StartSpan(ctx, "ResyncService.Run")
	defer span.End()

	started := time.Now()
	logger := observability.LoggerFromContext(ctx)
	var stats ResyncStats

	for offset := 0; ; offset += s.pageSize {
		page, err := s.patients.List(ctx, repositories.PatientFilter{Limit: s.pageSize, Offset: offset})
		if err != nil {
			observability.RecordError(span, err)
			return stats, fmt.Errorf("failed to list patients at offset %d: %w", offset, err)
		}
		for _, patient := range page {
			stats.PatientsProcessed++
			patient = s.latest(ctx, patient)
			if err := s.mirror.UpsertPatient(ctx, patient); err != nil {
				stats.PatientsFailed++
				logger.Warn().Err(err).Str("mrn", patient.MRN).Msg("Resync failed to upsert patient")
			}
		}
		if len(page) < s.pageSize {
			break
		}
	}

	for offset := 0; ; offset += s.pageSize {
		page, err := s.notes.List(ctx, s.pageSize, offset)
		if err != nil {
			observability.RecordError(span, err)
			return stats, fmt.Errorf("failed to list notes at offset %d: %w", offset, err)
		}
		for _, note := range page {
			stats.NotesProcessed++
			if err := s.mirror.UpsertNote(ctx, note); err != nil {
				stats.NotesFailed++
				logger.Warn().Err(err).Int64("note_id", note.ID).Str("mrn", note.PatientMRN).Msg("Resync failed to upsert note")
			}
		}
		if len(page) < s.pageSize {
			break
		}
	}

	stats.Duration = time.Since(started)
	observability.RecordResync(ctx, s.metrics, "patient", stats.PatientsProcessed-stats.PatientsFailed)
	observability.RecordResync(ctx, s.metrics, "note", stats.NotesProcessed-stats.NotesFailed)

	logger.Info().
		Int("patients", stats.PatientsProcessed).
		Int("notes", stats.NotesProcessed).
		Int("failed", stats.Failed()).
		Dur("duration", stats.Duration).
		Msg("Mirror resync completed")
	return stats, nil
}
