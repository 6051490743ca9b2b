package mirror

import (
	"context"
	"errors"
	"fmt"

	"github.com/zatekoja/wardtracker/internal/domain/entities"
	"github.com/zatekoja/wardtracker/internal/domain/providers"
	"github.com/zatekoja/wardtracker/internal/infrastructure/observability"
)

// Mirror operation names used in logs and metrics
const (
	OpInsertPatient  = "insert_patient"
	OpReplacePatient = "replace_patient"
	OpInsertNote     = "insert_note"
	OpUpsertPatient  = "upsert_patient"
	OpUpsertNote     = "upsert_note"
)

// Fanout applies every write to each configured backend. A failing backend
// does not stop the others; all failures are joined into the returned error.
type Fanout struct {
	backends []providers.RecordMirror
	metrics  *observability.Metrics
}

// NewFanout creates a fan-out over backends. metrics may be nil.
func NewFanout(metrics *observability.Metrics, backends ...providers.RecordMirror) *Fanout {
	return &Fanout{backends: backends, metrics: metrics}
}

var _ providers.RecordMirror = (*Fanout)(nil)

// Name implements providers.RecordMirror
func (f *Fanout) Name() string { return "fanout" }

// Len returns the number of backends
func (f *Fanout) Len() int { return len(f.backends) }

func (f *Fanout) apply(ctx context.Context, operation, key string, write func(providers.RecordMirror) error) error {
	var errs []error
	for _, backend := range f.backends {
		if err := write(backend); err != nil {
			observability.LoggerFromContext(ctx).Warn().
				Err(err).
				Str("backend", backend.Name()).
				Str("operation", operation).
				Str("key", key).
				Msg("Mirror write failed")
			observability.RecordMirrorWrite(ctx, f.metrics, backend.Name(), operation, observability.MirrorOutcomeFailure)
			errs = append(errs, fmt.Errorf("%s: %w", backend.Name(), err))
			continue
		}
		observability.RecordMirrorWrite(ctx, f.metrics, backend.Name(), operation, observability.MirrorOutcomeSuccess)
	}
	return errors.Join(errs...)
}

// InsertPatient implements providers.RecordMirror
func (f *Fanout) InsertPatient(ctx context.Context, patient *entities.Patient) error {
	return f.apply(ctx, OpInsertPatient, patient.MRN, func(b providers.RecordMirror) error {
		return b.InsertPatient(ctx, patient)
	})
}

// ReplacePatient implements providers.RecordMirror
func (f *Fanout) ReplacePatient(ctx context.Context, patient *entities.Patient) error {
	return f.apply(ctx, OpReplacePatient, patient.MRN, func(b providers.RecordMirror) error {
		return b.ReplacePatient(ctx, patient)
	})
}

// InsertNote implements providers.RecordMirror
func (f *Fanout) InsertNote(ctx context.Context, note *entities.MedicalNote) error {
	return f.apply(ctx, OpInsertNote, note.PatientMRN, func(b providers.RecordMirror) error {
		return b.InsertNote(ctx, note)
	})
}

// UpsertPatient implements providers.RecordMirror
func (f *Fanout) UpsertPatient(ctx context.Context, patient *entities.Patient) error {
	return f.apply(ctx, OpUpsertPatient, patient.MRN, func(b providers.RecordMirror) error {
		return b.UpsertPatient(ctx, patient)
	})
}

// UpsertNote implements providers.RecordMirror
func (f *Fanout) UpsertNote(ctx context.Context, note *entities.MedicalNote) error {
	return f.apply(ctx, OpUpsertNote, note.PatientMRN, func(b providers.RecordMirror) error {
		return b.UpsertNote(ctx, note)
	})
}
