package providers

import (
	"context"

	"github.com/zatekoja/wardtracker/internal/domain/entities"
)

// RecordMirror is a secondary, best-effort copy of the ward records. It is
// never read by the API; writes to it happen only after the primary store
// has committed.
type RecordMirror interface {
	// Name identifies the backend in logs and metrics
	Name() string

	// InsertPatient stores a newly admitted patient
	InsertPatient(ctx context.Context, patient *entities.Patient) error

	// ReplacePatient locates the mirrored patient by MRN and overwrites it
	ReplacePatient(ctx context.Context, patient *entities.Patient) error

	// InsertNote stores a newly created note
	InsertNote(ctx context.Context, note *entities.MedicalNote) error

	// UpsertPatient creates or overwrites a patient, used by resync
	UpsertPatient(ctx context.Context, patient *entities.Patient) error

	// UpsertNote creates or overwrites a note, used by resync
	UpsertNote(ctx context.Context, note *entities.MedicalNote) error
}
