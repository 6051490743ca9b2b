package repositories

import (
	"context"

	"github.com/zatekoja/wardtracker/internal/domain/entities"
)

// MedicalNoteRepository defines the interface for medical note operations
type MedicalNoteRepository interface {
	// Create inserts a note and sets its ID. An unknown patient MRN is a
	// validation error.
	Create(ctx context.Context, note *entities.MedicalNote) error

	// ListByPatient retrieves every note for a patient in chronological order
	ListByPatient(ctx context.Context, mrn string) ([]*entities.MedicalNote, error)

	// List pages through all notes in ID order
	List(ctx context.Context, limit, offset int) ([]*entities.MedicalNote, error)
}
