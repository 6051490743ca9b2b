package repositories

import (
	"context"
	"time"

	"github.com/zatekoja/wardtracker/internal/domain/entities"
)

// PatientRepository defines the interface for patient data operations
// against the primary store
type PatientRepository interface {
	// Create inserts a new Active patient and refreshes it from the stored row.
	// A duplicate MRN is a conflict.
	Create(ctx context.Context, patient *entities.Patient) error

	// GetByMRN retrieves a patient by MRN
	GetByMRN(ctx context.Context, mrn string) (*entities.Patient, error)

	// Update applies the non-nil fields of update and returns the stored row
	Update(ctx context.Context, mrn string, update *entities.PatientUpdate) (*entities.Patient, error)

	// List retrieves patients in admission order
	List(ctx context.Context, filter PatientFilter) ([]*entities.Patient, error)

	// ListSpecialties returns the distinct specialties across all patients
	ListSpecialties(ctx context.Context) ([]string, error)

	// Discharge atomically moves an Active patient to Discharged and records
	// the discharge note. Nothing is written if any step fails.
	Discharge(ctx context.Context, mrn, dischargeNotes string, at time.Time) (*DischargeResult, error)
}

// PatientFilter defines filters for listing patients
type PatientFilter struct {
	Status entities.PatientStatus
	Limit  int
	Offset int
}

// DischargeResult is the committed state of a discharge
type DischargeResult struct {
	Patient *entities.Patient
	Note    *entities.MedicalNote
}
