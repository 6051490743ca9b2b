package services

import (
	"context"
	"time"

	"github.com/zatekoja/wardtracker/internal/domain/entities"
	"github.com/zatekoja/wardtracker/internal/domain/repositories"
	"github.com/zatekoja/wardtracker/internal/infrastructure/observability"
)

// Replicator propagates committed primary-store writes to the mirror. It
// never reports failure to the caller.
type Replicator interface {
	Replicate(ctx context.Context, event *entities.RecordEvent)
}

// RecordService handles the ward record write and read paths. The primary
// store decides every result; the mirror is updated afterwards.
type RecordService struct {
	patients   repositories.PatientRepository
	notes      repositories.MedicalNoteRepository
	replicator Replicator
	now        func() time.Time
}

// NewRecordService creates a new record service. replicator may be nil.
func NewRecordService(patients repositories.PatientRepository, notes repositories.MedicalNoteRepository, replicator Replicator) *RecordService {
	return &RecordService{
		patients:   patients,
		notes:      notes,
		replicator: replicator,
		now:        time.Now,
	}
}

// WithClock overrides the discharge timestamp source
func (s *RecordService) WithClock(now func() time.Time) *RecordService {
	s.now = now
	return s
}

func (s *RecordService) replicate(ctx context.Context, event *entities.RecordEvent) {
	if s.replicator == nil {
		return
	}
	s.replicator.Replicate(ctx, event)
}

// AdmitPatient validates and stores a new patient as Active
func (s *RecordService) AdmitPatient(ctx context.Context, input *entities.NewPatient) (*entities.Patient, error) {
	ctx, span := observability.StartSpan(ctx, "RecordService.AdmitPatient")
	defer span.End()

	if err := input.Validate(); err != nil {
		return nil, err
	}

	patient := input.Patient()
	if err := s.patients.Create(ctx, patient); err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info().Str("mrn", patient.MRN).Str("specialty", string(patient.Specialty)).Msg("Patient admitted")
	s.replicate(ctx, entities.NewRecordEvent(entities.RecordEventPatientAdmitted, patient.MRN, patient))
	return patient, nil
}

// UpdatePatient applies the supplied mutable fields
func (s *RecordService) UpdatePatient(ctx context.Context, mrn string, update *entities.PatientUpdate) (*entities.Patient, error) {
	ctx, span := observability.StartSpan(ctx, "RecordService.UpdatePatient")
	defer span.End()

	if err := update.Validate(); err != nil {
		return nil, err
	}

	patient, err := s.patients.Update(ctx, mrn, update)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	s.replicate(ctx, entities.NewRecordEvent(entities.RecordEventPatientUpdated, patient.MRN, patient))
	return patient, nil
}

// DischargePatient ends an Active patient's stay and records the discharge
// note atomically
func (s *RecordService) DischargePatient(ctx context.Context, mrn string, req *entities.DischargeRequest) (*entities.Patient, error) {
	ctx, span := observability.StartSpan(ctx, "RecordService.DischargePatient")
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	result, err := s.patients.Discharge(ctx, mrn, req.DischargeNotes, s.now())
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info().Str("mrn", mrn).Int64("note_id", result.Note.ID).Msg("Patient discharged")
	s.replicate(ctx, entities.NewRecordEvent(entities.RecordEventPatientDischarged, mrn, result.Patient, result.Note))
	return result.Patient, nil
}

// AddNote stores a medical note for an existing patient
func (s *RecordService) AddNote(ctx context.Context, input *entities.NewMedicalNote) (*entities.MedicalNote, error) {
	ctx, span := observability.StartSpan(ctx, "RecordService.AddNote")
	defer span.End()

	if err := input.Validate(); err != nil {
		return nil, err
	}

	note := input.MedicalNote()
	if err := s.notes.Create(ctx, note); err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	s.replicate(ctx, entities.NewRecordEvent(entities.RecordEventNoteAdded, note.PatientMRN, nil, note))
	return note, nil
}

// ListPatients returns every patient
func (s *RecordService) ListPatients(ctx context.Context) ([]*entities.Patient, error) {
	return s.patients.List(ctx, repositories.PatientFilter{})
}

// ListNotes returns a patient's notes, oldest first
func (s *RecordService) ListNotes(ctx context.Context, mrn string) ([]*entities.MedicalNote, error) {
	return s.notes.ListByPatient(ctx, mrn)
}

// ListSpecialties returns the distinct specialties among current patients
func (s *RecordService) ListSpecialties(ctx context.Context) ([]string, error) {
	return s.patients.ListSpecialties(ctx)
}
