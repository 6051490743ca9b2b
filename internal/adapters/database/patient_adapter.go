package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/zatekoja/wardtracker/internal/domain/entities"
	"github.com/zatekoja/wardtracker/internal/domain/repositories"
	"github.com/zatekoja/wardtracker/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/wardtracker/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/wardtracker/pkg/errors"
)

const patientsTable = "patients"

var patientColumns = []interface{}{
	"mrn", "name", "age", "gender", "diagnosis", "admission_date",
	"discharge_date", "status", "specialty", "assigned_doctor",
}

// PatientAdapter implements the PatientRepository interface
type PatientAdapter struct {
	client  *postgres.Client
	db      *goqu.Database
	metrics *observability.Metrics
}

// NewPatientAdapter creates a new patient adapter. metrics may be nil.
func NewPatientAdapter(client *postgres.Client, metrics *observability.Metrics) repositories.PatientRepository {
	return &PatientAdapter{
		client:  client,
		db:      goqu.New("postgres", client.DB()),
		metrics: metrics,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPatient(row rowScanner) (*entities.Patient, error) {
	patient := &entities.Patient{}
	var dischargeDate sql.NullTime
	var assignedDoctor sql.NullString

	err := row.Scan(
		&patient.MRN,
		&patient.Name,
		&patient.Age,
		&patient.Gender,
		&patient.Diagnosis,
		&patient.AdmissionDate,
		&dischargeDate,
		&patient.Status,
		&patient.Specialty,
		&assignedDoctor,
	)
	if err != nil {
		return nil, err
	}

	if dischargeDate.Valid {
		patient.DischargeDate = &dischargeDate.Time
	}
	patient.AssignedDoctor = assignedDoctor.String
	return patient, nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func observeDB(ctx context.Context, metrics *observability.Metrics, operation string, started time.Time) {
	observability.RecordDBMetric(ctx, metrics, operation, time.Since(started))
}

// Create inserts a new Active patient and refreshes it with the stored row
func (a *PatientAdapter) Create(ctx context.Context, patient *entities.Patient) error {
	defer observeDB(ctx, a.metrics, "patients.create", time.Now())

	now := time.Now()
	record := goqu.Record{
		"mrn":             patient.MRN,
		"name":            patient.Name,
		"age":             patient.Age,
		"gender":          patient.Gender,
		"diagnosis":       patient.Diagnosis,
		"admission_date":  patient.AdmissionDate,
		"status":          entities.PatientStatusActive,
		"specialty":       patient.Specialty,
		"assigned_doctor": nullableString(patient.AssignedDoctor),
		"created_at":      now,
		"updated_at":      now,
	}

	query, args, err := a.db.Insert(patientsTable).
		Rows(record).
		Returning(patientColumns...).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	stored, err := scanPatient(a.client.DB().QueryRowContext(ctx, query, args...))
	if err != nil {
		return translateError(err, "failed to create patient", constraintMessages{
			pqUniqueViolation: fmt.Sprintf("patient with MRN %s already exists", patient.MRN),
		})
	}

	*patient = *stored
	return nil
}

// GetByMRN retrieves a patient by MRN
func (a *PatientAdapter) GetByMRN(ctx context.Context, mrn string) (*entities.Patient, error) {
	defer observeDB(ctx, a.metrics, "patients.get", time.Now())

	query, args, err := a.db.Select(patientColumns...).
		From(patientsTable).
		Where(goqu.Ex{"mrn": mrn}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	patient, err := scanPatient(a.client.DB().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("patient with MRN %s not found", mrn))
	}
	if err != nil {
		return nil, translateError(err, "failed to get patient", nil)
	}
	return patient, nil
}

// Update applies the supplied fields and returns the stored patient
func (a *PatientAdapter) Update(ctx context.Context, mrn string, update *entities.PatientUpdate) (*entities.Patient, error) {
	defer observeDB(ctx, a.metrics, "patients.update", time.Now())

	record := goqu.Record{"updated_at": time.Now()}
	if update.Name != nil {
		record["name"] = *update.Name
	}
	if update.Age != nil {
		record["age"] = *update.Age
	}
	if update.Gender != nil {
		record["gender"] = *update.Gender
	}
	if update.Diagnosis != nil {
		record["diagnosis"] = *update.Diagnosis
	}
	if update.Specialty != nil {
		record["specialty"] = *update.Specialty
	}
	if update.AssignedDoctor != nil {
		record["assigned_doctor"] = nullableString(*update.AssignedDoctor)
	}

	query, args, err := a.db.Update(patientsTable).
		Set(record).
		Where(goqu.Ex{"mrn": mrn}).
		Returning(patientColumns...).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build update query", err)
	}

	patient, err := scanPatient(a.client.DB().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("patient with MRN %s not found", mrn))
	}
	if err != nil {
		return nil, translateError(err, "failed to update patient", nil)
	}
	return patient, nil
}

// List retrieves patients ordered by admission date, then MRN
func (a *PatientAdapter) List(ctx context.Context, filter repositories.PatientFilter) ([]*entities.Patient, error) {
	defer observeDB(ctx, a.metrics, "patients.list", time.Now())

	ds := a.db.Select(patientColumns...).From(patientsTable)
	if filter.Status != "" {
		ds = ds.Where(goqu.Ex{"status": filter.Status})
	}
	ds = ds.Order(goqu.I("admission_date").Asc(), goqu.I("mrn").Asc())
	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translateError(err, "failed to list patients", nil)
	}
	defer rows.Close()

	patients := make([]*entities.Patient, 0)
	for rows.Next() {
		patient, err := scanPatient(rows)
		if err != nil {
			return nil, translateError(err, "failed to scan patient", nil)
		}
		patients = append(patients, patient)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err, "failed to list patients", nil)
	}
	return patients, nil
}

// ListSpecialties returns the distinct specialties present across all patients
func (a *PatientAdapter) ListSpecialties(ctx context.Context) ([]string, error) {
	defer observeDB(ctx, a.metrics, "patients.specialties", time.Now())

	query, args, err := a.db.From(patientsTable).
		Select("specialty").
		Distinct().
		Order(goqu.I("specialty").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translateError(err, "failed to list specialties", nil)
	}
	defer rows.Close()

	specialties := make([]string, 0)
	for rows.Next() {
		var specialty string
		if err := rows.Scan(&specialty); err != nil {
			return nil, translateError(err, "failed to scan specialty", nil)
		}
		specialties = append(specialties, specialty)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err, "failed to list specialties", nil)
	}
	return specialties, nil
}

// Discharge marks an Active patient as Discharged and records the discharge
// note in one transaction. The status check and the write are a single
// conditional UPDATE, so two concurrent discharges cannot both succeed.
func (a *PatientAdapter) Discharge(ctx context.Context, mrn, dischargeNotes string, at time.Time) (*repositories.DischargeResult, error) {
	defer observeDB(ctx, a.metrics, "patients.discharge", time.Now())

	updateQuery, args, err := a.db.Update(patientsTable).
		Set(goqu.Record{
			"status":         entities.PatientStatusDischarged,
			"discharge_date": at,
			"updated_at":     at,
		}).
		Where(
			goqu.Ex{"mrn": mrn, "status": entities.PatientStatusActive},
			goqu.I("admission_date").Lte(at),
		).
		Returning(patientColumns...).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build discharge query", err)
	}

	note := entities.NewDischargeNote(mrn, dischargeNotes, at)
	noteQuery, noteArgs, err := a.db.Insert(medicalNotesTable).
		Rows(noteRecord(note)).
		Returning("id").
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build note insert query", err)
	}

	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return nil, translateError(err, "failed to begin discharge", nil)
	}
	defer tx.Rollback()

	patient, err := scanPatient(tx.QueryRowContext(ctx, updateQuery, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, a.dischargeRejection(ctx, tx, mrn, at)
	}
	if err != nil {
		return nil, translateError(err, "failed to discharge patient", nil)
	}

	if err := tx.QueryRowContext(ctx, noteQuery, noteArgs...).Scan(&note.ID); err != nil {
		return nil, translateError(err, "failed to record discharge note", nil)
	}

	if err := tx.Commit(); err != nil {
		return nil, translateError(err, "failed to commit discharge", nil)
	}

	return &repositories.DischargeResult{Patient: patient, Note: note}, nil
}

// dischargeRejection explains why the conditional discharge update matched
// no row
func (a *PatientAdapter) dischargeRejection(ctx context.Context, tx *sql.Tx, mrn string, at time.Time) error {
	query, args, err := a.db.Select("status", "admission_date").
		From(patientsTable).
		Where(goqu.Ex{"mrn": mrn}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build query", err)
	}

	var status entities.PatientStatus
	var admissionDate time.Time
	err = tx.QueryRowContext(ctx, query, args...).Scan(&status, &admissionDate)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NewNotFoundError(fmt.Sprintf("patient with MRN %s not found", mrn))
	}
	if err != nil {
		return translateError(err, "failed to load patient for discharge", nil)
	}

	switch {
	case status == entities.PatientStatusDischarged:
		return apperrors.NewConflictError(fmt.Sprintf("patient with MRN %s is already discharged", mrn))
	case admissionDate.After(at):
		return apperrors.NewValidationError(fmt.Sprintf("patient with MRN %s has an admission date after the discharge time", mrn))
	default:
		return apperrors.NewConflictError(fmt.Sprintf("patient with MRN %s changed during discharge", mrn))
	}
}
