package database

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/zatekoja/wardtracker/internal/domain/entities"
	"github.com/zatekoja/wardtracker/internal/domain/repositories"
	"github.com/zatekoja/wardtracker/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/wardtracker/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/wardtracker/pkg/errors"
)

const medicalNotesTable = "medical_notes"

var noteColumns = []interface{}{"id", "patient_mrn", "date", "note", "user"}

// MedicalNoteAdapter implements the MedicalNoteRepository interface
type MedicalNoteAdapter struct {
	client  *postgres.Client
	db      *goqu.Database
	metrics *observability.Metrics
}

// NewMedicalNoteAdapter creates a new medical note adapter. metrics may be nil.
func NewMedicalNoteAdapter(client *postgres.Client, metrics *observability.Metrics) repositories.MedicalNoteRepository {
	return &MedicalNoteAdapter{
		client:  client,
		db:      goqu.New("postgres", client.DB()),
		metrics: metrics,
	}
}

func noteRecord(note *entities.MedicalNote) goqu.Record {
	return goqu.Record{
		"patient_mrn": note.PatientMRN,
		"date":        note.Date,
		"note":        note.Note,
		"user":        note.User,
	}
}

func scanNote(row rowScanner) (*entities.MedicalNote, error) {
	note := &entities.MedicalNote{}
	if err := row.Scan(&note.ID, &note.PatientMRN, &note.Date, &note.Note, &note.User); err != nil {
		return nil, err
	}
	return note, nil
}

// Create inserts a note and assigns its ID
func (a *MedicalNoteAdapter) Create(ctx context.Context, note *entities.MedicalNote) error {
	defer observeDB(ctx, a.metrics, "medical_notes.create", time.Now())

	query, args, err := a.db.Insert(medicalNotesTable).
		Rows(noteRecord(note)).
		Returning("id").
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&note.ID); err != nil {
		return translateError(err, "failed to create medical note", constraintMessages{
			pqForeignKeyViolation: fmt.Sprintf("patient with MRN %s does not exist", note.PatientMRN),
		})
	}
	return nil
}

// ListByPatient returns a patient's notes oldest first. An unknown MRN
// yields an empty list.
func (a *MedicalNoteAdapter) ListByPatient(ctx context.Context, mrn string) ([]*entities.MedicalNote, error) {
	defer observeDB(ctx, a.metrics, "medical_notes.list_by_patient", time.Now())

	return a.list(ctx, a.db.Select(noteColumns...).
		From(medicalNotesTable).
		Where(goqu.Ex{"patient_mrn": mrn}).
		Order(goqu.I("date").Asc(), goqu.I("id").Asc()))
}

// List pages through all notes in ID order
func (a *MedicalNoteAdapter) List(ctx context.Context, limit, offset int) ([]*entities.MedicalNote, error) {
	defer observeDB(ctx, a.metrics, "medical_notes.list", time.Now())

	ds := a.db.Select(noteColumns...).
		From(medicalNotesTable).
		Order(goqu.I("id").Asc())
	if limit > 0 {
		ds = ds.Limit(uint(limit))
	}
	if offset > 0 {
		ds = ds.Offset(uint(offset))
	}
	return a.list(ctx, ds)
}

func (a *MedicalNoteAdapter) list(ctx context.Context, ds *goqu.SelectDataset) ([]*entities.MedicalNote, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translateError(err, "failed to list medical notes", nil)
	}
	defer rows.Close()

	notes := make([]*entities.MedicalNote, 0)
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, translateError(err, "failed to scan medical note", nil)
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err, "failed to list medical notes", nil)
	}
	return notes, nil
}
