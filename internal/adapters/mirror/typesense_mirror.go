package mirror

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"
	"github.com/zatekoja/wardtracker/internal/domain/entities"
	"github.com/zatekoja/wardtracker/internal/domain/providers"
	"github.com/zatekoja/wardtracker/internal/infrastructure/clients/typesense"
)

// TypesenseMirror mirrors ward records into Typesense collections. Patient
// documents get their own ids and are located by MRN.
type TypesenseMirror struct {
	client *typesense.Client
}

// NewTypesenseMirror creates a new Typesense mirror
func NewTypesenseMirror(client *typesense.Client) *TypesenseMirror {
	return &TypesenseMirror{client: client}
}

var _ providers.RecordMirror = (*TypesenseMirror)(nil)

// Name implements providers.RecordMirror
func (m *TypesenseMirror) Name() string { return "typesense" }

func patientToDocument(id string, p *entities.Patient) map[string]interface{} {
	doc := map[string]interface{}{
		"id":             id,
		"mrn":            p.MRN,
		"name":           p.Name,
		"age":            p.Age,
		"gender":         string(p.Gender),
		"diagnosis":      p.Diagnosis,
		"admission_date": p.AdmissionDate.Unix(),
		"status":         string(p.Status),
		"specialty":      string(p.Specialty),
	}
	if p.DischargeDate != nil {
		doc["discharge_date"] = p.DischargeDate.Unix()
	}
	if p.AssignedDoctor != "" {
		doc["assigned_doctor"] = p.AssignedDoctor
	}
	return doc
}

func noteToDocument(n *entities.MedicalNote) map[string]interface{} {
	return map[string]interface{}{
		"id":          strconv.FormatInt(n.ID, 10),
		"note_id":     n.ID,
		"patient_mrn": n.PatientMRN,
		"date":        n.Date.Unix(),
		"note":        n.Note,
		"user":        n.User,
	}
}

// findPatientID returns the document id of the mirrored patient, or "" when
// there is none
func (m *TypesenseMirror) findPatientID(ctx context.Context, mrn string) (string, error) {
	params := &api.SearchCollectionParams{
		Q:        pointer.String("*"),
		QueryBy:  pointer.String("mrn"),
		FilterBy: pointer.String(fmt.Sprintf("mrn:=`%s`", mrn)),
		PerPage:  pointer.Int(1),
	}

	result, err := m.client.Client().Collection(typesense.PatientsCollection).Documents().Search(ctx, params)
	if err != nil {
		return "", fmt.Errorf("lookup patient %s: %w", mrn, err)
	}
	if result.Hits == nil {
		return "", nil
	}
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		if id, ok := (*hit.Document)["id"].(string); ok {
			return id, nil
		}
	}
	return "", nil
}

func (m *TypesenseMirror) upsertPatientDocument(ctx context.Context, id string, patient *entities.Patient) error {
	_, err := m.client.Client().Collection(typesense.PatientsCollection).Documents().Upsert(ctx, patientToDocument(id, patient))
	if err != nil {
		return fmt.Errorf("index patient %s: %w", patient.MRN, err)
	}
	return nil
}

// InsertPatient implements providers.RecordMirror
func (m *TypesenseMirror) InsertPatient(ctx context.Context, patient *entities.Patient) error {
	return m.upsertPatientDocument(ctx, uuid.NewString(), patient)
}

// ReplacePatient implements providers.RecordMirror
func (m *TypesenseMirror) ReplacePatient(ctx context.Context, patient *entities.Patient) error {
	id, err := m.findPatientID(ctx, patient.MRN)
	if err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("replace patient %s: %w", patient.MRN, ErrNotMirrored)
	}
	return m.upsertPatientDocument(ctx, id, patient)
}

// InsertNote implements providers.RecordMirror
func (m *TypesenseMirror) InsertNote(ctx context.Context, note *entities.MedicalNote) error {
	return m.UpsertNote(ctx, note)
}

// UpsertPatient implements providers.RecordMirror
func (m *TypesenseMirror) UpsertPatient(ctx context.Context, patient *entities.Patient) error {
	id, err := m.findPatientID(ctx, patient.MRN)
	if err != nil {
		return err
	}
	if id == "" {
		id = uuid.NewString()
	}
	return m.upsertPatientDocument(ctx, id, patient)
}

// UpsertNote implements providers.RecordMirror
func (m *TypesenseMirror) UpsertNote(ctx context.Context, note *entities.MedicalNote) error {
	_, err := m.client.Client().Collection(typesense.NotesCollection).Documents().Upsert(ctx, noteToDocument(note))
	if err != nil {
		return fmt.Errorf("index note %d: %w", note.ID, err)
	}
	return nil
}
