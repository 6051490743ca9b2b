package mirror

import (
	"context"
	"fmt"
	"time"

	"github.com/zatekoja/wardtracker/internal/domain/entities"
	"github.com/zatekoja/wardtracker/internal/domain/providers"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	mongoPatientsCollection = "patients"
	mongoNotesCollection    = "notes"
)

type patientDocument struct {
	MRN            string     `bson:"mrn"`
	Name           string     `bson:"name"`
	Age            int        `bson:"age"`
	Gender         string     `bson:"gender"`
	Diagnosis      string     `bson:"diagnosis"`
	AdmissionDate  time.Time  `bson:"admissionDate"`
	DischargeDate  *time.Time `bson:"dischargeDate,omitempty"`
	Status         string     `bson:"status"`
	Specialty      string     `bson:"specialty"`
	AssignedDoctor string     `bson:"assignedDoctor,omitempty"`
	MirroredAt     time.Time  `bson:"mirroredAt"`
}

type noteDocument struct {
	NoteID     int64     `bson:"noteId"`
	PatientMRN string    `bson:"patientMrn"`
	Date       time.Time `bson:"date"`
	Note       string    `bson:"note"`
	User       string    `bson:"user"`
	MirroredAt time.Time `bson:"mirroredAt"`
}

func toPatientDocument(p *entities.Patient) patientDocument {
	return patientDocument{
		MRN:            p.MRN,
		Name:           p.Name,
		Age:            p.Age,
		Gender:         string(p.Gender),
		Diagnosis:      p.Diagnosis,
		AdmissionDate:  p.AdmissionDate,
		DischargeDate:  p.DischargeDate,
		Status:         string(p.Status),
		Specialty:      string(p.Specialty),
		AssignedDoctor: p.AssignedDoctor,
		MirroredAt:     time.Now().UTC(),
	}
}

func toNoteDocument(n *entities.MedicalNote) noteDocument {
	return noteDocument{
		NoteID:     n.ID,
		PatientMRN: n.PatientMRN,
		Date:       n.Date,
		Note:       n.Note,
		User:       n.User,
		MirroredAt: time.Now().UTC(),
	}
}

// MongoMirror mirrors ward records into MongoDB
type MongoMirror struct {
	patients *mongo.Collection
	notes    *mongo.Collection
}

// NewMongoMirror creates a mirror over db
func NewMongoMirror(db *mongo.Database) *MongoMirror {
	return &MongoMirror{
		patients: db.Collection(mongoPatientsCollection),
		notes:    db.Collection(mongoNotesCollection),
	}
}

var _ providers.RecordMirror = (*MongoMirror)(nil)

// Name implements providers.RecordMirror
func (m *MongoMirror) Name() string { return "mongodb" }

// EnsureIndexes creates the lookup indexes the mirror relies on
func (m *MongoMirror) EnsureIndexes(ctx context.Context) error {
	if _, err := m.patients.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "mrn", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("patients_by_mrn"),
	}); err != nil {
		return fmt.Errorf("failed to create patients index: %w", err)
	}

	if _, err := m.notes.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "noteId", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("notes_by_id"),
		},
		{
			Keys:    bson.D{{Key: "patientMrn", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetName("notes_by_patient"),
		},
	}); err != nil {
		return fmt.Errorf("failed to create notes indexes: %w", err)
	}
	return nil
}

// InsertPatient implements providers.RecordMirror
func (m *MongoMirror) InsertPatient(ctx context.Context, patient *entities.Patient) error {
	if _, err := m.patients.InsertOne(ctx, toPatientDocument(patient)); err != nil {
		return fmt.Errorf("insert patient %s: %w", patient.MRN, err)
	}
	return nil
}

// ReplacePatient implements providers.RecordMirror
func (m *MongoMirror) ReplacePatient(ctx context.Context, patient *entities.Patient) error {
	result, err := m.patients.ReplaceOne(ctx, bson.M{"mrn": patient.MRN}, toPatientDocument(patient))
	if err != nil {
		return fmt.Errorf("replace patient %s: %w", patient.MRN, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("replace patient %s: %w", patient.MRN, ErrNotMirrored)
	}
	return nil
}

// InsertNote implements providers.RecordMirror
func (m *MongoMirror) InsertNote(ctx context.Context, note *entities.MedicalNote) error {
	if _, err := m.notes.InsertOne(ctx, toNoteDocument(note)); err != nil {
		return fmt.Errorf("insert note %d: %w", note.ID, err)
	}
	return nil
}

// UpsertPatient implements providers.RecordMirror
func (m *MongoMirror) UpsertPatient(ctx context.Context, patient *entities.Patient) error {
	_, err := m.patients.ReplaceOne(ctx,
		bson.M{"mrn": patient.MRN},
		toPatientDocument(patient),
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert patient %s: %w", patient.MRN, err)
	}
	return nil
}

// UpsertNote implements providers.RecordMirror
func (m *MongoMirror) UpsertNote(ctx context.Context, note *entities.MedicalNote) error {
	_, err := m.notes.ReplaceOne(ctx,
		bson.M{"noteId": note.ID},
		toNoteDocument(note),
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert note %d: %w", note.ID, err)
	}
	return nil
}
