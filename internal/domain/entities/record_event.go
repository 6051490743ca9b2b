package entities

import (
	"time"

	"github.com/google/uuid"
)

// RecordEventType represents the kind of write a record event describes
type RecordEventType string

const (
	RecordEventPatientAdmitted   RecordEventType = "patient_admitted"
	RecordEventPatientUpdated    RecordEventType = "patient_updated"
	RecordEventPatientDischarged RecordEventType = "patient_discharged"
	RecordEventNoteAdded         RecordEventType = "note_added"
)

// RecordEvent is published after a committed primary-store write so the
// mirror can be brought up to date out of band. It carries the committed
// state, not a diff.
type RecordEvent struct {
	ID         string          `json:"id"`
	Type       RecordEventType `json:"type"`
	PatientMRN string          `json:"patientMrn"`
	Patient    *Patient        `json:"patient,omitempty"`
	Notes      []*MedicalNote  `json:"notes,omitempty"`
	OccurredAt time.Time       `json:"occurredAt"`
}

// NewRecordEvent creates a record event for the committed patient and notes
func NewRecordEvent(eventType RecordEventType, mrn string, patient *Patient, notes ...*MedicalNote) *RecordEvent {
	return &RecordEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		PatientMRN: mrn,
		Patient:    patient,
		Notes:      notes,
		OccurredAt: time.Now().UTC(),
	}
}
