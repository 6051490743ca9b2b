package entities

import (
	"strings"
	"time"

	apperrors "github.com/zatekoja/wardtracker/pkg/errors"
)

// SystemActor authors notes written by the application itself
const SystemActor = "System"

// DischargeNotePrefix starts the synthetic note written on discharge
const DischargeNotePrefix = "Discharge notes: "

// MedicalNote is an immutable free-text entry on a patient's record
type MedicalNote struct {
	ID         int64     `json:"id" db:"id"`
	PatientMRN string    `json:"patientMrn" db:"patient_mrn"`
	Date       time.Time `json:"date" db:"date"`
	Note       string    `json:"note" db:"note"`
	User       string    `json:"user" db:"user"`
}

// IsDischargeNote reports whether the note was written by a discharge
func (n *MedicalNote) IsDischargeNote() bool {
	return n.User == SystemActor && strings.HasPrefix(n.Note, DischargeNotePrefix)
}

// NewDischargeNote builds the synthetic note recorded with a discharge
func NewDischargeNote(mrn, dischargeNotes string, at time.Time) *MedicalNote {
	return &MedicalNote{
		PatientMRN: mrn,
		Date:       at,
		Note:       DischargeNotePrefix + dischargeNotes,
		User:       SystemActor,
	}
}

// NewMedicalNote is the note submission payload
type NewMedicalNote struct {
	PatientMRN string     `json:"patientMrn"`
	Date       *Timestamp `json:"date"`
	Note       string     `json:"note"`
	User       string     `json:"user"`
}

// Validate checks every required note field. Whether the patient exists is
// decided by the primary store's foreign key.
func (n *NewMedicalNote) Validate() error {
	n.PatientMRN = strings.TrimSpace(n.PatientMRN)
	n.User = strings.TrimSpace(n.User)

	var missing []string
	if n.PatientMRN == "" {
		missing = append(missing, "patientMrn")
	}
	if n.Date == nil || n.Date.IsZero() {
		missing = append(missing, "date")
	}
	if strings.TrimSpace(n.Note) == "" {
		missing = append(missing, "note")
	}
	if n.User == "" {
		missing = append(missing, "user")
	}
	if len(missing) > 0 {
		return apperrors.NewValidationError("missing required fields: " + strings.Join(missing, ", "))
	}
	return nil
}

// MedicalNote builds the row to insert
func (n *NewMedicalNote) MedicalNote() *MedicalNote {
	return &MedicalNote{
		PatientMRN: n.PatientMRN,
		Date:       n.Date.Time,
		Note:       n.Note,
		User:       n.User,
	}
}
