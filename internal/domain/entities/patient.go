package entities

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/zatekoja/wardtracker/pkg/errors"
)

// Gender of a patient
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// Valid reports whether g is one of the recognised genders
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// Specialty is the ward specialty a patient is admitted under
type Specialty string

const (
	SpecialtyHematology              Specialty = "Hematology"
	SpecialtyRheumatology            Specialty = "Rheumatology"
	SpecialtyPulmonology             Specialty = "Pulmonology"
	SpecialtyInfectiousDiseases      Specialty = "Infectious Diseases"
	SpecialtyGeneralInternalMedicine Specialty = "General Internal Medicine"
	SpecialtyNeurology               Specialty = "Neurology"
	SpecialtyEndocrinology           Specialty = "Endocrinology"
)

// Specialties lists every specialty in display order
var Specialties = []Specialty{
	SpecialtyHematology,
	SpecialtyRheumatology,
	SpecialtyPulmonology,
	SpecialtyInfectiousDiseases,
	SpecialtyGeneralInternalMedicine,
	SpecialtyNeurology,
	SpecialtyEndocrinology,
}

// Valid reports whether s is one of the ward specialties
func (s Specialty) Valid() bool {
	for _, known := range Specialties {
		if s == known {
			return true
		}
	}
	return false
}

// PatientStatus represents where a patient is in their stay
type PatientStatus string

const (
	PatientStatusActive     PatientStatus = "Active"
	PatientStatusDischarged PatientStatus = "Discharged"
)

// Patient is an admitted (or formerly admitted) ward patient.
// Status moves from Active to Discharged exactly once; DischargeDate is set
// by that transition and never otherwise.
type Patient struct {
	MRN            string        `json:"mrn" db:"mrn"`
	Name           string        `json:"name" db:"name"`
	Age            int           `json:"age" db:"age"`
	Gender         Gender        `json:"gender" db:"gender"`
	Diagnosis      string        `json:"diagnosis" db:"diagnosis"`
	AdmissionDate  time.Time     `json:"admissionDate" db:"admission_date"`
	DischargeDate  *time.Time    `json:"dischargeDate,omitempty" db:"discharge_date"`
	Status         PatientStatus `json:"status" db:"status"`
	Specialty      Specialty     `json:"specialty" db:"specialty"`
	AssignedDoctor string        `json:"assignedDoctor,omitempty" db:"assigned_doctor"`
}

// IsActive reports whether the patient is still on the ward
func (p *Patient) IsActive() bool {
	return p.Status == PatientStatusActive
}

// NewPatient is the admission payload. Pointer fields distinguish "absent"
// from zero values.
type NewPatient struct {
	MRN            string     `json:"mrn"`
	Name           string     `json:"name"`
	Age            *int       `json:"age"`
	Gender         Gender     `json:"gender"`
	Diagnosis      string     `json:"diagnosis"`
	AdmissionDate  *Timestamp `json:"admissionDate"`
	Specialty      Specialty  `json:"specialty"`
	AssignedDoctor string     `json:"assignedDoctor,omitempty"`
}

// Validate checks every required admission field. Status and discharge date
// are never accepted from the caller.
func (n *NewPatient) Validate() error {
	n.MRN = strings.TrimSpace(n.MRN)
	n.Name = strings.TrimSpace(n.Name)
	n.Diagnosis = strings.TrimSpace(n.Diagnosis)
	n.AssignedDoctor = strings.TrimSpace(n.AssignedDoctor)

	var missing []string
	if n.MRN == "" {
		missing = append(missing, "mrn")
	}
	if n.Name == "" {
		missing = append(missing, "name")
	}
	if n.Age == nil {
		missing = append(missing, "age")
	}
	if n.Gender == "" {
		missing = append(missing, "gender")
	}
	if n.Diagnosis == "" {
		missing = append(missing, "diagnosis")
	}
	if n.AdmissionDate == nil || n.AdmissionDate.IsZero() {
		missing = append(missing, "admissionDate")
	}
	if n.Specialty == "" {
		missing = append(missing, "specialty")
	}
	if len(missing) > 0 {
		return apperrors.NewValidationError("missing required fields: " + strings.Join(missing, ", "))
	}

	if *n.Age < 0 {
		return apperrors.NewValidationError(fmt.Sprintf("age must not be negative, got %d", *n.Age))
	}
	if !n.Gender.Valid() {
		return apperrors.NewValidationError(fmt.Sprintf("invalid gender %q", n.Gender))
	}
	if !n.Specialty.Valid() {
		return apperrors.NewValidationError(fmt.Sprintf("invalid specialty %q", n.Specialty))
	}
	return nil
}

// Patient builds the row to insert: always Active, never discharged.
func (n *NewPatient) Patient() *Patient {
	return &Patient{
		MRN:            n.MRN,
		Name:           n.Name,
		Age:            *n.Age,
		Gender:         n.Gender,
		Diagnosis:      n.Diagnosis,
		AdmissionDate:  n.AdmissionDate.Time,
		Status:         PatientStatusActive,
		Specialty:      n.Specialty,
		AssignedDoctor: n.AssignedDoctor,
	}
}

// PatientUpdate carries the mutable patient fields. Nil means "leave as is".
type PatientUpdate struct {
	Name           *string    `json:"name,omitempty"`
	Age            *int       `json:"age,omitempty"`
	Gender         *Gender    `json:"gender,omitempty"`
	Diagnosis      *string    `json:"diagnosis,omitempty"`
	Specialty      *Specialty `json:"specialty,omitempty"`
	AssignedDoctor *string    `json:"assignedDoctor,omitempty"`
}

// Empty reports whether the update changes nothing
func (u *PatientUpdate) Empty() bool {
	return u.Name == nil && u.Age == nil && u.Gender == nil &&
		u.Diagnosis == nil && u.Specialty == nil && u.AssignedDoctor == nil
}

// Validate checks the fields that are present
func (u *PatientUpdate) Validate() error {
	if u.Empty() {
		return apperrors.NewValidationError("no updatable fields supplied")
	}
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return apperrors.NewValidationError("name must not be empty")
	}
	if u.Diagnosis != nil && strings.TrimSpace(*u.Diagnosis) == "" {
		return apperrors.NewValidationError("diagnosis must not be empty")
	}
	if u.Age != nil && *u.Age < 0 {
		return apperrors.NewValidationError(fmt.Sprintf("age must not be negative, got %d", *u.Age))
	}
	if u.Gender != nil && !u.Gender.Valid() {
		return apperrors.NewValidationError(fmt.Sprintf("invalid gender %q", *u.Gender))
	}
	if u.Specialty != nil && !u.Specialty.Valid() {
		return apperrors.NewValidationError(fmt.Sprintf("invalid specialty %q", *u.Specialty))
	}
	return nil
}

// DischargeRequest is the body of a discharge call
type DischargeRequest struct {
	DischargeNotes string `json:"dischargeNotes"`
}

// Validate requires non-blank discharge notes
func (d *DischargeRequest) Validate() error {
	if strings.TrimSpace(d.DischargeNotes) == "" {
		return apperrors.NewValidationError("dischargeNotes is required")
	}
	return nil
}
