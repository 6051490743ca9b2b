package handlers

import (
	"context"
	"net/http"

	"github.com/zatekoja/wardtracker/internal/domain/entities"
)

// RecordService defines the ward record operations used by the handlers
type RecordService interface {
	ListPatients(ctx context.Context) ([]*entities.Patient, error)
	AdmitPatient(ctx context.Context, input *entities.NewPatient) (*entities.Patient, error)
	UpdatePatient(ctx context.Context, mrn string, update *entities.PatientUpdate) (*entities.Patient, error)
	DischargePatient(ctx context.Context, mrn string, req *entities.DischargeRequest) (*entities.Patient, error)
	AddNote(ctx context.Context, input *entities.NewMedicalNote) (*entities.MedicalNote, error)
	ListNotes(ctx context.Context, mrn string) ([]*entities.MedicalNote, error)
	ListSpecialties(ctx context.Context) ([]string, error)
}

// PatientHandler handles patient-related HTTP requests
type PatientHandler struct {
	service RecordService
}

// NewPatientHandler creates a new patient handler
func NewPatientHandler(service RecordService) *PatientHandler {
	return &PatientHandler{service: service}
}

// ListPatients handles GET /patients
func (h *PatientHandler) ListPatients(w http.ResponseWriter, r *http.Request) {
	patients, err := h.service.ListPatients(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, patients)
}

// CreatePatient handles POST /patients
func (h *PatientHandler) CreatePatient(w http.ResponseWriter, r *http.Request) {
	var input entities.NewPatient
	if err := decodeJSON(r, &input); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	patient, err := h.service.AdmitPatient(r.Context(), &input)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, patient)
}

// UpdatePatient handles PUT /patients/{mrn}
func (h *PatientHandler) UpdatePatient(w http.ResponseWriter, r *http.Request) {
	var update entities.PatientUpdate
	if err := decodeJSON(r, &update); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	patient, err := h.service.UpdatePatient(r.Context(), r.PathValue("mrn"), &update)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, patient)
}

// DischargePatient handles POST /patients/{mrn}/discharge
func (h *PatientHandler) DischargePatient(w http.ResponseWriter, r *http.Request) {
	var req entities.DischargeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	patient, err := h.service.DischargePatient(r.Context(), r.PathValue("mrn"), &req)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, patient)
}

// ListPatientNotes handles GET /patients/{mrn}/notes
func (h *PatientHandler) ListPatientNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.service.ListNotes(r.Context(), r.PathValue("mrn"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, notes)
}
