package client

import (
	"context"

	"github.com/zatekoja/wardtracker/internal/domain/entities"
)

// Ward runs API calls and dispatches their results to the store. The store
// only ever holds what the server returned.
type Ward struct {
	api   *APIClient
	store *WardStore
}

// NewWard creates a ward bound to an API client and a store
func NewWard(api *APIClient, store *WardStore) *Ward {
	return &Ward{api: api, store: store}
}

// Store returns the ward's store
func (w *Ward) Store() *WardStore {
	return w.store
}

// API returns the ward's API client
func (w *Ward) API() *APIClient {
	return w.api
}

// Refresh reloads the patient list
func (w *Ward) Refresh(ctx context.Context) error {
	patients, err := w.api.ListPatients(ctx)
	if err != nil {
		return err
	}
	w.store.Dispatch(PatientsLoaded{Patients: patients})
	return nil
}

// Admit admits a patient
func (w *Ward) Admit(ctx context.Context, input *entities.NewPatient) (*entities.Patient, error) {
	patient, err := w.api.AdmitPatient(ctx, input)
	if err != nil {
		return nil, err
	}
	w.store.Dispatch(PatientAdmitted{Patient: patient})
	return patient, nil
}

// Update changes a patient's mutable fields
func (w *Ward) Update(ctx context.Context, mrn string, update *entities.PatientUpdate) (*entities.Patient, error) {
	patient, err := w.api.UpdatePatient(ctx, mrn, update)
	if err != nil {
		return nil, err
	}
	w.store.Dispatch(PatientUpdated{Patient: patient})
	return patient, nil
}

// Discharge discharges a patient
func (w *Ward) Discharge(ctx context.Context, mrn, dischargeNotes string) (*entities.Patient, error) {
	patient, err := w.api.DischargePatient(ctx, mrn, dischargeNotes)
	if err != nil {
		return nil, err
	}
	w.store.Dispatch(PatientDischarged{Patient: patient})
	return patient, nil
}
