package client

import (
	"sync"

	"github.com/zatekoja/wardtracker/internal/domain/entities"
)

// Action is a state change on the ward store
type Action interface {
	reduce(patients []*entities.Patient) []*entities.Patient
}

// PatientsLoaded replaces the whole list with a fresh fetch
type PatientsLoaded struct {
	Patients []*entities.Patient
}

// PatientAdmitted adds a newly admitted patient
type PatientAdmitted struct {
	Patient *entities.Patient
}

// PatientUpdated replaces a patient with the server's copy
type PatientUpdated struct {
	Patient *entities.Patient
}

// PatientDischarged replaces a patient with the server's discharged copy
type PatientDischarged struct {
	Patient *entities.Patient
}

func (a PatientsLoaded) reduce([]*entities.Patient) []*entities.Patient {
	return append([]*entities.Patient(nil), a.Patients...)
}

func (a PatientAdmitted) reduce(patients []*entities.Patient) []*entities.Patient {
	return upsert(patients, a.Patient)
}

func (a PatientUpdated) reduce(patients []*entities.Patient) []*entities.Patient {
	return upsert(patients, a.Patient)
}

func (a PatientDischarged) reduce(patients []*entities.Patient) []*entities.Patient {
	return upsert(patients, a.Patient)
}

func upsert(patients []*entities.Patient, patient *entities.Patient) []*entities.Patient {
	next := make([]*entities.Patient, 0, len(patients)+1)
	replaced := false
	for _, p := range patients {
		if p.MRN == patient.MRN {
			next = append(next, patient)
			replaced = true
			continue
		}
		next = append(next, p)
	}
	if !replaced {
		next = append(next, patient)
	}
	return next
}

// WardStore is the single source of truth for the client's patient list.
// State only changes through Dispatch; every reader gets a copy.
type WardStore struct {
	mu        sync.RWMutex
	patients  []*entities.Patient
	listeners []func([]*entities.Patient)
}

// NewWardStore creates an empty store
func NewWardStore() *WardStore {
	return &WardStore{}
}

// Dispatch applies an action and notifies subscribers with the new state
func (s *WardStore) Dispatch(action Action) {
	s.mu.Lock()
	s.patients = action.reduce(s.patients)
	snapshot := append([]*entities.Patient(nil), s.patients...)
	listeners := append([]func([]*entities.Patient)(nil), s.listeners...)
	s.mu.Unlock()

	for _, listener := range listeners {
		listener(snapshot)
	}
}

// Subscribe registers fn to run after every dispatch
func (s *WardStore) Subscribe(fn func([]*entities.Patient)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Snapshot returns the current patient list
func (s *WardStore) Snapshot() []*entities.Patient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*entities.Patient(nil), s.patients...)
}

// Active returns the patients still on the ward
func (s *WardStore) Active() []*entities.Patient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*entities.Patient, 0)
	for _, p := range s.patients {
		if p.IsActive() {
			result = append(result, p)
		}
	}
	return result
}

// BySpecialty groups the current list by specialty
func (s *WardStore) BySpecialty() map[entities.Specialty][]*entities.Patient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make(map[entities.Specialty][]*entities.Patient)
	for _, p := range s.patients {
		result[p.Specialty] = append(result[p.Specialty], p)
	}
	return result
}

// Find looks up a patient by MRN
func (s *WardStore) Find(mrn string) (*entities.Patient, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.patients {
		if p.MRN == mrn {
			return p, true
		}
	}
	return nil, false
}
