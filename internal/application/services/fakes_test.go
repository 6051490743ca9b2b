package services_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/zatekoja/wardtracker/internal/domain/entities"
	"github.com/zatekoja/wardtracker/internal/domain/providers"
	"github.com/zatekoja/wardtracker/internal/domain/repositories"
	apperrors "github.com/zatekoja/wardtracker/pkg/errors"
)

// wardStore is an in-memory primary store. A single mutex makes Discharge
// behave like the conditional UPDATE: the check and the write are atomic.
type wardStore struct {
	mu       sync.Mutex
	patients map[string]*entities.Patient
	order    []string
	notes    []*entities.MedicalNote
	nextID   int64
}

func newWardStore() *wardStore {
	return &wardStore{patients: make(map[string]*entities.Patient)}
}

func clonePatient(p *entities.Patient) *entities.Patient {
	c := *p
	if p.DischargeDate != nil {
		d := *p.DischargeDate
		c.DischargeDate = &d
	}
	return &c
}

func (s *wardStore) Create(ctx context.Context, patient *entities.Patient) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.patients[patient.MRN]; exists {
		return apperrors.NewConflictError(fmt.Sprintf("patient with MRN %s already exists", patient.MRN))
	}
	s.patients[patient.MRN] = clonePatient(patient)
	s.order = append(s.order, patient.MRN)
	return nil
}

func (s *wardStore) GetByMRN(ctx context.Context, mrn string) (*entities.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.patients[mrn]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("patient with MRN %s not found", mrn))
	}
	return clonePatient(p), nil
}

func (s *wardStore) Update(ctx context.Context, mrn string, update *entities.PatientUpdate) (*entities.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.patients[mrn]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("patient with MRN %s not found", mrn))
	}
	if update.Name != nil {
		p.Name = *update.Name
	}
	if update.Age != nil {
		p.Age = *update.Age
	}
	if update.Gender != nil {
		p.Gender = *update.Gender
	}
	if update.Diagnosis != nil {
		p.Diagnosis = *update.Diagnosis
	}
	if update.Specialty != nil {
		p.Specialty = *update.Specialty
	}
	if update.AssignedDoctor != nil {
		p.AssignedDoctor = *update.AssignedDoctor
	}
	return clonePatient(p), nil
}

func (s *wardStore) List(ctx context.Context, filter repositories.PatientFilter) ([]*entities.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]*entities.Patient, 0, len(s.order))
	for _, mrn := range s.order {
		p := s.patients[mrn]
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		result = append(result, clonePatient(p))
	}
	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []*entities.Patient{}, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (s *wardStore) ListSpecialties(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]struct{})
	for _, p := range s.patients {
		seen[string(p.Specialty)] = struct{}{}
	}
	result := make([]string, 0, len(seen))
	for specialty := range seen {
		result = append(result, specialty)
	}
	sort.Strings(result)
	return result, nil
}

func (s *wardStore) Discharge(ctx context.Context, mrn, dischargeNotes string, at time.Time) (*repositories.DischargeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.patients[mrn]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("patient with MRN %s not found", mrn))
	}
	if !p.IsActive() {
		return nil, apperrors.NewConflictError(fmt.Sprintf("patient with MRN %s is already discharged", mrn))
	}
	p.Status = entities.PatientStatusDischarged
	p.DischargeDate = &at

	s.nextID++
	note := entities.NewDischargeNote(mrn, dischargeNotes, at)
	note.ID = s.nextID
	s.notes = append(s.notes, note)

	stored := *note
	return &repositories.DischargeResult{Patient: clonePatient(p), Note: &stored}, nil
}

// MedicalNoteRepository half of the store

type noteStore struct{ *wardStore }

func (n noteStore) Create(ctx context.Context, note *entities.MedicalNote) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.patients[note.PatientMRN]; !ok {
		return apperrors.NewValidationError(fmt.Sprintf("patient with MRN %s does not exist", note.PatientMRN))
	}
	n.nextID++
	note.ID = n.nextID
	stored := *note
	n.notes = append(n.notes, &stored)
	return nil
}

func (n noteStore) ListByPatient(ctx context.Context, mrn string) ([]*entities.MedicalNote, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	result := make([]*entities.MedicalNote, 0)
	for _, note := range n.notes {
		if note.PatientMRN == mrn {
			c := *note
			result = append(result, &c)
		}
	}
	return result, nil
}

func (n noteStore) List(ctx context.Context, limit, offset int) ([]*entities.MedicalNote, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	result := make([]*entities.MedicalNote, 0)
	for i, note := range n.notes {
		if i < offset {
			continue
		}
		if limit > 0 && len(result) == limit {
			break
		}
		c := *note
		result = append(result, &c)
	}
	return result, nil
}

// MockRecordMirror is a testify mock of providers.RecordMirror
type MockRecordMirror struct {
	mock.Mock
}

func (m *MockRecordMirror) Name() string { return "mock" }

func (m *MockRecordMirror) InsertPatient(ctx context.Context, patient *entities.Patient) error {
	return m.Called(ctx, patient).Error(0)
}

func (m *MockRecordMirror) ReplacePatient(ctx context.Context, patient *entities.Patient) error {
	return m.Called(ctx, patient).Error(0)
}

func (m *MockRecordMirror) InsertNote(ctx context.Context, note *entities.MedicalNote) error {
	return m.Called(ctx, note).Error(0)
}

func (m *MockRecordMirror) UpsertPatient(ctx context.Context, patient *entities.Patient) error {
	return m.Called(ctx, patient).Error(0)
}

func (m *MockRecordMirror) UpsertNote(ctx context.Context, note *entities.MedicalNote) error {
	return m.Called(ctx, note).Error(0)
}

// recordingReplicator captures replicated events
type recordingReplicator struct {
	mu     sync.Mutex
	events []*entities.RecordEvent
}

func (r *recordingReplicator) Replicate(ctx context.Context, event *entities.RecordEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingReplicator) Events() []*entities.RecordEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*entities.RecordEvent(nil), r.events...)
}

// channelEventBus delivers published events to in-process subscribers
type channelEventBus struct {
	mu          sync.Mutex
	subscribers map[string][]chan *entities.RecordEvent
	published   []*entities.RecordEvent
	publishErr  error
}

func newChannelEventBus() *channelEventBus {
	return &channelEventBus{subscribers: make(map[string][]chan *entities.RecordEvent)}
}

func (b *channelEventBus) Publish(ctx context.Context, channel string, event *entities.RecordEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.publishErr != nil {
		return b.publishErr
	}
	if len(b.subscribers[channel]) == 0 {
		return providers.ErrNoSubscribers
	}
	b.published = append(b.published, event)
	for _, ch := range b.subscribers[channel] {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

func (b *channelEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.RecordEvent, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan *entities.RecordEvent, 10)
	b.subscribers[channel] = append(b.subscribers[channel], ch)
	return ch, nil
}

func (b *channelEventBus) Unsubscribe(ctx context.Context, channel string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subscribers[channel] {
		close(ch)
	}
	delete(b.subscribers, channel)
	return nil
}

func (b *channelEventBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for channel, chans := range b.subscribers {
		for _, ch := range chans {
			close(ch)
		}
		delete(b.subscribers, channel)
	}
	return nil
}

func (b *channelEventBus) Published() []*entities.RecordEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*entities.RecordEvent(nil), b.published...)
}

func intPtr(v int) *int { return &v }

func admission(mrn string, specialty entities.Specialty) *entities.NewPatient {
	return &entities.NewPatient{
		MRN:           mrn,
		Name:          "Patient " + mrn,
		Age:           intPtr(54),
		Gender:        entities.GenderFemale,
		Diagnosis:     "Community acquired pneumonia",
		AdmissionDate: entities.At(time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC)),
		Specialty:     specialty,
	}
}
