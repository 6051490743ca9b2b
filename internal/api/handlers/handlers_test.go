package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/wardtracker/internal/api/handlers"
	"github.com/zatekoja/wardtracker/internal/domain/entities"
	apperrors "github.com/zatekoja/wardtracker/pkg/errors"
)

type MockRecordService struct {
	mock.Mock
}

func (m *MockRecordService) ListPatients(ctx context.Context) ([]*entities.Patient, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Patient), args.Error(1)
}

func (m *MockRecordService) AdmitPatient(ctx context.Context, input *entities.NewPatient) (*entities.Patient, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Patient), args.Error(1)
}

func (m *MockRecordService) UpdatePatient(ctx context.Context, mrn string, update *entities.PatientUpdate) (*entities.Patient, error) {
	args := m.Called(ctx, mrn, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Patient), args.Error(1)
}

func (m *MockRecordService) DischargePatient(ctx context.Context, mrn string, req *entities.DischargeRequest) (*entities.Patient, error) {
	args := m.Called(ctx, mrn, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Patient), args.Error(1)
}

func (m *MockRecordService) AddNote(ctx context.Context, input *entities.NewMedicalNote) (*entities.MedicalNote, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.MedicalNote), args.Error(1)
}

func (m *MockRecordService) ListNotes(ctx context.Context, mrn string) ([]*entities.MedicalNote, error) {
	args := m.Called(ctx, mrn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.MedicalNote), args.Error(1)
}

func (m *MockRecordService) ListSpecialties(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func activePatient(mrn string) *entities.Patient {
	return &entities.Patient{
		MRN:           mrn,
		Name:          "Ada Obi",
		Age:           61,
		Gender:        entities.GenderFemale,
		Diagnosis:     "Lupus flare",
		AdmissionDate: time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC),
		Status:        entities.PatientStatusActive,
		Specialty:     entities.SpecialtyRheumatology,
	}
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body["error"]
}

func TestPatientHandler_CreatePatient(t *testing.T) {
	service := new(MockRecordService)
	service.On("AdmitPatient", mock.Anything, mock.MatchedBy(func(in *entities.NewPatient) bool {
		return in.MRN == "MRN-1" && in.Age != nil && *in.Age == 61 &&
			in.AdmissionDate != nil && in.AdmissionDate.Equal(time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC))
	})).Return(activePatient("MRN-1"), nil)

	body := `{"mrn":"MRN-1","name":"Ada Obi","age":61,"gender":"Female","diagnosis":"Lupus flare",` +
		`"admissionDate":"2024-01-05T08:00:00Z","specialty":"Rheumatology","status":"Discharged"}`
	req := httptest.NewRequest(http.MethodPost, "/patients", strings.NewReader(body))
	w := httptest.NewRecorder()

	handlers.NewPatientHandler(service).CreatePatient(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var patient entities.Patient
	require.NoError(t, json.NewDecoder(w.Body).Decode(&patient))
	assert.Equal(t, entities.PatientStatusActive, patient.Status)
	assert.Nil(t, patient.DischargeDate)
	service.AssertExpectations(t)
}

func TestPatientHandler_CreatePatient_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "malformed json",
			body:       `{"mrn":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "validation",
			body:       `{"mrn":"MRN-1"}`,
			err:        apperrors.NewValidationError("missing required fields: name"),
			wantStatus: http.StatusBadRequest,
			wantError:  "missing required fields: name",
		},
		{
			name:       "duplicate",
			body:       `{"mrn":"MRN-1"}`,
			err:        apperrors.NewConflictError("patient with MRN MRN-1 already exists"),
			wantStatus: http.StatusConflict,
			wantError:  "patient with MRN MRN-1 already exists",
		},
		{
			name:       "primary store down",
			body:       `{"mrn":"MRN-1"}`,
			err:        apperrors.NewDependencyError("failed to create patient", errors.New("dial tcp: connection refused")),
			wantStatus: http.StatusServiceUnavailable,
			wantError:  "Service Unavailable",
		},
		{
			name:       "unclassified",
			body:       `{"mrn":"MRN-1"}`,
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(MockRecordService)
			if tt.err != nil {
				service.On("AdmitPatient", mock.Anything, mock.Anything).Return(nil, tt.err)
			}

			req := httptest.NewRequest(http.MethodPost, "/patients", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			handlers.NewPatientHandler(service).CreatePatient(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			msg := decodeError(t, w)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, msg)
			}
			service.AssertExpectations(t)
		})
	}
}

func TestPatientHandler_UpdatePatient(t *testing.T) {
	service := new(MockRecordService)
	updated := activePatient("MRN-2")
	updated.Diagnosis = "Pneumonia"
	service.On("UpdatePatient", mock.Anything, "MRN-2", mock.MatchedBy(func(u *entities.PatientUpdate) bool {
		return u.Diagnosis != nil && *u.Diagnosis == "Pneumonia" && u.Name == nil
	})).Return(updated, nil)

	req := httptest.NewRequest(http.MethodPut, "/patients/MRN-2", strings.NewReader(`{"diagnosis":"Pneumonia"}`))
	req.SetPathValue("mrn", "MRN-2")
	w := httptest.NewRecorder()

	handlers.NewPatientHandler(service).UpdatePatient(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	service.AssertExpectations(t)
}

func TestPatientHandler_UpdatePatient_NotFound(t *testing.T) {
	service := new(MockRecordService)
	service.On("UpdatePatient", mock.Anything, "MRN-404", mock.Anything).
		Return(nil, apperrors.NewNotFoundError("patient with MRN MRN-404 not found"))

	req := httptest.NewRequest(http.MethodPut, "/patients/MRN-404", strings.NewReader(`{"name":"X"}`))
	req.SetPathValue("mrn", "MRN-404")
	w := httptest.NewRecorder()

	handlers.NewPatientHandler(service).UpdatePatient(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "patient with MRN MRN-404 not found", decodeError(t, w))
}

func TestPatientHandler_DischargePatient(t *testing.T) {
	service := new(MockRecordService)
	discharged := activePatient("MRN-3")
	at := time.Date(2024, 1, 9, 12, 0, 0, 0, time.UTC)
	discharged.Status = entities.PatientStatusDischarged
	discharged.DischargeDate = &at
	service.On("DischargePatient", mock.Anything, "MRN-3", &entities.DischargeRequest{DischargeNotes: "Home"}).
		Return(discharged, nil)

	req := httptest.NewRequest(http.MethodPost, "/patients/MRN-3/discharge", strings.NewReader(`{"dischargeNotes":"Home"}`))
	req.SetPathValue("mrn", "MRN-3")
	w := httptest.NewRecorder()

	handlers.NewPatientHandler(service).DischargePatient(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var patient entities.Patient
	require.NoError(t, json.NewDecoder(w.Body).Decode(&patient))
	assert.Equal(t, entities.PatientStatusDischarged, patient.Status)
	require.NotNil(t, patient.DischargeDate)
}

func TestPatientHandler_DischargePatient_AlreadyDischarged(t *testing.T) {
	service := new(MockRecordService)
	service.On("DischargePatient", mock.Anything, "MRN-3", mock.Anything).
		Return(nil, apperrors.NewConflictError("patient with MRN MRN-3 is already discharged"))

	req := httptest.NewRequest(http.MethodPost, "/patients/MRN-3/discharge", strings.NewReader(`{"dischargeNotes":"Again"}`))
	req.SetPathValue("mrn", "MRN-3")
	w := httptest.NewRecorder()

	handlers.NewPatientHandler(service).DischargePatient(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestPatientHandler_ListPatientNotes(t *testing.T) {
	service := new(MockRecordService)
	service.On("ListNotes", mock.Anything, "MRN-4").Return([]*entities.MedicalNote{
		{ID: 1, PatientMRN: "MRN-4", Date: time.Date(2024, 1, 6, 9, 0, 0, 0, time.UTC), Note: "Stable", User: "Dr. Bello"},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/patients/MRN-4/notes", nil)
	req.SetPathValue("mrn", "MRN-4")
	w := httptest.NewRecorder()

	handlers.NewPatientHandler(service).ListPatientNotes(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var notes []map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&notes))
	require.Len(t, notes, 1)
	assert.Equal(t, "MRN-4", notes[0]["patientMrn"])
	assert.Equal(t, "Dr. Bello", notes[0]["user"])
}

func TestNoteHandler_CreateNote(t *testing.T) {
	service := new(MockRecordService)
	service.On("AddNote", mock.Anything, mock.MatchedBy(func(in *entities.NewMedicalNote) bool {
		return in.PatientMRN == "MRN-5" && in.Date != nil && !in.Date.IsZero()
	})).Return(&entities.MedicalNote{ID: 9, PatientMRN: "MRN-5", Note: "Seen", User: "Dr. Bello"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/notes",
		strings.NewReader(`{"patientMrn":"MRN-5","date":"2024-01-06T09:00","note":"Seen","user":"Dr. Bello"}`))
	w := httptest.NewRecorder()

	handlers.NewNoteHandler(service).CreateNote(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	service.AssertExpectations(t)
}

func TestNoteHandler_CreateNote_UnknownPatient(t *testing.T) {
	service := new(MockRecordService)
	service.On("AddNote", mock.Anything, mock.Anything).
		Return(nil, apperrors.NewValidationError("patient with MRN MRN-404 does not exist"))

	req := httptest.NewRequest(http.MethodPost, "/notes",
		strings.NewReader(`{"patientMrn":"MRN-404","date":"2024-01-06","note":"x","user":"y"}`))
	w := httptest.NewRecorder()

	handlers.NewNoteHandler(service).CreateNote(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "patient with MRN MRN-404 does not exist", decodeError(t, w))
}

func TestNoteHandler_CreateNote_BadDate(t *testing.T) {
	service := new(MockRecordService)

	req := httptest.NewRequest(http.MethodPost, "/notes",
		strings.NewReader(`{"patientMrn":"MRN-5","date":"yesterday","note":"x","user":"y"}`))
	w := httptest.NewRecorder()

	handlers.NewNoteHandler(service).CreateNote(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	service.AssertNotCalled(t, "AddNote", mock.Anything, mock.Anything)
}

func TestSpecialtyHandler_ListSpecialties(t *testing.T) {
	service := new(MockRecordService)
	service.On("ListSpecialties", mock.Anything).Return([]string{"Hematology", "Neurology"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/specialties", nil)
	w := httptest.NewRecorder()

	handlers.NewSpecialtyHandler(service).ListSpecialties(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var got []string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, []string{"Hematology", "Neurology"}, got)
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(ctx context.Context) error { return s.err }

func TestHealthHandler(t *testing.T) {
	w := httptest.NewRecorder()
	handlers.NewHealthHandler(stubPinger{}).Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())

	w = httptest.NewRecorder()
	handlers.NewHealthHandler(stubPinger{err: errors.New("down")}).Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
