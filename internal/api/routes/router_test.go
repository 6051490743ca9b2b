package routes_test

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
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/wardtracker/internal/api/handlers"
	"github.com/zatekoja/wardtracker/internal/api/routes"
	"github.com/zatekoja/wardtracker/internal/domain/entities"
	apperrors "github.com/zatekoja/wardtracker/pkg/errors"
)

type stubService struct {
	patients []*entities.Patient
}

func (s *stubService) ListPatients(ctx context.Context) ([]*entities.Patient, error) {
	return s.patients, nil
}

func (s *stubService) AdmitPatient(ctx context.Context, input *entities.NewPatient) (*entities.Patient, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	return input.Patient(), nil
}

func (s *stubService) UpdatePatient(ctx context.Context, mrn string, update *entities.PatientUpdate) (*entities.Patient, error) {
	return nil, apperrors.NewNotFoundError("patient with MRN " + mrn + " not found")
}

func (s *stubService) DischargePatient(ctx context.Context, mrn string, req *entities.DischargeRequest) (*entities.Patient, error) {
	panic("discharge exploded")
}

func (s *stubService) AddNote(ctx context.Context, input *entities.NewMedicalNote) (*entities.MedicalNote, error) {
	return input.MedicalNote(), nil
}

func (s *stubService) ListNotes(ctx context.Context, mrn string) ([]*entities.MedicalNote, error) {
	return []*entities.MedicalNote{}, nil
}

func (s *stubService) ListSpecialties(ctx context.Context) ([]string, error) {
	return []string{"Neurology"}, nil
}

type pinger struct{ err error }

func (p pinger) Ping(ctx context.Context) error { return p.err }

func newHandler(basePath string, primary error) http.Handler {
	svc := &stubService{patients: []*entities.Patient{{
		MRN:           "MRN-1",
		Name:          "Ada Obi",
		Age:           61,
		Gender:        entities.GenderFemale,
		Diagnosis:     "Stroke",
		AdmissionDate: time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC),
		Status:        entities.PatientStatusActive,
		Specialty:     entities.SpecialtyNeurology,
	}}}
	return routes.NewRouter(
		handlers.NewPatientHandler(svc),
		handlers.NewNoteHandler(svc),
		handlers.NewSpecialtyHandler(svc),
		handlers.NewHealthHandler(pinger{err: primary}),
		routes.Options{BasePath: basePath, AllowedOrigins: []string{"*"}},
	).SetupRoutes()
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body["error"]
}

func TestRouter_BasePath(t *testing.T) {
	h := newHandler("/api", nil)

	w := serve(h, http.MethodGet, "/api/patients", "")
	assert.Equal(t, http.StatusOK, w.Code)
	var patients []entities.Patient
	require.NoError(t, json.NewDecoder(w.Body).Decode(&patients))
	require.Len(t, patients, 1)
	assert.Equal(t, "MRN-1", patients[0].MRN)

	w = serve(h, http.MethodGet, "/patients", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_UnknownRoutesAreJSON404(t *testing.T) {
	h := newHandler("/api", nil)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/nowhere"},
		{http.MethodDelete, "/api/patients"},
		{http.MethodGet, "/api/patients/MRN-1/discharge"},
	} {
		w := serve(h, tc.method, tc.path, "")
		assert.Equal(t, http.StatusNotFound, w.Code, "%s %s", tc.method, tc.path)
		assert.Equal(t, "Not Found", errorOf(t, w))
	}
}

func TestRouter_PathParameters(t *testing.T) {
	h := newHandler("/api", nil)

	w := serve(h, http.MethodPut, "/api/patients/MRN-77", `{"name":"X"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "patient with MRN MRN-77 not found", errorOf(t, w))

	w = serve(h, http.MethodGet, "/api/patients/MRN-77/notes", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestRouter_ValidationIs400(t *testing.T) {
	h := newHandler("", nil)

	w := serve(h, http.MethodPost, "/patients", `{"mrn":"MRN-2"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errorOf(t, w), "missing required fields")
}

func TestRouter_PanicIs500(t *testing.T) {
	h := newHandler("/api", nil)

	w := serve(h, http.MethodPost, "/api/patients/MRN-1/discharge", `{"dischargeNotes":"Home"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal Server Error", errorOf(t, w))
}

func TestRouter_Health(t *testing.T) {
	w := serve(newHandler("/api", nil), http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(newHandler("/api", errors.New("connection refused")), http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRouter_CORSHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/specialties", nil)
	req.Header.Set("Origin", "http://ward.local")
	w := httptest.NewRecorder()
	newHandler("/api", nil).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
