// Package client is the ward application's side of the REST API: a typed
// HTTP client, a single source-of-truth store for the patient list, and the
// Ward type that keeps the two in step.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/zatekoja/wardtracker/internal/domain/entities"
)

// APIError is a non-2xx response from the ward API
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("ward api returned status %d", e.Status)
	}
	return fmt.Sprintf("ward api returned status %d: %s", e.Status, e.Message)
}

// APIClient calls the ward REST API
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a client for the API rooted at baseURL (including
// any base path)
func NewAPIClient(baseURL string, timeout time.Duration) *APIClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ListPatients calls GET /patients
func (c *APIClient) ListPatients(ctx context.Context) ([]*entities.Patient, error) {
	var out []*entities.Patient
	if err := c.doJSON(ctx, http.MethodGet, "/patients", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AdmitPatient calls POST /patients
func (c *APIClient) AdmitPatient(ctx context.Context, input *entities.NewPatient) (*entities.Patient, error) {
	out := &entities.Patient{}
	if err := c.doJSON(ctx, http.MethodPost, "/patients", input, out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdatePatient calls PUT /patients/{mrn}
func (c *APIClient) UpdatePatient(ctx context.Context, mrn string, update *entities.PatientUpdate) (*entities.Patient, error) {
	out := &entities.Patient{}
	if err := c.doJSON(ctx, http.MethodPut, "/patients/"+url.PathEscape(mrn), update, out); err != nil {
		return nil, err
	}
	return out, nil
}

// DischargePatient calls POST /patients/{mrn}/discharge
func (c *APIClient) DischargePatient(ctx context.Context, mrn, dischargeNotes string) (*entities.Patient, error) {
	out := &entities.Patient{}
	body := &entities.DischargeRequest{DischargeNotes: dischargeNotes}
	if err := c.doJSON(ctx, http.MethodPost, "/patients/"+url.PathEscape(mrn)+"/discharge", body, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListNotes calls GET /patients/{mrn}/notes
func (c *APIClient) ListNotes(ctx context.Context, mrn string) ([]*entities.MedicalNote, error) {
	var out []*entities.MedicalNote
	if err := c.doJSON(ctx, http.MethodGet, "/patients/"+url.PathEscape(mrn)+"/notes", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddNote calls POST /notes
func (c *APIClient) AddNote(ctx context.Context, input *entities.NewMedicalNote) (*entities.MedicalNote, error) {
	out := &entities.MedicalNote{}
	if err := c.doJSON(ctx, http.MethodPost, "/notes", input, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListSpecialties calls GET /specialties
func (c *APIClient) ListSpecialties(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.doJSON(ctx, http.MethodGet, "/specialties", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *APIClient) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode %s %s body: %w", method, path, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
			apiErr.Message = payload.Error
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}
