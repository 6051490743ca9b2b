package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/wardtracker/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/wardtracker/pkg/errors"
)

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Warn().Err(err).Msg("Failed to encode response")
	}
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondWithAppError maps the error taxonomy onto HTTP statuses. Client
// errors carry their message; dependency and internal failures do not.
func respondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeValidation:
		respondWithError(w, http.StatusBadRequest, messageOf(err))
	case apperrors.ErrorTypeNotFound:
		respondWithError(w, http.StatusNotFound, messageOf(err))
	case apperrors.ErrorTypeConflict:
		respondWithError(w, http.StatusConflict, messageOf(err))
	case apperrors.ErrorTypeDependency:
		observability.LoggerFromContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Primary store unavailable")
		respondWithError(w, http.StatusServiceUnavailable, http.StatusText(http.StatusServiceUnavailable))
	default:
		observability.LoggerFromContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Unhandled request failure")
		respondWithError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

func messageOf(err error) string {
	if appErr, ok := apperrors.As(err); ok {
		return appErr.Message
	}
	return err.Error()
}

func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.NewValidationError("invalid request payload: " + err.Error())
	}
	return nil
}

// NotFound is the JSON catch-all for unmatched routes
func NotFound(w http.ResponseWriter, r *http.Request) {
	respondWithError(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
}
