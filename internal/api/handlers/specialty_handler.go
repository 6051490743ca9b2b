package handlers

import "net/http"

// SpecialtyHandler serves the distinct specialties in use
type SpecialtyHandler struct {
	service RecordService
}

// NewSpecialtyHandler creates a new specialty handler
func NewSpecialtyHandler(service RecordService) *SpecialtyHandler {
	return &SpecialtyHandler{service: service}
}

// ListSpecialties handles GET /specialties
func (h *SpecialtyHandler) ListSpecialties(w http.ResponseWriter, r *http.Request) {
	specialties, err := h.service.ListSpecialties(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, specialties)
}
