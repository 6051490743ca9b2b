package handlers

import (
	"net/http"

	"github.com/zatekoja/wardtracker/internal/domain/entities"
)

// NoteHandler handles medical note submissions
type NoteHandler struct {
	service RecordService
}

// NewNoteHandler creates a new note handler
func NewNoteHandler(service RecordService) *NoteHandler {
	return &NoteHandler{service: service}
}

// CreateNote handles POST /notes
func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var input entities.NewMedicalNote
	if err := decodeJSON(r, &input); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	note, err := h.service.AddNote(r.Context(), &input)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, note)
}
