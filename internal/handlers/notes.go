package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"chrona/internal/models"
	"chrona/internal/services"
)

type NoteHandler struct {
	resource
	notes *services.NoteService
}

func NewNoteHandler(notes *services.NoteService, log *zap.Logger) *NoteHandler {
	return &NoteHandler{resource: resource{name: "Note", log: log}, notes: notes}
}

// List accepts an optional ?tag= filter.
func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	notes, err := h.notes.List(r.Context(), ownerID(r), r.URL.Query().Get("tag"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

func (h *NoteHandler) Tags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.notes.Tags(r.Context(), ownerID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	n, err := h.notes.Get(r.Context(), ownerID(r), idParam(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.NoteInput
	if !decodeJSON(w, r, &in) {
		return
	}
	n, err := h.notes.Create(r.Context(), ownerID(r), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in models.NoteUpdate
	if !decodeJSON(w, r, &in) {
		return
	}
	n, err := h.notes.Update(r.Context(), ownerID(r), idParam(r), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	if err := h.notes.Delete(r.Context(), ownerID(r), id); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, idResponse{ID: id})
}
