package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"chrona/internal/models"
	"chrona/internal/services"
)

type JournalHandler struct {
	resource
	journal *services.JournalService
}

func NewJournalHandler(journal *services.JournalService, log *zap.Logger) *JournalHandler {
	return &JournalHandler{resource: resource{name: "Journal entry", log: log}, journal: journal}
}

// List accepts optional start_date and end_date (YYYY-MM-DD), both inclusive.
func (h *JournalHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entries, err := h.journal.List(r.Context(), ownerID(r), q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *JournalHandler) Get(w http.ResponseWriter, r *http.Request) {
	j, err := h.journal.Get(r.Context(), ownerID(r), idParam(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, j)
}

func (h *JournalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.JournalInput
	if !decodeJSON(w, r, &in) {
		return
	}
	j, err := h.journal.Create(r.Context(), ownerID(r), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, j)
}

func (h *JournalHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in models.JournalUpdate
	if !decodeJSON(w, r, &in) {
		return
	}
	j, err := h.journal.Update(r.Context(), ownerID(r), idParam(r), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, j)
}

func (h *JournalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	if err := h.journal.Delete(r.Context(), ownerID(r), id); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, idResponse{ID: id})
}
