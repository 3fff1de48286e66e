package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"chrona/internal/models"
	"chrona/internal/services"
)

type EventHandler struct {
	resource
	events *services.EventService
}

func NewEventHandler(events *services.EventService, log *zap.Logger) *EventHandler {
	return &EventHandler{resource: resource{name: "Event", log: log}, events: events}
}

// filter reads type, priority and tags (comma separated) plus, when
// withRange is set, the start/end window.
func (h *EventHandler) filter(q url.Values, withRange bool) (models.EventFilter, error) {
	f := models.EventFilter{
		Type:     models.EventType(q.Get("type")),
		Priority: models.Priority(q.Get("priority")),
	}
	if tags := q.Get("tags"); tags != "" {
		f.Tags = models.ParseTags(tags)
	}
	if !withRange {
		return f, nil
	}
	if v := q.Get("start"); v != "" {
		t, err := h.events.ParseTime("start", v)
		if err != nil {
			return f, err
		}
		f.Start = t
	}
	if v := q.Get("end"); v != "" {
		t, err := h.events.ParseTime("end", v)
		if err != nil {
			return f, err
		}
		f.End = t
	}
	return f, nil
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	f, err := h.filter(r.URL.Query(), true)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	events, err := h.events.List(r.Context(), ownerID(r), f)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *EventHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeMessage(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	events, err := h.events.Upcoming(r.Context(), ownerID(r), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *EventHandler) Today(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.Today(r.Context(), ownerID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *EventHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.events.Stats(r.Context(), ownerID(r), r.URL.Query().Get("period"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *EventHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f, err := h.filter(q, false)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	events, err := h.events.Search(r.Context(), ownerID(r), q.Get("q"), f)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	e, err := h.events.Get(r.Context(), ownerID(r), idParam(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.EventInput
	if !decodeJSON(w, r, &in) {
		return
	}
	e, err := h.events.Create(r.Context(), ownerID(r), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in models.EventUpdate
	if !decodeJSON(w, r, &in) {
		return
	}
	e, err := h.events.Update(r.Context(), ownerID(r), idParam(r), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.events.Delete(r.Context(), ownerID(r), idParam(r)); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Event deleted successfully"})
}

func (h *EventHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req bulkEventRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	n, err := h.events.BulkDelete(r.Context(), ownerID(r), req.EventIDs)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bulkEventResponse{
		Message:      fmt.Sprintf("%d events deleted successfully", n),
		DeletedCount: n,
	})
}
