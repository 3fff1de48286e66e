package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"chrona/internal/middleware"
	"chrona/internal/models"
	"chrona/internal/services"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Message   string            `json:"message"`
	Conflicts []models.EventRef `json:"conflicts,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Message: msg})
}

// decodeJSON reads a single JSON object from the request body.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			writeMessage(w, http.StatusBadRequest, "Request body is required")
		} else {
			writeMessage(w, http.StatusBadRequest, "Invalid request body")
		}
		return false
	}
	return true
}

func ownerID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}

func idParam(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// resource carries what every resource handler needs to answer errors.
type resource struct {
	name string // "Note", "Task", ... used in 404 messages
	log  *zap.Logger
}

// fail maps a service error onto the response. Ownership failures answer
// 404 like missing ids. Anything unrecognised is logged and answered 500.
func (h resource) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *services.ValidationError
	var cerr *services.ConflictError
	switch {
	case errors.As(err, &verr):
		writeMessage(w, http.StatusBadRequest, verr.Message)
	case errors.As(err, &cerr):
		writeJSON(w, http.StatusConflict, errorResponse{Message: cerr.Message, Conflicts: cerr.Conflicts})
	case errors.Is(err, services.ErrUnauthenticated):
		writeMessage(w, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, services.ErrNotFound), errors.Is(err, services.ErrForbidden):
		writeMessage(w, http.StatusNotFound, h.name+" not found")
	default:
		h.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", chimw.GetReqID(r.Context())),
			zap.Error(err),
		)
		writeMessage(w, http.StatusInternalServerError, "Server error")
	}
}
