package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"chrona/internal/services"
)

type UserHandler struct {
	resource
	users *services.UserService
}

func NewUserHandler(users *services.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{resource: resource{name: "User", log: log}, users: users}
}

// GetMe returns the current user's profile
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.Get(r.Context(), ownerID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ToUserDTO(u))
}

// UpdateMe changes the display name.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	u, err := h.users.UpdateProfile(r.Context(), ownerID(r), body.Name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ToUserDTO(u))
}
