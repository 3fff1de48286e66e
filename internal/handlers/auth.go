package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"chrona/internal/middleware"
	"chrona/internal/services"
)

type AuthHandler struct {
	resource
	users  *services.UserService
	ttl    time.Duration
	secure bool
}

// NewAuthHandler builds the register/login/logout endpoints. secure marks the
// session cookie Secure, which production deployments need.
func NewAuthHandler(users *services.UserService, ttl time.Duration, secure bool, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		resource: resource{name: "User", log: log},
		users:    users,
		ttl:      ttl,
		secure:   secure,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if !decodeJSON(w, r, &in) {
		return
	}
	u, token, err := h.users.Register(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.setTokenCookie(w, token)
	writeJSON(w, http.StatusCreated, authResponse{User: ToUserDTO(u), Token: token})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in services.LoginInput
	if !decodeJSON(w, r, &in) {
		return
	}
	u, token, err := h.users.Login(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.setTokenCookie(w, token)
	writeJSON(w, http.StatusOK, authResponse{User: ToUserDTO(u), Token: token})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, messageResponse{Message: "Logged out"})
}

func (h *AuthHandler) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.ttl.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
