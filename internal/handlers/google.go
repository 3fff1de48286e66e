package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chrona/internal/auth"
	"chrona/internal/services"
)

const (
	oauthStateCookie = "oauth_state"
	oauthStatePath   = "/api/auth/google"
)

// GoogleProvider runs the OAuth code flow with Google.
type GoogleProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.GoogleProfile, error)
}

// GoogleAuthHandler signs users in with Google and hands the browser back to
// the frontend with the same session cookie as password login.
type GoogleAuthHandler struct {
	*AuthHandler
	provider    GoogleProvider
	frontendURL string
}

func NewGoogleAuthHandler(a *AuthHandler, provider GoogleProvider, frontendURL string) *GoogleAuthHandler {
	return &GoogleAuthHandler{
		AuthHandler: a,
		provider:    provider,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

func (h *GoogleAuthHandler) Start(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     oauthStatePath,
		MaxAge:   600,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.provider.AuthCodeURL(state), http.StatusFound)
}

func (h *GoogleAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    "",
		Path:     oauthStatePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	c, err := r.Cookie(oauthStateCookie)
	if err != nil || c.Value == "" || c.Value != q.Get("state") {
		h.log.Warn("google callback with bad state")
		h.failRedirect(w, r)
		return
	}
	if e := q.Get("error"); e != "" || q.Get("code") == "" {
		h.log.Info("google sign-in declined", zap.String("error", e))
		h.failRedirect(w, r)
		return
	}

	profile, err := h.provider.Exchange(r.Context(), q.Get("code"))
	if err != nil {
		h.log.Error("google exchange failed", zap.Error(err))
		h.failRedirect(w, r)
		return
	}
	u, token, err := h.users.LoginExternal(r.Context(), services.ExternalIdentity{
		Provider:      "google",
		Email:         profile.Email,
		EmailVerified: profile.EmailVerified,
		Name:          profile.Name,
	})
	if err != nil {
		h.log.Warn("google sign-in rejected", zap.Error(err))
		h.failRedirect(w, r)
		return
	}

	h.log.Info("google sign-in", zap.String("user_id", u.ID))
	h.setTokenCookie(w, token)
	http.Redirect(w, r, h.frontendURL+"/dashboard", http.StatusFound)
}

func (h *GoogleAuthHandler) failRedirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.frontendURL+"/login?error=google", http.StatusFound)
}
