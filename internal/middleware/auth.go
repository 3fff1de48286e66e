package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"chrona/internal/models"
)

// TokenCookie is the name of the session cookie set on login.
const TokenCookie = "token"

type key int

const userIDKey key = 0

type TokenValidator interface {
	ValidateToken(token string) (string, error)
}

type UserLookup interface {
	Get(ctx context.Context, id string) (*models.User, error)
}

type AuthMiddleware struct {
	tokens TokenValidator
	users  UserLookup
	log    *zap.Logger
}

func NewAuthMiddleware(tokens TokenValidator, users UserLookup, log *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users, log: log}
}

// RequireAuth resolves the caller from the token cookie or a bearer header
// and rejects the request when the token is bad or its user is gone.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := tokenFromRequest(r)
		if tokenStr == "" {
			unauthorized(w, "Not authorized, no token")
			return
		}
		userID, err := m.tokens.ValidateToken(tokenStr)
		if err != nil {
			unauthorized(w, "Not authorized, token failed")
			return
		}
		if _, err := m.users.Get(r.Context(), userID); err != nil {
			if !errors.Is(err, context.Canceled) {
				m.log.Debug("token subject rejected", zap.String("user_id", userID), zap.Error(err))
			}
			unauthorized(w, "Not authorized, user not found")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

func tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(TokenCookie); err == nil && c.Value != "" {
		return c.Value
	}
	authz := r.Header.Get("Authorization")
	if strings.HasPrefix(authz, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
	}
	return ""
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"message": msg})
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated user id, or "" outside
// RequireAuth.
func UserIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(userIDKey).(string)
	return userID
}
