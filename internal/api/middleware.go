package api

import (
	"context"
	"net/http"
	"strings"

	"noteserver/internal/auth"
	"noteserver/internal/config"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is what the gate attaches to the request context on success.
// Downstream handlers consume nothing else about the caller.
type Identity struct {
	UserID string
	Email  string
}

// AuthMiddleware verifies the session credential on every protected request.
// The credential source is fixed at construction: either the token cookie or
// the Authorization bearer header, never both.
type AuthMiddleware struct {
	tokens *auth.TokenService
	source config.CredentialSource
}

func NewAuthMiddleware(tokens *auth.TokenService, source config.CredentialSource) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, source: source}
}

func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := m.extractToken(r)
		if !ok {
			unauthorized(w, "Authentication required")
			return
		}

		claims, err := m.tokens.Verify(token)
		if err != nil {
			unauthorized(w, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, Identity{
			UserID: claims.UserID,
			Email:  claims.Email,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) extractToken(r *http.Request) (string, bool) {
	switch m.source {
	case config.CredentialSourceBearer:
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			return "", false
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return "", false
		}
		return parts[1], true
	default:
		cookie, err := r.Cookie(tokenCookieName)
		if err != nil || cookie.Value == "" {
			return "", false
		}
		return cookie.Value, true
	}
}

// GetIdentity returns the identity attached by RequireAuth, if any.
func GetIdentity(r *http.Request) (Identity, bool) {
	id, ok := r.Context().Value(identityKey).(Identity)
	return id, ok
}
