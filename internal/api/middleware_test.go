package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"noteserver/internal/auth"
	"noteserver/internal/config"
	"noteserver/internal/models"
)

func newGateTestHandler(source config.CredentialSource) (*auth.TokenService, http.Handler) {
	tokens := auth.NewTokenService(strings.Repeat("s", 32), time.Hour)
	gate := NewAuthMiddleware(tokens, source)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := GetIdentity(r)
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(identity.UserID + ":" + identity.Email))
	})

	return tokens, gate.RequireAuth(next)
}

func TestGateCookieMode(t *testing.T) {
	tokens, handler := newGateTestHandler(config.CredentialSourceCookie)

	token, err := tokens.Issue(&models.User{ID: "usr_1", Email: "ann@example.com"})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: tokenCookieName, Value: token})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%q", rr.Code, rr.Body.String())
	}
	if rr.Body.String() != "usr_1:ann@example.com" {
		t.Fatalf("identity = %q", rr.Body.String())
	}
}

func TestGateCookieModeIgnoresBearerHeader(t *testing.T) {
	tokens, handler := newGateTestHandler(config.CredentialSourceCookie)

	token, err := tokens.Issue(&models.User{ID: "usr_1", Email: "ann@example.com"})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	// Only the configured source is consulted.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
}

func TestGateBearerMode(t *testing.T) {
	tokens, handler := newGateTestHandler(config.CredentialSourceBearer)

	token, err := tokens.Issue(&models.User{ID: "usr_1", Email: "ann@example.com"})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%q", rr.Code, rr.Body.String())
	}
}

func TestGateBearerModeRejectsMalformedHeader(t *testing.T) {
	_, handler := newGateTestHandler(config.CredentialSourceBearer)

	for _, header := range []string{"", "Bearer", "Token abc", "abc"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: status = %d, want 401", header, rr.Code)
		}
	}
}

func TestGateRejectsTamperedToken(t *testing.T) {
	tokens, handler := newGateTestHandler(config.CredentialSourceCookie)

	token, err := tokens.Issue(&models.User{ID: "usr_1", Email: "ann@example.com"})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: tokenCookieName, Value: token + "x"})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
}
