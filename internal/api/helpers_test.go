package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"noteserver/internal/auth"
	"noteserver/internal/config"
	"noteserver/internal/db"
)

type stubNotifier struct {
	lastTo   string
	lastCode string
	sends    int
	err      error
}

func (s *stubNotifier) SendOTP(to, code string) error {
	if s.err != nil {
		return s.err
	}
	s.sends++
	s.lastTo = to
	s.lastCode = code
	return nil
}

type stubVerifier struct {
	identity *auth.Identity
	err      error
}

func (s *stubVerifier) Verify(ctx context.Context, assertion string) (*auth.Identity, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.identity, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:        strings.Repeat("s", 32),
			TokenTTL:         7 * 24 * time.Hour,
			CredentialSource: config.CredentialSourceCookie,
			CookieSameSite:   "lax",
		},
	}
}

func openTestDB(t *testing.T) *db.DB {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("db.Open() error = %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	return database
}

type testServer struct {
	server   *Server
	database *db.DB
	notifier *stubNotifier
	verifier *stubVerifier
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithConfig(t, testConfig())
}

func newTestServerWithConfig(t *testing.T, cfg *config.Config) *testServer {
	t.Helper()

	database := openTestDB(t)
	notifier := &stubNotifier{}
	verifier := &stubVerifier{}

	server, err := NewServer(cfg, database, notifier, verifier)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}

	return &testServer{
		server:   server,
		database: database,
		notifier: notifier,
		verifier: verifier,
	}
}

func (ts *testServer) do(method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rr := httptest.NewRecorder()
	ts.server.ServeHTTP(rr, req)
	return rr
}

func tokenCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, c := range rr.Result().Cookies() {
		if c.Name == tokenCookieName {
			return c
		}
	}
	t.Fatalf("no %q cookie in response", tokenCookieName)
	return nil
}
