package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dukerupert/homebase/internal/auth"
)

type stubResolver struct {
	tokens map[string]string
	err    error
}

func (s stubResolver) Resolve(_ context.Context, token string) (*auth.Identity, error) {
	if s.err != nil {
		return nil, s.err
	}
	if id, ok := s.tokens[token]; ok {
		return &auth.Identity{UserID: id, Method: "session"}, nil
	}
	return nil, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustNotReach(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	})
}

func TestRequireAuthNoToken(t *testing.T) {
	handler := RequireAuth(stubResolver{}, "homebase_session", discardLogger())(mustNotReach(t))

	req := httptest.NewRequest("GET", "/api/families", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] != "Unauthorized" {
		t.Errorf("error = %q, want %q", body["error"], "Unauthorized")
	}
}

func TestRequireAuthUnknownToken(t *testing.T) {
	handler := RequireAuth(stubResolver{}, "homebase_session", discardLogger())(mustNotReach(t))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuthResolverError(t *testing.T) {
	resolver := stubResolver{err: errors.New("db down")}
	handler := RequireAuth(resolver, "homebase_session", discardLogger())(mustNotReach(t))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}

func TestRequireAuthCookieSession(t *testing.T) {
	resolver := stubResolver{tokens: map[string]string{"tok": "user-1"}}

	var got string
	handler := RequireAuth(resolver, "homebase_session", discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = auth.UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "homebase_session", Value: "tok"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got != "user-1" {
		t.Errorf("user id = %q, want %q", got, "user-1")
	}
}

func TestUserKey(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	if got := UserKey(req); got != "ip:10.0.0.1" {
		t.Errorf("anonymous key = %q", got)
	}

	req = req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{UserID: "u1"}))
	if got := UserKey(req); got != "user:u1" {
		t.Errorf("user key = %q", got)
	}
}

func TestCORS(t *testing.T) {
	handler := CORS([]string{"https://app.example.com"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("OPTIONS", "/api/tasks", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("allow origin = %q", got)
	}

	req = httptest.NewRequest("GET", "/api/tasks", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("allow origin = %q, want empty", got)
	}
}
