package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
)

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("decode log line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestRequestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	h := chimw.RequestID(RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"Task not found"}`))
	})))

	req := httptest.NewRequest("GET", "/api/tasks/x", nil)
	req.RemoteAddr = "192.0.2.1:4000"
	h.ServeHTTP(httptest.NewRecorder(), req)

	lines := logLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("got %d log lines, want 1", len(lines))
	}
	got := lines[0]
	if got["level"] != "WARN" {
		t.Errorf("level = %v, want WARN", got["level"])
	}
	if got["status"] != float64(404) || got["bytes"] != float64(len(`{"error":"Task not found"}`)) {
		t.Errorf("status = %v bytes = %v", got["status"], got["bytes"])
	}
	if got["path"] != "/api/tasks/x" || got["remote"] != "192.0.2.1" {
		t.Errorf("path = %v remote = %v", got["path"], got["remote"])
	}
	if id, _ := got["request_id"].(string); id == "" {
		t.Error("request_id missing")
	}
}

func TestRequestLoggerLevels(t *testing.T) {
	tests := []struct {
		path   string
		status int
		want   string
	}{
		{"/api/families", http.StatusOK, "INFO"},
		{"/health", http.StatusOK, "DEBUG"},
		{"/health", http.StatusServiceUnavailable, "ERROR"},
		{"/api/families", http.StatusInternalServerError, "ERROR"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		h := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", tt.path, nil))

		lines := logLines(t, &buf)
		if len(lines) != 1 || lines[0]["level"] != tt.want {
			t.Errorf("%s %d: lines = %v, want level %s", tt.path, tt.status, lines, tt.want)
		}
	}
}

func TestStatusRecorderKeepsFirstStatus(t *testing.T) {
	rec := &statusRecorder{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK}
	rec.Write([]byte("ok"))
	rec.WriteHeader(http.StatusTeapot)
	if rec.status != http.StatusOK {
		t.Errorf("status = %d, want 200 once the body has started", rec.status)
	}
	if rec.bytes != 2 {
		t.Errorf("bytes = %d, want 2", rec.bytes)
	}
}
