package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dukerupert/homebase/internal/access"
	"github.com/dukerupert/homebase/internal/auth"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func statusOf(k access.Kind) int {
	switch k {
	case access.KindUnauthorized:
		return http.StatusUnauthorized
	case access.KindValidation:
		return http.StatusBadRequest
	case access.KindNotFound:
		return http.StatusNotFound
	case access.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as an {error} body. Internal causes are logged and never
// reach the client.
func fail(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	kind := access.KindOf(err)
	msg := access.MessageOf(err, "Internal server error")
	if kind == access.KindInternal {
		logger.Error(msg, "error", err, "method", r.Method, "path", r.URL.Path)
	}
	writeError(w, statusOf(kind), msg)
}

func respond(w http.ResponseWriter, r *http.Request, logger *slog.Logger, status int, v any, err error) {
	if err != nil {
		fail(w, r, logger, err)
		return
	}
	writeJSON(w, status, v)
}

// caller returns the authenticated user id or writes a 401.
func caller(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := auth.UserID(r.Context())
	if id == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return "", false
	}
	return id, true
}

// body decodes the request body as a JSON object or writes a 400.
func body(w http.ResponseWriter, r *http.Request) (access.Fields, bool) {
	f, err := access.DecodeFields(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, access.MessageOf(err, "Invalid request body"))
		return nil, false
	}
	return f, true
}

// queryBool reports nil when name is absent and otherwise whether it equals
// "true".
func queryBool(r *http.Request, name string) *bool {
	q := r.URL.Query()
	if !q.Has(name) {
		return nil
	}
	v := q.Get(name) == "true"
	return &v
}

// queryTime parses name as a timestamp or date. Absent or empty is nil.
func queryTime(r *http.Request, name string) (*time.Time, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}
	t, err := access.ParseTime(s)
	if err != nil {
		return nil, access.Invalidf("Invalid %s", name)
	}
	return &t, nil
}

// queryInt returns 0 for an absent or malformed value.
func queryInt(r *http.Request, name string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return n
}
