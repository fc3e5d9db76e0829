package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dukerupert/homebase/internal/auth"
)

// RequireAuth resolves the bearer token or session cookie and puts the
// caller's identity on the request context. Requests without a valid
// token get a JSON 401.
func RequireAuth(resolver auth.Resolver, cookieName string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := auth.TokenFromRequest(r, cookieName)
			if !ok {
				unauthorized(w)
				return
			}

			id, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				logger.Error("resolve session", "error", err)
				writeError(w, http.StatusInternalServerError, "Failed to verify session")
				return
			}
			if id == nil {
				unauthorized(w)
				return
			}

			ctx := auth.WithIdentity(r.Context(), *id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "Unauthorized")
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
