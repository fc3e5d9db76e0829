package websocket

import (
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"

	"github.com/dukerupert/homebase/internal/auth"
)

// Handler upgrades an authenticated request and serves the caller's live
// feed. An empty originPatterns allows same-origin clients only.
func Handler(hub *Hub, originPatterns []string, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.UserID(r.Context())
		if userID == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"Unauthorized"}`))
			return
		}

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{OriginPatterns: originPatterns})
		if err != nil {
			logger.Warn("websocket accept", "user_id", userID, "error", err)
			return
		}

		logger.Debug("live feed connected", "user_id", userID)
		NewClient(hub, conn, userID).Run(r.Context())
		logger.Debug("live feed disconnected", "user_id", userID)
	}
}
