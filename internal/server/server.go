package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dukerupert/homebase/internal/auth"
	"github.com/dukerupert/homebase/internal/database"
	"github.com/dukerupert/homebase/internal/handler"
	"github.com/dukerupert/homebase/internal/middleware"
	"github.com/dukerupert/homebase/internal/service"
	"github.com/dukerupert/homebase/internal/store"
	ws "github.com/dukerupert/homebase/internal/websocket"
)

// Config carries the HTTP-facing settings.
type Config struct {
	JWTSecret     string
	SessionCookie string
	CORSOrigins   []string
	// RateLimit is requests per minute per caller. Zero disables it.
	RateLimit int
	VAPID     handler.VAPIDKeySource
}

type Server struct {
	db          *database.DB
	hub         *ws.Hub
	familyH     *handler.FamilyHandler
	calendarH   *handler.CalendarHandler
	taskH       *handler.TaskHandler
	reminderH   *handler.ReminderHandler
	pushH       *handler.PushHandler
	requireAuth func(http.Handler) http.Handler
	rateLimiter *middleware.RateLimiter
	registry    *prometheus.Registry
	metrics     *middleware.Metrics
	cfg         Config
	logger      *slog.Logger
}

func New(db *database.DB, svc *service.Service, hub *ws.Hub, cfg Config, logger *slog.Logger) *Server {
	sessions := store.NewSessionStore(db)
	users := store.NewUserStore(db)

	resolver := auth.Chain{
		auth.NewJWTResolver(cfg.JWTSecret, users),
		auth.NewSessionResolver(sessions),
	}

	limiter := middleware.NewRateLimiter()
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "homebase",
			Name:      "websocket_clients",
			Help:      "Connected live feed clients.",
		}, func() float64 { return float64(hub.ClientCount()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "homebase",
			Name:      "rate_limit_keys",
			Help:      "Callers holding an open rate limit window.",
		}, func() float64 { return float64(limiter.Len()) }),
	)

	return &Server{
		db:          db,
		hub:         hub,
		familyH:     handler.NewFamilyHandler(svc, logger.With("component", "family")),
		calendarH:   handler.NewCalendarHandler(svc, logger.With("component", "calendar")),
		taskH:       handler.NewTaskHandler(svc, logger.With("component", "task")),
		reminderH:   handler.NewReminderHandler(svc, logger.With("component", "reminder")),
		pushH:       handler.NewPushHandler(svc, cfg.VAPID, logger.With("component", "push_handler")),
		requireAuth: middleware.RequireAuth(resolver, cfg.SessionCookie, logger.With("component", "auth")),
		rateLimiter: limiter,
		registry:    registry,
		metrics:     middleware.NewMetrics(registry),
		cfg:         cfg,
		logger:      logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// Registry returns the Prometheus registry served on /metrics.
func (s *Server) Registry() *prometheus.Registry {
	return s.registry
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	// Public routes (no auth required)
	mux.HandleFunc("GET /health", s.healthHandler)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	s.registerProtectedRoutes(mux)

	// Metrics wraps the mux directly so r.Pattern is populated.
	var h http.Handler = s.metrics.Handler(mux)
	h = middleware.CORS(s.cfg.CORSOrigins)(h)
	h = middleware.RequestLogger(s.logger.With("component", "http"))(h)
	h = chimw.Recoverer(h)
	return chimw.RequestID(h)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	if err := s.db.PingContext(ctx); err != nil {
		s.logger.Error("health check", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"status": "unavailable"})
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// protect requires a session and, when enabled, applies the per-user rate
// limit after the caller is known.
func (s *Server) protect(h http.HandlerFunc) http.Handler {
	var next http.Handler = h
	if s.cfg.RateLimit > 0 {
		next = middleware.RateLimit(s.rateLimiter, middleware.UserKey, s.cfg.RateLimit, time.Minute)(next)
	}
	return s.requireAuth(next)
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	// Families, members and exports
	mux.Handle("GET /api/families", s.protect(s.familyH.List))
	mux.Handle("POST /api/families", s.protect(s.familyH.Create))
	mux.Handle("GET /api/families/{id}", s.protect(s.familyH.Get))
	mux.Handle("PUT /api/families/{id}", s.protect(s.familyH.Update))
	mux.Handle("DELETE /api/families/{id}", s.protect(s.familyH.Delete))
	mux.Handle("GET /api/families/{familyId}/members", s.protect(s.familyH.ListMembers))
	mux.Handle("POST /api/families/{familyId}/members", s.protect(s.familyH.CreateMember))
	mux.Handle("GET /api/families/{familyId}/members/{id}", s.protect(s.familyH.GetMember))
	mux.Handle("PUT /api/families/{familyId}/members/{id}", s.protect(s.familyH.UpdateMember))
	mux.Handle("DELETE /api/families/{familyId}/members/{id}", s.protect(s.familyH.DeleteMember))
	mux.Handle("GET /api/families/{id}/exports", s.protect(s.familyH.ListExports))
	mux.Handle("POST /api/families/{id}/exports", s.protect(s.familyH.CreateExport))

	// Calendars
	mux.Handle("GET /api/calendars", s.protect(s.calendarH.ListCalendars))
	mux.Handle("POST /api/calendars", s.protect(s.calendarH.CreateCalendar))
	mux.Handle("GET /api/calendars/{id}", s.protect(s.calendarH.GetCalendar))
	mux.Handle("PUT /api/calendars/{id}", s.protect(s.calendarH.UpdateCalendar))
	mux.Handle("DELETE /api/calendars/{id}", s.protect(s.calendarH.DeleteCalendar))
	mux.Handle("GET /api/calendars/{id}/ics", s.protect(s.calendarH.ExportICS))

	// Events
	mux.Handle("GET /api/events", s.protect(s.calendarH.ListEvents))
	mux.Handle("POST /api/events", s.protect(s.calendarH.CreateEvent))
	mux.Handle("GET /api/events/{id}", s.protect(s.calendarH.GetEvent))
	mux.Handle("PUT /api/events/{id}", s.protect(s.calendarH.UpdateEvent))
	mux.Handle("DELETE /api/events/{id}", s.protect(s.calendarH.DeleteEvent))

	// Locations
	mux.Handle("GET /api/locations", s.protect(s.calendarH.ListLocations))
	mux.Handle("POST /api/locations", s.protect(s.calendarH.CreateLocation))
	mux.Handle("GET /api/locations/{id}", s.protect(s.calendarH.GetLocation))
	mux.Handle("PUT /api/locations/{id}", s.protect(s.calendarH.UpdateLocation))
	mux.Handle("DELETE /api/locations/{id}", s.protect(s.calendarH.DeleteLocation))

	// Tasks, checklist and comments
	mux.Handle("GET /api/tasks", s.protect(s.taskH.List))
	mux.Handle("POST /api/tasks", s.protect(s.taskH.Create))
	mux.Handle("GET /api/tasks/{id}", s.protect(s.taskH.Get))
	mux.Handle("PUT /api/tasks/{id}", s.protect(s.taskH.Update))
	mux.Handle("DELETE /api/tasks/{id}", s.protect(s.taskH.Delete))
	mux.Handle("GET /api/tasks/{taskId}/checklist", s.protect(s.taskH.ListChecklist))
	mux.Handle("POST /api/tasks/{taskId}/checklist", s.protect(s.taskH.CreateChecklistItem))
	mux.Handle("GET /api/tasks/{taskId}/checklist/{id}", s.protect(s.taskH.GetChecklistItem))
	mux.Handle("PUT /api/tasks/{taskId}/checklist/{id}", s.protect(s.taskH.UpdateChecklistItem))
	mux.Handle("DELETE /api/tasks/{taskId}/checklist/{id}", s.protect(s.taskH.DeleteChecklistItem))
	mux.Handle("GET /api/tasks/{taskId}/comments", s.protect(s.taskH.ListComments))
	mux.Handle("POST /api/tasks/{taskId}/comments", s.protect(s.taskH.CreateComment))
	mux.Handle("GET /api/tasks/{taskId}/comments/{id}", s.protect(s.taskH.GetComment))
	mux.Handle("PUT /api/tasks/{taskId}/comments/{id}", s.protect(s.taskH.UpdateComment))
	mux.Handle("DELETE /api/tasks/{taskId}/comments/{id}", s.protect(s.taskH.DeleteComment))

	// Reminders and notifications
	mux.Handle("GET /api/reminders", s.protect(s.reminderH.List))
	mux.Handle("POST /api/reminders", s.protect(s.reminderH.Create))
	mux.Handle("GET /api/reminders/{id}", s.protect(s.reminderH.Get))
	mux.Handle("PUT /api/reminders/{id}", s.protect(s.reminderH.Update))
	mux.Handle("DELETE /api/reminders/{id}", s.protect(s.reminderH.Delete))
	mux.Handle("GET /api/notifications", s.protect(s.reminderH.ListNotifications))
	mux.Handle("POST /api/notifications/{id}/read", s.protect(s.reminderH.MarkRead))

	// Push notification API routes
	mux.Handle("GET /api/push/subscriptions", s.protect(s.pushH.ListSubscriptions))
	mux.Handle("POST /api/push/subscriptions", s.protect(s.pushH.Subscribe))
	mux.Handle("DELETE /api/push/subscriptions/{id}", s.protect(s.pushH.Unsubscribe))
	mux.Handle("GET /api/push/vapid-key", s.protect(s.pushH.GetVAPIDKey))

	// WebSocket
	mux.Handle("GET /ws", s.requireAuth(ws.Handler(s.hub, s.cfg.CORSOrigins, s.logger.With("component", "websocket"))))
}
