// Package router wires every HTTP handler into the chi mux.
package router

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sehatnabha/telecare/internal/appointments"
	"github.com/sehatnabha/telecare/internal/auth"
	httpmiddleware "github.com/sehatnabha/telecare/internal/http/middleware"
	"github.com/sehatnabha/telecare/internal/messaging"
	"github.com/sehatnabha/telecare/internal/ops"
	"github.com/sehatnabha/telecare/internal/prescriptions"
	"github.com/sehatnabha/telecare/internal/reports"
	"github.com/sehatnabha/telecare/internal/sos"
	"github.com/sehatnabha/telecare/internal/triage"
	"github.com/sehatnabha/telecare/internal/users"
	"github.com/sehatnabha/telecare/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger *logging.Logger

	TriageHandler       *triage.Handler
	MessagingHandler    *messaging.Handler
	UsersHandler        *users.Handler
	AppointmentsHandler *appointments.Handler
	RxHandler           *prescriptions.Handler
	ReportsHandler      *reports.Handler
	SOSHandler          *sos.Handler
	OpsHandler          *ops.Handler

	// UsersRepo backs the role-gate middleware.
	UsersRepo users.Repository

	JWTSecret       string
	AdminAuthSecret string

	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// Requests/sec and burst for the per-IP limiter on public write
	// endpoints. Zero disables limiting.
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// New creates a new chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	limit := func(next http.Handler) http.Handler { return next }
	if cfg.RateLimitPerSecond > 0 {
		limit = httpmiddleware.RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst)
	}

	// Public endpoints (webhooks, triage, health checks)
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}

		if cfg.TriageHandler != nil {
			public.Route("/api/chatbot", func(r chi.Router) {
				r.Post("/check-symptoms", cfg.TriageHandler.CheckSymptoms)
				r.Get("/languages", cfg.TriageHandler.Languages)
				r.Get("/symptoms", cfg.TriageHandler.Symptoms)
			})
		}

		if cfg.MessagingHandler != nil {
			public.With(limit).Post("/api/sms/webhook", cfg.MessagingHandler.Webhook)
		}

		if cfg.UsersHandler != nil {
			public.Get("/api/auth/doctors", cfg.UsersHandler.Doctors)
		}

		if cfg.SOSHandler != nil {
			public.Get("/api/sos/nearby", cfg.SOSHandler.Nearby)
		}
	})

	// Authenticated patient/doctor endpoints
	if cfg.JWTSecret != "" {
		r.Group(func(authed chi.Router) {
			authed.Use(auth.VerifyToken(cfg.JWTSecret))

			roleResolver := users.NewRoleResolver(cfg.UsersRepo)

			if cfg.UsersHandler != nil {
				authed.Post("/api/auth/register", cfg.UsersHandler.Register)
				authed.Get("/api/auth/profile", cfg.UsersHandler.Profile)
			}

			if cfg.AppointmentsHandler != nil {
				authed.Route("/api/appointments", func(r chi.Router) {
					r.With(auth.CheckRole(roleResolver, cfg.Logger, users.RolePatient)).
						Post("/book", cfg.AppointmentsHandler.Book)
					r.Get("/my", cfg.AppointmentsHandler.My)
					r.Get("/{id}", cfg.AppointmentsHandler.Get)
					r.With(auth.CheckRole(roleResolver, cfg.Logger, users.RoleDoctor)).
						Patch("/{id}/status", cfg.AppointmentsHandler.UpdateStatus)
				})
			}

			if cfg.RxHandler != nil {
				authed.Route("/api/prescriptions", func(r chi.Router) {
					r.With(auth.CheckRole(roleResolver, cfg.Logger, users.RoleDoctor)).
						Post("/", cfg.RxHandler.Create)
					r.Get("/my", cfg.RxHandler.My)
					r.Get("/{id}", cfg.RxHandler.Get)
				})
			}

			if cfg.ReportsHandler != nil {
				authed.Route("/api/reports", func(r chi.Router) {
					r.Post("/upload", cfg.ReportsHandler.Upload)
					r.Get("/my", cfg.ReportsHandler.My)
					r.Get("/{id}", cfg.ReportsHandler.Get)
					r.Delete("/{id}", cfg.ReportsHandler.Delete)
				})
			}

			if cfg.SOSHandler != nil {
				authed.Route("/api/sos", func(r chi.Router) {
					r.With(limit).Post("/emergency", cfg.SOSHandler.Emergency)
					r.Get("/history", cfg.SOSHandler.History)
					r.Patch("/{id}/status", cfg.SOSHandler.UpdateStatus)
				})
			}
		})
	}

	// Admin endpoints
	if cfg.AdminAuthSecret != "" {
		r.Group(func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))

			if cfg.MessagingHandler != nil {
				admin.Post("/api/sms/notify", cfg.MessagingHandler.Notify)
				admin.Get("/admin/sms/{phone}", cfg.MessagingHandler.Transcript)
			}
			if cfg.OpsHandler != nil {
				admin.Get("/admin/stats", cfg.OpsHandler.Stats)
			}
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
