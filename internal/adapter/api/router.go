package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/V4T54L/lead-intake/internal/adapter/api/handler"
	"github.com/V4T54L/lead-intake/internal/adapter/api/middleware"
	"github.com/V4T54L/lead-intake/internal/adapter/metrics"
	"github.com/V4T54L/lead-intake/internal/domain"
	"github.com/V4T54L/lead-intake/internal/pkg/config"
	"github.com/V4T54L/lead-intake/internal/usecase"
)

// Deps are the collaborators the router wires into handlers.
// Resumes, EventLog and Broker are optional.
type Deps struct {
	Leads       handler.LeadService
	Resumes     domain.ResumeStorage
	EventLog    *usecase.EventLogUseCase
	Broker      *handler.SSEBroker
	RateLimiter *middleware.RateLimiter
	Metrics     *metrics.LeadMetrics
}

// NewRouter creates and configures the main HTTP router for the lead service.
func NewRouter(cfg *config.Config, logger *slog.Logger, deps Deps) http.Handler {
	leadHandler := handler.NewLeadHandler(deps.Leads, deps.Resumes, logger, cfg.MaxUploadBytes)
	adminHandler := handler.NewAdminHandler(deps.EventLog, logger)

	limiter := deps.RateLimiter
	if limiter == nil {
		// Validate has already rejected malformed entries.
		trusted, _ := cfg.TrustedProxyPrefixes()
		limiter = middleware.NewRateLimiter(cfg.CreateRatePerMinute, cfg.CreateRateBurst, trusted...)
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics(deps.Metrics))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", adminHandler.HealthCheck)

	if cfg.ResumeDriver == config.ResumeFS {
		prefix := "/" + strings.Trim(cfg.UploadURLPrefix, "/")
		files := http.StripPrefix(prefix, http.FileServer(http.Dir(cfg.UploadDir)))
		r.Get(prefix+"/*", files.ServeHTTP)
	}

	authenticate := middleware.Auth(cfg.JWTSecret, logger)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if cfg.RequestTimeout > 0 {
				r.Use(chimw.Timeout(cfg.RequestTimeout))
			}

			r.With(middleware.RateLimit(limiter, deps.Metrics)).Post("/leads", leadHandler.Create)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Get("/leads", leadHandler.List)
				r.Get("/leads/{id}", leadHandler.Get)
				r.Patch("/leads/{id}/status", leadHandler.UpdateStatus)

				r.Get("/admin/events", adminHandler.GetRecentEvents)
				r.Get("/admin/events/info", adminHandler.GetEventInfo)
				r.Post("/admin/events/trim", adminHandler.TrimEvents)
			})
		})

		// Long-lived, so it sits outside the request timeout.
		if deps.Broker != nil {
			r.With(authenticate).Get("/leads/stream", deps.Broker.ServeHTTP)
		}
	})

	return r
}
