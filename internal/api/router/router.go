package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/wolfman30/venue-booking-agent/internal/conversation"
	httpmiddleware "github.com/wolfman30/venue-booking-agent/internal/http/middleware"
	"github.com/wolfman30/venue-booking-agent/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	WebhookHandler     *conversation.Handler
	MetricsHandler     http.Handler
	WebhookAuthToken   string
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.WebhookHandler != nil {
		r.Group(func(webhook chi.Router) {
			webhook.Use(httpmiddleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
			webhook.Use(httpmiddleware.WebhookAuth(cfg.WebhookAuthToken))
			webhook.Post("/webhook", cfg.WebhookHandler.Fulfill)
		})
	}

	return r
}

// healthCheck answers with the same plain "ok" body as the Lambda entrypoint.
func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
