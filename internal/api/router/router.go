package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/firstaidguide/firstaid-api/internal/conversation"
	httpmiddleware "github.com/firstaidguide/firstaid-api/internal/http/middleware"
	"github.com/firstaidguide/firstaid-api/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger             *logging.Logger
	ChatHandler        *conversation.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
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

	r.Route("/api", func(api chi.Router) {
		api.Post("/chat", cfg.ChatHandler.Chat)
		api.Post("/chat/continue", cfg.ChatHandler.ChatContinue)
		api.Get("/health", cfg.ChatHandler.Health)
		api.Get("/health/details", cfg.ChatHandler.HealthDetails)
	})

	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	return r
}
