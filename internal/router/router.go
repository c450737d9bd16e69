package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"

	"github.com/actuallystonmai/reco-service/internal/config"
	"github.com/actuallystonmai/reco-service/internal/handler"
	"github.com/actuallystonmai/reco-service/internal/logging"
	"github.com/actuallystonmai/reco-service/internal/metrics"
)

func Setup(h *handler.Handler, m *metrics.Metrics, logger zerolog.Logger, cfg config.ServerConfig) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(m.Middleware)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
			MaxAge:         300,
		}))
	}

	// Routes
	r.Get("/health", h.Health)
	r.Handle("/metrics", m.Handler())

	r.Group(func(r chi.Router) {
		if cfg.RateLimitRequests > 0 {
			r.Use(httprate.LimitByIP(cfg.RateLimitRequests, cfg.RateLimitWindow))
		}
		r.Get("/models", h.ListModels)
		r.Get("/reco/{model_name}", h.GetBatchRecommendations)
		r.Get("/reco/{model_name}/{user_id}", h.GetRecommendations)
		r.Get("/explain/{model_name}/{user_id}/{item_id}", h.Explain)
	})

	return r
}
