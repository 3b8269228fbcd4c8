package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agentstation/datastory/internal/server/handlers"
	"github.com/agentstation/datastory/internal/server/middleware"
)

// setupRouter creates the HTTP handler with routes and middleware.
func (s *Server) setupRouter() http.Handler {
	mux := http.NewServeMux()

	h := handlers.New(
		s.client,
		s.narrator,
		s.cache,
		s.broker,
		s.wsHub,
		s.sseBroadcaster,
		s.upgrader,
		s.logger,
		s.app.Version(),
	)

	s.registerRoutes(mux, h)

	return s.applyMiddleware(mux)
}

// registerRoutes registers all HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux, h *handlers.Handlers) {
	p := s.config.PathPrefix

	mux.HandleFunc("GET /favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Public health endpoints
	mux.HandleFunc("GET /health", h.HandleHealth)
	mux.HandleFunc("GET "+p+"/health", h.HandleHealth)
	mux.HandleFunc("GET "+p+"/ready", h.HandleReady)

	// API documentation
	mux.HandleFunc("GET "+p+"/openapi.json", h.HandleOpenAPIJSON)
	mux.HandleFunc("GET "+p+"/openapi.yaml", h.HandleOpenAPIYAML)

	// Admin
	mux.HandleFunc("GET "+p+"/stats", h.HandleStats)
	mux.HandleFunc("POST "+p+"/reload", h.HandleReload)

	// Flights
	mux.HandleFunc("GET "+p+"/flights/options", h.HandleFlightOptions)
	mux.HandleFunc("GET "+p+"/flights/dashboard", h.HandleFlightDashboard)

	// WHO life expectancy
	mux.HandleFunc("GET "+p+"/who/options", h.HandleLifeOptions)
	mux.HandleFunc("GET "+p+"/who/overview", h.HandleLifeOverview)
	mux.HandleFunc("GET "+p+"/who/profile", h.HandleLifeProfile)
	mux.HandleFunc("GET "+p+"/who/correlations", h.HandleLifeCorrelations)
	mux.HandleFunc("GET "+p+"/who/table", h.HandleLifeTable)
	mux.HandleFunc("GET "+p+"/who/analytics", h.HandleLifeAnalytics)

	// FAO food balance
	mux.HandleFunc("GET "+p+"/food/options", h.HandleFoodOptions)
	mux.HandleFunc("GET "+p+"/food/summary", h.HandleFoodSummary)

	// Narrative
	mux.HandleFunc("GET "+p+"/story", h.HandleStory)

	// Real-time endpoints
	mux.HandleFunc("GET "+p+"/updates/ws", h.HandleWebSocket)
	mux.HandleFunc("GET "+p+"/updates/stream", h.HandleSSE)

	if s.config.MetricsEnabled {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
			Registry: s.registry,
		}))
	}

	if s.config.UIEnabled {
		mux.HandleFunc("GET /{$}", h.HandleUI)
	}
}

// applyMiddleware wraps the mux with the middleware chain. From the
// outside in: recovery, logging, CORS, auth, rate limiting, metrics.
func (s *Server) applyMiddleware(mux *http.ServeMux) http.Handler {
	cfg := s.config

	// Metrics must see the mux directly to read the matched pattern
	handler := s.metrics.Instrument(mux)

	if s.limiter != nil {
		handler = middleware.RateLimit(s.limiter)(handler)
	}

	if cfg.AuthEnabled {
		authConfig := middleware.DefaultAuthConfig()
		authConfig.Enabled = true
		authConfig.APIKey = cfg.APIKey
		authConfig.HeaderName = cfg.AuthHeader
		authConfig.PublicPaths = append(authConfig.PublicPaths, cfg.PathPrefix+"/health", cfg.PathPrefix+"/ready",
			cfg.PathPrefix+"/openapi.json", cfg.PathPrefix+"/openapi.yaml")
		handler = middleware.Auth(authConfig, s.logger)(handler)
	}

	if cfg.CORSEnabled {
		corsConfig := middleware.DefaultCORSConfig()
		if len(cfg.CORSOrigins) > 0 {
			corsConfig.AllowedOrigins = cfg.CORSOrigins
			corsConfig.AllowAll = false
		} else {
			corsConfig.AllowAll = true
		}
		handler = middleware.CORS(corsConfig)(handler)
	}

	handler = middleware.Logger(s.logger)(handler)
	handler = middleware.Recovery(s.logger)(handler)

	return handler
}
