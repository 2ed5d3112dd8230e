// internal/server/server.go

package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"trendlens/internal/adapter/events"
	"trendlens/internal/config"
	"trendlens/internal/domain/analysis"
	"trendlens/internal/metrics"
	"trendlens/internal/server/handlers"
)

// Dependencies are the services the HTTP layer exposes. History, Events and
// Gatherer are optional.
type Dependencies struct {
	Analyzer      analysis.Analyzer
	History       analysis.HistoryReader
	Events        events.Subscriber
	EventsSubject string
	Gatherer      prometheus.Gatherer
	Metrics       *metrics.Metrics
	Log           zerolog.Logger
}

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router *chi.Mux
}

// NewServer creates a new HTTP server
func NewServer(cfg config.ServerConfig, deps Dependencies) *Server {
	router := NewRouter(cfg, deps)

	httpServer := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		server: httpServer,
		router: router,
	}
}

// NewRouter builds the route tree
func NewRouter(cfg config.ServerConfig, deps Dependencies) *chi.Mux {
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(deps.Log, deps.Metrics))
	router.Use(middleware.Recoverer)

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Create handler dependencies
	analysisHandler := handlers.NewAnalysisHandler(deps.Analyzer)
	historyHandler := handlers.NewHistoryHandler(deps.History)

	requestTimeout := cfg.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 60 * time.Second
	}

	router.Group(func(r chi.Router) {
		r.Use(requestDeadline(requestTimeout))

		r.Post("/analyze", analysisHandler.Analyze)

		r.Route("/api", func(r chi.Router) {
			// Health check
			r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("OK"))
			})

			// API version
			r.Route("/v1", func(r chi.Router) {
				r.Post("/analyze", analysisHandler.Analyze)

				r.Route("/analyses", func(r chi.Router) {
					r.Get("/", historyHandler.ListAnalyses)
					r.Get("/{id}", historyHandler.GetAnalysis)
				})
			})
		})
	})

	if deps.Gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	// WebSocket endpoint for completed analyses
	router.Get("/ws/analyses", handlers.AnalysisWebSocketHandler(deps.Events, deps.EventsSubject, handlers.DefaultWebSocketConfig()))

	return router
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.router
}
