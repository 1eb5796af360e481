package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/ev-demand-service/internal/analysis"
)

// AnalysisService is the application service the API exposes.
type AnalysisService interface {
	AnalyzeArea(ctx context.Context, in analysis.AreaInput) (analysis.AreaSnapshot, error)
	AnalyzeBatch(ctx context.Context, items []analysis.BatchItem) (analysis.BatchResult, error)
	AnalyzeFromSources(ctx context.Context, areaID string) (analysis.AreaSnapshot, error)
	GetAnalysis(ctx context.Context, areaID string) (analysis.AreaSnapshot, error)
	GetHighPriorityAreas(ctx context.Context) ([]analysis.AreaSnapshot, error)
	GetRecommendations(ctx context.Context, areaID string, targetRatio float64) (analysis.RecommendationSnapshot, error)
	UpdatePopulation(ctx context.Context, areaID string, population int) (analysis.AreaSnapshot, error)
	UpdateStationCount(ctx context.Context, areaID string, stations int) (analysis.AreaSnapshot, error)
	DeleteAnalysis(ctx context.Context, areaID string) error
	RegionalSummary(ctx context.Context) (analysis.RegionalSnapshot, error)
	PriorityClusters(ctx context.Context) (map[string][]string, error)
	CompareAreas(ctx context.Context, first, second string) (analysis.ComparisonSnapshot, error)
}

// Server exposes the demand analysis API plus health, readiness, and metrics
// endpoints.
type Server struct {
	httpServer  *http.Server
	svc         AnalysisService
	targetRatio float64
	logger      *slog.Logger
}

// NewServer creates an HTTP server. targetRatio is used by the
// recommendations endpoint when the request does not set one.
func NewServer(addr string, svc AnalysisService, ready sharedobs.ReadinessChecker, targetRatio float64, logger *slog.Logger) *Server {
	r := chi.NewRouter()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		svc:         svc,
		targetRatio: targetRatio,
		logger:      logger,
	}

	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", sharedobs.ReadinessHandler(ready))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequestID)
		r.Use(requestLogger(logger))
		r.Use(middleware.Recoverer)

		r.Route("/areas", func(r chi.Router) {
			r.Post("/", s.handleAnalyze)
			r.Post("/batch", s.handleAnalyzeBatch)
			r.Get("/high-priority", s.handleHighPriority)
			r.Get("/compare", s.handleCompare)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGet)
				r.Delete("/", s.handleDelete)
				r.Post("/refresh", s.handleRefresh)
				r.Put("/population", s.handleUpdatePopulation)
				r.Put("/stations", s.handleUpdateStations)
				r.Get("/recommendations", s.handleRecommendations)
			})
		})

		r.Route("/regional", func(r chi.Router) {
			r.Get("/summary", s.handleRegionalSummary)
			r.Get("/clusters", s.handleClusters)
		})
	})

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// requestLogger logs one line per API request.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
