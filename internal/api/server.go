package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MikeSquared-Agency/reviewlens/internal/analytics"
	"github.com/MikeSquared-Agency/reviewlens/internal/business"
	"github.com/MikeSquared-Agency/reviewlens/internal/processor"
	"github.com/MikeSquared-Agency/reviewlens/internal/recommend"
	"github.com/MikeSquared-Agency/reviewlens/internal/store"
)

// Service is the part of the processor the HTTP surface needs.
type Service interface {
	Businesses() []business.Business
	Analyze(ctx context.Context, slug string) (*processor.Report, error)
	AnalyzeReviews(reviews []analytics.Review) *analytics.Analysis
	Compare(ctx context.Context, slug string, months int, now time.Time) (*processor.Comparison, error)
	Recommend(ctx context.Context, slug string, override recommend.ProviderConfig) (*processor.RecommendationResult, error)
	History(ctx context.Context, slug string, limit int) ([]store.RecommendationRun, error)
	RefreshAll(ctx context.Context) error
}

type Options struct {
	Port           int
	APIToken       string
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
	// TrustProxyHeaders rewrites the client address from X-Forwarded-For and
	// X-Real-IP. Enable only behind a proxy that overwrites those headers.
	TrustProxyHeaders bool
}

type Server struct {
	router  *chi.Mux
	port    int
	svc     Service
	limiter *RateLimiter
	logger  *slog.Logger
	httpSrv *http.Server
	now     func() time.Time
}

func NewServer(opts Options, svc Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	if opts.TrustProxyHeaders {
		router.Use(middleware.RealIP)
	}
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	if len(opts.CORSOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
			MaxAge:         300,
		}))
	}

	s := &Server{
		router:  router,
		port:    opts.Port,
		svc:     svc,
		limiter: NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst),
		logger:  logger,
		now:     time.Now,
	}

	router.Get("/health", s.health)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(opts.APIToken))

		r.Get("/businesses", s.listBusinesses)
		r.Post("/analyze", s.analyzeReviews)
		r.With(s.limiter.Middleware).Post("/refresh", s.refresh)

		r.Route("/businesses/{slug}", func(r chi.Router) {
			r.Get("/analysis", s.analysis)
			r.Get("/comparison", s.comparison)
			r.Get("/recommendations", s.recommendationHistory)
			r.With(s.limiter.Middleware).Post("/recommendations", s.recommend)
		})
	})

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("API server starting", "addr", addr)
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps processor and generator errors onto HTTP statuses.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, processor.ErrUnknownBusiness):
		status = http.StatusNotFound
	case errors.Is(err, recommend.ErrUnknownProvider), errors.Is(err, recommend.ErrMissingAPIKey):
		status = http.StatusBadRequest
	case errors.Is(err, processor.ErrRefreshInProgress):
		status = http.StatusConflict
	case errors.Is(err, processor.ErrGenerationFailed):
		status = http.StatusBadGateway
	case errors.Is(err, processor.ErrHistoryDisabled):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	writeError(w, status, err.Error())
}
