// =============================================================================
// Vendor Price Comparison - HTTP Service
// =============================================================================
//
// This module serves the comparison over HTTP.
//
// ROUTES:
//   GET    /health                       liveness
//   POST   /api/analyses                 multipart upload, field "files"
//   GET    /api/analyses/{id}            the analysis result as JSON
//   GET    /api/analyses/{id}/export     the XLSX report
//   DELETE /api/analyses/{id}            drop the analysis
//
// SESSIONS:
//   Each successful upload returns the ID of its result. Results live in a
//   SessionStore until their TTL runs out or they are deleted; concurrent
//   uploads never share state.
//
// LIMITS:
//   Uploads are rate limited (token bucket), each file is capped by
//   server.max_upload_mb and the batch is validated before parsing.
//
// =============================================================================

package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ginjaninja78/vendor-price-comparison/internal/analysis"
	"github.com/ginjaninja78/vendor-price-comparison/internal/config"
	"github.com/ginjaninja78/vendor-price-comparison/internal/loader"
	"github.com/ginjaninja78/vendor-price-comparison/internal/validation"
)

// maxFilesPerUpload bounds the request body together with the per-file cap.
const maxFilesPerUpload = 32

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	cfg       *config.Config
	analyzer  *analysis.Analyzer
	loader    *loader.Loader
	validator *validation.Validator
	sessions  *SessionStore
	limiter   *rate.Limiter
}

// New creates a Server from the configuration.
func New(cfg *config.Config) (*Server, error) {
	opts, err := analysis.OptionsFromConfig(cfg.Analysis)
	if err != nil {
		return nil, err
	}

	limit := rate.Inf
	if cfg.Server.RateLimitRPS > 0 {
		limit = rate.Limit(cfg.Server.RateLimitRPS)
	}
	burst := cfg.Server.RateLimitBurst
	if burst < 1 {
		burst = 1
	}

	return &Server{
		cfg:       cfg,
		analyzer:  analysis.New(opts),
		loader:    loader.New(cfg.CSV, 0),
		validator: validation.NewValidator(validation.OptionsFromConfig(cfg)),
		sessions:  NewSessionStore(time.Duration(cfg.Server.SessionTTLMinutes) * time.Minute),
		limiter:   rate.NewLimiter(limit, burst),
	}, nil
}

// Sessions returns the session store.
func (s *Server) Sessions() *SessionStore {
	return s.sessions
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/analyses", func(r chi.Router) {
		r.With(s.rateLimit).Post("/", s.handleCreate)
		r.Get("/{id}", s.handleGet)
		r.Get("/{id}/export", s.handleExport)
		r.Delete("/{id}", s.handleDelete)
	})

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.sweep(ctx, time.Minute)

	go func() {
		<-ctx.Done()
		zap.L().Info("server: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	zap.L().Info("server: listening", zap.Int("port", port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return eris.Wrap(err, "server: listen")
	}
	return nil
}

func (s *Server) sweep(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.sessions.Sweep(); n > 0 {
				zap.L().Debug("server: expired analyses dropped", zap.Int("count", n))
			}
		}
	}
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "too many uploads, retry later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Info("server: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
