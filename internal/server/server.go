package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/tantle27/esap-events-api/internal/config"
	"github.com/tantle27/esap-events-api/internal/instrumentation"
)

// Timeouts for the API server.
const (
	DefaultReadHeaderTimeout = 10 * time.Second
	DefaultWriteTimeout      = 30 * time.Second
	DefaultIdleTimeout       = 60 * time.Second

	// DefaultShutdownTimeout bounds graceful shutdown.
	DefaultShutdownTimeout = 30 * time.Second
)

// Server is the HTTP API server.
type Server struct {
	cfg     *config.Config
	sc      *ServerContext
	logger  *slog.Logger
	metrics *instrumentation.Metrics
	health  *HealthChecker

	httpServer *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithMetrics sets the metrics recorder. Defaults to a no-op recorder.
func WithMetrics(metrics *instrumentation.Metrics) Option {
	return func(s *Server) { s.metrics = metrics }
}

// WithCalendar injects an upstream client, bypassing lazy construction
// from the credential configuration.
func WithCalendar(api CalendarAPI) Option {
	return func(s *Server) { s.sc.SetCalendar(api) }
}

// New creates a Server for the given configuration.
func New(cfg *config.Config, opts ...Option) *Server {
	s := &Server{
		cfg:     cfg,
		logger:  slog.Default(),
		metrics: &instrumentation.Metrics{},
	}
	s.sc = NewServerContext(cfg, nil)
	for _, opt := range opts {
		opt(s)
	}
	// The context shares the server's metrics recorder so upstream call
	// metrics are recorded by the lazily built client too.
	s.sc.metrics = s.metrics
	s.health = NewHealthChecker(s.sc)
	return s
}

// Handler returns the root HTTP handler with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/events", s.instrument(eventsRoute, http.HandlerFunc(s.handleEvents)))
	mux.Handle("/events/diag", s.instrument(diagRoute, http.HandlerFunc(s.handleDiag)))
	s.health.RegisterHealthEndpoints(mux)
	return mux
}

// Start runs the API server until ctx is cancelled, then shuts it down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
		WriteTimeout:      DefaultWriteTimeout,
		IdleTimeout:       DefaultIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting API server", "addr", s.cfg.HTTPAddr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.health.SetReady(false)
	s.sc.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down API server")
	return s.httpServer.Shutdown(shutdownCtx)
}

// statusRecorder captures the response status for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrument records request count and duration per route.
func (s *Server) instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		s.metrics.RecordHTTPRequest(r.Context(), r.Method, route, rec.status, time.Since(start))
	})
}
