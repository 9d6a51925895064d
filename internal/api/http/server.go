package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"mushroom-datastore/internal/domain"
	"mushroom-datastore/internal/logging"
	"mushroom-datastore/internal/metrics"
)

// Server exposes the HTTP transport for the datastore application.
type Server struct {
	router chi.Router
}

type Option func(*settings)

type settings struct {
	logger   *logging.Logger
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
}

func WithLogger(logger *logging.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithMetrics instruments every route and mounts /metrics serving the collectors of gatherer.
func WithMetrics(m *metrics.Metrics, gatherer prometheus.Gatherer) Option {
	return func(s *settings) {
		s.metrics = m
		s.gatherer = gatherer
	}
}

// NewServer constructs a chi based HTTP server that forwards requests to the application service.
func NewServer(service domain.DatastoreService, opts ...Option) *Server {
	cfg := settings{logger: logging.Discard()}
	for _, opt := range opts {
		opt(&cfg)
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(requestLogger(cfg.logger))
	router.Use(cfg.metrics.HTTPMiddleware)

	if cfg.gatherer != nil {
		router.Method(http.MethodGet, "/metrics", metrics.Handler(cfg.gatherer))
	}

	registerRoutes(router, &handler{service: service, logger: cfg.logger})

	return &Server{router: router}
}

// Router returns the configured chi router for reuse in tests or external HTTP servers.
func (s *Server) Router() http.Handler {
	return s.router
}

// ServeHTTP allows Server to satisfy the http.Handler interface directly.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// requestLogger attaches a logger carrying the request id to the context and logs every completed request.
func requestLogger(base *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := base.With(
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
			)
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r.WithContext(logger.WithContext(r.Context())))

			logger.Debug("request completed",
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start).String(),
			)
		})
	}
}
