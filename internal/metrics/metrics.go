package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mushroom-datastore/internal/domain"
)

const namespace = "datastore"

// Ingestion outcomes used as the "outcome" label.
const (
	OutcomeSuccess             = "success"
	OutcomeUpstreamUnavailable = "upstream_unavailable"
	OutcomeUpstreamMalformed   = "upstream_malformed"
	OutcomePersistence         = "persistence_error"
	OutcomeOther               = "error"
)

// Metrics owns every collector exposed by the service.
type Metrics struct {
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	ingestions       *prometheus.CounterVec
	ingestedRows     prometheus.Counter
	ingestionSeconds prometheus.Histogram
}

// New registers the collectors against reg. Passing a fresh registry keeps tests isolated.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by route and status code",
		}, []string{"method", "route", "code"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP request processing in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		ingestions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingestions_total",
			Help:      "Total number of document ingestions by outcome",
		}, []string{"outcome"}),
		ingestedRows: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingested_rows_total",
			Help:      "Total number of measurement rows committed by ingestions",
		}),
		ingestionSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingestion_duration_seconds",
			Help:      "Duration of document ingestions in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// ObserveIngestion records one ingestion. Rows are only counted for committed ingestions.
func (m *Metrics) ObserveIngestion(rows int, duration time.Duration, err error) {
	if m == nil {
		return
	}
	if duration < 0 {
		duration = 0
	}

	outcome := Outcome(err)
	m.ingestions.WithLabelValues(outcome).Inc()
	m.ingestionSeconds.Observe(duration.Seconds())
	if outcome == OutcomeSuccess {
		m.ingestedRows.Add(float64(rows))
	}
}

// Outcome classifies an ingestion error into a metric label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return OutcomeUpstreamUnavailable
	case errors.Is(err, domain.ErrUpstreamMalformedResponse):
		return OutcomeUpstreamMalformed
	case errors.Is(err, domain.ErrPersistence):
		return OutcomePersistence
	default:
		return OutcomeOther
	}
}

// Handler exposes the collectors registered in gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// HTTPMiddleware instruments handlers with request/latency metrics labelled by the chi route pattern,
// so path parameters such as filenames do not explode label cardinality.
func (m *Metrics) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m == nil {
			next.ServeHTTP(w, r)
			return
		}

		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(recorder.status)).Inc()
	})
}

// statusRecorder captures the response status code for instrumentation.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
