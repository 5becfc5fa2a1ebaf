// Package metrics defines the Prometheus collectors of the service.
//
// A nil *Metrics is valid and records nothing, so components can be built
// without a registry in tests.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "elective"

// Metrics groups the collectors.
type Metrics struct {
	// enrollAttempts counts enrollment attempts.
	// Labels: outcome (committed, already_enrolled, course_full, error)
	enrollAttempts *prometheus.CounterVec

	// enrollRetries counts transactions retried after a serialization
	// failure or deadlock.
	enrollRetries prometheus.Counter

	// recommendDuration measures recommendation sessions.
	// Labels: status (ok, skipped, error)
	recommendDuration *prometheus.HistogramVec

	// auditEntries counts usage log entries.
	// Labels: result (written, dropped, failed)
	auditEntries *prometheus.CounterVec

	// httpDuration measures HTTP requests.
	// Labels: method, route (chi pattern), status
	httpDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		enrollAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "enrollment",
			Name:      "attempts_total",
			Help:      "Enrollment attempts by outcome",
		}, []string{"outcome"}),
		enrollRetries: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "enrollment",
			Name:      "retries_total",
			Help:      "Enrollment transactions retried after transient failures",
		}),
		recommendDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "recommendation",
			Name:      "duration_seconds",
			Help:      "Recommendation session latency in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"status"}),
		auditEntries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "audit",
			Name:      "entries_total",
			Help:      "Usage log entries by delivery result",
		}, []string{"result"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// EnrollAttempt counts one enrollment attempt.
func (m *Metrics) EnrollAttempt(outcome string) {
	if m == nil {
		return
	}
	m.enrollAttempts.WithLabelValues(outcome).Inc()
}

// EnrollRetry counts one retried enrollment transaction.
func (m *Metrics) EnrollRetry() {
	if m == nil {
		return
	}
	m.enrollRetries.Inc()
}

// RecommendDone observes the duration of a recommendation session.
func (m *Metrics) RecommendDone(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.recommendDuration.WithLabelValues(status).Observe(d.Seconds())
}

// AuditEntry counts one usage log entry by result.
func (m *Metrics) AuditEntry(result string) {
	if m == nil {
		return
	}
	m.auditEntries.WithLabelValues(result).Inc()
}

// Middleware observes request latency labelled with the matched chi route
// pattern rather than the raw path.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}
