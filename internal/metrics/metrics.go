// Package metrics defines the Prometheus metrics of the AutoX client and of
// the mock backend. It is the single source of truth for metric names,
// labels and help strings.
//
// Collectors register on a caller-supplied registry so that several clients
// (and tests) can coexist in one process.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "autox"

// Outcomes recorded by the client request counter.
const (
	OutcomeSuccess   = "success"
	OutcomeTransport = "transport_error"
	OutcomeStatus    = "status_error"
	OutcomeDecode    = "decode_error"
)

// --- Client metrics ---

// Client records gateway client requests.
type Client struct {
	// requests counts finished requests.
	// Labels:
	//   - method: HTTP verb
	//   - endpoint: path template (e.g. "/vehicles/{id}") or "custom"
	//   - outcome: one of the Outcome* constants
	requests *prometheus.CounterVec
	// duration measures request latency including body decoding.
	duration *prometheus.HistogramVec
}

func NewClient(reg prometheus.Registerer) *Client {
	f := promauto.With(reg)
	return &Client{
		requests: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "client",
				Name:      "requests_total",
				Help:      "Total number of API requests issued, by endpoint and outcome.",
			},
			[]string{"method", "endpoint", "outcome"},
		),
		duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "client",
				Name:      "request_duration_seconds",
				Help:      "Duration of API requests from send to decoded response.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
	}
}

// ObserveRequest records one finished request. A nil receiver is a no-op.
func (c *Client) ObserveRequest(method, endpoint, outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.requests.WithLabelValues(method, endpoint, outcome).Inc()
	c.duration.WithLabelValues(method, endpoint).Observe(elapsed.Seconds())
}

// --- Mock backend metrics ---

// Backend records domain events of the mock backend. HTTP request metrics
// come from the echo-contrib middleware.
type Backend struct {
	// authEvents counts authentication outcomes.
	// Labels:
	//   - event: "register", "login", "logout"
	//   - result: "ok" or "failed"
	authEvents *prometheus.CounterVec
	// statusTransitions counts service request status changes.
	// Label:
	//   - status: the new status
	statusTransitions *prometheus.CounterVec
	// uploads counts files received by the upload endpoints.
	// Label:
	//   - field: "profileImage" or "documents"
	uploads *prometheus.CounterVec
}

func NewBackend(reg prometheus.Registerer) *Backend {
	f := promauto.With(reg)
	return &Backend{
		authEvents: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "mock",
				Name:      "auth_events_total",
				Help:      "Total number of authentication events, by event and result.",
			},
			[]string{"event", "result"},
		),
		statusTransitions: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "mock",
				Name:      "service_request_transitions_total",
				Help:      "Total number of service request status transitions, by new status.",
			},
			[]string{"status"},
		),
		uploads: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "mock",
				Name:      "uploaded_files_total",
				Help:      "Total number of uploaded files, by form field.",
			},
			[]string{"field"},
		),
	}
}

func (b *Backend) AuthEvent(event string, err error) {
	if b == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "failed"
	}
	b.authEvents.WithLabelValues(event, result).Inc()
}

func (b *Backend) StatusTransition(status string) {
	if b == nil {
		return
	}
	b.statusTransitions.WithLabelValues(status).Inc()
}

func (b *Backend) Uploaded(field string, n int) {
	if b == nil {
		return
	}
	b.uploads.WithLabelValues(field).Add(float64(n))
}
