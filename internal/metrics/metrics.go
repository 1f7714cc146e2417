// Package metrics exposes Prometheus collectors for the comments API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sporthub"

// Metrics holds the collectors registered for one server
type Metrics struct {
	registry *prometheus.Registry

	commentsCreated     *prometheus.CounterVec
	submissionsRejected *prometheus.CounterVec
	likesToggled        *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
}

// New registers the collectors on reg. A nil reg gets a fresh registry
// with the Go and process collectors.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	m := &Metrics{
		registry: reg,
		commentsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comments_created_total",
			Help:      "Comments and replies accepted, by kind.",
		}, []string{"kind"}),
		submissionsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_rejected_total",
			Help:      "Comment and reply submissions refused, by reason.",
		}, []string{"reason"}),
		likesToggled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "likes_toggled_total",
			Help:      "Like toggles, by resulting state.",
		}, []string{"state"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(m.commentsCreated, m.submissionsRejected, m.likesToggled, m.requestDuration)
	return m
}

// CommentCreated counts an accepted comment ("comment") or reply ("reply")
func (m *Metrics) CommentCreated(kind string) {
	m.commentsCreated.WithLabelValues(kind).Inc()
}

// SubmissionRejected counts a refused submission
func (m *Metrics) SubmissionRejected(reason string) {
	m.submissionsRejected.WithLabelValues(reason).Inc()
}

// LikeToggled counts a like toggle by its resulting state
func (m *Metrics) LikeToggled(liked bool) {
	state := "unliked"
	if liked {
		state = "liked"
	}
	m.likesToggled.WithLabelValues(state).Inc()
}

// ObserveRequest records the latency of one HTTP request
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
