// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "learnpath"

// Registry groups every collector the service reports. A nil *Registry is
// valid and records nothing.
type Registry struct {
	PersonalizationFallbacks    *prometheus.CounterVec
	PersonalizationStageSeconds *prometheus.HistogramVec
	RemindersSent               prometheus.Counter
	HTTPRequestSeconds          *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them with reg
func New(reg *prometheus.Registry) *Registry {
	r := &Registry{
		PersonalizationFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "personalization_fallbacks_total",
			Help:      "Personalization stages that failed and returned their default value.",
		}, []string{"stage"}),
		PersonalizationStageSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "personalization_stage_seconds",
			Help:      "Duration of personalization pipeline stages.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"stage"}),
		RemindersSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_sent_total",
			Help:      "Study reminders delivered to learners.",
		}),
		HTTPRequestSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		gatherer: reg,
	}

	reg.MustRegister(
		r.PersonalizationFallbacks,
		r.PersonalizationStageSeconds,
		r.RemindersSent,
		r.HTTPRequestSeconds,
	)
	return r
}

// NewDefault registers the collectors on a fresh registry that also carries
// the Go runtime and process collectors.
func NewDefault() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return New(reg)
}

// StageFallback counts a failed personalization stage
func (r *Registry) StageFallback(stage string) {
	if r == nil {
		return
	}
	r.PersonalizationFallbacks.WithLabelValues(stage).Inc()
}

// ObserveStage records how long a personalization stage took
func (r *Registry) ObserveStage(stage string, d time.Duration) {
	if r == nil {
		return
	}
	r.PersonalizationStageSeconds.WithLabelValues(stage).Observe(d.Seconds())
}

// ReminderSent counts a delivered reminder
func (r *Registry) ReminderSent() {
	if r == nil {
		return
	}
	r.RemindersSent.Inc()
}

// ObserveHTTP records one served request
func (r *Registry) ObserveHTTP(method, route string, status int, d time.Duration) {
	if r == nil {
		return
	}
	r.HTTPRequestSeconds.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// Handler exposes the registry in the Prometheus text format
func (r *Registry) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}
