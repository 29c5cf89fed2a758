package converter

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "yw7tools"

// Outcome labels of the conversions counter.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Metrics holds the Prometheus metrics of a Converter.
// A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	Conversions *prometheus.CounterVec
	Duration    *prometheus.HistogramVec
	Issues      *prometheus.CounterVec
	Repairs     prometheus.Counter
}

// NewMetrics creates the conversion metrics and registers them with reg.
// A nil reg gets a fresh registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	conversions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "conversions_total",
			Help:      "Total number of conversions",
		},
		[]string{"direction", "outcome"},
	)

	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "conversion_duration_seconds",
			Help:      "Conversion duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"direction"},
	)

	issueCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "issues_total",
			Help:      "Total number of reported conversion issues",
		},
		[]string{"direction", "kind", "severity"},
	)

	repairs := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "repairs_total",
			Help:      "Total number of structural XML repairs applied on import",
		},
	)

	reg.MustRegister(conversions, duration, issueCounter, repairs)

	return &Metrics{
		registry:    reg,
		Conversions: conversions,
		Duration:    duration,
		Issues:      issueCounter,
		Repairs:     repairs,
	}
}

// Registry returns the registry the metrics are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

type observable interface {
	observed() ([]Issue, int)
}

func (m *Metrics) observe(dir Direction, start time.Time, res observable, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	switch {
	case IsStrictFailure(err):
		outcome = OutcomeRejected
	case err != nil:
		outcome = OutcomeFailed
	}
	m.Conversions.WithLabelValues(string(dir), outcome).Inc()
	m.Duration.WithLabelValues(string(dir)).Observe(time.Since(start).Seconds())

	list, repairs := res.observed()
	for _, issue := range list {
		m.Issues.WithLabelValues(string(dir), string(issue.Kind), issue.Severity.String()).Inc()
	}
	if repairs > 0 {
		m.Repairs.Add(float64(repairs))
	}
}
