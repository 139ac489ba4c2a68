// Package gmetrics exports supervisor reports as Prometheus metrics.
package gmetrics

import (
	"github.com/gordian-engine/gmwdg/gwatchdog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collectors holds the watchdog metrics registered by [NewCollectors].
type Collectors struct {
	checks     *prometheus.CounterVec
	kicks      prometheus.Counter
	expired    prometheus.Gauge
	registered prometheus.Gauge
	duration   prometheus.Histogram
}

// NewCollectors registers the watchdog metrics with reg.
// It panics if any of them is already registered there,
// as promauto does.
func NewCollectors(reg prometheus.Registerer) *Collectors {
	f := promauto.With(reg)
	return &Collectors{
		checks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gmwdg_checks_total",
			Help: "Watchdog checks performed, by resulting status.",
		}, []string{"status"}),
		kicks: f.NewCounter(prometheus.CounterOpts{
			Name: "gmwdg_kicks_total",
			Help: "Kicks delivered after healthy checks.",
		}),
		expired: f.NewGauge(prometheus.GaugeOpts{
			Name: "gmwdg_expired_nodes",
			Help: "Expired nodes found by the most recent check.",
		}),
		registered: f.NewGauge(prometheus.GaugeOpts{
			Name: "gmwdg_registered_nodes",
			Help: "Registered nodes at the most recent check.",
		}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "gmwdg_check_duration_seconds",
			Help:    "Time spent checking the registry and listing expired nodes.",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
	}
}

// Observe records r.
// It is safe to use as [gwatchdog.SupervisorConfig.OnReport].
func (c *Collectors) Observe(r gwatchdog.Report) {
	status := r.Status.String()
	if r.Err != nil {
		status = "error"
	}
	c.checks.WithLabelValues(status).Inc()

	if r.Kicked {
		c.kicks.Inc()
	}

	c.expired.Set(float64(len(r.ExpiredIDs)))
	c.registered.Set(float64(r.Nodes))
	c.duration.Observe(r.Duration.Seconds())
}
