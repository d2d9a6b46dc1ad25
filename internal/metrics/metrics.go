// Package metrics exports forecast service events as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/i474232898/forecast-aggregation/internal/forecast"
)

// Recorder implements forecast.Observer on top of a private registry.
type Recorder struct {
	registry *prometheus.Registry

	loads         *prometheus.CounterVec
	loadDuration  prometheus.Histogram
	seriesRecords prometheus.Gauge
	notifications prometheus.Counter
	subscribers   prometheus.Gauge
}

var _ forecast.Observer = (*Recorder)(nil)

// New creates a Recorder and registers its collectors, together with the
// standard Go and process collectors.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		loads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forecast_loads_total",
				Help: "Forecast loads by result.",
			},
			[]string{"result"},
		),
		loadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "forecast_load_duration_seconds",
			Help:    "Time spent loading a forecast series, including the fetch.",
			Buckets: prometheus.DefBuckets,
		}),
		seriesRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "forecast_series_records",
			Help: "Number of records in the most recently loaded series.",
		}),
		notifications: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "forecast_notifications_total",
			Help: "Data-changed notifications raised.",
		}),
		subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "forecast_subscribers",
			Help: "Currently registered subscribers.",
		}),
	}

	r.registry.MustRegister(
		r.loads,
		r.loadDuration,
		r.seriesRecords,
		r.notifications,
		r.subscribers,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Recorder) LoadFinished(result string, elapsed time.Duration, records int) {
	r.loads.WithLabelValues(result).Inc()
	r.loadDuration.Observe(elapsed.Seconds())
	if result == forecast.ResultSuccess {
		r.seriesRecords.Set(float64(records))
	}
}

func (r *Recorder) Notified(int) {
	r.notifications.Inc()
}

func (r *Recorder) SubscribersChanged(count int) {
	r.subscribers.Set(float64(count))
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
