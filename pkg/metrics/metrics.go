// Package metrics records counters about a report run on a private
// Prometheus registry. The registry can be written in the node_exporter
// textfile format so the run shows up in existing dashboards without a
// server to scrape.
package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the report metrics. A nil *Recorder discards everything,
// so callers never need to check whether metrics are enabled.
type Recorder struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	retriesTotal    *prometheus.CounterVec
	issuesTotal     *prometheus.GaugeVec
	unknownTotal    *prometheus.GaugeVec
	unclassified    prometheus.Gauge
	pagesTotal      prometheus.Gauge
	generateSeconds prometheus.Gauge
	lastSuccess     prometheus.Gauge
}

// New creates a Recorder with all metrics registered.
func New() (*Recorder, error) {
	r := &Recorder{registry: prometheus.NewRegistry()}

	r.requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reflectsonar_api_requests_total",
		Help: "SonarQube API requests by endpoint and HTTP status code",
	}, []string{"endpoint", "code"})
	r.requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reflectsonar_api_request_duration_seconds",
		Help:    "SonarQube API request latency",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	}, []string{"endpoint"})
	r.retriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reflectsonar_api_retries_total",
		Help: "SonarQube API request retries by endpoint",
	}, []string{"endpoint"})
	r.issuesTotal = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "reflectsonar_issues",
		Help: "Issues in the last report by category and severity",
	}, []string{"category", "severity"})
	r.unknownTotal = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "reflectsonar_unknown_severity_issues",
		Help: "Issues whose severity the active mode did not recognize",
	}, []string{"category"})
	r.unclassified = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "reflectsonar_unclassified_issues",
		Help: "Issues that fit no report category",
	})
	r.pagesTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "reflectsonar_report_pages",
		Help: "Pages in the last generated document",
	})
	r.generateSeconds = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "reflectsonar_report_duration_seconds",
		Help: "Wall time of the last report run",
	})
	r.lastSuccess = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "reflectsonar_last_success_timestamp_seconds",
		Help: "Unix time of the last successful report",
	})

	for _, c := range []prometheus.Collector{
		r.requestsTotal, r.requestDuration, r.retriesTotal, r.issuesTotal,
		r.unknownTotal, r.unclassified, r.pagesTotal, r.generateSeconds, r.lastSuccess,
	} {
		if err := r.registry.Register(c); err != nil {
			return nil, fmt.Errorf("metrics: register: %w", err)
		}
	}
	return r, nil
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Request records one API call. code is 0 for transport failures.
func (r *Recorder) Request(endpoint string, code int, d time.Duration) {
	if r == nil {
		return
	}
	r.requestsTotal.WithLabelValues(endpoint, strconv.Itoa(code)).Inc()
	r.requestDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// Retry records one retried API call.
func (r *Recorder) Retry(endpoint string) {
	if r == nil {
		return
	}
	r.retriesTotal.WithLabelValues(endpoint).Inc()
}

// Issues sets the row count of one (category, severity) tier.
func (r *Recorder) Issues(category, severity string, n int) {
	if r == nil {
		return
	}
	r.issuesTotal.WithLabelValues(category, severity).Set(float64(n))
}

// Unknown sets the number of unknown-severity rows in category.
func (r *Recorder) Unknown(category string, n int) {
	if r == nil {
		return
	}
	r.unknownTotal.WithLabelValues(category).Set(float64(n))
}

// Unclassified sets the number of issues no category accepted.
func (r *Recorder) Unclassified(n int) {
	if r == nil {
		return
	}
	r.unclassified.Set(float64(n))
}

// Finished records a completed report.
func (r *Recorder) Finished(pages int, took time.Duration, at time.Time) {
	if r == nil {
		return
	}
	r.pagesTotal.Set(float64(pages))
	r.generateSeconds.Set(took.Seconds())
	r.lastSuccess.Set(float64(at.Unix()))
}

// WriteTextfile writes the registry to path in the Prometheus text format.
// The write is atomic.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("metrics: write %s: %w", path, err)
	}
	return nil
}
