package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

var (
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	ProbesTotal         *prometheus.CounterVec
	ProbeDuration       *prometheus.HistogramVec
	DiagnosesTotal      *prometheus.CounterVec
	FailureStreak       *prometheus.GaugeVec

	initOnce sync.Once
)

// Init registers all collectors with the default registry. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		HTTPRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		)

		HTTPRequestDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		)

		ProbesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edge_probe_requests_total",
				Help: "Total number of probes sent to the edge function.",
			},
			[]string{"mode", "outcome"},
		)

		ProbeDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "edge_probe_duration_seconds",
				Help:    "Wall-clock time of each probe, including timeouts.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"mode"},
		)

		DiagnosesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edge_probe_diagnoses_total",
				Help: "Total number of diagnoses by verdict.",
			},
			[]string{"verdict"},
		)

		FailureStreak = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "edge_probe_consecutive_failures",
				Help: "Consecutive failed probes per mode; reset on success.",
			},
			[]string{"mode"},
		)
	})
}

// Push sends the probe collectors to a Prometheus Pushgateway under the given job.
func Push(url, job string) error {
	Init()
	return push.New(url, job).
		Collector(ProbesTotal).
		Collector(ProbeDuration).
		Collector(DiagnosesTotal).
		Collector(FailureStreak).
		Push()
}
