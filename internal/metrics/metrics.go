// Package metrics содержит метрики Prometheus сервиса.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weplash_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	EnrichmentJobs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weplash_enrichment_jobs_total",
			Help: "Total number of processed enrichment jobs",
		},
		[]string{"job", "result"}, // result: "success", "failure"
	)

	EnrichmentTagsAttached = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "weplash_enrichment_tags_attached_total",
			Help: "Total number of hashtags attached to photos by enrichment",
		},
	)

	Uploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weplash_uploads_total",
			Help: "Total number of photo uploads",
		},
		[]string{"result"}, // "success", "failure", "rejected"
	)

	UploadsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "weplash_uploads_in_flight",
			Help: "Number of uploads currently being processed",
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "weplash_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

// RecordHTTPRequest записывает длительность обработанного запроса
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}

// RecordEnrichmentJob учитывает результат задачи обогащения
func RecordEnrichmentJob(job string, err error) {
	EnrichmentJobs.WithLabelValues(job, result(err)).Inc()
}

// RecordUpload учитывает результат загрузки фото
func RecordUpload(err error) {
	Uploads.WithLabelValues(result(err)).Inc()
}

// RecordRejectedUpload учитывает загрузку, отклонённую из-за лимита
func RecordRejectedUpload() {
	Uploads.WithLabelValues("rejected").Inc()
}

func result(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
