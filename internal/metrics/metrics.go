// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts served requests by route pattern, method and status class.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "enhancer_http_requests_total",
		Help: "HTTP requests served, by route, method and status.",
	}, []string{"route", "method", "status"})

	// HTTPDuration observes request latency by route pattern.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "enhancer_http_request_duration_seconds",
		Help:    "Time taken to serve HTTP requests.",
		Buckets: prometheus.ExponentialBuckets(0.005, 4, 8),
	}, []string{"route"})

	// Uploads counts upload attempts by outcome (ok, rejected, failed).
	Uploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "enhancer_uploads_total",
		Help: "Upload requests by outcome.",
	}, []string{"result"})

	// UploadedBytes sums bytes written to artifact storage.
	UploadedBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "enhancer_uploaded_bytes_total",
		Help: "Bytes written to artifact storage.",
	})

	// Downloads counts download requests by outcome (ok, bad_request, not_found, failed).
	Downloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "enhancer_downloads_total",
		Help: "Download requests by outcome.",
	}, []string{"result"})

	// ArtifactsSwept counts artifacts removed by the lifecycle sweeper.
	ArtifactsSwept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "enhancer_artifacts_swept_total",
		Help: "Artifacts deleted after their time-to-live elapsed.",
	})
)
