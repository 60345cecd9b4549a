// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lostfound_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lostfound_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// Domain metrics, updated from the service layer.
var (
	// ItemsCreated counts stored items by status.
	ItemsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lostfound_items_created_total",
			Help: "Items stored, by status.",
		},
		[]string{"status"},
	)

	// MediaUploads counts uploads to the media host by result.
	MediaUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lostfound_media_uploads_total",
			Help: "Photo uploads to the media host, by result.",
		},
		[]string{"result"},
	)

	// OrphanedUploads counts photos whose item insert failed and whose
	// cleanup delete also failed.
	OrphanedUploads = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lostfound_media_orphaned_total",
			Help: "Uploaded photos left behind after a failed insert.",
		},
	)

	// FoundReports counts found reports by outcome (acknowledged or stored).
	FoundReports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lostfound_found_reports_total",
			Help: "Found reports received, by outcome.",
		},
		[]string{"outcome"},
	)

	// Rejections counts submissions rejected by validation, by endpoint.
	Rejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lostfound_validation_rejections_total",
			Help: "Requests rejected for missing or invalid fields.",
		},
		[]string{"operation"},
	)
)
