// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Total number of anonymous requests rejected by the rate limiter",
		},
	)

	IngestionRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingestion_runs_total",
			Help: "Total number of job ingestion runs by result",
		},
		[]string{"result"}, // success | failure | skipped
	)

	IngestionPostsStored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ingestion_posts_stored_total",
			Help: "Total number of posts created from the job feed",
		},
	)

	IngestionDuplicates = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ingestion_duplicates_total",
			Help: "Total number of feed records skipped because they were already stored",
		},
	)

	IngestionRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ingestion_run_duration_seconds",
			Help:    "Duration of job ingestion runs in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	NewsletterEmailsSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "newsletter_emails_sent_total",
			Help: "Total number of newsletter emails delivered",
		},
	)
)
