package platform

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec

	StateEncodesTotal *prometheus.CounterVec
	StateDecodesTotal *prometheus.CounterVec
	EncodedLength     prometheus.Histogram

	ShortLinksCreated  prometheus.Counter
	ShortLinksResolved *prometheus.CounterVec
)

// InitMetrics registers core metrics collectors.
func InitMetrics() {
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "explorer",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests processed, labeled by method and route.",
	}, []string{"method", "route", "status"})

	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "explorer",
		Name:      "http_request_duration_seconds",
		Help:      "Histogram of request durations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	StateEncodesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "explorer",
		Name:      "state_encodes_total",
		Help:      "Session states serialised, labeled by wire form (compressed/uncompressed).",
	}, []string{"form"})

	StateDecodesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "explorer",
		Name:      "state_decodes_total",
		Help:      "Session state decode attempts, labeled by outcome.",
	}, []string{"outcome"})

	EncodedLength = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "explorer",
		Name:      "state_encoded_length_bytes",
		Help:      "Length of serialised state fragments.",
		Buckets:   prometheus.ExponentialBuckets(64, 2, 12),
	})

	ShortLinksCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "explorer",
		Name:      "shortlinks_created_total",
		Help:      "Short links stored.",
	})

	ShortLinksResolved = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "explorer",
		Name:      "shortlinks_resolved_total",
		Help:      "Short link lookups, labeled by outcome.",
	}, []string{"outcome"})

	prometheus.MustRegister(
		HTTPRequestsTotal, HTTPDuration,
		StateEncodesTotal, StateDecodesTotal, EncodedLength,
		ShortLinksCreated, ShortLinksResolved,
	)
}
