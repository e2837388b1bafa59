package receipt

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	extractionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "receipt_extractions_total",
		Help: "Completed extractions by producing method.",
	}, []string{"method"})

	extractionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "receipt_extraction_failures_total",
		Help: "User-visible extraction failures by kind.",
	}, []string{"kind"})

	extractionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "receipt_extraction_duration_seconds",
		Help:    "End-to-end extraction pipeline duration.",
		Buckets: prometheus.DefBuckets,
	})
)
