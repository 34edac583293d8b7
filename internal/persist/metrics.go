package persist

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// operationsTotal counts load and save attempts by backend and outcome.
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "habitboard_persist_operations_total",
		Help: "Document load/save attempts by operation, backend and result",
	}, []string{"op", "backend", "result"})

	// operationDuration tracks remote round-trip latency.
	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "habitboard_persist_duration_seconds",
		Help:    "Remote document load/save duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
	}, []string{"op", "backend"})

	// documentBytes records the size of the last saved document.
	documentBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "habitboard_document_bytes",
		Help: "Size in bytes of the most recently serialized document",
	})
)

const (
	resultOK          = "ok"
	resultEmpty       = "empty"
	resultError       = "error"
	resultMalformed   = "malformed"
	resultUnavailable = "unavailable"
)
