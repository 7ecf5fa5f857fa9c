package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricEvents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "engine_events_total",
		Help: "Transcription events processed",
	})

	metricDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_decisions_total",
		Help: "Decisions by action",
	}, []string{"action"})

	metricProcessingMS = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "engine_processing_ms",
		Help:    "Per-event processing duration (ms)",
		Buckets: prometheus.ExponentialBuckets(0.01, 2.0, 12),
	})

	metricStopFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "engine_stop_failures_total",
		Help: "Agent stop-speaking invocations that returned an error",
	})

	metricCallbackPanics = promauto.NewCounter(prometheus.CounterOpts{
		Name: "engine_callback_panics_total",
		Help: "Interrupt callbacks that panicked and were recovered",
	})

	metricVADChanges = promauto.NewCounter(prometheus.CounterOpts{
		Name: "engine_vad_changes_total",
		Help: "Agent speaking-state transitions observed",
	})
)
