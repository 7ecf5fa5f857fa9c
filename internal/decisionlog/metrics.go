package decisionlog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricRecords = promauto.NewCounter(prometheus.CounterOpts{
		Name: "decisionlog_records_total",
		Help: "Decision records written to the JSONL log",
	})

	metricDrops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "decisionlog_drops_total",
		Help: "Decision records dropped (queue full or writer closed)",
	})

	metricWriteErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "decisionlog_write_errors_total",
		Help: "Failed decision record writes",
	})
)
