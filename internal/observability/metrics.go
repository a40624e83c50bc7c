package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Write operations tracked by RecordActivityWrite.
const (
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

var (
	activityWritesCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fitness",
		Subsystem: "activity",
		Name:      "writes_total",
		Help:      "Number of successful activity mutations, labeled by operation.",
	}, []string{"operation"})
	activityLastWriteGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fitness",
		Subsystem: "activity",
		Name:      "last_write_timestamp_seconds",
		Help:      "Unix timestamp of the most recent successful activity mutation.",
	})
	statsSelectionHistogram = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "fitness",
		Subsystem: "stats",
		Name:      "selected_activities",
		Help:      "Number of activities aggregated per stats request.",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
	})
)

func init() {
	prometheus.MustRegister(activityWritesCounter, activityLastWriteGauge, statsSelectionHistogram)
}

// RecordActivityWrite counts a mutation and advances the last-write watermark.
func RecordActivityWrite(operation string) {
	activityWritesCounter.WithLabelValues(operation).Inc()
	activityLastWriteGauge.Set(float64(time.Now().Unix()))
}

// ObserveStatsSelection records how many activities a stats request aggregated.
func ObserveStatsSelection(n int) {
	statsSelectionHistogram.Observe(float64(n))
}
