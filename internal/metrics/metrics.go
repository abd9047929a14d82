package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "intake"

// Registry holds every intake collector; the status server exposes it.
var Registry = prometheus.NewRegistry()

var (
	lookupCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Count of code lookups by workflow kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)
	lookupLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lookup_duration_seconds",
			Help:      "Lookup round trip latency by workflow kind.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"kind"},
	)
	submissionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Count of record submissions by kind and result.",
		},
		[]string{"kind", "result"},
	)
	staleCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_outcomes_total",
			Help:      "Count of lookup or submission outcomes dropped because a newer request or an unmount superseded them.",
		},
		[]string{"kind"},
	)
	refDataCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refdata_loads_total",
			Help:      "Count of reference collection fetches by collection and result.",
		},
		[]string{"collection", "result"},
	)
	debouncedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scans_debounced_total",
			Help:      "Count of repeated scanner reads dropped inside the debounce window.",
		},
	)
)

var registerMetrics sync.Once

// Register all metrics.
func Register() {
	registerMetrics.Do(func() {
		Registry.MustRegister(lookupCounter)
		Registry.MustRegister(lookupLatency)
		Registry.MustRegister(submissionCounter)
		Registry.MustRegister(staleCounter)
		Registry.MustRegister(refDataCounter)
		Registry.MustRegister(debouncedCounter)
		Registry.MustRegister(collectors.NewGoCollector())
	})
}

// RecordLookup counts one resolver outcome and its latency.
func RecordLookup(kind, outcome string, elapsed time.Duration) {
	lookupCounter.WithLabelValues(kind, outcome).Inc()
	lookupLatency.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// RecordSubmission counts one gateway result.
func RecordSubmission(kind, result string) {
	submissionCounter.WithLabelValues(kind, result).Inc()
}

// RecordStaleOutcome counts one discarded outcome.
func RecordStaleOutcome(kind string) {
	staleCounter.WithLabelValues(kind).Inc()
}

// RecordRefDataLoad counts one reference collection fetch.
func RecordRefDataLoad(collection string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	refDataCounter.WithLabelValues(collection, result).Inc()
}

// RecordDebouncedScan counts one scanner read dropped as a repeat.
func RecordDebouncedScan() {
	debouncedCounter.Inc()
}
