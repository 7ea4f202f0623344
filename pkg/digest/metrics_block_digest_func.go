package digest

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	blockDigestPrometheusMetrics sync.Once

	blockDigestOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bb_ed2k",
			Subsystem: "digest",
			Name:      "block_digest_operations_total",
			Help:      "Number of blocks that have been digested.",
		},
		[]string{"name"})
	blockDigestBytesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bb_ed2k",
			Subsystem: "digest",
			Name:      "block_digest_bytes_total",
			Help:      "Number of bytes of data that have been digested.",
		},
		[]string{"name"})
	blockDigestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bb_ed2k",
			Subsystem: "digest",
			Name:      "block_digest_duration_seconds",
			Help:      "Amount of time spent digesting a single block, in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2.0, 16),
		},
		[]string{"name"})
)

// NewMetricsBlockDigestFunc creates a decorator for BlockDigestFunc
// that exposes the number of blocks digested, their total size and
// the time spent digesting them as Prometheus metrics.
func NewMetricsBlockDigestFunc(base BlockDigestFunc, name string) BlockDigestFunc {
	blockDigestPrometheusMetrics.Do(func() {
		prometheus.MustRegister(blockDigestOperationsTotal)
		prometheus.MustRegister(blockDigestBytesTotal)
		prometheus.MustRegister(blockDigestDurationSeconds)
	})

	operations := blockDigestOperationsTotal.WithLabelValues(name)
	bytes := blockDigestBytesTotal.WithLabelValues(name)
	duration := blockDigestDurationSeconds.WithLabelValues(name)
	return func(block []byte) BlockDigest {
		timeStart := time.Now()
		d := base(block)
		duration.Observe(time.Now().Sub(timeStart).Seconds())
		operations.Inc()
		bytes.Add(float64(len(block)))
		return d
	}
}
