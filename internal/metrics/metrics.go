// Package metrics implements Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"firestige.xyz/sniffer/internal/core"
)

// Frame results.
const (
	ResultOK        = "ok"
	ResultMalformed = "malformed"
)

var (
	// FramesTotal counts decoded frames by result.
	FramesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sniffer_frames_total",
			Help: "Total number of frames decoded",
		},
		[]string{"result"},
	)

	// LayersTotal counts decoded layers by protocol.
	LayersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sniffer_layers_total",
			Help: "Total number of protocol layers decoded",
		},
		[]string{"protocol"},
	)

	// SinkErrorsTotal counts failed report writes.
	SinkErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sniffer_sink_errors_total",
			Help: "Total number of reports that could not be written",
		},
	)

	// DecodeSeconds measures decode plus render latency per frame.
	DecodeSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sniffer_decode_seconds",
			Help:    "Time spent decoding and rendering one frame in seconds",
			Buckets: prometheus.ExponentialBuckets(0.000001, 2, 20), // 1µs to ~1s
		},
	)
)

// ObserveFrame records one processed frame.
func ObserveFrame(frame core.DecodedFrame, elapsed time.Duration) {
	result := ResultOK
	if frame.Malformed() {
		result = ResultMalformed
	}
	FramesTotal.WithLabelValues(result).Inc()

	for _, l := range frame.Layers {
		LayersTotal.WithLabelValues(l.Kind().String()).Inc()
	}
	DecodeSeconds.Observe(elapsed.Seconds())
}
