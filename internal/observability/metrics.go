package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Stream request outcomes.
const (
	StreamOK          = "ok"
	StreamClientGone  = "client_gone"
	StreamUpstreamErr = "upstream_error"
	StreamPersistErr  = "persist_error"
	StreamRejected    = "rejected"
)

// Demo job outcomes.
const (
	DemoCreated = "created"
	DemoSkipped = "skipped"
	DemoFailed  = "failed"
	DemoDropped = "dropped"
)

// Metrics holds the service's collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	streamRequests *prometheus.CounterVec
	streamDuration prometheus.Histogram
	streamActive   prometheus.Gauge
	streamChunks   prometheus.Counter
	demoJobs       *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg. Tests pass prometheus.NewRegistry().
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		streamRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "figmachat_stream_requests_total",
			Help: "Message stream requests by outcome",
		}, []string{"status"}),
		streamDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "figmachat_stream_duration_seconds",
			Help:    "Time from stream start until the assistant message is stored",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10), // 250ms to ~2min
		}),
		streamActive: f.NewGauge(prometheus.GaugeOpts{
			Name: "figmachat_stream_active",
			Help: "Streams currently relaying",
		}),
		streamChunks: f.NewCounter(prometheus.CounterOpts{
			Name: "figmachat_stream_chunks_total",
			Help: "Chunk envelopes decoded from AI streams",
		}),
		demoJobs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "figmachat_demo_jobs_total",
			Help: "Web demo jobs by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) StreamStarted() {
	if m == nil {
		return
	}
	m.streamActive.Inc()
}

// StreamFinished records a stream that was started with StreamStarted.
func (m *Metrics) StreamFinished(status string, chunks int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.streamActive.Dec()
	m.streamRequests.WithLabelValues(status).Inc()
	m.streamChunks.Add(float64(chunks))
	m.streamDuration.Observe(elapsed.Seconds())
}

// StreamRejected records a request that failed before streaming began.
func (m *Metrics) StreamRejected() {
	if m == nil {
		return
	}
	m.streamRequests.WithLabelValues(StreamRejected).Inc()
}

func (m *Metrics) DemoJob(outcome string) {
	if m == nil {
		return
	}
	m.demoJobs.WithLabelValues(outcome).Inc()
}
