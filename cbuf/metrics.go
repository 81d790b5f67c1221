package cbuf

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/replaybuf/metric"
)

// bufferMetrics holds Prometheus metrics for buffer operations.
type bufferMetrics struct {
	// Counter metrics
	bytesWritten  prometheus.Counter
	bytesRead     prometheus.Counter
	bytesPeeked   prometheus.Counter
	bytesReplayed prometheus.Counter
	bytesDropped  prometheus.Counter
	grows         prometheus.Counter
	overflows     prometheus.Counter

	// Gauge metrics - updated on operations
	used        prometheus.Gauge
	replayable  prometheus.Gauge
	size        prometheus.Gauge
	utilization prometheus.Gauge
}

func newBufferCounter(prefix, name, help string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   "replaybuf",
		Subsystem:   "cbuf",
		Name:        name,
		ConstLabels: prometheus.Labels{"buffer": prefix},
		Help:        help,
	})
}

func newBufferGauge(prefix, name, help string) prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   "replaybuf",
		Subsystem:   "cbuf",
		Name:        name,
		ConstLabels: prometheus.Labels{"buffer": prefix},
		Help:        help,
	})
}

// newBufferMetrics creates and registers buffer metrics with the provided registry.
func newBufferMetrics(registry *metric.MetricsRegistry, prefix string) (*bufferMetrics, error) {
	m := &bufferMetrics{
		bytesWritten:  newBufferCounter(prefix, "bytes_written_total", "Total bytes written into the buffer"),
		bytesRead:     newBufferCounter(prefix, "bytes_read_total", "Total bytes read out of the buffer"),
		bytesPeeked:   newBufferCounter(prefix, "bytes_peeked_total", "Total bytes peeked without consuming"),
		bytesReplayed: newBufferCounter(prefix, "bytes_replayed_total", "Total bytes replayed from consumed history"),
		bytesDropped:  newBufferCounter(prefix, "bytes_dropped_total", "Total unread bytes lost to the overwrite policy"),
		grows:         newBufferCounter(prefix, "grows_total", "Total storage growth events"),
		overflows:     newBufferCounter(prefix, "overflows_total", "Total writes that overwrote unread data"),
		used:          newBufferGauge(prefix, "used_bytes", "Current unread bytes"),
		replayable:    newBufferGauge(prefix, "replayable_bytes", "Current replayable bytes"),
		size:          newBufferGauge(prefix, "size_bytes", "Current allocated capacity"),
		utilization:   newBufferGauge(prefix, "utilization", "Unread fraction of capacity (0.0 to 1.0)"),
	}

	// Register all metrics with the registry
	if err := registry.RegisterCounter(prefix, "bytes_written", m.bytesWritten); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(prefix, "bytes_read", m.bytesRead); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(prefix, "bytes_peeked", m.bytesPeeked); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(prefix, "bytes_replayed", m.bytesReplayed); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(prefix, "bytes_dropped", m.bytesDropped); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(prefix, "grows", m.grows); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(prefix, "overflows", m.overflows); err != nil {
		return nil, err
	}
	if err := registry.RegisterGauge(prefix, "used", m.used); err != nil {
		return nil, err
	}
	if err := registry.RegisterGauge(prefix, "replayable", m.replayable); err != nil {
		return nil, err
	}
	if err := registry.RegisterGauge(prefix, "size", m.size); err != nil {
		return nil, err
	}
	if err := registry.RegisterGauge(prefix, "utilization", m.utilization); err != nil {
		return nil, err
	}

	return m, nil
}

// recordWrite adds n to the written-bytes counter.
func (m *bufferMetrics) recordWrite(n int) {
	m.bytesWritten.Add(float64(n))
}

// recordRead adds n to the read-bytes counter.
func (m *bufferMetrics) recordRead(n int) {
	m.bytesRead.Add(float64(n))
}

// recordPeek adds n to the peeked-bytes counter.
func (m *bufferMetrics) recordPeek(n int) {
	m.bytesPeeked.Add(float64(n))
}

// recordReplay adds n to the replayed-bytes counter.
func (m *bufferMetrics) recordReplay(n int) {
	m.bytesReplayed.Add(float64(n))
}

// recordDrop adds n to the dropped-bytes counter.
func (m *bufferMetrics) recordDrop(n int) {
	m.bytesDropped.Add(float64(n))
}

// recordGrow increments the growth counter.
func (m *bufferMetrics) recordGrow() {
	m.grows.Inc()
}

// recordOverflow increments the overflow counter.
func (m *bufferMetrics) recordOverflow() {
	m.overflows.Inc()
}

// updateUsage sets the region gauges.
func (m *bufferMetrics) updateUsage(used, replayable, size int) {
	m.used.Set(float64(used))
	m.replayable.Set(float64(replayable))
	m.size.Set(float64(size))
	if size > 0 {
		m.utilization.Set(float64(used) / float64(size))
	}
}
