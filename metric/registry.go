package metric

import (
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/c360/replaybuf/errors"
)

// MetricsRegistrar defines the interface for registering buffer-specific metrics
type MetricsRegistrar interface {
	RegisterCounter(prefix, metricName string, counter prometheus.Counter) error
	RegisterGauge(prefix, metricName string, gauge prometheus.Gauge) error
	RegisterHistogram(prefix, metricName string, histogram prometheus.Histogram) error
	Unregister(prefix, metricName string) bool
}

// MetricsRegistry manages the registration and lifecycle of metrics.
// Each buffer instance registers its metrics under a distinct prefix;
// duplicate registrations are rejected so instances cannot clobber each other.
type MetricsRegistry struct {
	prometheusRegistry *prometheus.Registry
	registeredMetrics  map[string]prometheus.Collector
	mu                 sync.RWMutex
}

// NewMetricsRegistry creates a new metrics registry with Go runtime metrics
func NewMetricsRegistry() *MetricsRegistry {
	prometheusRegistry := prometheus.NewRegistry()

	registry := &MetricsRegistry{
		prometheusRegistry: prometheusRegistry,
		registeredMetrics:  make(map[string]prometheus.Collector),
	}

	// Add Go runtime metrics
	registry.prometheusRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return registry
}

// PrometheusRegistry returns the underlying Prometheus registry
func (r *MetricsRegistry) PrometheusRegistry() *prometheus.Registry {
	return r.prometheusRegistry
}

// RegisterCounter registers a counter metric under a prefix
func (r *MetricsRegistry) RegisterCounter(prefix, metricName string, counter prometheus.Counter) error {
	return r.register(prefix, metricName, "RegisterCounter", counter)
}

// RegisterGauge registers a gauge metric under a prefix
func (r *MetricsRegistry) RegisterGauge(prefix, metricName string, gauge prometheus.Gauge) error {
	return r.register(prefix, metricName, "RegisterGauge", gauge)
}

// RegisterHistogram registers a histogram metric under a prefix
func (r *MetricsRegistry) RegisterHistogram(prefix, metricName string, histogram prometheus.Histogram) error {
	return r.register(prefix, metricName, "RegisterHistogram", histogram)
}

func (r *MetricsRegistry) register(prefix, metricName, operation string, collector prometheus.Collector) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := fmt.Sprintf("%s.%s", prefix, metricName)

	if _, exists := r.registeredMetrics[key]; exists {
		return errors.WrapInvalid(
			fmt.Errorf("metric %s already registered under prefix %s", metricName, prefix),
			"MetricsRegistry", operation, "duplicate metric registration")
	}

	if err := r.prometheusRegistry.Register(collector); err != nil {
		// Check if it's a duplicate registration error from Prometheus
		var alreadyRegErr prometheus.AlreadyRegisteredError
		if stderrors.As(err, &alreadyRegErr) {
			return errors.WrapInvalid(err, "MetricsRegistry", operation,
				fmt.Sprintf("prometheus conflict for metric %s", metricName))
		}
		return errors.WrapInvalid(err, "MetricsRegistry", operation,
			"failed to register collector with prometheus")
	}

	r.registeredMetrics[key] = collector
	return nil
}

// Unregister removes a metric from the registry
func (r *MetricsRegistry) Unregister(prefix, metricName string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := fmt.Sprintf("%s.%s", prefix, metricName)

	collector, exists := r.registeredMetrics[key]
	if !exists {
		return false
	}

	success := r.prometheusRegistry.Unregister(collector)
	if success {
		delete(r.registeredMetrics, key)
	}

	return success
}
