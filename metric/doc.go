// Package metric provides Prometheus-based metrics collection and an HTTP
// exposition server for replaybuf observability.
//
// The package offers a metrics registry managing per-buffer metrics under
// distinct prefixes, plus an HTTP server exposing them in Prometheus format.
// Buffer instances register their own metrics through the MetricsRegistrar
// interface; duplicate registrations are rejected so two buffers cannot share
// a prefix by accident.
//
// # Basic Usage
//
// Setting up metrics collection and the HTTP server:
//
//	registry := metric.NewMetricsRegistry()
//	server := metric.NewServer(9090, "/metrics", registry, nil)
//
//	go func() {
//	    if err := server.Start(); err != nil {
//	        slog.Error("metrics server failed", "error", err)
//	    }
//	}()
//	defer server.Stop()
//
// Buffers opt in to metrics at creation:
//
//	buf, err := cbuf.New(4096, 1<<20, cbuf.WithMetrics(registry, "console_out"))
package metric
