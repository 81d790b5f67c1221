package cbuf

import (
	"log/slog"

	"github.com/c360/replaybuf/metric"
)

// Option configures buffer behavior using the functional options pattern.
type Option func(*bufferOptions)

// Allocator provides backing storage of the requested length, or nil when
// the allocation cannot be satisfied. The default allocator never fails.
type Allocator func(size int) []byte

// DropCallback is called when unread bytes are overwritten to make room for
// a write. It receives the number of bytes lost.
type DropCallback func(dropped int)

// bufferOptions holds internal configuration for buffer instances.
// Stats are ALWAYS collected - they are not optional.
// Metrics are optional and exposed via WithMetrics().
type bufferOptions struct {
	locking      bool
	oomPolicy    OOMPolicy
	alloc        Allocator
	logger       *slog.Logger
	dropCallback DropCallback

	// metricsReg is optional - if provided, buffer stats are also exposed as Prometheus metrics
	metricsReg *metric.MetricsRegistry

	// metricsPrefix is used as the buffer label for Prometheus metrics
	metricsPrefix string
}

// WithoutLocking disables the per-buffer lock for callers that confine the
// buffer to a single goroutine. Buffers are thread-safe by default.
func WithoutLocking() Option {
	return func(opts *bufferOptions) {
		opts.locking = false
	}
}

// WithOOMPolicy sets the reaction to allocation failure at creation time.
// Defaults to ReturnError.
func WithOOMPolicy(policy OOMPolicy) Option {
	return func(opts *bufferOptions) {
		opts.oomPolicy = policy
	}
}

// WithAllocator replaces the storage allocator. A nil allocator is ignored.
func WithAllocator(alloc Allocator) Option {
	return func(opts *bufferOptions) {
		if alloc != nil {
			opts.alloc = alloc
		}
	}
}

// WithLogger sets a logger for growth and overwrite events (Debug level).
// Without a logger the buffer is silent.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *bufferOptions) {
		opts.logger = logger
	}
}

// WithMetrics enables Prometheus metrics export for buffer statistics.
// If registry is nil, this option is ignored.
func WithMetrics(registry *metric.MetricsRegistry, prefix string) Option {
	return func(opts *bufferOptions) {
		if registry != nil && prefix != "" {
			opts.metricsReg = registry
			opts.metricsPrefix = prefix
		}
	}
}

// WithDropCallback sets a callback invoked when unread bytes are lost to
// the overwrite policy.
func WithDropCallback(callback DropCallback) Option {
	return func(opts *bufferOptions) {
		opts.dropCallback = callback
	}
}

// applyOptions applies functional options to create final buffer configuration.
// This is an internal helper used by the constructor.
func applyOptions(options ...Option) *bufferOptions {
	opts := &bufferOptions{
		// Default values
		locking:   true,
		oomPolicy: ReturnError,
		alloc: func(size int) []byte {
			return make([]byte, size)
		},
	}

	for _, opt := range options {
		if opt != nil {
			opt(opts)
		}
	}

	return opts
}
