// Package cbuf provides a self-growing circular byte buffer that retains a
// bounded history of already-consumed bytes for replay.
//
// # Overview
//
// The buffer sits between bursty byte-stream producers and slow consumers,
// the way a console multiplexer buffers terminal output. Storage partitions,
// in logical order and with wraparound, into three regions:
//
//	[replay][unread][free]
//
// Writes land in the free region, growing the storage up to a configured
// maximum before overwriting the oldest data. Reads move bytes from the
// unread region into the replay region instead of discarding them, so a
// consumer that missed output can ask for the recent history again. The
// three region lengths always sum to the allocated size.
//
// # Quick Start
//
//	buf, err := cbuf.New(4096, 1<<20)
//	if err != nil {
//	    return err
//	}
//	defer buf.Close()
//
//	n, dropped, err := buf.Write(chunk)
//
//	line := make([]byte, 512)
//	if n, err := buf.ReadLine(line); n > 0 && err == nil {
//	    // line holds the NUL-terminated line including its newline
//	}
//
//	// Catch a consumer up on what it already consumed:
//	history := make([]byte, 1024)
//	n, err = buf.Replay(history)
//
// # Overwrite Policy
//
// Writes never fail for lack of space. When the free capacity is
// insufficient, the buffer first tries to grow (doubling, capped at the
// maximum size); if that is not enough, it reclaims replay history, and
// finally overwrites the oldest unread bytes. Only unread bytes count into
// the dropped result: replay history is recoverable slack, and Free() never
// subtracts it. A source larger than the maximum capacity keeps only its
// most recent bytes.
//
// Growth allocation failure is never surfaced from a write; the overwrite
// policy simply takes over. Creation-time allocation failure follows the
// configured OOMPolicy (return a classified error, or panic with Abort).
//
// # Sinks and Sources
//
// The *To and ReadFrom operations move bytes between the buffer and an
// external byte channel (io.Writer / io.Reader) without a caller-visible
// staging buffer. Interrupted system calls are retried transparently;
// genuine I/O failures are classified IO errors carrying the count actually
// transferred. ReadFrom reports end of source as a zero count with io.EOF,
// which callers must distinguish from a zero count meaning "nothing
// available right now".
//
// # Thread Safety
//
// Buffers are thread-safe by default: one per-buffer lock serializes every
// operation for its full duration, so each call is atomic with respect to
// other calls on the same buffer. Buffers never block waiting on their own
// state; any blocking comes from the external channel. Callers that confine
// a buffer to one goroutine can opt out with WithoutLocking().
//
// # Observability
//
// Statistics are always collected (atomic counters, available via Stats()).
// Prometheus metrics are optional via WithMetrics():
//
//	buf, err := cbuf.New(4096, 1<<20,
//	    cbuf.WithMetrics(registry, "console_out"),
//	    cbuf.WithDropCallback(func(n int) { slog.Warn("output lost", "bytes", n) }),
//	)
//
// # Configuration
//
// All configuration beyond the size bounds uses functional options:
// WithoutLocking, WithOOMPolicy, WithAllocator, WithLogger, WithMetrics,
// WithDropCallback.
package cbuf
