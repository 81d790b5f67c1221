package cbuf

import (
	"fmt"
	"io"
	"sync"

	"github.com/c360/replaybuf/errors"
)

// All is the length sentinel accepted by the sink/source operations
// (PeekTo, ReadTo, ReplayTo, ReadFrom) meaning "everything available".
const All = -1

// Buffer is a self-growing circular byte buffer that retains a bounded
// history of already-consumed bytes so consumers can replay recently read
// data. Writes never fail for lack of space: the buffer grows up to its
// maximum size and then overwrites the oldest data, reporting the loss.
type Buffer interface {
	// Write appends p to the buffer, growing or overwriting as needed.
	// It returns the bytes written (all of p, unless p exceeds the buffer's
	// maximum size, in which case only the most recent bytes are kept) and
	// the bytes of unread data lost to make room.
	Write(p []byte) (n, dropped int, err error)

	// Read copies up to len(p) unread bytes into p and moves them into the
	// replay region. A zero count means the buffer was empty.
	Read(p []byte) (int, error)

	// Peek copies up to len(p) unread bytes into p without consuming them.
	Peek(p []byte) (int, error)

	// Drop discards up to n unread bytes without copying them; the bytes
	// remain available through Replay. Returns the count actually dropped.
	Drop(n int) (int, error)

	// Replay copies up to len(p) of the most recently consumed bytes into p,
	// oldest first, without removing them from the replay region.
	Replay(p []byte) (int, error)

	// ReadLine copies the next newline-terminated line into dst, including
	// the newline, NUL-terminated, truncated to len(dst)-1 bytes. The whole
	// line is consumed even when truncated. Returns the line length
	// excluding the newline; truncation occurred if the result >= len(dst).
	// Returns 0 and consumes nothing when no newline is buffered.
	ReadLine(dst []byte) (int, error)

	// PeekLine is ReadLine without consuming any data.
	PeekLine(dst []byte) (int, error)

	// WriteString writes the bytes of s through Write.
	WriteString(s string) (n, dropped int, err error)

	// ReadTo moves up to n unread bytes (All for everything buffered) to the
	// sink, consuming what the sink accepted. Storage is handed to the sink
	// in at most two contiguous chunks; interrupted writes are retried.
	ReadTo(w io.Writer, n int) (int, error)

	// PeekTo is ReadTo without consuming any data.
	PeekTo(w io.Writer, n int) (int, error)

	// ReplayTo moves up to n of the most recently consumed bytes (All for
	// the whole replay region) to the sink without removing them.
	ReplayTo(w io.Writer, n int) (int, error)

	// ReadFrom pulls up to n bytes (All for Free()) from the source in a
	// single read and writes them with Write semantics. A zero count with
	// io.EOF signals end of source, distinct from "nothing available".
	ReadFrom(r io.Reader, n int) (written, dropped int, err error)

	// Size returns the currently allocated capacity in bytes.
	Size() int

	// Used returns the number of unread bytes.
	Used() int

	// Free returns Size() - Used(): the bytes writable before unread data
	// is overwritten. Replay bytes are recoverable slack, not a writable
	// reservation, so they do not reduce Free.
	Free() int

	// Replayable returns the number of consumed bytes retained for Replay.
	Replayable() int

	// IsEmpty reports whether there are no unread bytes.
	IsEmpty() bool

	// Flush discards all unread and replay data. Capacity is retained.
	Flush()

	// Stats returns buffer statistics (always available for observability).
	Stats() *Statistics

	// Close releases the storage. Further operations fail with a classified
	// invalid error. Close is idempotent.
	Close() error
}

// OOMPolicy selects how New reacts when the allocator fails.
// Growth failures are never surfaced regardless of policy: the write falls
// back to overwriting old data.
type OOMPolicy int

const (
	// ReturnError reports allocation failure to the caller.
	ReturnError OOMPolicy = iota

	// Abort panics on allocation failure.
	Abort
)

// String returns a human-readable representation of the policy.
func (p OOMPolicy) String() string {
	switch p {
	case ReturnError:
		return "ReturnError"
	case Abort:
		return "Abort"
	default:
		return "Unknown"
	}
}

// rwLocker is the per-buffer lock. Buffers are thread-safe by default;
// WithoutLocking substitutes the no-op implementation.
type rwLocker interface {
	Lock()
	Unlock()
	RLock()
	RUnlock()
}

type nopLocker struct{}

func (nopLocker) Lock()    {}
func (nopLocker) Unlock()  {}
func (nopLocker) RLock()   {}
func (nopLocker) RUnlock() {}

// New creates a buffer with an initial capacity of minsize bytes that can
// grow up to maxsize bytes before overwriting data. Set minsize == maxsize
// to disable growth. Requires 0 < minsize <= maxsize.
func New(minsize, maxsize int, options ...Option) (Buffer, error) {
	opts := applyOptions(options...)

	if minsize <= 0 || maxsize < minsize {
		return nil, errors.WrapInvalid(errors.ErrInvalidSize, "Buffer", "New",
			fmt.Sprintf("minsize=%d maxsize=%d validation", minsize, maxsize))
	}

	storage := opts.alloc(minsize)
	if storage == nil {
		if opts.oomPolicy == Abort {
			panic(fmt.Sprintf("cbuf: cannot allocate %d bytes", minsize))
		}
		return nil, errors.WrapOOM(errors.ErrOutOfMemory, "Buffer", "New",
			fmt.Sprintf("allocate %d bytes", minsize))
	}

	// Stats are ALWAYS initialized - observability is not optional
	stats := NewStatistics()

	var metrics *bufferMetrics
	// Optionally expose stats as Prometheus metrics
	if opts.metricsReg != nil && opts.metricsPrefix != "" {
		var err error
		metrics, err = newBufferMetrics(opts.metricsReg, opts.metricsPrefix)
		if err != nil {
			return nil, errors.WrapInvalid(err, "Buffer", "New", "metrics registration")
		}
	}

	var mu rwLocker = &sync.RWMutex{}
	if !opts.locking {
		mu = nopLocker{}
	}

	b := &replayBuffer{
		mu:      mu,
		storage: storage,
		minsize: minsize,
		maxsize: maxsize,
		stats:   stats,   // ALWAYS present
		metrics: metrics, // Optional
		opts:    opts,
		logger:  opts.logger,
	}
	b.updateUsage()

	return b, nil
}
