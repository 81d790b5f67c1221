package cbuf

import (
	"log/slog"

	"github.com/c360/replaybuf/errors"
)

// replayBuffer is the circular buffer engine. Storage partitions, in logical
// order and with wraparound, into [replay][unread][free]: replayLen consumed
// bytes immediately before readPos, used unread bytes from readPos, and the
// remainder writable. replayLen + used never exceeds len(storage).
type replayBuffer struct {
	mu rwLocker

	storage []byte
	minsize int
	maxsize int

	readPos   int // physical index of the first unread byte
	used      int // unread bytes
	replayLen int // consumed bytes retained before readPos

	closed bool

	stats   *Statistics    // ALWAYS initialized for observability
	metrics *bufferMetrics // Optional Prometheus metrics
	opts    *bufferOptions
	logger  *slog.Logger
}

func (b *replayBuffer) size() int { return len(b.storage) }

// free is the write capacity before unread data is overwritten. Replay
// bytes do not count against it.
func (b *replayBuffer) free() int { return len(b.storage) - b.used }

// physFree is the length of the free region proper: storage not holding
// unread or replay bytes.
func (b *replayBuffer) physFree() int { return len(b.storage) - b.used - b.replayLen }

func (b *replayBuffer) wrap(pos int) int { return wrapIndex(pos, len(b.storage)) }

func (b *replayBuffer) writePos() int { return b.wrap(b.readPos + b.used) }

// consume moves n bytes from the front of the unread region into the replay
// region. The replay + unread total is unchanged, so the region invariant
// is preserved.
func (b *replayBuffer) consume(n int) {
	b.readPos = b.wrap(b.readPos + n)
	b.used -= n
	b.replayLen += n
}

func (b *replayBuffer) updateUsage() {
	b.stats.UpdateUsage(int64(b.used), int64(b.replayLen), int64(len(b.storage)))
	if b.metrics != nil {
		b.metrics.updateUsage(b.used, b.replayLen, len(b.storage))
	}
}

func (b *replayBuffer) closedErr(op string) error {
	return errors.WrapInvalid(errors.ErrBufferClosed, "Buffer", op, "operation on closed buffer")
}

// Write appends p to the buffer according to the growth and overwrite policy.
func (b *replayBuffer) Write(p []byte) (int, int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, 0, b.closedErr("Write")
	}

	n, dropped := b.write(p)
	return n, dropped, nil
}

// write is the unlocked core shared by Write and ReadFrom.
func (b *replayBuffer) write(p []byte) (int, int) {
	src := p
	dropped := 0

	// Growth happens before the overwrite policy is consulted.
	if len(src) > b.free() && b.size() < b.maxsize {
		b.grow(len(src))
	}

	if len(src) > b.size() {
		// Only the most recent size bytes of the source can be retained.
		dropped = len(src) - b.size()
		src = src[dropped:]
	}

	n := len(src)
	if n == 0 {
		b.stats.RecordWrite(0)
		return 0, dropped
	}

	pos := b.writePos()

	// Make room: reclaim replay history first, then overwrite the oldest
	// unread bytes. Only unread bytes count as dropped.
	if overflow := n - b.physFree(); overflow > 0 {
		reclaim := overflow
		if reclaim > b.replayLen {
			reclaim = b.replayLen
		}
		b.replayLen -= reclaim
		overflow -= reclaim

		if overflow > 0 {
			b.readPos = b.wrap(b.readPos + overflow)
			b.used -= overflow
			dropped += overflow
		}
	}

	copyIn(b.storage, pos, src)
	b.used += n

	b.stats.RecordWrite(int64(n))
	if b.metrics != nil {
		b.metrics.recordWrite(n)
	}
	if dropped > 0 {
		b.stats.RecordOverflow()
		b.stats.RecordDrop(int64(dropped))
		if b.metrics != nil {
			b.metrics.recordOverflow()
			b.metrics.recordDrop(dropped)
		}
		if b.logger != nil {
			b.logger.Debug("unread data overwritten", "dropped", dropped, "size", b.size())
		}
		if b.opts.dropCallback != nil {
			b.opts.dropCallback(dropped)
		}
	}
	b.updateUsage()

	return n, dropped
}

// grow enlarges storage to the smallest doubling of the current size, capped
// at maxsize, that accommodates the replay and unread regions plus pending
// bytes. Allocation failure is silent: the write falls back to overwriting.
func (b *replayBuffer) grow(pending int) {
	need := b.replayLen + b.used + pending
	size := b.size()

	newSize := size
	for newSize < need {
		newSize *= 2
	}
	if newSize > b.maxsize {
		newSize = b.maxsize
	}
	if newSize <= size {
		return
	}

	ns := b.opts.alloc(newSize)
	if ns == nil {
		if b.logger != nil {
			b.logger.Debug("growth allocation failed", "want", newSize, "size", size)
		}
		return
	}

	// Linearize: replay and unread are adjacent modulo size, so one wrapped
	// copy lays them out from the start of the new storage.
	start := b.wrap(b.readPos - b.replayLen + size)
	copyOut(b.storage, start, b.replayLen+b.used, ns)

	b.storage = ns
	b.readPos = b.replayLen

	b.stats.RecordGrow()
	if b.metrics != nil {
		b.metrics.recordGrow()
	}
	if b.logger != nil {
		b.logger.Debug("buffer grown", "from", size, "to", newSize)
	}
}

// Read copies up to len(p) unread bytes into p and moves them into the
// replay region.
func (b *replayBuffer) Read(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, b.closedErr("Read")
	}

	n := len(p)
	if n > b.used {
		n = b.used
	}
	if n > 0 {
		copyOut(b.storage, b.readPos, n, p)
		b.consume(n)
	}

	b.stats.RecordRead(int64(n))
	if b.metrics != nil {
		b.metrics.recordRead(n)
	}
	b.updateUsage()

	return n, nil
}

// Peek copies up to len(p) unread bytes into p without consuming them.
func (b *replayBuffer) Peek(p []byte) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return 0, b.closedErr("Peek")
	}

	n := len(p)
	if n > b.used {
		n = b.used
	}
	if n > 0 {
		copyOut(b.storage, b.readPos, n, p)
	}

	b.stats.RecordPeek(int64(n))
	if b.metrics != nil {
		b.metrics.recordPeek(n)
	}

	return n, nil
}

// Drop discards up to n unread bytes; they remain available via Replay.
func (b *replayBuffer) Drop(n int) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, b.closedErr("Drop")
	}
	if n < 0 {
		return 0, errors.WrapInvalid(errors.ErrNegativeCount, "Buffer", "Drop", "length validation")
	}

	if n > b.used {
		n = b.used
	}
	if n > 0 {
		b.consume(n)
	}

	b.stats.RecordSkip(int64(n))
	b.updateUsage()

	return n, nil
}

// Replay copies up to len(p) of the most recently consumed bytes into p,
// oldest first within that window, without removing them.
func (b *replayBuffer) Replay(p []byte) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return 0, b.closedErr("Replay")
	}

	n := len(p)
	if n > b.replayLen {
		n = b.replayLen
	}
	if n > 0 {
		start := b.wrap(b.readPos - n + b.size())
		copyOut(b.storage, start, n, p)
	}

	b.stats.RecordReplay(int64(n))
	if b.metrics != nil {
		b.metrics.recordReplay(n)
	}

	return n, nil
}

// Flush discards all unread and replay data in place. Storage is retained.
func (b *replayBuffer) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.readPos = 0
	b.used = 0
	b.replayLen = 0

	b.stats.RecordFlush()
	b.updateUsage()
}

// Size returns the current allocated capacity.
func (b *replayBuffer) Size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.storage)
}

// Used returns the number of unread bytes.
func (b *replayBuffer) Used() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.used
}

// Free returns the bytes writable before unread data is overwritten.
func (b *replayBuffer) Free() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.storage) - b.used
}

// Replayable returns the number of consumed bytes retained for Replay.
func (b *replayBuffer) Replayable() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.replayLen
}

// IsEmpty reports whether there are no unread bytes.
func (b *replayBuffer) IsEmpty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.used == 0
}

// Stats returns buffer statistics (always available for observability).
func (b *replayBuffer) Stats() *Statistics {
	return b.stats
}

// Close releases the storage. Idempotent; all other operations fail after
// Close.
func (b *replayBuffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}

	b.closed = true
	b.storage = nil
	b.readPos = 0
	b.used = 0
	b.replayLen = 0

	return nil
}
