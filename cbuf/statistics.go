package cbuf

import (
	"sync"
	"sync/atomic"
	"time"
)

// Statistics tracks buffer performance metrics.
type Statistics struct {
	// Atomic counters for thread-safe updates
	writes         int64
	reads          int64
	grows          int64
	flushes        int64
	overflows      int64
	bytesWritten   int64
	bytesRead      int64
	bytesPeeked    int64
	bytesReplayed  int64
	bytesDropped   int64 // unread bytes lost to the overwrite policy
	bytesSkipped   int64 // unread bytes discarded via Drop

	// Protected by mutex
	mu              sync.RWMutex
	startTime       time.Time
	usedBytes       int64
	replayableBytes int64
	sizeBytes       int64
	maxUsed         int64
}

// NewStatistics creates a new statistics tracker.
func NewStatistics() *Statistics {
	return &Statistics{
		startTime: time.Now(),
	}
}

// RecordWrite records a write of n bytes.
func (s *Statistics) RecordWrite(n int64) {
	atomic.AddInt64(&s.writes, 1)
	atomic.AddInt64(&s.bytesWritten, n)
}

// RecordRead records a read of n bytes.
func (s *Statistics) RecordRead(n int64) {
	atomic.AddInt64(&s.reads, 1)
	atomic.AddInt64(&s.bytesRead, n)
}

// RecordPeek records a peek of n bytes.
func (s *Statistics) RecordPeek(n int64) {
	atomic.AddInt64(&s.bytesPeeked, n)
}

// RecordReplay records a replay of n bytes.
func (s *Statistics) RecordReplay(n int64) {
	atomic.AddInt64(&s.bytesReplayed, n)
}

// RecordDrop records n unread bytes lost to the overwrite policy.
func (s *Statistics) RecordDrop(n int64) {
	atomic.AddInt64(&s.bytesDropped, n)
}

// RecordSkip records n unread bytes discarded via Drop.
func (s *Statistics) RecordSkip(n int64) {
	atomic.AddInt64(&s.bytesSkipped, n)
}

// RecordGrow records a storage growth event.
func (s *Statistics) RecordGrow() {
	atomic.AddInt64(&s.grows, 1)
}

// RecordFlush records a flush.
func (s *Statistics) RecordFlush() {
	atomic.AddInt64(&s.flushes, 1)
}

// RecordOverflow records a write that had to overwrite unread data.
func (s *Statistics) RecordOverflow() {
	atomic.AddInt64(&s.overflows, 1)
}

// UpdateUsage updates the region gauges.
func (s *Statistics) UpdateUsage(used, replayable, size int64) {
	s.mu.Lock()
	s.usedBytes = used
	s.replayableBytes = replayable
	s.sizeBytes = size
	if used > s.maxUsed {
		s.maxUsed = used
	}
	s.mu.Unlock()
}

// Writes returns the total number of write operations.
func (s *Statistics) Writes() int64 {
	return atomic.LoadInt64(&s.writes)
}

// Reads returns the total number of read operations.
func (s *Statistics) Reads() int64 {
	return atomic.LoadInt64(&s.reads)
}

// Grows returns the total number of growth events.
func (s *Statistics) Grows() int64 {
	return atomic.LoadInt64(&s.grows)
}

// Flushes returns the total number of flushes.
func (s *Statistics) Flushes() int64 {
	return atomic.LoadInt64(&s.flushes)
}

// Overflows returns the total number of overwriting writes.
func (s *Statistics) Overflows() int64 {
	return atomic.LoadInt64(&s.overflows)
}

// BytesWritten returns the total bytes written.
func (s *Statistics) BytesWritten() int64 {
	return atomic.LoadInt64(&s.bytesWritten)
}

// BytesRead returns the total bytes read.
func (s *Statistics) BytesRead() int64 {
	return atomic.LoadInt64(&s.bytesRead)
}

// BytesPeeked returns the total bytes peeked.
func (s *Statistics) BytesPeeked() int64 {
	return atomic.LoadInt64(&s.bytesPeeked)
}

// BytesReplayed returns the total bytes replayed.
func (s *Statistics) BytesReplayed() int64 {
	return atomic.LoadInt64(&s.bytesReplayed)
}

// BytesDropped returns the unread bytes lost to the overwrite policy.
func (s *Statistics) BytesDropped() int64 {
	return atomic.LoadInt64(&s.bytesDropped)
}

// BytesSkipped returns the unread bytes discarded via Drop.
func (s *Statistics) BytesSkipped() int64 {
	return atomic.LoadInt64(&s.bytesSkipped)
}

// UsedBytes returns the current unread byte count.
func (s *Statistics) UsedBytes() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.usedBytes
}

// ReplayableBytes returns the current replayable byte count.
func (s *Statistics) ReplayableBytes() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.replayableBytes
}

// SizeBytes returns the current allocated capacity.
func (s *Statistics) SizeBytes() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sizeBytes
}

// MaxUsed returns the highest unread byte count observed.
func (s *Statistics) MaxUsed() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxUsed
}

// WriteThroughput returns the average bytes written per second.
func (s *Statistics) WriteThroughput() float64 {
	s.mu.RLock()
	elapsed := time.Since(s.startTime)
	s.mu.RUnlock()

	if elapsed == 0 {
		return 0.0
	}

	return float64(s.BytesWritten()) / elapsed.Seconds()
}

// ReadThroughput returns the average bytes read per second.
func (s *Statistics) ReadThroughput() float64 {
	s.mu.RLock()
	elapsed := time.Since(s.startTime)
	s.mu.RUnlock()

	if elapsed == 0 {
		return 0.0
	}

	return float64(s.BytesRead()) / elapsed.Seconds()
}

// DropRate returns the fraction of written bytes later lost to the
// overwrite policy (0.0 to 1.0).
func (s *Statistics) DropRate() float64 {
	written := s.BytesWritten()
	if written == 0 {
		return 0.0
	}

	return float64(s.BytesDropped()) / float64(written)
}

// Utilization returns the unread fraction of the current capacity
// (0.0 to 1.0).
func (s *Statistics) Utilization() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.sizeBytes == 0 {
		return 0.0
	}
	return float64(s.usedBytes) / float64(s.sizeBytes)
}

// Uptime returns how long the buffer has been running.
func (s *Statistics) Uptime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Since(s.startTime)
}

// Reset resets all statistics to zero.
func (s *Statistics) Reset() {
	atomic.StoreInt64(&s.writes, 0)
	atomic.StoreInt64(&s.reads, 0)
	atomic.StoreInt64(&s.grows, 0)
	atomic.StoreInt64(&s.flushes, 0)
	atomic.StoreInt64(&s.overflows, 0)
	atomic.StoreInt64(&s.bytesWritten, 0)
	atomic.StoreInt64(&s.bytesRead, 0)
	atomic.StoreInt64(&s.bytesPeeked, 0)
	atomic.StoreInt64(&s.bytesReplayed, 0)
	atomic.StoreInt64(&s.bytesDropped, 0)
	atomic.StoreInt64(&s.bytesSkipped, 0)

	s.mu.Lock()
	s.startTime = time.Now()
	s.maxUsed = 0
	s.mu.Unlock()
}

// StatsSummary is a snapshot of all statistics.
type StatsSummary struct {
	Writes          int64         `json:"writes"`
	Reads           int64         `json:"reads"`
	Grows           int64         `json:"grows"`
	Flushes         int64         `json:"flushes"`
	Overflows       int64         `json:"overflows"`
	BytesWritten    int64         `json:"bytes_written"`
	BytesRead       int64         `json:"bytes_read"`
	BytesPeeked     int64         `json:"bytes_peeked"`
	BytesReplayed   int64         `json:"bytes_replayed"`
	BytesDropped    int64         `json:"bytes_dropped"`
	BytesSkipped    int64         `json:"bytes_skipped"`
	UsedBytes       int64         `json:"used_bytes"`
	ReplayableBytes int64         `json:"replayable_bytes"`
	SizeBytes       int64         `json:"size_bytes"`
	MaxUsed         int64         `json:"max_used"`
	WriteThroughput float64       `json:"write_throughput"`
	ReadThroughput  float64       `json:"read_throughput"`
	DropRate        float64       `json:"drop_rate"`
	Uptime          time.Duration `json:"uptime"`
}

// Summary returns a snapshot of all statistics.
func (s *Statistics) Summary() StatsSummary {
	return StatsSummary{
		Writes:          s.Writes(),
		Reads:           s.Reads(),
		Grows:           s.Grows(),
		Flushes:         s.Flushes(),
		Overflows:       s.Overflows(),
		BytesWritten:    s.BytesWritten(),
		BytesRead:       s.BytesRead(),
		BytesPeeked:     s.BytesPeeked(),
		BytesReplayed:   s.BytesReplayed(),
		BytesDropped:    s.BytesDropped(),
		BytesSkipped:    s.BytesSkipped(),
		UsedBytes:       s.UsedBytes(),
		ReplayableBytes: s.ReplayableBytes(),
		SizeBytes:       s.SizeBytes(),
		MaxUsed:         s.MaxUsed(),
		WriteThroughput: s.WriteThroughput(),
		ReadThroughput:  s.ReadThroughput(),
		DropRate:        s.DropRate(),
		Uptime:          s.Uptime(),
	}
}
