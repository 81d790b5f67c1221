package cbuf

import (
	stderrors "errors"
	"io"
	"syscall"

	"github.com/c360/replaybuf/errors"
)

// Sink/source operations. The external byte channel is an io.Writer or
// io.Reader; its blocking behavior is the channel's contract, not the
// buffer's. Interrupted calls (EINTR) are retried transparently; genuine
// I/O failures are propagated as classified IO errors together with the
// count actually transferred.

// ReadTo moves up to n unread bytes to the sink, consuming what the sink
// accepted. n == All substitutes Used().
func (b *replayBuffer) ReadTo(w io.Writer, n int) (int, error) {
	return b.sendUnread(w, n, true, "ReadTo")
}

// PeekTo is ReadTo without consuming any data.
func (b *replayBuffer) PeekTo(w io.Writer, n int) (int, error) {
	return b.sendUnread(w, n, false, "PeekTo")
}

func (b *replayBuffer) sendUnread(w io.Writer, n int, consume bool, op string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, b.closedErr(op)
	}
	if n == All {
		n = b.used
	} else if n < 0 {
		return 0, errors.WrapInvalid(errors.ErrNegativeCount, "Buffer", op, "length validation")
	}
	if n > b.used {
		n = b.used
	}
	if n == 0 {
		return 0, nil
	}

	// Storage is handed to the sink directly: at most two contiguous chunks,
	// no staging copy.
	s1, s2 := ringSegments(b.storage, b.readPos, n)
	sent, err := writeFull(w, s1)
	if err == nil && len(s2) > 0 {
		var m int
		m, err = writeFull(w, s2)
		sent += m
	}

	if consume && sent > 0 {
		b.consume(sent)
		b.stats.RecordRead(int64(sent))
		if b.metrics != nil {
			b.metrics.recordRead(sent)
		}
		b.updateUsage()
	} else if !consume {
		b.stats.RecordPeek(int64(sent))
		if b.metrics != nil {
			b.metrics.recordPeek(sent)
		}
	}

	if err != nil {
		return sent, errors.WrapIO(err, "Buffer", op, "sink write")
	}
	return sent, nil
}

// ReplayTo moves up to n of the most recently consumed bytes to the sink
// without removing them from the replay region. n == All substitutes
// Replayable().
func (b *replayBuffer) ReplayTo(w io.Writer, n int) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, b.closedErr("ReplayTo")
	}
	if n == All {
		n = b.replayLen
	} else if n < 0 {
		return 0, errors.WrapInvalid(errors.ErrNegativeCount, "Buffer", "ReplayTo", "length validation")
	}
	if n > b.replayLen {
		n = b.replayLen
	}
	if n == 0 {
		return 0, nil
	}

	start := b.wrap(b.readPos - n + b.size())
	s1, s2 := ringSegments(b.storage, start, n)
	sent, err := writeFull(w, s1)
	if err == nil && len(s2) > 0 {
		var m int
		m, err = writeFull(w, s2)
		sent += m
	}

	b.stats.RecordReplay(int64(sent))
	if b.metrics != nil {
		b.metrics.recordReplay(sent)
	}

	if err != nil {
		return sent, errors.WrapIO(err, "Buffer", "ReplayTo", "sink write")
	}
	return sent, nil
}

// ReadFrom pulls up to n bytes from the source in a single read and writes
// them with Write semantics. n == All substitutes Free(). A zero count with
// io.EOF signals end of source; when data arrives together with EOF, the
// data is written and EOF is left for the next call.
func (b *replayBuffer) ReadFrom(r io.Reader, n int) (int, int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, 0, b.closedErr("ReadFrom")
	}
	if n == All {
		n = b.free()
	} else if n < 0 {
		return 0, 0, errors.WrapInvalid(errors.ErrNegativeCount, "Buffer", "ReadFrom", "length validation")
	}
	if n == 0 {
		return 0, 0, nil
	}

	staging := make([]byte, n)
	m, err := readOnce(r, staging)
	if m == 0 {
		if err == io.EOF {
			return 0, 0, io.EOF
		}
		if err != nil {
			return 0, 0, errors.WrapIO(err, "Buffer", "ReadFrom", "source read")
		}
		return 0, 0, nil
	}

	written, dropped := b.write(staging[:m])

	if err != nil && err != io.EOF {
		return written, dropped, errors.WrapIO(err, "Buffer", "ReadFrom", "source read")
	}
	return written, dropped, nil
}

// writeFull writes all of p to w, retrying on EINTR and continuing after
// partial writes. Returns the bytes accepted by the sink.
func writeFull(w io.Writer, p []byte) (int, error) {
	total := 0
	for len(p) > 0 {
		n, err := w.Write(p)
		total += n
		p = p[n:]
		if err != nil {
			if stderrors.Is(err, syscall.EINTR) {
				continue
			}
			return total, err
		}
		if n == 0 {
			// A sink that accepts nothing without erroring would loop forever.
			return total, errors.ErrShortWrite
		}
	}
	return total, nil
}

// readOnce performs a single read from r, retrying only on EINTR.
func readOnce(r io.Reader, p []byte) (int, error) {
	for {
		n, err := r.Read(p)
		if n == 0 && err != nil && stderrors.Is(err, syscall.EINTR) {
			continue
		}
		return n, err
	}
}
