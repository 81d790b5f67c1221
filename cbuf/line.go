package cbuf

import (
	"github.com/c360/replaybuf/errors"
)

// Line-oriented operations. Lines are newline-delimited; destinations follow
// the C string convention of the original console-multiplexing callers: at
// most len(dst)-1 data bytes plus a terminating NUL.

// ReadLine copies the next line into dst and consumes it from the buffer.
// See Buffer.ReadLine for the full contract.
func (b *replayBuffer) ReadLine(dst []byte) (int, error) {
	return b.line(dst, true, "ReadLine")
}

// PeekLine copies the next line into dst without consuming any data.
func (b *replayBuffer) PeekLine(dst []byte) (int, error) {
	return b.line(dst, false, "PeekLine")
}

func (b *replayBuffer) line(dst []byte, consume bool, op string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, b.closedErr(op)
	}
	if len(dst) == 0 {
		return 0, errors.WrapInvalid(errors.ErrDestinationTooSmall, "Buffer", op,
			"destination must hold the terminator")
	}

	k := findByte(b.storage, b.readPos, b.used, '\n')
	if k < 0 {
		// No complete line buffered. Terminate dst so a consumed empty line
		// (dst[0] == '\n') stays distinguishable from this case.
		dst[0] = 0
		return 0, nil
	}

	total := k + 1 // line bytes through the newline
	c := total
	if c > len(dst)-1 {
		c = len(dst) - 1
	}
	copyOut(b.storage, b.readPos, c, dst)
	dst[c] = 0

	if consume {
		// The whole line leaves the unread region even when dst truncated it.
		b.consume(total)
		b.stats.RecordRead(int64(total))
		if b.metrics != nil {
			b.metrics.recordRead(total)
		}
		b.updateUsage()
	} else {
		b.stats.RecordPeek(int64(c))
		if b.metrics != nil {
			b.metrics.recordPeek(c)
		}
	}

	// Line length excluding the newline; >= len(dst) means truncation.
	return k, nil
}

// WriteString writes the bytes of s through Write, applying the same growth
// and overwrite policy.
func (b *replayBuffer) WriteString(s string) (int, int, error) {
	return b.Write([]byte(s))
}
