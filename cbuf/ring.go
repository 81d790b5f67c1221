package cbuf

import "bytes"

// Ring-index helpers. The storage slice is treated as a ring of len(storage)
// bytes; logical runs are addressed by a physical start index plus a length
// and may wrap around the end of the slice at most once.

// wrapIndex normalizes pos into [0, size). pos may be negative by less than
// one full ring.
func wrapIndex(pos, size int) int {
	pos %= size
	if pos < 0 {
		pos += size
	}
	return pos
}

// copyIn copies src into the ring starting at pos. len(src) must not exceed
// the ring size.
func copyIn(storage []byte, pos int, src []byte) {
	first := len(storage) - pos
	if first > len(src) {
		first = len(src)
	}
	copy(storage[pos:], src[:first])
	copy(storage, src[first:])
}

// copyOut copies n ring bytes starting at pos into dst. n must not exceed
// the ring size and dst must hold at least n bytes.
func copyOut(storage []byte, pos, n int, dst []byte) {
	first := len(storage) - pos
	if first > n {
		first = n
	}
	copy(dst, storage[pos:pos+first])
	copy(dst[first:], storage[:n-first])
}

// findByte scans n ring bytes starting at pos for c and returns the logical
// offset of the first occurrence, or -1.
func findByte(storage []byte, pos, n int, c byte) int {
	first := len(storage) - pos
	if first > n {
		first = n
	}
	if i := bytes.IndexByte(storage[pos:pos+first], c); i >= 0 {
		return i
	}
	if rest := n - first; rest > 0 {
		if i := bytes.IndexByte(storage[:rest], c); i >= 0 {
			return first + i
		}
	}
	return -1
}

// ringSegments returns the one or two contiguous slices covering n ring
// bytes starting at pos. The second slice is nil when the run does not wrap.
func ringSegments(storage []byte, pos, n int) ([]byte, []byte) {
	first := len(storage) - pos
	if first >= n {
		return storage[pos : pos+n], nil
	}
	return storage[pos:], storage[:n-first]
}
