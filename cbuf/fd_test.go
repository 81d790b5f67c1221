package cbuf

import (
	"bytes"
	stderrors "errors"
	"io"
	"strings"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/replaybuf/errors"
)

// interruptedWriter fails the first few writes with EINTR, then delegates.
type interruptedWriter struct {
	failures int
	sink     bytes.Buffer
}

func (w *interruptedWriter) Write(p []byte) (int, error) {
	if w.failures > 0 {
		w.failures--
		return 0, syscall.EINTR
	}
	return w.sink.Write(p)
}

// chokedWriter accepts at most limit bytes per call, then fails.
type chokedWriter struct {
	limit int
	sink  bytes.Buffer
	fail  error
}

func (w *chokedWriter) Write(p []byte) (int, error) {
	if w.sink.Len() >= w.limit {
		return 0, w.fail
	}
	room := w.limit - w.sink.Len()
	if len(p) > room {
		p = p[:room]
	}
	return w.sink.Write(p)
}

// interruptedReader fails the first few reads with EINTR, then delegates.
type interruptedReader struct {
	failures int
	src      io.Reader
}

func (r *interruptedReader) Read(p []byte) (int, error) {
	if r.failures > 0 {
		r.failures--
		return 0, syscall.EINTR
	}
	return r.src.Read(p)
}

// dataWithEOFReader returns its payload and io.EOF in one call.
type dataWithEOFReader struct {
	payload []byte
	done    bool
}

func (r *dataWithEOFReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, io.EOF
	}
	r.done = true
	n := copy(p, r.payload)
	return n, io.EOF
}

func TestReadTo(t *testing.T) {
	buf, err := New(16, 16)
	require.NoError(t, err)
	defer buf.Close()

	_, _, err = buf.Write([]byte("hello"))
	require.NoError(t, err)

	var sink bytes.Buffer
	n, err := buf.ReadTo(&sink, All)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", sink.String())
	assert.True(t, buf.IsEmpty())
	assert.Equal(t, 5, buf.Replayable(), "sent bytes remain replayable")
}

func TestReadToLimited(t *testing.T) {
	buf, err := New(16, 16)
	require.NoError(t, err)
	defer buf.Close()

	_, _, err = buf.Write([]byte("hello"))
	require.NoError(t, err)

	var sink bytes.Buffer
	n, err := buf.ReadTo(&sink, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "hel", sink.String())
	assert.Equal(t, 2, buf.Used())

	// A limit beyond the unread count is clamped.
	n, err = buf.ReadTo(&sink, 100)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "hello", sink.String())
}

func TestReadToWrapped(t *testing.T) {
	buf, err := New(8, 8)
	require.NoError(t, err)
	defer buf.Close()

	_, _, err = buf.Write([]byte("abcdefg"))
	require.NoError(t, err)
	_, err = buf.Read(make([]byte, 6))
	require.NoError(t, err)
	_, _, err = buf.Write([]byte("hijkl"))
	require.NoError(t, err)

	// The unread region straddles the physical end of storage; the sink
	// still sees the bytes in logical order.
	var sink bytes.Buffer
	n, err := buf.ReadTo(&sink, All)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Equal(t, "ghijkl", sink.String())
}

func TestReadToNegativeCount(t *testing.T) {
	buf, err := New(8, 8)
	require.NoError(t, err)
	defer buf.Close()

	var sink bytes.Buffer
	_, err = buf.ReadTo(&sink, -2)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err), "only All is a valid negative length")
}

func TestReadToEmpty(t *testing.T) {
	buf, err := New(8, 8)
	require.NoError(t, err)
	defer buf.Close()

	var sink bytes.Buffer
	n, err := buf.ReadTo(&sink, All)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestReadToRetriesInterrupts(t *testing.T) {
	buf, err := New(16, 16)
	require.NoError(t, err)
	defer buf.Close()

	_, _, err = buf.Write([]byte("hello"))
	require.NoError(t, err)

	w := &interruptedWriter{failures: 2}
	n, err := buf.ReadTo(w, All)
	require.NoError(t, err, "interrupted writes are retried, not surfaced")
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", w.sink.String())
}

func TestReadToSinkFailure(t *testing.T) {
	buf, err := New(16, 16)
	require.NoError(t, err)
	defer buf.Close()

	_, _, err = buf.Write([]byte("hello"))
	require.NoError(t, err)

	w := &chokedWriter{limit: 3, fail: stderrors.New("broken pipe")}
	n, err := buf.ReadTo(w, All)
	require.Error(t, err)
	assert.True(t, errors.IsIO(err), "sink failures are classified IO")
	assert.Equal(t, 3, n, "the count actually transferred is reported")
	assert.Equal(t, 2, buf.Used(), "only the transferred bytes are consumed")
	assert.Equal(t, "hel", w.sink.String())
}

func TestReadToShortWriteSink(t *testing.T) {
	buf, err := New(16, 16)
	require.NoError(t, err)
	defer buf.Close()

	_, _, err = buf.Write([]byte("abc"))
	require.NoError(t, err)

	// A sink that accepts nothing without erroring must not loop forever.
	w := &chokedWriter{limit: 0, fail: nil}
	n, err := buf.ReadTo(w, All)
	require.Error(t, err)
	assert.True(t, errors.IsIO(err))
	require.ErrorIs(t, err, errors.ErrShortWrite)
	assert.Equal(t, 0, n)
	assert.Equal(t, 3, buf.Used())
}

func TestPeekTo(t *testing.T) {
	buf, err := New(16, 16)
	require.NoError(t, err)
	defer buf.Close()

	_, _, err = buf.Write([]byte("hello"))
	require.NoError(t, err)

	var sink bytes.Buffer
	n, err := buf.PeekTo(&sink, All)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", sink.String())
	assert.Equal(t, 5, buf.Used(), "peeking consumes nothing")
}

func TestReplayTo(t *testing.T) {
	buf, err := New(16, 16)
	require.NoError(t, err)
	defer buf.Close()

	_, _, err = buf.Write([]byte("abcdef"))
	require.NoError(t, err)
	_, err = buf.Read(make([]byte, 4))
	require.NoError(t, err)

	var sink bytes.Buffer
	n, err := buf.ReplayTo(&sink, All)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "abcd", sink.String())
	assert.Equal(t, 4, buf.Replayable(), "replay is not consumed by sending")

	// A shorter window sends the most recently consumed end.
	sink.Reset()
	n, err = buf.ReplayTo(&sink, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "cd", sink.String())
}

func TestReadFrom(t *testing.T) {
	buf, err := New(16, 16)
	require.NoError(t, err)
	defer buf.Close()

	written, dropped, err := buf.ReadFrom(strings.NewReader("hello"), All)
	require.NoError(t, err)
	assert.Equal(t, 5, written)
	assert.Equal(t, 0, dropped)
	assert.Equal(t, 5, buf.Used())

	out := make([]byte, 5)
	_, err = buf.Read(out)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(out))
}

func TestReadFromEOF(t *testing.T) {
	buf, err := New(16, 16)
	require.NoError(t, err)
	defer buf.Close()

	src := strings.NewReader("hi")
	written, _, err := buf.ReadFrom(src, All)
	require.NoError(t, err)
	require.Equal(t, 2, written)

	// End of source is a zero count with io.EOF, distinct from "nothing
	// available right now".
	written, dropped, err := buf.ReadFrom(src, All)
	require.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 0, written)
	assert.Equal(t, 0, dropped)
}

func TestReadFromDataWithEOF(t *testing.T) {
	buf, err := New(16, 16)
	require.NoError(t, err)
	defer buf.Close()

	src := &dataWithEOFReader{payload: []byte("abc")}
	written, _, err := buf.ReadFrom(src, All)
	require.NoError(t, err, "EOF arriving with data is deferred to the next call")
	assert.Equal(t, 3, written)

	_, _, err = buf.ReadFrom(src, All)
	require.ErrorIs(t, err, io.EOF)
}

func TestReadFromOverwrites(t *testing.T) {
	buf, err := New(4, 4)
	require.NoError(t, err)
	defer buf.Close()

	_, _, err = buf.Write([]byte("abcd"))
	require.NoError(t, err)

	// An explicit length pulls even into a full buffer; the overwrite
	// policy makes room.
	written, dropped, err := buf.ReadFrom(strings.NewReader("xy"), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, written)
	assert.Equal(t, 2, dropped)

	out := make([]byte, 4)
	_, err = buf.Read(out)
	require.NoError(t, err)
	assert.Equal(t, "cdxy", string(out))
}

func TestReadFromFullWithAll(t *testing.T) {
	buf, err := New(4, 4)
	require.NoError(t, err)
	defer buf.Close()

	_, _, err = buf.Write([]byte("abcd"))
	require.NoError(t, err)

	// All means Free(), which is zero here: nothing is pulled.
	written, dropped, err := buf.ReadFrom(strings.NewReader("xy"), All)
	require.NoError(t, err)
	assert.Equal(t, 0, written)
	assert.Equal(t, 0, dropped)
	assert.Equal(t, 4, buf.Used())
}

func TestReadFromZeroLength(t *testing.T) {
	buf, err := New(8, 8)
	require.NoError(t, err)
	defer buf.Close()

	written, dropped, err := buf.ReadFrom(strings.NewReader("xy"), 0)
	require.NoError(t, err)
	assert.Equal(t, 0, written)
	assert.Equal(t, 0, dropped)
}

func TestReadFromNegativeCount(t *testing.T) {
	buf, err := New(8, 8)
	require.NoError(t, err)
	defer buf.Close()

	_, _, err = buf.ReadFrom(strings.NewReader("xy"), -2)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestReadFromRetriesInterrupts(t *testing.T) {
	buf, err := New(16, 16)
	require.NoError(t, err)
	defer buf.Close()

	src := &interruptedReader{failures: 2, src: strings.NewReader("hello")}
	written, _, err := buf.ReadFrom(src, All)
	require.NoError(t, err)
	assert.Equal(t, 5, written)
}

func TestReadFromSourceFailure(t *testing.T) {
	buf, err := New(16, 16)
	require.NoError(t, err)
	defer buf.Close()

	src := &interruptedReader{failures: 0, src: &failingReader{}}
	written, _, err := buf.ReadFrom(src, All)
	require.Error(t, err)
	assert.True(t, errors.IsIO(err), "source failures are classified IO")
	assert.Equal(t, 0, written)
}

type failingReader struct{}

func (failingReader) Read(p []byte) (int, error) {
	return 0, stderrors.New("connection reset")
}

func TestFdClosed(t *testing.T) {
	buf, err := New(8, 8)
	require.NoError(t, err)
	require.NoError(t, buf.Close())

	var sink bytes.Buffer
	_, err = buf.ReadTo(&sink, All)
	assert.True(t, errors.IsInvalid(err))
	_, err = buf.PeekTo(&sink, All)
	assert.True(t, errors.IsInvalid(err))
	_, err = buf.ReplayTo(&sink, All)
	assert.True(t, errors.IsInvalid(err))
	_, _, err = buf.ReadFrom(strings.NewReader("x"), All)
	assert.True(t, errors.IsInvalid(err))
}
