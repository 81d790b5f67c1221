package cbuf

import (
	"fmt"
	"io"
	"math/rand"
	"testing"
)

// BenchmarkWrite benchmarks Write across chunk sizes on a fixed-size buffer.
func BenchmarkWrite(b *testing.B) {
	chunkSizes := []int{16, 256, 4096}

	for _, chunkSize := range chunkSizes {
		b.Run(fmt.Sprintf("Chunk_%d", chunkSize), func(b *testing.B) {
			buf, err := New(64*1024, 64*1024)
			if err != nil {
				b.Fatal(err)
			}
			defer buf.Close()

			chunk := make([]byte, chunkSize)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _, _ = buf.Write(chunk)
			}
		})
	}
}

// BenchmarkWriteWithGrowth benchmarks writes that trigger storage growth.
func BenchmarkWriteWithGrowth(b *testing.B) {
	chunk := make([]byte, 1024)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf, err := New(256, 1024*1024)
		if err != nil {
			b.Fatal(err)
		}
		for j := 0; j < 64; j++ {
			_, _, _ = buf.Write(chunk)
		}
		buf.Close()
	}
}

// BenchmarkRead benchmarks Read operations.
func BenchmarkRead(b *testing.B) {
	buf, err := New(64*1024, 64*1024)
	if err != nil {
		b.Fatal(err)
	}
	defer buf.Close()

	chunk := make([]byte, 4096)
	out := make([]byte, 256)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if buf.IsEmpty() {
			b.StopTimer()
			_, _, _ = buf.Write(chunk)
			b.StartTimer()
		}
		_, _ = buf.Read(out)
	}
}

// BenchmarkReadLine benchmarks line extraction, including the newline scan.
func BenchmarkReadLine(b *testing.B) {
	lineLengths := []int{16, 128, 1024}

	for _, lineLen := range lineLengths {
		b.Run(fmt.Sprintf("Line_%d", lineLen), func(b *testing.B) {
			buf, err := New(64*1024, 64*1024)
			if err != nil {
				b.Fatal(err)
			}
			defer buf.Close()

			line := make([]byte, lineLen)
			line[lineLen-1] = '\n'
			dst := make([]byte, lineLen+1)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if buf.Used() < lineLen {
					b.StopTimer()
					for buf.Free() > lineLen {
						_, _, _ = buf.Write(line)
					}
					b.StartTimer()
				}
				_, _ = buf.ReadLine(dst)
			}
		})
	}
}

// BenchmarkReplay benchmarks replay window copies.
func BenchmarkReplay(b *testing.B) {
	buf, err := New(64*1024, 64*1024)
	if err != nil {
		b.Fatal(err)
	}
	defer buf.Close()

	chunk := make([]byte, 32*1024)
	_, _, _ = buf.Write(chunk)
	_, _ = buf.Read(chunk)

	out := make([]byte, 4096)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = buf.Replay(out)
	}
}

// BenchmarkReadTo benchmarks moving bytes to a sink without a staging copy.
func BenchmarkReadTo(b *testing.B) {
	buf, err := New(64*1024, 64*1024)
	if err != nil {
		b.Fatal(err)
	}
	defer buf.Close()

	chunk := make([]byte, 4096)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if buf.IsEmpty() {
			b.StopTimer()
			_, _, _ = buf.Write(chunk)
			b.StartTimer()
		}
		_, _ = buf.ReadTo(io.Discard, 256)
	}
}

// BenchmarkOverwrite benchmarks writes sustained past capacity, where every
// write evicts old data.
func BenchmarkOverwrite(b *testing.B) {
	buf, err := New(4096, 4096)
	if err != nil {
		b.Fatal(err)
	}
	defer buf.Close()

	chunk := make([]byte, 512)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = buf.Write(chunk)
	}
}

// BenchmarkLocking compares the default lock against WithoutLocking.
func BenchmarkLocking(b *testing.B) {
	configs := []struct {
		name    string
		options []Option
	}{
		{"Locked", nil},
		{"Unlocked", []Option{WithoutLocking()}},
	}

	for _, config := range configs {
		b.Run(config.name, func(b *testing.B) {
			buf, err := New(64*1024, 64*1024, config.options...)
			if err != nil {
				b.Fatal(err)
			}
			defer buf.Close()

			chunk := make([]byte, 256)
			out := make([]byte, 256)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if i%2 == 0 {
					_, _, _ = buf.Write(chunk)
				} else {
					_, _ = buf.Read(out)
				}
			}
		})
	}
}

// BenchmarkDropCallback benchmarks the overwrite path with a callback wired.
func BenchmarkDropCallback(b *testing.B) {
	configs := []struct {
		name         string
		withCallback bool
	}{
		{"WithoutCallback", false},
		{"WithCallback", true},
	}

	for _, config := range configs {
		b.Run(config.name, func(b *testing.B) {
			var options []Option
			if config.withCallback {
				options = append(options, WithDropCallback(func(dropped int) {
					_ = dropped
				}))
			}

			buf, err := New(1024, 1024, options...)
			if err != nil {
				b.Fatal(err)
			}
			defer buf.Close()

			chunk := make([]byte, 256)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _, _ = buf.Write(chunk)
			}
		})
	}
}

// BenchmarkConcurrentAccess benchmarks contended mixed operations.
func BenchmarkConcurrentAccess(b *testing.B) {
	buf, err := New(64*1024, 64*1024)
	if err != nil {
		b.Fatal(err)
	}
	defer buf.Close()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		chunk := make([]byte, 128)
		out := make([]byte, 128)
		for pb.Next() {
			switch rand.Intn(5) {
			case 0, 1: // 40% writes
				_, _, _ = buf.Write(chunk)
			case 2, 3: // 40% reads
				_, _ = buf.Read(out)
			case 4: // 20% replays
				_, _ = buf.Replay(out)
			}
		}
	})
}
