// Package replaybuf provides a self-growing circular byte buffer with a
// bounded replay history, for line-buffered byte-stream producers and
// consumers such as console and terminal multiplexers.
//
// # Architecture
//
// The module is one cohesive engine with its ambient concerns split into
// focused packages:
//
//	┌─────────────────────────────────────┐
//	│              cbuf                   │  Storage & growth, region
//	│  (Write/Read/Peek/Drop/Replay,      │  tracking, overwrite policy,
//	│   line and sink/source adapters)    │  line + descriptor adapters
//	└─────────────────────────────────────┘
//	           ↓ reports through
//	┌──────────────────┐ ┌──────────────────┐
//	│      metric      │ │      errors      │  Prometheus registry + HTTP
//	│                  │ │                  │  exposition; classified errors
//	└──────────────────┘ └──────────────────┘
//
// A buffer tolerates bursty writers without unbounded memory growth (it
// grows up to a fixed maximum, then overwrites oldest-first) while letting
// slow consumers catch up on recently read bytes through the replay region.
//
// Start with the cbuf package:
//
//	buf, err := cbuf.New(4096, 1<<20)
//
// See each package's documentation for details.
package replaybuf
