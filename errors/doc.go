// Package errors provides standardized error handling patterns for replaybuf.
//
// # Overview
//
// The errors package implements a three-class error classification system for
// the buffer engine: Invalid (bad arguments or misuse), OOM (allocation
// failure during creation or growth), and IO (failure from an external byte
// sink or source during descriptor-adapter operations).
//
// Classification lets callers react to failures without error string
// matching: argument errors indicate a caller bug, allocation errors
// indicate resource pressure, and IO errors belong to the external channel,
// not the buffer. End of source is deliberately not an error class; it is
// signaled by a zero count with io.EOF from ReadFrom.
//
// The classification system integrates with Go's standard error handling,
// supporting errors.Is(), errors.As(), and error wrapping chains.
//
// # Quick Start
//
// Use standard error variables for known conditions:
//
//	if n < 0 {
//	    return errors.ErrNegativeCount
//	}
//
// Wrap errors with context:
//
//	if err := sink.Write(chunk); err != nil {
//	    return errors.WrapIO(err, "Buffer", "ReadTo", "sink write")
//	}
//
// Check classification:
//
//	if _, err := buf.Drop(n); errors.IsInvalid(err) {
//	    // caller bug: fix the arguments, do not retry
//	}
//
// # Error Wrapping Pattern
//
// All error wrapping follows the standardized format:
//
//	"component.method: action failed: %w"
//
// The Wrap family of functions applies this pattern while preserving error
// classification through the chain.
package errors
