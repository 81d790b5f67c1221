// Package errors provides standardized error handling patterns for replaybuf.
// It includes error classification, standard error variables, and helper functions
// for consistent error wrapping and classification across the module.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorClass represents the classification of errors for handling purposes
type ErrorClass int

const (
	// ErrorInvalid represents errors due to invalid arguments or misuse
	ErrorInvalid ErrorClass = iota
	// ErrorOOM represents allocation failures during creation or growth
	ErrorOOM
	// ErrorIO represents failures from an external byte sink or source
	ErrorIO
)

// String returns the string representation of ErrorClass
func (ec ErrorClass) String() string {
	switch ec {
	case ErrorInvalid:
		return "invalid"
	case ErrorOOM:
		return "oom"
	case ErrorIO:
		return "io"
	default:
		return "unknown"
	}
}

// Standard error variables for common conditions
var (
	// Creation and lifecycle errors
	ErrInvalidSize  = errors.New("invalid buffer size bounds")
	ErrBufferClosed = errors.New("buffer closed")
	ErrOutOfMemory  = errors.New("allocation failed")

	// Argument errors
	ErrNegativeCount       = errors.New("negative byte count")
	ErrDestinationTooSmall = errors.New("destination too small")

	// Sink and source errors
	ErrShortWrite = errors.New("sink accepted no data")
)

// ClassifiedError wraps an error with its classification
type ClassifiedError struct {
	Class     ErrorClass
	Err       error
	Message   string
	Component string
	Operation string
}

// Error implements the error interface
func (ce *ClassifiedError) Error() string {
	if ce.Message != "" {
		return ce.Message
	}
	return ce.Err.Error()
}

// Unwrap returns the underlying error
func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// IsInvalid checks if an error is due to invalid arguments or misuse
func IsInvalid(err error) bool {
	if err == nil {
		return false
	}

	// Check for classified error
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorInvalid
	}

	// Check for known invalid errors
	return errors.Is(err, ErrInvalidSize) ||
		errors.Is(err, ErrBufferClosed) ||
		errors.Is(err, ErrNegativeCount) ||
		errors.Is(err, ErrDestinationTooSmall)
}

// IsOOM checks if an error is an allocation failure
func IsOOM(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorOOM
	}

	if errors.Is(err, ErrOutOfMemory) {
		return true
	}

	// Check error message for allocation failure patterns
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "out of memory") ||
		strings.Contains(errStr, "cannot allocate")
}

// IsIO checks if an error came from an external byte sink or source
func IsIO(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorIO
	}

	return errors.Is(err, ErrShortWrite)
}

// Classify returns the error class for an error
func Classify(err error) ErrorClass {
	if IsOOM(err) {
		return ErrorOOM
	}
	if IsIO(err) {
		return ErrorIO
	}

	// Misuse is the default for unclassified errors: everything the buffer
	// itself can fail on is an argument or lifecycle problem.
	return ErrorInvalid
}

// newClassified creates a new classified error
// This is an internal helper - use WrapInvalid(), WrapOOM(), or WrapIO() instead.
func newClassified(class ErrorClass, err error, component, operation, message string) *ClassifiedError {
	return &ClassifiedError{
		Class:     class,
		Err:       err,
		Message:   message,
		Component: component,
		Operation: operation,
	}
}

// Wrap creates a standardized error with context following the pattern:
// "component.method: action failed: %w"
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}

// WrapInvalid wraps an error as an argument/misuse error with context
func WrapInvalid(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorInvalid, wrappedErr, component, method, wrappedErr.Error())
}

// WrapOOM wraps an error as an allocation failure with context
func WrapOOM(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorOOM, wrappedErr, component, method, wrappedErr.Error())
}

// WrapIO wraps an error as a sink/source failure with context
func WrapIO(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorIO, wrappedErr, component, method, wrappedErr.Error())
}
