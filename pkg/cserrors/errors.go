// Package cserrors provides structured error handling for Chainsight with
// typed categories, contextual details, and cause preservation.
//
// # Overview
//
// The cserrors package extends Go's standard error handling with:
//   - Error categorization through ErrorType
//   - Structured context with key-value details
//   - Automatic stack trace capture
//   - Error wrapping with cause preservation
//
// # Error Types
//
// The taxonomy mirrors the failure modes of the ingestion pipeline:
// a source that cannot be reached, a source that can be reached but not
// parsed, and a source that parses but is missing required columns. These
// are the only categories the orchestrator branches on; everything else
// is internal.
//
// # Basic Usage
//
//	if err := fetch(url); err != nil {
//	    return cserrors.Wrap(err, cserrors.ErrorTypeSourceUnavailable, "catalog fetch failed").
//	        WithDetail("url", url)
//	}
package cserrors

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrorType represents the category of error, used by the orchestrator for
// partial-failure handling and by the gateway for response mapping.
type ErrorType string

const (
	// ErrorTypeSourceUnavailable indicates a source could not be reached:
	// a missing file or an unreachable / non-2xx network endpoint.
	ErrorTypeSourceUnavailable ErrorType = "source_unavailable"
	// ErrorTypeSourceFormat indicates a source was reached but its payload
	// could not be parsed (corrupt file, malformed JSON).
	ErrorTypeSourceFormat ErrorType = "source_format"
	// ErrorTypeSchemaMismatch indicates a source parsed cleanly but lacks
	// a column required by every downstream KPI.
	ErrorTypeSchemaMismatch ErrorType = "schema_mismatch"
	// ErrorTypeConfig represents configuration errors.
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeValidation represents request validation errors (gateway).
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeData represents data processing errors.
	ErrorTypeData ErrorType = "data"
	// ErrorTypeInternal represents internal system errors.
	ErrorTypeInternal ErrorType = "internal"
)

// Error represents a structured error with context.
//
// Fields:
//   - Type: categorizes the error for handling strategies
//   - Message: human-readable error description
//   - Cause: the underlying error that caused this error
//   - Details: key-value pairs providing additional context
//   - Stack: call stack at the point of error creation
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
	Stack   []StackFrame
}

// StackFrame represents a single frame in the call stack.
type StackFrame struct {
	Function string
	File     string
	Line     int
}

// Error implements the error interface, returning a formatted message that
// includes the error type, message, and cause (if present).
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error, enabling compatibility with errors.Is
// and errors.As for error chain inspection.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail adds a key-value detail to the error. This method can be
// chained for adding multiple details.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new error with the given type and message, capturing the
// call stack at the point of creation.
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Stack:   captureStack(2),
	}
}

// Newf creates a new error with a formatted message.
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(2),
	}
}

// Wrap wraps an existing error with additional context, preserving the
// original error as the cause. If the error is already a structured Error,
// its stack trace is preserved. Returns nil if the input error is nil.
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}

	var existing *Error
	if errors.As(err, &existing) {
		return &Error{
			Type:    errType,
			Message: message,
			Cause:   err,
			Stack:   existing.Stack,
		}
	}

	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
		Stack:   captureStack(2),
	}
}

// IsType checks if the error is of the given type.
func IsType(err error, errType ErrorType) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Type == errType
}

// GetType returns the error's type, or ErrorTypeInternal for errors that
// did not originate from this package.
func GetType(err error) ErrorType {
	var e *Error
	if !errors.As(err, &e) {
		return ErrorTypeInternal
	}
	return e.Type
}

// IsSourceFailure reports whether the error is one of the per-source
// failure categories that the orchestrator tolerates: the failing source's
// contribution is dropped and ingestion of the remaining sources continues.
func IsSourceFailure(err error) bool {
	switch GetType(err) {
	case ErrorTypeSourceUnavailable, ErrorTypeSourceFormat, ErrorTypeSchemaMismatch:
		return true
	default:
		return false
	}
}

// captureStack captures the current call stack up to maxFrames deep,
// skipping the specified number of frames from the top.
func captureStack(skip int) []StackFrame {
	const maxFrames = 32
	frames := make([]StackFrame, 0, maxFrames)

	for i := skip; i < maxFrames+skip; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}

		frames = append(frames, StackFrame{
			Function: fn.Name(),
			File:     file,
			Line:     line,
		})
	}

	return frames
}
