// Package errors provides structured error handling for Corpus
package errors

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeInternal represents internal system errors
	ErrorTypeInternal ErrorType = "internal"
	// ErrorTypeSchema represents field-set or column-length violations
	ErrorTypeSchema ErrorType = "schema"
	// ErrorTypeNotFound represents missing field names or row indices
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeEmptyDataset represents transform operations on zero-row datasets
	ErrorTypeEmptyDataset ErrorType = "empty_dataset"
	// ErrorTypeFieldMismatch represents multi-field results disagreeing on their field set
	ErrorTypeFieldMismatch ErrorType = "field_mismatch"
	// ErrorTypeUserFunction represents failures raised by caller-supplied transform code
	ErrorTypeUserFunction ErrorType = "user_function"
	// ErrorTypeRange represents out-of-bounds slices, deletions or degenerate splits
	ErrorTypeRange ErrorType = "range"
)

// RowKey is the detail key under which the offending row index is stored
const RowKey = "row"

// Error represents a structured error with context
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
	Stack   []StackFrame
}

// StackFrame represents a single frame in the call stack
type StackFrame struct {
	Function string
	File     string
	Line     int
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail adds a key-value detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithRow records the row index at which the error occurred
func (e *Error) WithRow(index int) *Error {
	return e.WithDetail(RowKey, index)
}

// New creates a new error with the given type and message
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Stack:   captureStack(2),
	}
}

// Newf creates a new error with a formatted message
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(2),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}

	// If already our error type, preserve the stack
	var existingErr *Error
	if errors.As(err, &existingErr) {
		return &Error{
			Type:    errType,
			Message: message,
			Cause:   err,
			Stack:   existingErr.Stack,
		}
	}

	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
		Stack:   captureStack(2),
	}
}

// IsType checks if the error is of the given type
func IsType(err error, errType ErrorType) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Type == errType
}

// RowIndex extracts the offending row index from an error, if one was
// recorded. The index is global (counted from the start of the dataset).
func RowIndex(err error) (int, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return 0, false
	}
	if idx, ok := e.Details[RowKey].(int); ok {
		return idx, true
	}
	if e.Cause != nil {
		return RowIndex(e.Cause)
	}
	return 0, false
}

// captureStack captures the current call stack
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
