package parser

import "fmt"

// Code is a machine-readable reason why a log was rejected.
type Code string

const (
	CodeInputEmpty        Code = "INPUT_EMPTY"
	CodeTableCountInvalid Code = "TABLE_COUNT_INVALID"
	CodeScheduleInvalid   Code = "SCHEDULE_INVALID"
	CodeRateInvalid       Code = "RATE_INVALID"
	CodeEventInvalid      Code = "EVENT_INVALID"
	CodeEventOutOfOrder   Code = "EVENT_OUT_OF_ORDER"
)

// Error describes a malformed line. Any Error aborts the whole run.
type Error struct {
	Code  Code   // Machine-readable error code
	Line  int    // 1-based line number
	Text  string // Raw line as read
	Cause error  // Wrapped underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("line %d: %s: %v", e.Line, e.Code, e.Cause)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Code)
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

func newError(code Code, line int, text string, cause error) *Error {
	return &Error{Code: code, Line: line, Text: text, Cause: cause}
}
