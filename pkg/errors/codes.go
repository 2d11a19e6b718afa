package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a unique identifier for specific error conditions in the MCG tooling.
type ErrorCode int

const (
	ErrCodeUnknown       ErrorCode = 1000
	ErrCodeConfigInvalid ErrorCode = 1001

	// Mode graph
	ErrCodeInvalidMode  ErrorCode = 2001
	ErrCodeTableInvalid ErrorCode = 2002

	// Transition engine
	ErrCodeUnreachable ErrorCode = 3001
	ErrCodeHookFailed  ErrorCode = 3002
)

var codeNames = map[ErrorCode]string{
	ErrCodeUnknown:       "Unknown",
	ErrCodeConfigInvalid: "ConfigInvalid",
	ErrCodeInvalidMode:   "InvalidMode",
	ErrCodeTableInvalid:  "TableInvalid",
	ErrCodeUnreachable:   "UnreachableOrDivergent",
	ErrCodeHookFailed:    "HookFailed",
}

func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ErrorCode(%d)", int(c))
}

// Sentinels for errors.Is comparisons. Matching is by code only.
var (
	ErrInvalidMode  = &ClockError{Code: ErrCodeInvalidMode}
	ErrUnreachable  = &ClockError{Code: ErrCodeUnreachable}
	ErrTableInvalid = &ClockError{Code: ErrCodeTableInvalid}
	ErrConfig       = &ClockError{Code: ErrCodeConfigInvalid}
	ErrHookFailed   = &ClockError{Code: ErrCodeHookFailed}
)

// ClockError is a structured error carrying an error code, the operation being
// performed, and the underlying cause.
type ClockError struct {
	// Code is the specific error code.
	Code ErrorCode
	// Msg is a human-readable description of the error.
	Msg string
	// Operation describes the action being performed when the error occurred.
	Operation string
	// Err is the underlying error that caused this error, if any.
	Err error
}

// Error returns a formatted string representation of the error.
func (e *ClockError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %s (cause: %v)", e.Code, e.Operation, e.Msg, e.Err)
	}
	return fmt.Sprintf("[%d] %s: %s", e.Code, e.Operation, e.Msg)
}

// Unwrap returns the underlying error.
func (e *ClockError) Unwrap() error {
	return e.Err
}

// Is matches any ClockError with the same code.
func (e *ClockError) Is(target error) bool {
	t, ok := target.(*ClockError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// New creates a new ClockError with the specified code, operation, message, and underlying error.
func New(code ErrorCode, op, msg string, err error) error {
	return &ClockError{
		Code:      code,
		Msg:       msg,
		Operation: op,
		Err:       err,
	}
}

// Newf is New with a formatted message and no cause.
func Newf(code ErrorCode, op, format string, args ...any) error {
	return New(code, op, fmt.Sprintf(format, args...), nil)
}

// CodeOf returns the code of the first ClockError in err's chain, or ErrCodeUnknown.
func CodeOf(err error) ErrorCode {
	var ce *ClockError
	if stderrors.As(err, &ce) {
		return ce.Code
	}
	return ErrCodeUnknown
}

// Personal.AI order the ending
