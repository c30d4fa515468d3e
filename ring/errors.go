package ring

import "fmt"

// ErrorCode categorizes the ways a ring buffer operation can fail.
type ErrorCode string

const (
	ErrCodeInvalidArgument   ErrorCode = "invalid argument"
	ErrCodeInvalidType       ErrorCode = "invalid type"
	ErrCodeCapacityExhausted ErrorCode = "capacity exhausted"
)

// Error is a structured ring buffer error, mirroring the Op/Code/Msg/Inner
// shape used throughout this module's sibling packages.
type Error struct {
	Op    string
	Code  ErrorCode
	Msg   string
	Inner error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("ring: %s: %s", e.Op, e.Msg)
	}
	return fmt.Sprintf("ring: %s: %s", e.Op, e.Code)
}

// Unwrap supports errors.Is/errors.As against a wrapped cause.
func (e *Error) Unwrap() error {
	return e.Inner
}

// Is matches any *Error sharing the same Code, the same convention used by
// the scheduler's error type.
func (e *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == te.Code
}

func newError(op string, code ErrorCode, msg string) *Error {
	return &Error{Op: op, Code: code, Msg: msg}
}
