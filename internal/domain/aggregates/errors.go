package aggregates

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode is the wire-stable failure class shared by aggregates, services
// and the HTTP mapping in platform/apierr.
type ErrorCode string

const (
	CodeValidation         ErrorCode = "validation"
	CodeNotFound           ErrorCode = "not_found"
	CodeForbidden          ErrorCode = "forbidden"
	CodeNotAvailable       ErrorCode = "not_available"
	CodeCrossCourse        ErrorCode = "cross_course_reference"
	CodeObjectNotFound     ErrorCode = "object_not_found"
	CodeSizeMismatch       ErrorCode = "size_mismatch"
	CodeNotEnrolled        ErrorCode = "not_enrolled"
	CodeConflict           ErrorCode = "conflict"
	CodeInvariantViolation ErrorCode = "invariant_violation"
	CodePreconditionFailed ErrorCode = "precondition_failed"
	CodeRetryable          ErrorCode = "retryable"
	CodeInternal           ErrorCode = "internal"
)

// Error carries the failing operation (e.g. "Enrollment.Enroll"), a message
// safe to show to API clients, and the underlying cause.
type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
	}
	if e.Message != "" {
		if b.Len() > 0 {
			b.WriteString(": ")
		}
		b.WriteString(e.Message)
	}
	if b.Len() == 0 {
		return string(e.Code)
	}
	fmt.Fprintf(&b, " (%s)", e.Code)
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches another *Error by code alone, so errors.Is(err, ErrConflict)
// holds for any conflict.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return t.Op == "" && t.Message == "" && t.Code == e.Code
}

// Code-only sentinels for errors.Is.
var (
	ErrConflict  = &Error{Code: CodeConflict}
	ErrRetryable = &Error{Code: CodeRetryable}
)

func NewError(code ErrorCode, op, message string, cause error) error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

// Wrap keeps err's own message and attaches code and op.
func Wrap(code ErrorCode, op string, err error) error {
	if err == nil {
		return nil
	}
	return NewError(code, op, err.Error(), err)
}

func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code && code != ""
}

// CodeOf returns the code of the outermost *Error in err's chain.
func CodeOf(err error) ErrorCode {
	var aggErr *Error
	if !errors.As(err, &aggErr) {
		return ""
	}
	return aggErr.Code
}

func NotFound(op, message string) error     { return NewError(CodeNotFound, op, message, nil) }
func Forbidden(op, message string) error    { return NewError(CodeForbidden, op, message, nil) }
func Invalid(op, message string) error      { return NewError(CodeValidation, op, message, nil) }
func NotAvailable(op, message string) error { return NewError(CodeNotAvailable, op, message, nil) }
func NotEnrolled(op, message string) error  { return NewError(CodeNotEnrolled, op, message, nil) }
func CrossCourse(op, message string) error  { return NewError(CodeCrossCourse, op, message, nil) }

// SizeMismatch reports an upload whose stored size disagrees with the
// size the client declared.
func SizeMismatch(op string, declared, verified int64) error {
	return NewError(CodeSizeMismatch, op, fmt.Sprintf("declared %d bytes but storage holds %d", declared, verified), nil)
}
