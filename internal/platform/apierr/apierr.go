package apierr

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

var ErrInternal = errors.New("internal server error")

// FromError maps err to its HTTP status and wire code. An *Error already in
// the chain wins; aggregate codes come next; anything else is a 500 whose
// message is not exposed.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	if code := domainagg.CodeOf(err); code != "" {
		status := StatusForCode(code)
		if status == http.StatusInternalServerError {
			return New(status, string(domainagg.CodeInternal), ErrInternal)
		}
		return New(status, string(code), messageOf(err))
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return New(http.StatusServiceUnavailable, string(domainagg.CodeRetryable), err)
	}
	return New(http.StatusInternalServerError, string(domainagg.CodeInternal), ErrInternal)
}

func StatusForCode(code domainagg.ErrorCode) int {
	switch code {
	case domainagg.CodeValidation:
		return http.StatusBadRequest
	case domainagg.CodeForbidden, domainagg.CodeNotEnrolled:
		return http.StatusForbidden
	case domainagg.CodeNotFound, domainagg.CodeObjectNotFound:
		return http.StatusNotFound
	case domainagg.CodeConflict, domainagg.CodeNotAvailable:
		return http.StatusConflict
	case domainagg.CodeCrossCourse, domainagg.CodeSizeMismatch:
		return http.StatusUnprocessableEntity
	case domainagg.CodePreconditionFailed:
		return http.StatusPreconditionFailed
	case domainagg.CodeRetryable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// messageOf prefers the aggregate's own message over the full chain text.
func messageOf(err error) error {
	var aggErr *domainagg.Error
	if errors.As(err, &aggErr) && aggErr.Message != "" {
		return errors.New(aggErr.Message)
	}
	return err
}
