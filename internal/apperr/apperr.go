/**
 * @description
 * This package defines the error taxonomy shared by every layer of the
 * aggregator. Downstream failures are classified into a small set of kinds,
 * and the API boundary maps each kind to an HTTP status code. Components
 * never map errors to statuses themselves; they only classify.
 *
 * @dependencies
 * - errors, fmt: Standard Go libraries.
 */
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies the classification of an error.
type Kind int

const (
	// KindInternal covers malformed, empty, or absent downstream responses
	// and any other unexpected failure. It is the zero value so an
	// unclassified error defaults to it.
	KindInternal Kind = iota
	// KindBadRequest covers invalid caller input.
	KindBadRequest
	// KindNotFound covers missing records.
	KindNotFound
	// KindUnauthorized covers a downstream rejection of the propagated
	// credential. Never retried.
	KindUnauthorized
	// KindNotUpdated covers a write the downstream acknowledged but did not
	// apply.
	KindNotUpdated
	// KindUpstream covers a structured business error returned by a
	// downstream service.
	KindUpstream
)

// String returns the kind's name for logs.
func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotUpdated:
		return "not_updated"
	case KindUpstream:
		return "upstream"
	default:
		return "internal"
	}
}

// Error is a classified application error. Details carries the secondary
// message from a structured downstream error body, when one was present.
type Error struct {
	Kind    Kind
	Message string
	Details string
	Err     error
}

func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the wrapped cause to errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classified error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// BadRequest creates a KindBadRequest error.
func BadRequest(message string) *Error {
	return &Error{Kind: KindBadRequest, Message: message}
}

// NotFound creates a KindNotFound error.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Unauthorized creates a KindUnauthorized error.
func Unauthorized(message, details string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message, Details: details}
}

// NotUpdated creates a KindNotUpdated error.
func NotUpdated(message string) *Error {
	return &Error{Kind: KindNotUpdated, Message: message}
}

// Upstream creates a KindUpstream error from a structured downstream error
// body.
func Upstream(message, details string) *Error {
	return &Error{Kind: KindUpstream, Message: message, Details: details}
}

// Internal creates a KindInternal error.
func Internal(message string) *Error {
	return &Error{Kind: KindInternal, Message: message}
}

// Internalf creates a KindInternal error with a formatted message.
func Internalf(format string, args ...any) *Error {
	return &Error{Kind: KindInternal, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to an error without changing its classification.
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

// KindOf returns the classification of err. Unclassified errors are
// KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// StatusCode maps an error to the caller-visible HTTP status.
func StatusCode(err error) int {
	switch KindOf(err) {
	case KindBadRequest, KindNotUpdated, KindUpstream:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
