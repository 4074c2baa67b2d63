package api

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a remote failure. Callers branch on the kind instead of
// matching message text.
type ErrorKind string

const (
	// KindUnauthorized covers authorization rejections, including anonymous
	// callers hitting caller-scoped operations. Bindings treat these as soft
	// failures and substitute an empty default.
	KindUnauthorized ErrorKind = "unauthorized"
	// KindNotFound marks a missing entity reported as an error by the backend.
	// Most "not found" conditions arrive as a null result instead.
	KindNotFound ErrorKind = "not_found"
	// KindUnavailable covers transport failures and backend overload.
	KindUnavailable ErrorKind = "unavailable"
	// KindInternal is any other remote failure.
	KindInternal ErrorKind = "internal"
)

// Error is a classified remote failure returned by the facade.
type Error struct {
	Kind      ErrorKind
	Message   string
	RequestID string
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend %s: %s", e.Kind, e.Message)
}

// IsUnauthorized reports whether err is a remote authorization rejection.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindUnauthorized
}

// IsNotFound reports whether err is a remote not-found error.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindNotFound
}

// IsUnavailable reports whether err is a transport or availability failure.
func IsUnavailable(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindUnavailable
}
