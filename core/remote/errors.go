package remote

import (
	"errors"
	"fmt"
)

// Kind classifies a remote failure.
type Kind string

const (
	// KindTransport means the provider could not be reached.
	KindTransport Kind = "transport"
	// KindNotFound means the entity does not exist (or was deleted).
	KindNotFound Kind = "not_found"
	// KindInvalid means the provider rejected the request as malformed.
	KindInvalid Kind = "invalid"
	// KindAuth means the credentials were rejected.
	KindAuth Kind = "auth"
	// KindRateLimited means the provider asked us to slow down.
	KindRateLimited Kind = "rate_limited"
	// KindProvider means the provider failed on its side (5xx).
	KindProvider Kind = "provider"
	// KindCanceled means the caller's context ended.
	KindCanceled Kind = "canceled"
	// KindUnknown covers anything else.
	KindUnknown Kind = "unknown"
)

// Error is the only error type returned by Client implementations.
type Error struct {
	// Op is the client operation, e.g. "create_price".
	Op string
	// Kind classifies the failure.
	Kind Kind
	// StatusCode is the HTTP status returned by the provider, if any.
	StatusCode int
	// Code is the provider's error code, if any.
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (status %d): %s", e.Op, e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Transient reports whether retrying the same request may succeed.
func (e *Error) Transient() bool {
	switch e.Kind {
	case KindTransport, KindRateLimited, KindProvider:
		return true
	default:
		return false
	}
}

// NewError builds an *Error without an underlying cause.
func NewError(op string, kind Kind, message string) *Error {
	return &Error{Op: op, Kind: kind, Message: message}
}

// KindOf returns the Kind of err, or KindUnknown if err is not a *Error.
func KindOf(err error) Kind {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindUnknown
}

// IsNotFound reports whether err means the remote entity does not exist.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Transient()
	}
	return false
}

// IsFatal reports whether err means the provider is unusable for the whole run.
func IsFatal(err error) bool {
	switch KindOf(err) {
	case KindTransport, KindAuth, KindCanceled:
		return true
	default:
		return false
	}
}
