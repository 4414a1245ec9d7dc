package openshift

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies every failure surfaced by a resource operation.
type ErrorKind int

// Error kinds.
const (
	// KindEndpoint is the catch-all for transport failures not covered below.
	KindEndpoint ErrorKind = iota
	// KindInvalidCredentials is reported when the broker answers 401.
	KindInvalidCredentials
	// KindNotFound is reported when the broker answers 404.
	KindNotFound
	// KindTimeout is reported when the transport gives up waiting.
	KindTimeout
	// KindRequestValidation covers failures detected before any request is sent.
	KindRequestValidation
	// KindConflict covers duplicates, detected locally or answered 409 by the broker.
	KindConflict
)

// String returns the name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindInvalidCredentials:
		return "invalid credentials"
	case KindNotFound:
		return "resource not found"
	case KindTimeout:
		return "timeout"
	case KindRequestValidation:
		return "request validation error"
	case KindConflict:
		return "conflict"
	case KindEndpoint:
		return "endpoint error"
	default:
		return fmt.Sprintf("unknown error kind %d", int(k))
	}
}

// Error is the error type returned by every resource operation.
type Error struct {
	Kind     ErrorKind
	Message  string
	Relation Relation
	Href     string
	Cause    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(e.Kind.String())

	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}

	if e.Href != "" {
		fmt.Fprintf(&b, " (%s)", e.Href)
	}

	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}

	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error by kind, so errors.Is(err, ErrNotFound) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.Kind == e.Kind && t.Message == "" && t.Href == "" && t.Cause == nil
}

// Kind sentinels for use with errors.Is.
var (
	ErrEndpoint           = &Error{Kind: KindEndpoint}
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrTimeout            = &Error{Kind: KindTimeout}
	ErrRequestValidation  = &Error{Kind: KindRequestValidation}
	ErrConflict           = &Error{Kind: KindConflict}
)

// Causes attached to request validation errors.
var (
	ErrMissingRequiredParameter = errors.New("missing required parameter")
	ErrEmptyRequiredParameter   = errors.New("required parameter is empty")
	ErrInvalidParameterOption   = errors.New("parameter value is not a valid option")
	ErrLinkNotFound             = errors.New("link not found")
	ErrLinksNotResolved         = errors.New("links are not resolved")
	ErrNameRequired             = errors.New("name is required")
	ErrTypeRequired             = errors.New("type is required")
	ErrServerRequired           = errors.New("server is required")
	ErrConfigRequired           = errors.New("config is required")
	ErrAlreadyExists            = errors.New("already exists")
)

// NewValidationError builds a request validation error.
func NewValidationError(cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: KindRequestValidation, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// NewConflictError builds a conflict error for a locally detected duplicate.
func NewConflictError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...), Cause: ErrAlreadyExists}
}

// KindOf reports the kind of err, or false when err is not an *Error.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}

	return KindEndpoint, false
}

func isKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)

	return ok && k == kind
}

// IsNotFound checks if the error is a resource not found error.
func IsNotFound(err error) bool {
	return isKind(err, KindNotFound)
}

// IsInvalidCredentials checks if the error was caused by rejected credentials.
func IsInvalidCredentials(err error) bool {
	return isKind(err, KindInvalidCredentials)
}

// IsTimeout checks if the error is a transport timeout.
func IsTimeout(err error) bool {
	return isKind(err, KindTimeout)
}

// IsRequestValidation checks if the error was raised before any request was sent.
func IsRequestValidation(err error) bool {
	return isKind(err, KindRequestValidation)
}

// IsConflict checks if the error reports a duplicate resource.
func IsConflict(err error) bool {
	return isKind(err, KindConflict)
}

// IsEndpoint checks if the error is a generic endpoint failure.
func IsEndpoint(err error) bool {
	return isKind(err, KindEndpoint)
}
