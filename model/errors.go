package model

import (
	"errors"
	"fmt"
)

// Kind is a stable, machine-readable error category.
//
// Callers should branch on Kind rather than matching error strings.
type Kind string

const (
	KindMissingRequiredPart        Kind = "MISSING_REQUIRED_PART"
	KindUnsupportedContainerFormat Kind = "UNSUPPORTED_CONTAINER_FORMAT"
	KindMalformedRequest           Kind = "MALFORMED_REQUEST"
	KindMalformedDocument          Kind = "MALFORMED_DOCUMENT"
	KindOutputPersistenceFailure   Kind = "OUTPUT_PERSISTENCE_FAILURE"
	KindLimitExceeded              Kind = "LIMIT_EXCEEDED"
	KindConversionFailure          Kind = "CONVERSION_FAILURE"
	KindInternal                   Kind = "INTERNAL"
)

// Error is the structured error surfaced to callers.
//
// Message is intended for humans; do not match on it. Detected is set for
// KindUnsupportedContainerFormat and names the sniffed extension.
type Error struct {
	Kind     Kind
	Message  string
	Detected string
	Cause    error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewError returns an *Error with no cause.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Errorf formats message and returns an *Error with no cause.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError returns an *Error of the given kind wrapping cause.
func WrapError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// UnsupportedContainer reports a sniffed container that is not the accepted one.
func UnsupportedContainer(detected, accepted string) *Error {
	return &Error{
		Kind:     KindUnsupportedContainerFormat,
		Message:  fmt.Sprintf("container %q is not %q", detected, accepted),
		Detected: detected,
	}
}

// KindOf returns the Kind of err, KindInternal for unstructured errors and ""
// for nil.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if !errors.As(err, &e) {
		return KindInternal
	}
	return e.Kind
}

// IsKind reports whether err is (or wraps) an *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// ParseKind maps a wire string back to a Kind. Unknown values map to KindInternal.
func ParseKind(s string) Kind {
	switch k := Kind(s); k {
	case KindMissingRequiredPart, KindUnsupportedContainerFormat, KindMalformedRequest, KindMalformedDocument,
		KindOutputPersistenceFailure, KindLimitExceeded, KindConversionFailure, KindInternal:
		return k
	default:
		return KindInternal
	}
}
