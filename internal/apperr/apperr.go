// Package apperr defines the error kinds surfaced by the data access layer.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for callers that need to react to it.
type Kind string

const (
	// KindRetrieval means a seed document was unreachable or malformed.
	KindRetrieval Kind = "RetrievalError"
	// KindStore means the persistent store failed to read or write.
	KindStore Kind = "StoreError"
	// KindNotFound means an update or delete target is absent.
	KindNotFound Kind = "NotFound"
	// KindInvalidFormat means an import document is missing mandatory sections.
	KindInvalidFormat Kind = "InvalidFormat"
	// KindValidation means a create or update payload is malformed.
	KindValidation Kind = "ValidationError"
)

// Error carries a Kind together with a human-readable message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports a match when target is an *Error of the same kind,
// so errors.Is(err, apperr.ErrNotFound) works through wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == ""
}

// Sentinels for errors.Is.
var (
	ErrRetrieval     = &Error{Kind: KindRetrieval}
	ErrStore         = &Error{Kind: KindStore}
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrInvalidFormat = &Error{Kind: KindInvalidFormat}
	ErrValidation    = &Error{Kind: KindValidation}
)

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Retrieval(message string, err error) *Error {
	return Wrap(KindRetrieval, message, err)
}

func Store(message string, err error) *Error {
	return Wrap(KindStore, message, err)
}

func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

func InvalidFormat(message string) *Error {
	return New(KindInvalidFormat, message)
}

func Validation(message string) *Error {
	return New(KindValidation, message)
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
