// Package apperr defines the application error taxonomy shared by
// repositories, domain services, and HTTP handlers. Every error that
// crosses a package boundary carries a Kind so handlers can map it to a
// response without string matching.
package apperr

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Kind classifies an application error.
type Kind int

const (
	// KindInternal is an opaque store/infrastructure failure. Detail is
	// logged server-side and withheld from clients.
	KindInternal Kind = iota
	// KindUnauthorized is an authorization denial. All denials look the
	// same to the caller, including "resource does not exist".
	KindUnauthorized
	// KindValidation is a user-correctable input error (400).
	KindValidation
	// KindConflict is a state conflict, e.g. insufficient inventory (409).
	KindConflict
	// KindNotFound is a missing resource on a non-gated read (404).
	KindNotFound
	// KindIntegrity is an invariant violation in stored data. Surfaced as
	// an internal error but logged loudly; it should never happen.
	KindIntegrity
)

// Error is a tagged application error. Field and ConflictIDs are set for
// validation errors that reference a request field and the stored rows it
// conflicts with.
type Error struct {
	Kind        Kind
	Message     string
	Field       string
	ConflictIDs []uuid.UUID
	Err         error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Unauthorized returns the uniform authorization denial.
func Unauthorized() *Error {
	return &Error{Kind: KindUnauthorized, Message: "Unauthorized"}
}

// Validation returns a field-level validation error.
func Validation(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

// Overlap returns a validation error naming the conflicting row ids.
func Overlap(field, message string, ids []uuid.UUID) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message, ConflictIDs: ids}
}

// Conflict returns a state-conflict error.
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// NotFound returns a missing-resource error.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Internal wraps a store or infrastructure failure.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// Integrity wraps a stored-data invariant violation.
func Integrity(message string) *Error {
	return &Error{Kind: KindIntegrity, Message: message}
}

// KindOf extracts the Kind from err, defaulting to KindInternal for
// anything that is not an *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// As returns err as an *Error when possible.
func As(err error) (*Error, bool) {
	var appErr *Error
	ok := errors.As(err, &appErr)
	return appErr, ok
}
