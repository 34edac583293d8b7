package model

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation indicates rejected user input (empty name, empty text,
	// out-of-range date).
	ErrValidation = errors.New("model: validation failed")
	// ErrNotFound indicates a referenced habit, date or journal entry is absent.
	ErrNotFound = errors.New("model: not found")
	// ErrDuplicateName indicates a habit name collision or a reserved name.
	ErrDuplicateName = errors.New("model: duplicate habit name")
	// ErrMalformedDocument indicates a persisted document that cannot be decoded.
	ErrMalformedDocument = errors.New("model: malformed document")
)

// ValidationError describes which input was rejected and why.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NotFoundError names the missing habit, and the missing date when the
// habit exists but has no entry on that day.
type NotFoundError struct {
	Kind string // "habit", "occurrence" or "journal entry"
	Name string
	Date Date
}

func (e *NotFoundError) Error() string {
	switch e.Kind {
	case "occurrence":
		return fmt.Sprintf("no activity for %q on %s", e.Name, e.Date)
	case "":
		return fmt.Sprintf("%q not found", e.Name)
	default:
		return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
	}
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// DuplicateNameError reports the habit name that could not be created.
type DuplicateNameError struct {
	Name     string
	Reserved bool
}

func (e *DuplicateNameError) Error() string {
	if e.Reserved {
		return fmt.Sprintf("habit name %q is reserved", e.Name)
	}
	return fmt.Sprintf("habit %q already exists", e.Name)
}

func (e *DuplicateNameError) Unwrap() error { return ErrDuplicateName }

// DocumentError wraps a decode failure with the location that caused it.
type DocumentError struct {
	Path string
	Err  error
}

func (e *DocumentError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("malformed document: %v", e.Err)
	}
	return fmt.Sprintf("malformed document at %s: %v", e.Path, e.Err)
}

func (e *DocumentError) Unwrap() []error { return []error{ErrMalformedDocument, e.Err} }

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsNotFound reports whether err refers to a missing habit, date or entry.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsDuplicate reports whether err is a habit name collision.
func IsDuplicate(err error) bool { return errors.Is(err, ErrDuplicateName) }

// IsUserError reports whether err was caused by the caller's input rather
// than by storage or transport.
func IsUserError(err error) bool {
	return IsValidation(err) || IsNotFound(err) || IsDuplicate(err)
}
