// Copyright: This file is part of pedigree, released under https://github.com/pedigree/pedigree/blob/main/LICENSE

package pedigree

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by a [Source] when a requested id does not exist.
var ErrNotFound = errors.New("not found")

// NotFoundError records which id was not found, it matches [ErrNotFound] with [errors.Is].
type NotFoundError struct {
	Kind string // "family" or "person"
	ID   string
}

func (e *NotFoundError) Error() string        { return fmt.Sprintf("%v not found: %q", e.Kind, e.ID) }
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// FamilyNotFound returns a [NotFoundError] for a family.
func FamilyNotFound(id FamilyID) error { return &NotFoundError{Kind: "family", ID: string(id)} }

// PersonNotFound returns a [NotFoundError] for a person.
func PersonNotFound(id PersonID) error { return &NotFoundError{Kind: "person", ID: string(id)} }

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// TransportError is a failure to communicate with a [Source], distinct from not found.
type TransportError struct {
	// URL or other description of the request that failed.
	Request string
	// Retryable is true if repeating the request might succeed.
	Retryable bool
	Err       error
}

func (e *TransportError) Error() string { return fmt.Sprintf("%v: %v", e.Request, e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

func IsTransportError(err error) bool { return IsErrorType[*TransportError](err) }

// IsRetryable is true if err is a retryable [TransportError].
func IsRetryable(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Retryable
}

// InvariantError indicates a programming defect, it is raised with panic, never returned.
type InvariantError struct{ Msg string }

func (e *InvariantError) Error() string { return "invariant violated: " + e.Msg }

// Invariant panics with an [InvariantError].
func Invariant(format string, args ...any) {
	panic(&InvariantError{Msg: fmt.Sprintf(format, args...)})
}

func IsErrorType[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}
