package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreUnavailable means the backing medium could not be read or written.
	// Backends return it wrapped in a *StoreError.
	ErrStoreUnavailable = errors.New("lead store unavailable")

	// ErrNotFound means no record has the requested id.
	ErrNotFound = errors.New("lead not found")

	// ErrInvalidStatus means a status outside the enumeration was supplied.
	ErrInvalidStatus = errors.New("invalid lead status")

	// ErrInvalidFilterArgs means pagination parameters were rejected.
	ErrInvalidFilterArgs = errors.New("invalid filter arguments")
)

// StoreError wraps a backend failure. errors.Is(err, ErrStoreUnavailable) holds for it.
type StoreError struct {
	Op  string
	Err error
}

// NewStoreError returns a *StoreError for op, or nil when err is nil.
func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStoreUnavailable, e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool {
	return target == ErrStoreUnavailable
}
