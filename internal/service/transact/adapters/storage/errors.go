// Package storage persists resource wrappers and their version history.
package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrVersionConflict is returned when an upsert carries a stale
	// expected version.
	ErrVersionConflict = errors.New("resource version conflict")

	// ErrConnectionFailed is returned when the database cannot be reached.
	ErrConnectionFailed = errors.New("database connection failed")

	// ErrMigrationFailed is returned when schema migration fails.
	ErrMigrationFailed = errors.New("database migration failed")

	// ErrInvalidData is returned when a payload cannot be serialized or a
	// wrapper is missing its identity.
	ErrInvalidData = errors.New("invalid resource data")
)

// StoreError wraps a sentinel with the operation and resource it failed on.
type StoreError struct {
	Op      string
	Key     string
	Message string
	Err     error
}

func (e *StoreError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Key, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func storeError(op, key, message string, err error) *StoreError {
	return &StoreError{Op: op, Key: key, Message: message, Err: err}
}
