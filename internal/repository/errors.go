package repository

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no row matches the lookup.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a write violates a uniqueness constraint.
	ErrConflict = errors.New("record conflicts with an existing one")
	// ErrOutOfRange is returned when an increment would overflow a 64-bit counter.
	ErrOutOfRange = errors.New("counter out of range")
)

// ConflictError names the logical field whose unique index rejected a write.
type ConflictError struct {
	Entity string
	Field  string
}

func (e ConflictError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %v", e.Entity, ErrConflict)
	}
	return fmt.Sprintf("%s: %v: %s", e.Entity, ErrConflict, e.Field)
}

func (e ConflictError) Unwrap() error { return ErrConflict }
