package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials is returned for any failed login, whether the account is
	// unknown or the password is wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDuplicateAccount is returned when the username or email is already registered.
	ErrDuplicateAccount = errors.New("account already exists")
	// ErrDuplicateCourse is returned when the course code is already taken.
	ErrDuplicateCourse = errors.New("course already exists")
	// ErrInvalidCourseReference is returned when a course reference resolves to nothing.
	ErrInvalidCourseReference = errors.New("invalid course identifier")
	// ErrTargetNotFound is returned when a vote targets a missing record.
	ErrTargetNotFound = errors.New("vote target not found")
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput wraps request validation failures.
	ErrInvalidInput = errors.New("invalid input")
	// ErrForbidden is returned when the caller does not own the record being changed.
	ErrForbidden = errors.New("forbidden")
	// ErrStorageDisabled is returned by attachment operations when no bucket is configured.
	ErrStorageDisabled = errors.New("attachment storage not configured")
)

// DuplicateAccountError names the field that collided during registration.
type DuplicateAccountError struct {
	Field string
}

func (e DuplicateAccountError) Error() string {
	if e.Field == "" {
		return ErrDuplicateAccount.Error()
	}
	return fmt.Sprintf("%s already exists", e.Field)
}

func (e DuplicateAccountError) Unwrap() error { return ErrDuplicateAccount }

func notFound(resource string) error {
	return fmt.Errorf("%s %w", resource, ErrNotFound)
}
