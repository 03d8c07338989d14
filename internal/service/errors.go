package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Error taxonomy shared by every workflow. Handlers map these to status codes.
var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidPrecondition = errors.New("invalid precondition")
	ErrConflict            = errors.New("conflict")
	ErrValidation          = errors.New("validation failed")

	ErrAlreadyClockedIn = fmt.Errorf("%w: user already has an active time entry", ErrConflict)
	ErrNoActiveEntry    = fmt.Errorf("%w: no active time entry", ErrInvalidPrecondition)
)

func notFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func precondition(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidPrecondition, fmt.Sprintf(format, args...))
}

func conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// lookup turns a repository "record not found" into ErrNotFound and passes other errors through.
func lookup(err error, what string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound("%s %v", what, id)
	}
	return err
}

func isDuplicate(err error) bool { return errors.Is(err, gorm.ErrDuplicatedKey) }

func isNotFound(err error) bool { return errors.Is(err, gorm.ErrRecordNotFound) }

func isErrNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
