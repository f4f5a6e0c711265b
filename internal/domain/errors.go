package domain

import (
	"errors"
	"fmt"
)

// ErrValidation is returned when a domain entity fails validation.
// All field-level errors below wrap it, so callers can test with
// errors.Is(err, ErrValidation) without enumerating them.
var ErrValidation = errors.New("validation failed")

// Field-level validation errors for tasks.
var (
	ErrEmptyTitle         = fmt.Errorf("%w: title cannot be empty", ErrValidation)
	ErrTitleTooLong       = fmt.Errorf("%w: title exceeds %d characters", ErrValidation, MaxTitleLength)
	ErrDescriptionTooLong = fmt.Errorf("%w: description exceeds %d characters", ErrValidation, MaxDescriptionLength)
	ErrEmptyStatus        = fmt.Errorf("%w: status cannot be empty", ErrValidation)
	ErrStatusTooLong      = fmt.Errorf("%w: status exceeds %d characters", ErrValidation, MaxStatusLength)
	ErrInvalidID          = fmt.Errorf("%w: task ID must be positive", ErrValidation)
	ErrInvalidPagination  = fmt.Errorf("%w: offset must be >= 0 and limit > 0", ErrValidation)
)
