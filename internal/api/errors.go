package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/task-api/internal/api/shared"
	"github.com/phrazzld/task-api/internal/domain"
	"github.com/phrazzld/task-api/internal/service"
	"github.com/phrazzld/task-api/internal/store"
)

// Client-facing messages.
const (
	msgTaskNotFound     = "Task not found"
	msgInvalidTaskID    = "Invalid task ID"
	msgInvalidRequest   = "Invalid request format"
	msgInvalidTaskData  = "Invalid task data"
	msgUnexpectedError  = "An unexpected error occurred"
	msgValidationFailed = "Validation error"
)

// nullFieldError reports an explicit null for a field that cannot be cleared.
type nullFieldError struct {
	field string
}

func (e *nullFieldError) Error() string {
	return fmt.Sprintf("%s: %s cannot be null", domain.ErrValidation, e.field)
}

func (e *nullFieldError) Unwrap() error {
	return domain.ErrValidation
}

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	var verrs validator.ValidationErrors

	switch {
	case err == nil:
		return http.StatusOK

	case errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity),
		errors.As(err, &verrs):
		return http.StatusUnprocessableEntity

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. fallback is used for unexpected errors, so
// callers can say which operation failed.
func GetSafeErrorMessage(err error, fallback string) string {
	if fallback == "" {
		fallback = msgUnexpectedError
	}
	if err == nil {
		return fallback
	}

	var (
		verrs   validator.ValidationErrors
		nullErr *nullFieldError
	)

	switch {
	case errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, store.ErrNotFound):
		return msgTaskNotFound

	case errors.As(err, &verrs):
		return SanitizeValidationError(err)
	case errors.As(err, &nullErr):
		return fmt.Sprintf("Invalid %s: cannot be null", nullErr.field)

	case errors.Is(err, domain.ErrEmptyTitle):
		return "Invalid title: required field"
	case errors.Is(err, domain.ErrTitleTooLong):
		return "Invalid title: too long"
	case errors.Is(err, domain.ErrDescriptionTooLong):
		return "Invalid description: too long"
	case errors.Is(err, domain.ErrEmptyStatus):
		return "Invalid status: too short"
	case errors.Is(err, domain.ErrStatusTooLong):
		return "Invalid status: too long"
	case errors.Is(err, domain.ErrInvalidID):
		return msgInvalidTaskID
	case errors.Is(err, domain.ErrInvalidPagination):
		return "Invalid pagination parameters"
	case errors.Is(err, domain.ErrValidation):
		return msgValidationFailed

	case errors.Is(err, store.ErrInvalidEntity):
		return msgInvalidTaskData

	default:
		return fallback
	}
}

// SanitizeValidationError turns validator errors into a message naming the
// first offending field, e.g. "Invalid title: too long".
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return msgValidationFailed
	}

	fe := verrs[0]
	return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "gte":
		return "must not be negative"
	case "gt":
		return "must be positive"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the response for err: its mapped status and a safe
// message. The full error only reaches the (redacted) log.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err, fallback), err)
}
