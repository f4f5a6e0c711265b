package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/phrazzld/task-api/internal/api/shared"
	"github.com/phrazzld/task-api/internal/domain"
	"github.com/phrazzld/task-api/internal/service"
	"github.com/phrazzld/task-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"service not found", service.ErrTaskNotFound, http.StatusNotFound},
		{"store not found", store.ErrTaskNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("lookup: %w", store.ErrTaskNotFound), http.StatusNotFound},
		{"domain validation", domain.ErrTitleTooLong, http.StatusUnprocessableEntity},
		{"null field", &nullFieldError{field: "title"}, http.StatusUnprocessableEntity},
		{"invalid entity", store.ErrInvalidEntity, http.StatusUnprocessableEntity},
		{
			"service error wrapping validation",
			service.NewTaskServiceError("create_task", "invalid", domain.ErrEmptyTitle),
			http.StatusUnprocessableEntity,
		},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		fallback string
		want     string
	}{
		{"nil uses fallback", nil, "Failed to list tasks", "Failed to list tasks"},
		{"nil without fallback", nil, "", "An unexpected error occurred"},
		{"not found", service.ErrTaskNotFound, "Failed", "Task not found"},
		{"empty title", domain.ErrEmptyTitle, "", "Invalid title: required field"},
		{"long description", domain.ErrDescriptionTooLong, "", "Invalid description: too long"},
		{"null status", &nullFieldError{field: "status"}, "", "Invalid status: cannot be null"},
		{"invalid entity", store.ErrInvalidEntity, "", "Invalid task data"},
		{"internal detail hidden", errors.New("pq: relation tasks does not exist"), "Failed to create task", "Failed to create task"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetSafeErrorMessage(tt.err, tt.fallback))
		})
	}
}

func TestSanitizeValidationError(t *testing.T) {
	err := shared.ValidateRequest(&CreateTaskRequest{Title: ""})
	require.Error(t, err)
	assert.Equal(t, "Invalid title: required field", SanitizeValidationError(err))

	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("not a validator error")))
}

func TestNullFieldError(t *testing.T) {
	err := &nullFieldError{field: "title"}
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.Contains(t, err.Error(), "title cannot be null")
}
