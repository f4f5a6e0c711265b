package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/phrazzld/task-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestNewTaskServiceError(t *testing.T) {
	cause := errors.New("disk full")

	tests := []struct {
		name     string
		err      error
		wantNil  bool
		wantSame error
		wantMsg  string
	}{
		{name: "nil", err: nil, wantNil: true},
		{name: "store not found", err: fmt.Errorf("lookup: %w", store.ErrTaskNotFound), wantSame: ErrTaskNotFound},
		{name: "service not found", err: ErrTaskNotFound, wantSame: ErrTaskNotFound},
		{name: "other", err: cause, wantMsg: "task service create_task failed: failed to save task: disk full"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewTaskServiceError("create_task", "failed to save task", tt.err)

			switch {
			case tt.wantNil:
				assert.NoError(t, err)
			case tt.wantSame != nil:
				assert.Same(t, tt.wantSame, err)
			default:
				assert.EqualError(t, err, tt.wantMsg)
				assert.ErrorIs(t, err, tt.err)
			}
		})
	}
}

func TestTaskServiceError_WithoutCause(t *testing.T) {
	err := &TaskServiceError{Operation: "create_service", Message: "taskStore cannot be nil"}
	assert.EqualError(t, err, "task service create_service failed: taskStore cannot be nil")
	assert.Nil(t, err.Unwrap())
}
