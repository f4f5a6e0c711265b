package api

import (
	"time"

	"github.com/phrazzld/task-api/internal/api/shared"
	"github.com/phrazzld/task-api/internal/domain"
)

// CreateTaskRequest defines the payload for creating a task.
// A missing or null status means the default "pending".
type CreateTaskRequest struct {
	Title       string  `json:"title"       validate:"required,max=200"`
	Description *string `json:"description" validate:"omitnil,max=1000"`
	Status      *string `json:"status"      validate:"omitnil,min=1,max=50"`
}

// ToInput converts the request into domain input.
func (r CreateTaskRequest) ToInput() domain.NewTaskInput {
	return domain.NewTaskInput{
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
	}
}

// UpdateTaskRequest defines the payload for a partial task update.
// Omitted members are left unchanged. A null description clears it;
// a null title or status is rejected.
type UpdateTaskRequest struct {
	Title       shared.Optional[string] `json:"title"       validate:"omitnil,min=1,max=200"`
	Description shared.Optional[string] `json:"description" validate:"omitnil,max=1000"`
	Status      shared.Optional[string] `json:"status"      validate:"omitnil,min=1,max=50"`
}

// ToPatch converts the request into a domain patch.
func (r UpdateTaskRequest) ToPatch() (domain.TaskPatch, error) {
	var patch domain.TaskPatch

	if r.Title.Set {
		if r.Title.Null {
			return domain.TaskPatch{}, &nullFieldError{field: "title"}
		}
		patch.Title = domain.Set(r.Title.Value)
	}
	if r.Description.Set {
		if r.Description.Null {
			patch.Description = domain.Set[*string](nil)
		} else {
			value := r.Description.Value
			patch.Description = domain.Set(&value)
		}
	}
	if r.Status.Set {
		if r.Status.Null {
			return domain.TaskPatch{}, &nullFieldError{field: "status"}
		}
		patch.Status = domain.Set(r.Status.Value)
	}

	return patch, nil
}

// ListTasksQuery holds the parsed pagination parameters of GET /tasks.
type ListTasksQuery struct {
	Skip  int `json:"skip"  validate:"gte=0"`
	Limit int `json:"limit" validate:"gt=0"`
}

// Pagination defaults for GET /tasks.
const (
	DefaultSkip  = 0
	DefaultLimit = 100
)

// TaskResponse is the JSON representation of a task.
type TaskResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func taskToResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		CreatedAt:   task.CreatedAt.UTC(),
		UpdatedAt:   task.UpdatedAt.UTC(),
	}
}

func tasksToResponse(tasks []*domain.Task) []TaskResponse {
	resp := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		resp = append(resp, taskToResponse(task))
	}
	return resp
}
