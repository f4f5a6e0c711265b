package domain

import (
	"time"
	"unicode/utf8"
)

// Field length limits, counted in Unicode code points.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
	MaxStatusLength      = 50
)

// TaskStatusPending is the status assigned when none is supplied on create.
// Status is otherwise free-form.
const TaskStatusPending = "pending"

// Task is a unit of work tracked by the API.
type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewTaskInput carries the caller-supplied fields for a new task.
// Nil Description means none; nil Status means TaskStatusPending.
type NewTaskInput struct {
	Title       string
	Description *string
	Status      *string
}

// NewTask builds an unsaved Task from input, applying the default status.
// ID and timestamps are assigned by the store on insert.
func NewTask(input NewTaskInput) (*Task, error) {
	task := &Task{
		Title:       input.Title,
		Description: input.Description,
		Status:      TaskStatusPending,
	}
	if input.Status != nil {
		task.Status = *input.Status
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}
	return task, nil
}

// Validate checks the user-controlled fields of the task.
func (t *Task) Validate() error {
	if err := validateTitle(t.Title); err != nil {
		return err
	}
	if err := validateDescription(t.Description); err != nil {
		return err
	}
	return validateStatus(t.Status)
}

func validateTitle(title string) error {
	switch n := utf8.RuneCountInString(title); {
	case n == 0:
		return ErrEmptyTitle
	case n > MaxTitleLength:
		return ErrTitleTooLong
	}
	return nil
}

func validateDescription(description *string) error {
	if description != nil && utf8.RuneCountInString(*description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	return nil
}

func validateStatus(status string) error {
	switch n := utf8.RuneCountInString(status); {
	case n == 0:
		return ErrEmptyStatus
	case n > MaxStatusLength:
		return ErrStatusTooLong
	}
	return nil
}

// ValidateID rejects non-positive task identifiers.
func ValidateID(id int64) error {
	if id <= 0 {
		return ErrInvalidID
	}
	return nil
}

// ValidatePage checks list pagination bounds.
func ValidatePage(offset, limit int) error {
	if offset < 0 || limit <= 0 {
		return ErrInvalidPagination
	}
	return nil
}
