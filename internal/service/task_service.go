package service

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/phrazzld/task-api/internal/domain"
	"github.com/phrazzld/task-api/internal/platform/logger"
	"github.com/phrazzld/task-api/internal/redact"
	"github.com/phrazzld/task-api/internal/store"
)

// TaskService provides task-related operations.
type TaskService interface {
	// CreateTask validates input and stores a new task.
	CreateTask(ctx context.Context, input domain.NewTaskInput) (*domain.Task, error)

	// ListTasks returns up to limit tasks in ID order, skipping offset.
	ListTasks(ctx context.Context, offset, limit int) ([]*domain.Task, error)

	// GetTask retrieves a task by its ID.
	GetTask(ctx context.Context, id int64) (*domain.Task, error)

	// UpdateTask applies a partial update to an existing task.
	UpdateTask(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error)

	// DeleteTask permanently removes a task.
	DeleteTask(ctx context.Context, id int64) error
}

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	taskStore store.TaskStore
	logger    *slog.Logger
}

// NewTaskService creates a new TaskService.
// It returns an error if taskStore is nil.
func NewTaskService(taskStore store.TaskStore, logger *slog.Logger) (TaskService, error) {
	if taskStore == nil {
		return nil, &TaskServiceError{
			Operation: "create_service",
			Message:   "taskStore cannot be nil",
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		taskStore: taskStore,
		logger:    logger.With(slog.String("component", "task_service")),
	}, nil
}

// CreateTask builds the task from input and inserts it inside a transaction.
func (s *taskServiceImpl) CreateTask(ctx context.Context, input domain.NewTaskInput) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(input)
	if err != nil {
		log.Debug("task input failed validation", slog.String("error", err.Error()))
		return nil, NewTaskServiceError("create_task", "invalid task", err)
	}

	err = store.RunInTransaction(ctx, s.taskStore.DB(), func(ctx context.Context, tx *sql.Tx) error {
		if err := s.taskStore.WithTx(tx).Create(ctx, task); err != nil {
			log.Error("failed to create task in transaction", slog.String("error", redact.Error(err)))
			return NewTaskServiceError("create_task", "failed to save task", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return task, nil
}

// ListTasks returns one page of tasks.
func (s *taskServiceImpl) ListTasks(ctx context.Context, offset, limit int) ([]*domain.Task, error) {
	if err := domain.ValidatePage(offset, limit); err != nil {
		return nil, NewTaskServiceError("list_tasks", "invalid pagination", err)
	}

	tasks, err := s.taskStore.List(ctx, offset, limit)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list tasks",
			slog.Int("offset", offset),
			slog.Int("limit", limit),
			slog.String("error", redact.Error(err)))
		return nil, NewTaskServiceError("list_tasks", "failed to list tasks", err)
	}

	return tasks, nil
}

// GetTask retrieves a task by its ID.
func (s *taskServiceImpl) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	if err := domain.ValidateID(id); err != nil {
		return nil, NewTaskServiceError("get_task", "invalid task ID", err)
	}

	task, err := s.taskStore.GetByID(ctx, id)
	if err != nil {
		if !store.IsNotFoundError(err) {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to retrieve task",
				slog.Int64("task_id", id),
				slog.String("error", redact.Error(err)))
		}
		return nil, NewTaskServiceError("get_task", "failed to retrieve task", err)
	}

	return task, nil
}

// UpdateTask checks that the task exists and applies patch, all in one transaction.
func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	id int64,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := domain.ValidateID(id); err != nil {
		return nil, NewTaskServiceError("update_task", "invalid task ID", err)
	}
	if err := patch.Validate(); err != nil {
		log.Debug("task patch failed validation", slog.String("error", err.Error()))
		return nil, NewTaskServiceError("update_task", "invalid task update", err)
	}

	var updated *domain.Task
	err := store.RunInTransaction(ctx, s.taskStore.DB(), func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.taskStore.WithTx(tx)

		if _, err := txStore.GetByID(ctx, id); err != nil {
			if !store.IsNotFoundError(err) {
				log.Error("failed to retrieve task for update",
					slog.Int64("task_id", id),
					slog.String("error", redact.Error(err)))
			}
			return NewTaskServiceError("update_task", "failed to retrieve task", err)
		}

		task, err := txStore.Update(ctx, id, patch)
		if err != nil {
			log.Error("failed to save task update",
				slog.Int64("task_id", id),
				slog.String("error", redact.Error(err)))
			return NewTaskServiceError("update_task", "failed to save task", err)
		}
		updated = task
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteTask checks that the task exists and removes it in one transaction.
func (s *taskServiceImpl) DeleteTask(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := domain.ValidateID(id); err != nil {
		return NewTaskServiceError("delete_task", "invalid task ID", err)
	}

	return store.RunInTransaction(ctx, s.taskStore.DB(), func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.taskStore.WithTx(tx)

		if _, err := txStore.GetByID(ctx, id); err != nil {
			if !store.IsNotFoundError(err) {
				log.Error("failed to retrieve task for deletion",
					slog.Int64("task_id", id),
					slog.String("error", redact.Error(err)))
			}
			return NewTaskServiceError("delete_task", "failed to retrieve task", err)
		}

		if err := txStore.Delete(ctx, id); err != nil {
			log.Error("failed to delete task",
				slog.Int64("task_id", id),
				slog.String("error", redact.Error(err)))
			return NewTaskServiceError("delete_task", "failed to delete task", err)
		}
		return nil
	})
}
