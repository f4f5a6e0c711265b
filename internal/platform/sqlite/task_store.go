package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/phrazzld/task-api/internal/domain"
	"github.com/phrazzld/task-api/internal/platform/logger"
	"github.com/phrazzld/task-api/internal/store"
	"gorm.io/gorm"
)

// taskRecord is the gorm model for the tasks table.
type taskRecord struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	Title       string    `gorm:"size:200;not null;index:idx_tasks_title"`
	Description *string   `gorm:"size:1000"`
	Status      string    `gorm:"size:50;not null;default:pending"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for taskRecord.
func (taskRecord) TableName() string {
	return "tasks"
}

func (r *taskRecord) toDomain() *domain.Task {
	return &domain.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

// TaskStore implements store.TaskStore on top of gorm and SQLite.
type TaskStore struct {
	db     *gorm.DB
	pool   *sql.DB
	logger *slog.Logger
	// err is set when the connection pool is unavailable;
	// every operation then fails with it.
	err error
}

// Ensure TaskStore implements store.TaskStore interface
var _ store.TaskStore = (*TaskStore)(nil)

// NewTaskStore creates a TaskStore using db, which should come from Open.
// If logger is nil, a default logger will be used.
func NewTaskStore(db *gorm.DB, logger *slog.Logger) *TaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &TaskStore{db: db, logger: logger.With(slog.String("component", "task_store"))}
	s.pool, s.err = db.DB()
	return s
}

// mapError converts gorm and driver errors into store errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrTaskNotFound
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	return err
}

// Create implements store.TaskStore.Create.
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	if s.err != nil {
		return s.err
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	if task.Status == "" {
		task.Status = domain.TaskStatusPending
	}
	record := taskRecord{
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		log.Error("failed to create task", slog.String("error", err.Error()))
		return mapError(err)
	}

	task.ID = record.ID
	task.CreatedAt = record.CreatedAt.UTC()
	task.UpdatedAt = record.UpdatedAt.UTC()

	log.Info("task created successfully",
		slog.Int64("task_id", task.ID),
		slog.String("status", task.Status))
	return nil
}

// List implements store.TaskStore.List.
func (s *TaskStore) List(ctx context.Context, offset, limit int) ([]*domain.Task, error) {
	if s.err != nil {
		return nil, s.err
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	var records []taskRecord
	err := s.db.WithContext(ctx).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&records).Error
	if err != nil {
		log.Error("failed to list tasks", slog.String("error", err.Error()))
		return nil, mapError(err)
	}

	tasks := make([]*domain.Task, 0, len(records))
	for i := range records {
		tasks = append(tasks, records[i].toDomain())
	}
	return tasks, nil
}

// GetByID implements store.TaskStore.GetByID.
func (s *TaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	if s.err != nil {
		return nil, s.err
	}

	var record taskRecord
	if err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to get task by ID",
				slog.Int64("task_id", id),
				slog.String("error", err.Error()))
		}
		return nil, mapError(err)
	}
	return record.toDomain(), nil
}

// Update implements store.TaskStore.Update.
// gorm adds updated_at to the assignment list automatically.
func (s *TaskStore) Update(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	if s.err != nil {
		return nil, s.err
	}
	if patch.IsEmpty() {
		return s.GetByID(ctx, id)
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	updates := make(map[string]interface{}, 3)
	if patch.Title.Set {
		updates["title"] = patch.Title.Value
	}
	if patch.Description.Set {
		if patch.Description.Value == nil {
			updates["description"] = nil
		} else {
			updates["description"] = *patch.Description.Value
		}
	}
	if patch.Status.Set {
		updates["status"] = patch.Status.Value
	}

	result := s.db.WithContext(ctx).Model(&taskRecord{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		log.Error("failed to update task",
			slog.Int64("task_id", id),
			slog.String("error", result.Error.Error()))
		return nil, mapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, store.ErrTaskNotFound
	}

	task, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	log.Info("task updated successfully",
		slog.Int64("task_id", id),
		slog.String("status", task.Status))
	return task, nil
}

// Delete implements store.TaskStore.Delete.
func (s *TaskStore) Delete(ctx context.Context, id int64) error {
	if s.err != nil {
		return s.err
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	result := s.db.WithContext(ctx).Delete(&taskRecord{}, id)
	if result.Error != nil {
		log.Error("failed to delete task",
			slog.Int64("task_id", id),
			slog.String("error", result.Error.Error()))
		return mapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return store.ErrTaskNotFound
	}

	log.Info("task deleted successfully", slog.Int64("task_id", id))
	return nil
}

// WithTx implements store.TaskStore.WithTx. The returned store shares the
// gorm configuration but sends every statement through tx, the same way
// gorm.DB.Begin binds its own transactions.
func (s *TaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	db := s.db.Session(&gorm.Session{NewDB: true, Context: context.Background()})
	db.Statement.ConnPool = tx
	return &TaskStore{db: db, pool: s.pool, logger: s.logger, err: s.err}
}

// DB implements store.TaskStore.DB.
func (s *TaskStore) DB() *sql.DB {
	return s.pool
}
