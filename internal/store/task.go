package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/task-api/internal/domain"
)

// TaskStore defines the interface for task data persistence.
// Version: 1.0
type TaskStore interface {
	// Create saves a new task to the store and fills in its generated ID,
	// CreatedAt and UpdatedAt. An empty Status is stored as domain.TaskStatusPending.
	// Returns ErrInvalidEntity if the database rejects the row.
	Create(ctx context.Context, task *domain.Task) error

	// List returns up to limit tasks ordered by ID ascending, skipping the
	// first offset. The result is never nil; it is empty when nothing matches.
	List(ctx context.Context, offset, limit int) ([]*domain.Task, error)

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task doesn't exist.
	GetByID(ctx context.Context, id int64) (*domain.Task, error)

	// Update applies the supplied fields of patch and refreshes UpdatedAt,
	// returning the stored task. An empty patch leaves the row untouched.
	// Returns ErrTaskNotFound if the task doesn't exist.
	Update(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error)

	// Delete removes a task from the store by its ID.
	// Returns ErrTaskNotFound if the task doesn't exist.
	Delete(ctx context.Context, id int64) error

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	WithTx(tx *sql.Tx) TaskStore

	// DB returns the underlying connection pool, used to begin transactions.
	DB() *sql.DB
}
