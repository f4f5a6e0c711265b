package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"math"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/task-api/internal/domain"
	"github.com/phrazzld/task-api/internal/platform/postgres"
	"github.com/phrazzld/task-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var taskCols = []string{"id", "title", "description", "status", "created_at", "updated_at"}

func newMockStore(t *testing.T) (*postgres.PostgresTaskStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	return postgres.NewPostgresTaskStore(db, quiet), mock
}

func TestNewPostgresTaskStore_NilDBPanics(t *testing.T) {
	assert.Panics(t, func() { postgres.NewPostgresTaskStore(nil, nil) })
}

func TestPostgresTaskStore_Create(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("CEST", 2*60*60))

	t.Run("defaults status and fills generated fields", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO tasks (title, description, status)")).
			WithArgs("Write report", nil, domain.TaskStatusPending).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow(int64(42), created, created))

		task := &domain.Task{Title: "Write report"}
		require.NoError(t, s.Create(ctx, task))

		assert.Equal(t, int64(42), task.ID)
		assert.Equal(t, domain.TaskStatusPending, task.Status)
		assert.Equal(t, time.UTC, task.CreatedAt.Location())
		assert.True(t, task.CreatedAt.Equal(created))
		assert.Equal(t, task.CreatedAt, task.UpdatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error is returned", func(t *testing.T) {
		s, mock := newMockStore(t)
		dbErr := errors.New("connection refused")
		mock.ExpectQuery("INSERT INTO tasks").WillReturnError(dbErr)

		err := s.Create(ctx, &domain.Task{Title: "x", Status: "open"})

		assert.ErrorIs(t, err, dbErr)
		var storeErr *store.StoreError
		require.ErrorAs(t, err, &storeErr)
		assert.Equal(t, "create", storeErr.Operation)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("check violation keeps invalid entity", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery("INSERT INTO tasks").WillReturnError(&pgconn.PgError{
			Code:           "23514",
			ConstraintName: "tasks_title_not_blank",
		})

		err := s.Create(ctx, &domain.Task{Title: " "})

		assert.ErrorIs(t, err, store.ErrInvalidEntity)
		var storeErr *store.StoreError
		require.ErrorAs(t, err, &storeErr)
		assert.Equal(t, "create", storeErr.Operation)
		assert.Contains(t, err.Error(), "tasks_title_not_blank")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresTaskStore_GetByID(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	t.Run("found with null description", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM tasks WHERE id = $1")).
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows(taskCols).AddRow(int64(7), "Title", nil, "pending", now, now))

		task, err := s.GetByID(ctx, 7)

		require.NoError(t, err)
		assert.Equal(t, int64(7), task.ID)
		assert.Nil(t, task.Description)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery("FROM tasks WHERE id").
			WithArgs(int64(99)).
			WillReturnRows(sqlmock.NewRows(taskCols))

		task, err := s.GetByID(ctx, 99)

		assert.Nil(t, task)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresTaskStore_List(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("returns rows in order", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM tasks ORDER BY id ASC LIMIT $1 OFFSET $2")).
			WithArgs(2, 1).
			WillReturnRows(sqlmock.NewRows(taskCols).
				AddRow(int64(2), "b", "desc", "pending", now, now).
				AddRow(int64(3), "c", nil, "done", now, now))

		tasks, err := s.List(ctx, 1, 2)

		require.NoError(t, err)
		require.Len(t, tasks, 2)
		assert.Equal(t, int64(2), tasks[0].ID)
		require.NotNil(t, tasks[0].Description)
		assert.Equal(t, "desc", *tasks[0].Description)
		assert.Equal(t, "done", tasks[1].Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty result is not nil", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery("FROM tasks ORDER BY").WillReturnRows(sqlmock.NewRows(taskCols))

		tasks, err := s.List(ctx, 50, 10)

		require.NoError(t, err)
		assert.NotNil(t, tasks)
		assert.Empty(t, tasks)
	})

	t.Run("maximum limit does not preallocate the page", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM tasks ORDER BY id ASC LIMIT $1 OFFSET $2")).
			WithArgs(math.MaxInt, 0).
			WillReturnRows(sqlmock.NewRows(taskCols).
				AddRow(int64(1), "a", nil, "pending", now, now))

		var tasks []*domain.Task
		var err error
		require.NotPanics(t, func() { tasks, err = s.List(ctx, 0, math.MaxInt) })

		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "a", tasks[0].Title)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query failure is a store error", func(t *testing.T) {
		s, mock := newMockStore(t)
		dbErr := errors.New("connection reset")
		mock.ExpectQuery("FROM tasks ORDER BY").WillReturnError(dbErr)

		_, err := s.List(ctx, 0, 10)

		var storeErr *store.StoreError
		require.ErrorAs(t, err, &storeErr)
		assert.Equal(t, "task", storeErr.Entity)
		assert.Equal(t, "list", storeErr.Operation)
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestPostgresTaskStore_Update(t *testing.T) {
	ctx := context.Background()
	created := time.Now().UTC().Add(-time.Hour)
	updated := time.Now().UTC()

	t.Run("sets only supplied columns", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta(
			"UPDATE tasks SET status = $1, updated_at = now() WHERE id = $2 RETURNING id, title",
		)).
			WithArgs("completed", int64(5)).
			WillReturnRows(sqlmock.NewRows(taskCols).AddRow(int64(5), "Keep", "keep", "completed", created, updated))

		task, err := s.Update(ctx, 5, domain.TaskPatch{Status: domain.Set("completed")})

		require.NoError(t, err)
		assert.Equal(t, "Keep", task.Title)
		assert.Equal(t, "completed", task.Status)
		assert.True(t, task.UpdatedAt.After(task.CreatedAt))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("clears description with all fields", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta(
			"UPDATE tasks SET title = $1, description = $2, status = $3, updated_at = now() WHERE id = $4",
		)).
			WithArgs("New", nil, "open", int64(5)).
			WillReturnRows(sqlmock.NewRows(taskCols).AddRow(int64(5), "New", nil, "open", created, updated))

		task, err := s.Update(ctx, 5, domain.TaskPatch{
			Title:       domain.Set("New"),
			Description: domain.Set[*string](nil),
			Status:      domain.Set("open"),
		})

		require.NoError(t, err)
		assert.Nil(t, task.Description)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty patch reads the row", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM tasks WHERE id = $1")).
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows(taskCols).AddRow(int64(5), "Same", nil, "pending", created, created))

		task, err := s.Update(ctx, 5, domain.TaskPatch{})

		require.NoError(t, err)
		assert.Equal(t, task.CreatedAt, task.UpdatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery("UPDATE tasks SET").WillReturnRows(sqlmock.NewRows(taskCols))

		_, err := s.Update(ctx, 404, domain.TaskPatch{Title: domain.Set("x")})

		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})
}

func TestPostgresTaskStore_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes existing row", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tasks WHERE id = $1")).
			WithArgs(int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, s.Delete(ctx, 3))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec("DELETE FROM tasks").
			WithArgs(int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, s.Delete(ctx, 3), store.ErrTaskNotFound)
	})

	t.Run("exec failure is a store error", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec("DELETE FROM tasks").
			WithArgs(int64(3)).
			WillReturnError(sql.ErrConnDone)

		err := s.Delete(ctx, 3)

		var storeErr *store.StoreError
		require.ErrorAs(t, err, &storeErr)
		assert.Equal(t, "delete", storeErr.Operation)
		assert.ErrorIs(t, err, sql.ErrConnDone)
		assert.False(t, store.IsNotFoundError(err))
	})
}

func TestPostgresTaskStore_WithTx(t *testing.T) {
	ctx := context.Background()
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM tasks").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	tx, err := s.DB().BeginTx(ctx, nil)
	require.NoError(t, err)

	txStore := s.WithTx(tx)
	assert.Same(t, s.DB(), txStore.DB(), "transactional store keeps the pool")
	require.NoError(t, txStore.Delete(ctx, 1))
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTaskStore_DBNilOnTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	mock.ExpectBegin()

	tx, err := db.Begin()
	require.NoError(t, err)

	var txOnly *sql.DB = postgres.NewPostgresTaskStore(tx, nil).DB()
	assert.Nil(t, txOnly)
}
