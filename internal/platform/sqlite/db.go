package sqlite

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// slowQueryThreshold is the duration above which gorm reports a query as slow.
const slowQueryThreshold = 200 * time.Millisecond

// slogGormWriter adapts gorm's logger.Writer to slog.
type slogGormWriter struct {
	logger *slog.Logger
}

// Printf implements gormlogger.Writer.
func (w *slogGormWriter) Printf(format string, args ...interface{}) {
	w.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// gormConfig returns a fresh config; gorm.Open mutates the one it is given.
func gormConfig(log *slog.Logger) *gorm.Config {
	return &gorm.Config{
		SkipDefaultTransaction: true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
		Logger: gormlogger.New(&slogGormWriter{logger: log}, gormlogger.Config{
			SlowThreshold:             slowQueryThreshold,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			LogLevel:                  gormlogger.Warn,
		}),
	}
}

// Open opens the database at path, limits the pool to a single connection
// and creates the tasks table if needed. Use MemoryPath for a throwaway database.
func Open(path string, log *slog.Logger) (*gorm.DB, error) {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "sqlite"))

	db, err := gorm.Open(sqlite.Open(path), gormConfig(log))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite connection pool: %w", err)
	}
	// SQLite serializes writers, and an in-memory database lives only as
	// long as its single connection.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if err := db.AutoMigrate(&taskRecord{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate sqlite schema: %w", err)
	}

	log.Info("sqlite database ready", slog.String("path", path))
	return db, nil
}
