// Package sqlite provides an embedded SQLite implementation of the
// store.TaskStore interface built on gorm. It backs local development
// (database.driver=sqlite) and the service and end-to-end tests, which run
// against an in-memory database.
package sqlite
