// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects and repositories
// (defined in internal/store) to fulfill application features.
//
// TaskService validates input, runs every write inside a single database
// transaction, and translates store errors into the sentinel errors the API
// layer maps to HTTP responses. It depends on the store.TaskStore interface
// only, never on a concrete database.
package service
