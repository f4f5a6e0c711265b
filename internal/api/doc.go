// Package api handles incoming HTTP requests for the task endpoints and the
// service-level endpoints. It decodes and validates requests, calls the task
// service, and translates results and errors into JSON responses.
package api
