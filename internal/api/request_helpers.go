package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

var (
	errMissingPathParam = errors.New("missing path parameter")
	errInvalidPathParam = errors.New("path parameter is not a positive integer")
)

// getPathID extracts a positive int64 from the URL path parameter paramName.
func getPathID(r *http.Request, paramName string) (int64, error) {
	raw := chi.URLParam(r, paramName)
	if raw == "" {
		return 0, errMissingPathParam
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidPathParam
	}
	return id, nil
}

// handlePathID extracts the task ID, writing a 400 response when it is invalid.
// The boolean reports whether the handler should continue.
func handlePathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := getPathID(r, "id")
	if err != nil {
		respondInvalidTaskID(w, r, err)
		return 0, false
	}
	return id, true
}

// parseListQuery reads skip and limit from the query string, applying the
// defaults for absent parameters. A non-integer value is reported under
// the offending parameter's name.
func parseListQuery(r *http.Request) (ListTasksQuery, string, error) {
	query := ListTasksQuery{Skip: DefaultSkip, Limit: DefaultLimit}
	values := r.URL.Query()

	if raw := values.Get("skip"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return query, "skip", err
		}
		query.Skip = n
	}
	if raw := values.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return query, "limit", err
		}
		query.Limit = n
	}

	return query, "", nil
}
