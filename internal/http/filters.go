package httpx

import (
	"net/http"
	"strconv"

	"github.com/campuslife/campushub/internal/domain/model"
)

// Query and path parsing helpers shared by the list and detail handlers.

// pathID extracts a positive integer path parameter. Returns 0 when the
// value is missing or malformed; callers treat 0 as not found.
func pathID(r *http.Request, name string) int64 {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}

// queryInt parses an integer query parameter, falling back to def.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// queryBool parses a boolean query parameter; absent means false.
func queryBool(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}

// eventListOptions builds list options from the common query parameters:
// limit, offset, q, upcoming.
func eventListOptions(r *http.Request) model.EventsListOptions {
	opts := model.EventsListOptions{
		Limit:        queryInt(r, "limit", 0),
		Offset:       queryInt(r, "offset", 0),
		UpcomingOnly: queryBool(r, "upcoming"),
	}
	if q := r.URL.Query().Get("q"); q != "" {
		opts.Q = &q
	}
	return opts
}
