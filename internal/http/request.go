package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"savesmart/internal/core"
	"savesmart/internal/storage"
)

// Page aliases the storage pagination window; handlers parse it from the
// query string and pass it straight through.
type Page = storage.Page

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// parsePage reads page/limit query parameters, falling back to defaults
// on absent or malformed values.
func parsePage(r *http.Request) Page {
	p := Page{Page: defaultPage, Limit: defaultLimit}
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		p.Limit = min(v, maxLimit)
	}
	return p
}

// decodeJSON parses the request body into dst, translating failures to
// validation errors.
func decodeJSON(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	switch {
	case err == nil:
		return nil
	case err == io.EOF:
		return core.Validation("request body is required")
	default:
		return core.Validation("invalid request body")
	}
}

// pathID parses the {id} path segment.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id < 1 {
		return 0, core.Validation("invalid id")
	}
	return id, nil
}

// queryInt64 parses an optional numeric query parameter.
func queryInt64(r *http.Request, name string) (*int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, core.Validation("invalid " + name + " parameter")
	}
	return &v, nil
}

// queryDate parses an optional YYYY-MM-DD query parameter.
func queryDate(r *http.Request, name string) (*core.Date, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	d, err := core.ParseDate(raw)
	if err != nil {
		return nil, core.Validation("invalid " + name + " parameter, expected YYYY-MM-DD")
	}
	return &d, nil
}

// queryInt parses an optional integer query parameter with a zero default.
func queryInt(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, core.Validation("invalid " + name + " parameter")
	}
	return v, nil
}
