package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"savesmart/internal/core"
	"savesmart/internal/log"
)

// envelope is the uniform response shape: success plus either data or a
// message, with pagination metadata on list responses.
type envelope struct {
	Success    bool        `json:"success"`
	Data       any         `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Pagination *pagination `json:"pagination,omitempty"`
}

type pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

func newPagination(page Page, total int64) *pagination {
	totalPages := total / int64(page.Limit)
	if total%int64(page.Limit) != 0 {
		totalPages++
	}
	return &pagination{Page: page.Page, Limit: page.Limit, Total: total, TotalPages: totalPages}
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

// respondList always serializes items as a JSON array, never null.
func respondList[T any](w http.ResponseWriter, items []T, page Page, total int64) {
	if items == nil {
		items = []T{}
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: items, Pagination: newPagination(page, total)})
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: true, Message: message})
}

// respondError maps the error taxonomy onto status codes. Anything
// outside the taxonomy is logged and surfaces as a generic 500; raw
// error detail never reaches the response.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation *core.ValidationError
		conflict   *core.ConflictError
		auth       *core.AuthError
	)
	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: validation.Message})
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, envelope{Success: false, Message: conflict.Message})
	case errors.As(err, &auth):
		writeJSON(w, http.StatusUnauthorized, envelope{Success: false, Message: auth.Message})
	case errors.Is(err, core.ErrNotFound):
		writeJSON(w, http.StatusNotFound, envelope{Success: false, Message: "resource not found"})
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			log.FieldMethod, r.Method, log.FieldPath, r.URL.Path, log.FieldError, err)
		writeJSON(w, http.StatusInternalServerError, envelope{Success: false, Message: "internal server error"})
	}
}
