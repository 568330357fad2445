package core

import "errors"

// ErrNotFound marks lookups that matched no row. Services return it
// wrapped; handlers translate it to a 404 envelope.
var ErrNotFound = errors.New("resource not found")

// ValidationError marks malformed or out-of-range input (HTTP 400).
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError marks uniqueness violations (HTTP 409).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// AuthError marks missing/invalid credentials or tokens (HTTP 401).
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

func Validation(msg string) error { return &ValidationError{Message: msg} }
func Conflict(msg string) error   { return &ConflictError{Message: msg} }
func Unauthorized(msg string) error {
	return &AuthError{Message: msg}
}
