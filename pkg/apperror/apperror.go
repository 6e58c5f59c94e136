// Package apperror defines the error kinds shared by services and handlers.
// Services return *AppError values wrapping one of the sentinels; handlers
// map the sentinel to an HTTP status.
package apperror

import (
	"errors"
)

var (
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

type AppError struct {
	Err     error    // sentinel kind
	Message string   // client-facing message
	Fields  []string // optional: offending or missing fields
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func Validation(message string, fields ...string) *AppError {
	return &AppError{Err: ErrValidation, Message: message, Fields: fields}
}

func Unauthorized(message string) *AppError {
	return &AppError{Err: ErrUnauthorized, Message: message}
}

func Forbidden(message string) *AppError {
	return &AppError{Err: ErrForbidden, Message: message}
}

func NotFound(message string) *AppError {
	return &AppError{Err: ErrNotFound, Message: message}
}

func Conflict(message string) *AppError {
	return &AppError{Err: ErrConflict, Message: message}
}
