// Package apperror defines the error kinds shared by every layer of the app.
//
// The store and service layers return these; only the handler package knows
// how they translate to HTTP status codes (see handler/response.go).
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("Validation Error")
	ErrInvalidID  = errors.New("invalid id")
	ErrConflict   = errors.New("conflict")
)

// FieldError describes a single invalid field in a request body.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type AppError struct {
	Err     error        // sentinel kind, matched with errors.Is
	Message string       // Human-readable error message
	Field   string       // Optional: field causing the error
	Details []FieldError // Optional: every invalid field, for validation errors
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
		Details: []FieldError{{Field: field, Message: message}},
	}
}

// Validation bundles several field errors into one ValidationError.
// The message is taken from the first detail.
func Validation(details []FieldError) *AppError {
	e := &AppError{Err: ErrValidation, Message: "invalid data", Details: details}
	if len(details) > 0 {
		e.Field = details[0].Field
		e.Message = details[0].Message
	}
	return e
}

// InvalidID reports a path identifier that is not an integer.
// It is a client error distinct from NotFound.
func InvalidID(raw string) *AppError {
	return &AppError{
		Err:     ErrInvalidID,
		Message: fmt.Sprintf("invalid id %q", raw),
		Field:   "id",
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}
