package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates the target is locked against mutation, e.g. a reconciled source transaction.
var ErrConflict = errors.New("conflict")

// ErrUnprocessable indicates a server-side validation routine rejected an otherwise well-formed request.
var ErrUnprocessable = errors.New("unprocessable entity")

// ErrExternalService indicates the external system of record could not be reached or returned a non-OK response.
var ErrExternalService = errors.New("external service error")

// ErrInternal indicates an unexpected failure.
var ErrInternal = errors.New("internal error")

// AppError carries an HTTP-ish code and a user-facing message alongside the underlying error.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError wraps err with a code and message.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError returns an error that matches ErrNotFound for the named resource.
func NewNotFoundError(resource string) error {
	return fmt.Errorf("%s: %w", resource, ErrNotFound)
}

// NewUnprocessableError returns an error that matches ErrUnprocessable and keeps msg readable.
func NewUnprocessableError(msg string) error {
	return fmt.Errorf("%w: %s", ErrUnprocessable, msg)
}
