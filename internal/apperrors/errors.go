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

// ErrForbidden indicates the caller does not own the requested resource.
var ErrForbidden = errors.New("forbidden")

// ErrConfiguration indicates an invalid account catalog or rule set.
// It is raised when configuration is loaded, never per transaction.
var ErrConfiguration = errors.New("configuration error")

// ErrJournalImbalance indicates total debits and credits of a generated journal differ.
// This is an internal invariant violation, not a data problem.
var ErrJournalImbalance = errors.New("journal debits and credits do not balance")

// AppError carries an HTTP-ish status code alongside the wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
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

// NewConflictError wraps ErrDuplicate with a message.
func NewConflictError(message string) *AppError {
	return NewAppError(409, message, ErrDuplicate)
}

// NewValidationFailedError wraps ErrValidation with a message.
func NewValidationFailedError(message string) *AppError {
	return NewAppError(400, message, ErrValidation)
}

// NewNotFoundError wraps ErrNotFound with a message.
func NewNotFoundError(message string) *AppError {
	return NewAppError(404, message, ErrNotFound)
}
