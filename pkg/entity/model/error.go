package model

import (
	"fmt"
	"net/http"
)

// Error codes returned to API clients.
const (
	AuthErrorCode       = "AUTH_ERROR"
	NotFoundErrorCode   = "NOT_FOUND"
	ValidationErrorCode = "VALIDATION_ERROR"
	DBErrorCode         = "DB_ERROR"
	InternalErrorCode   = "INTERNAL_SERVER_ERROR"
)

// AppError is an error that maps onto an HTTP response.
type AppError struct {
	Code    string
	Status  int
	Message string
	err     error
}

func (e *AppError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.err
}

// NewAuthError returns an error for a missing or invalid credential.
func NewAuthError(err error) *AppError {
	return &AppError{Code: AuthErrorCode, Status: http.StatusUnauthorized, Message: "unauthorized", err: err}
}

// NewNotFoundError returns an error for an entity that does not exist or is not
// visible to the caller.
func NewNotFoundError(err error, entity string) *AppError {
	return &AppError{Code: NotFoundErrorCode, Status: http.StatusNotFound, Message: entity + " not found", err: err}
}

// NewValidationError returns an error for invalid input.
func NewValidationError(err error) *AppError {
	return &AppError{Code: ValidationErrorCode, Status: http.StatusBadRequest, Message: "invalid input", err: err}
}

// NewDBError returns an error for a failed persistence call.
func NewDBError(err error) *AppError {
	return &AppError{Code: DBErrorCode, Status: http.StatusInternalServerError, Message: "database error", err: err}
}

// NewInternalServerError wraps any other unexpected error.
func NewInternalServerError(err error) *AppError {
	return &AppError{Code: InternalErrorCode, Status: http.StatusInternalServerError, Message: "internal server error", err: err}
}
