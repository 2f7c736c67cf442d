package errors

import (
	"errors"
	"fmt"
	"net/http"
)

type AppError struct {
	Code    string
	Message string
	Status  int
	Details interface{}
	Err     error
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code string, message string, status int, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found", resource),
		Status:  http.StatusNotFound,
		Err:     err,
	}
}

func BadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    "BAD_REQUEST",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     err,
	}
}

// Validation reports missing or malformed input. details carries the
// offending field names so callers can show field-level errors.
func Validation(message string, details interface{}) *AppError {
	return &AppError{
		Code:    "VALIDATION_ERROR",
		Message: message,
		Status:  http.StatusBadRequest,
		Details: details,
	}
}

func Unauthorized(message string, err error) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     err,
	}
}

func Forbidden(message string, err error) *AppError {
	return &AppError{
		Code:    "FORBIDDEN",
		Message: message,
		Status:  http.StatusForbidden,
		Err:     err,
	}
}

// IdentityMismatch is raised when a principal files a custom order on
// behalf of a different email address.
func IdentityMismatch(message string) *AppError {
	return &AppError{
		Code:    "IDENTITY_MISMATCH",
		Message: message,
		Status:  http.StatusForbidden,
	}
}

// InvalidTransition rejects a status change that is not the legal next
// step of the order lifecycle.
func InvalidTransition(message string) *AppError {
	return &AppError{
		Code:    "INVALID_TRANSITION",
		Message: message,
		Status:  http.StatusConflict,
	}
}

// PaymentVerificationFailed means the gateway signature did not match.
// No state is changed when this is returned.
func PaymentVerificationFailed(message string) *AppError {
	return &AppError{
		Code:    "PAYMENT_VERIFICATION_FAILED",
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: message,
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

func TooManyRequests(message string) *AppError {
	return &AppError{
		Code:    "TOO_MANY_REQUESTS",
		Message: message,
		Status:  http.StatusTooManyRequests,
	}
}

func Is(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
