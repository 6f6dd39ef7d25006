package apperr

import (
	"errors"
	"net/http"
)

const (
	CodeValidation = "VALIDATION"
	CodeConflict   = "STATE_CONFLICT"
	CodeInternal   = "INTERNAL_ERROR"
)

// AppError carries the HTTP status and a client-facing message alongside the cause.
type AppError struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func New(code, message string, status int, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// Validation is a rejected request: bad input or a precondition that does not hold.
func Validation(message string) *AppError {
	return New(CodeValidation, message, http.StatusBadRequest, nil)
}

func Internal(message string, err error) *AppError {
	return New(CodeInternal, message, http.StatusInternalServerError, err)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// As extracts an *AppError from err's chain.
func As(err error) (*AppError, bool) {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
