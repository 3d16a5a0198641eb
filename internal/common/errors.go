package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrSubmission   = errors.New("job submission rejected")
	ErrDeletion     = errors.New("job deletion rejected")
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewSubmissionError carries the service-reported detail verbatim so the
// caller can surface it unchanged. Check with errors.Is(err, ErrSubmission).
func NewSubmissionError(detail string) *AppError {
	return NewAppError("SUBMISSION_FAILED", detail, ErrSubmission)
}

// NewDeletionError carries the service-reported detail verbatim.
func NewDeletionError(detail string) *AppError {
	return NewAppError("DELETION_FAILED", detail, ErrDeletion)
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
