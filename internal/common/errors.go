package common

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
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
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrDatabase     = errors.New("database error")
)

// Failure kinds of the extraction pipeline.
var (
	ErrRecognizerUnavailable = errors.New("recognizer unavailable")
	ErrConditioning          = errors.New("page conditioning failed")
	ErrPageProcessing        = errors.New("page processing failed")
	ErrInvalidNumber         = errors.New("invalid numeric format")
	ErrInvalidDate           = errors.New("invalid date format")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// StatusCode maps a pipeline error to the gRPC code an API layer should report.
func StatusCode(err error) codes.Code {
	switch {
	case err == nil:
		return codes.OK
	case errors.Is(err, ErrRecognizerUnavailable):
		return codes.Unavailable
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidNumber), errors.Is(err, ErrInvalidDate):
		return codes.InvalidArgument
	case errors.Is(err, ErrNotFound):
		return codes.NotFound
	default:
		return codes.Internal
	}
}

// ToStatus converts err into a gRPC status error, nil stays nil.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	return status.Error(StatusCode(err), err.Error())
}
