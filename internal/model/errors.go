package model

import (
	"errors"
	"fmt"
)

// Error codes returned by the engines and the job runner.
type ErrorCode string

const (
	CodeValidation             ErrorCode = "VALIDATION_ERROR"
	CodeNotFound               ErrorCode = "NOT_FOUND"
	CodeEncoderFailure         ErrorCode = "ENCODER_FAILURE"
	CodePersistenceUnavailable ErrorCode = "PERSISTENCE_UNAVAILABLE"
	CodeInvalidArgument        ErrorCode = "INVALID_ARGUMENT"
	CodeJobNotFound            ErrorCode = "JOB_NOT_FOUND"
)

// AppError is a structured error carrying a stable code. Every public
// operation fails with one of these; raw encoder output is always wrapped.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewValidationError(format string, args ...interface{}) *AppError {
	return &AppError{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(format string, args ...interface{}) *AppError {
	return &AppError{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

func NewEncoderError(message string, cause error) *AppError {
	return &AppError{Code: CodeEncoderFailure, Message: message, Err: cause}
}

func NewPersistenceError(cause error) *AppError {
	return &AppError{Code: CodePersistenceUnavailable, Message: "job broker unreachable", Err: cause}
}

func NewInvalidArgumentError(format string, args ...interface{}) *AppError {
	return &AppError{Code: CodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

func NewJobNotFoundError(jobID string) *AppError {
	return &AppError{Code: CodeJobNotFound, Message: fmt.Sprintf("job %s not found", jobID)}
}

// ErrorCodeOf extracts the code from err, or SERVICE-level unknown.
func ErrorCodeOf(err error) (ErrorCode, bool) {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code, true
	}
	return "", false
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	c, ok := ErrorCodeOf(err)
	return ok && c == code
}
