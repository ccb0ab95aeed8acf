package apperr

import (
	"errors"
	"fmt"
)

type AppError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Cause }

// Constructors
func New(code Code, message string) error {
	return &AppError{Code: code, Message: message}
}

func Newf(code Code, format string, args ...interface{}) error {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func Wrap(code Code, message string, cause error) error {
	return &AppError{Code: code, Message: message, Cause: cause}
}

func NotFound(msg string) error {
	return New(CodeNotFound, msg)
}

func NotFoundf(format string, args ...interface{}) error {
	return Newf(CodeNotFound, format, args...)
}

func Unavailable(msg string, cause error) error {
	return Wrap(CodeUnavailable, msg, cause)
}

func Internal(msg string) error {
	return New(CodeInternal, msg)
}

// CodeOf walks the error chain and returns the first AppError code,
// or CodeUnknown if the chain carries none.
func CodeOf(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

func IsNotFound(err error) bool {
	return CodeOf(err) == CodeNotFound
}
