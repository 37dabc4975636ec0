// Package errors provides structured error types for the zendiagram boundary
// layers: document loading, the CLI and the HTTP service.
//
// The diagram engine itself never returns errors for bad geometry; it falls
// back to defaults instead. Errors from this package describe input that
// cannot be interpreted at all.
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - NOT_FOUND / FILE_NOT_FOUND: Resource not found
//   - RATE_LIMITED / TIMEOUT: Service limits
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidStrategy, "unknown strategy: %s", name)
//	if errors.Is(err, errors.ErrCodeInvalidStrategy) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors and point at the offending field
//	err := errors.Wrap(errors.ErrCodeInvalidDocument, origErr, "bad id").At("nodes[2].id")
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidDocument Code = "INVALID_DOCUMENT"
	ErrCodeInvalidStrategy Code = "INVALID_STRATEGY"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidID       Code = "INVALID_ID"
	ErrCodeInvalidPath     Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Service limits
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeRateLimited Code = "RATE_LIMITED"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code
	Field   string // document field the error is about, e.g. "nodes[2].group"
	Message string
	Cause   error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	b.WriteString(e.text())
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) text() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// ErrorCode returns e.Code.
func (e *Error) ErrorCode() Code { return e.Code }

// At returns a copy of e that names field as the location of the problem.
func (e *Error) At(field string) *Error {
	c := *e
	c.Field = field
	return &c
}

func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// coded is implemented by every error type in this package.
type coded interface {
	error
	ErrorCode() Code
}

// GetCode returns the code of the first coded error in err's chain, or ""
// if there is none.
func GetCode(err error) Code {
	var c coded
	if errors.As(err, &c) {
		return c.ErrorCode()
	}
	return ""
}

// Is reports whether the first coded error in err's chain has code.
func Is(err error, code Code) bool {
	return code != "" && GetCode(err) == code
}

// FieldOf returns the field of the first *Error in err's chain that names
// one.
func FieldOf(err error) string {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Field != "" {
			return e.Field
		}
		err = errors.Unwrap(err)
	}
	return ""
}

// UserMessage returns err's text without the code prefix or wrapped causes.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.text()
	}
	return err.Error()
}

// RateLimitedError is returned to clients that exceeded their request rate.
type RateLimitedError struct {
	RetryAfter int // seconds
	Message    string
}

func (e *RateLimitedError) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.RetryAfter > 0:
		return fmt.Sprintf("rate limited: retry after %d seconds", e.RetryAfter)
	}
	return "rate limited"
}

func (e *RateLimitedError) ErrorCode() Code { return ErrCodeRateLimited }
