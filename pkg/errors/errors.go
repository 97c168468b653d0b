// Package errors defines the coded errors shared by the engine, the CLI and
// the HTTP API.
//
// Every error that reaches a user carries a [Code]. The CLI prints it, the
// server maps it to a status and puts it in the response body:
//
//	err := errors.New(errors.ErrCodeUnknownEntity, "no entity %q", id)
//	errors.Is(fmt.Errorf("event 3: %w", err), errors.ErrCodeUnknownEntity) // true
//
// Codes group into categories by prefix; see [Code.Category].
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code is a machine-readable error code.
type Code string

const (
	// Rejected input.
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidGeometry Code = "INVALID_GEOMETRY"
	ErrCodeInvalidDocument Code = "INVALID_DOCUMENT"
	ErrCodeInvalidEvent    Code = "INVALID_EVENT"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidPath     Code = "INVALID_PATH"

	// Missing things.
	ErrCodeNotFound      Code = "NOT_FOUND"
	ErrCodeUnknownEntity Code = "UNKNOWN_ENTITY"
	ErrCodeFileNotFound  Code = "FILE_NOT_FOUND"

	ErrCodeConflict Code = "CONFLICT"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Category is a coarse grouping of codes.
type Category int

const (
	CategoryInternal Category = iota
	CategoryInvalid
	CategoryMissing
	CategoryConflict
	CategoryUnsupported
)

// Category returns the group c belongs to. Unknown codes are internal.
func (c Code) Category() Category {
	switch {
	case strings.HasPrefix(string(c), "INVALID_"):
		return CategoryInvalid
	case c == ErrCodeNotFound || c == ErrCodeUnknownEntity || c == ErrCodeFileNotFound:
		return CategoryMissing
	case c == ErrCodeConflict:
		return CategoryConflict
	case c == ErrCodeUnsupported:
		return CategoryUnsupported
	default:
		return CategoryInternal
	}
}

// Error is an error with a code and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return string(e.Code) + ": " + e.Message + ": " + e.Cause.Error()
}

func (e *Error) Unwrap() error { return e.Cause }

// New creates an error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error with a formatted message around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// GetCode returns the code of the outermost *Error in err's chain, or ""
// if there is none.
func GetCode(err error) Code {
	if e := asError(err); e != nil {
		return e.Code
	}
	return ""
}

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// UserMessage returns the message of the outermost *Error without its code,
// or err's text for other errors.
func UserMessage(err error) string {
	if e := asError(err); e != nil {
		return e.Message
	}
	return err.Error()
}

func asError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}
