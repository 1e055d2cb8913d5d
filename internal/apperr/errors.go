// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package apperr defines the coded errors returned across adn. Every code
// belongs to a category; errors.Is matches either the exact code or the
// category, so callers can test for "any not-found" without listing every
// specific case.
package apperr

import (
	"errors"
	"fmt"
)

// Code identifies an error condition.
type Code string

// Categories.
const (
	Unknown           Code = "UNKNOWN"
	Internal          Code = "INTERNAL"
	NotFound          Code = "NOT_FOUND"
	AlreadyExists     Code = "ALREADY_EXISTS"
	InvalidInput      Code = "INVALID_INPUT"
	Render            Code = "RENDER"
	MalformedDocument Code = "MALFORMED_DOCUMENT"
)

// Specific codes. Each maps to one category.
const (
	NotInitialized     Code = "NOT_INITIALIZED"
	NothingToBackup    Code = "NOTHING_TO_BACKUP"
	TemplateNotFound   Code = "TEMPLATE_NOT_FOUND"
	DirectoryNotFound  Code = "DIRECTORY_NOT_FOUND"
	AlreadyInitialized Code = "ALREADY_INITIALIZED"
	NotADirectory      Code = "NOT_A_DIRECTORY"
	MissingColumns     Code = "MISSING_COLUMNS"
	InvalidPDF         Code = "INVALID_PDF"
)

var categories = map[Code]Code{
	NotInitialized:     NotFound,
	NothingToBackup:    NotFound,
	TemplateNotFound:   NotFound,
	DirectoryNotFound:  NotFound,
	AlreadyInitialized: AlreadyExists,
	NotADirectory:      InvalidInput,
	MissingColumns:     InvalidInput,
	InvalidPDF:         InvalidInput,
}

// Category returns the broad class of c. Category codes return themselves.
func (c Code) Category() Code {
	if cat, ok := categories[c]; ok {
		return cat
	}
	return c
}

// Error is a structured error with a code and optional details.
type Error struct {
	Code    Code
	Message string
	Details map[string]any
	Wrapped error
}

func (e *Error) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Is matches when target is an *Error whose code equals this error's code
// or this error's category.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code || t.Code == e.Code.Category()
}

// WithDetail attaches a key/value pair and returns e.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates an error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps err. It returns nil when err is nil.
func Wrap(err error, code Code, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Wrapped: err}
}

// Wrapf wraps err with a formatted message. It returns nil when err is nil.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Wrapped: err}
}

// Is reports whether err carries code, either exactly or as its category.
func Is(err error, code Code) bool {
	return errors.Is(err, &Error{Code: code})
}

// CodeOf returns the code of the outermost *Error in err's chain, or
// Unknown.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return Unknown
}

// DetailsOf returns the details of the outermost *Error in err's chain.
func DetailsOf(err error) map[string]any {
	var e *Error
	if errors.As(err, &e) {
		return e.Details
	}
	return nil
}
