package errors

import "fmt"

// Category represents the type of error.
type Category string

const (
	CategoryConfig   Category = "config"
	CategoryResolve  Category = "resolve"
	CategoryBind     Category = "bind"
	CategoryProtocol Category = "protocol"
)

// ServerError is a structured error with a code, category, and suggestion.
type ServerError struct {
	// Code is a unique error identifier (e.g., "DS001").
	Code string

	// Category is the error type (config, resolve, bind, protocol).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *ServerError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *ServerError) Unwrap() error {
	return e.Wrapped
}

// WithDetail adds a detailed explanation to the error.
func (e *ServerError) WithDetail(d string) *ServerError {
	e.Detail = d
	return e
}

// WithDetailf adds a formatted detailed explanation to the error.
func (e *ServerError) WithDetailf(format string, args ...any) *ServerError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *ServerError) WithSuggestion(s string) *ServerError {
	e.Suggestion = s
	return e
}

// Wrap wraps another error.
func (e *ServerError) Wrap(err error) *ServerError {
	e.Wrapped = err
	return e
}

// New creates a ServerError from a registered error code.
func New(code string) *ServerError {
	template, ok := registry[code]
	if !ok {
		return &ServerError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &ServerError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates a new ServerError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *ServerError {
	return &ServerError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a ServerError.
func FromError(err error, code string) *ServerError {
	if err == nil {
		return nil
	}
	if se, ok := err.(*ServerError); ok {
		return se
	}
	return New(code).Wrap(err)
}
