package errors

import "fmt"

// Category represents the type of error.
type Category string

const (
	CategoryConfig Category = "config"
	CategoryCLI    Category = "cli"
	CategoryServer Category = "server"
)

// HyperError is a coded error with a detail line and a fix suggestion,
// printed by the CLI.
type HyperError struct {
	// Code is a unique error identifier (e.g., "E120").
	Code string

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
func (e *HyperError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *HyperError) Unwrap() error {
	return e.Wrapped
}

// WithSuggestion adds a fix suggestion to the error.
func (e *HyperError) WithSuggestion(s string) *HyperError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *HyperError) WithDetail(d string) *HyperError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *HyperError) Wrap(err error) *HyperError {
	e.Wrapped = err
	return e
}

// New creates a HyperError from a registered error code.
func New(code string) *HyperError {
	template, ok := registry[code]
	if !ok {
		return &HyperError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &HyperError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates a new HyperError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *HyperError {
	return &HyperError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a HyperError.
func FromError(err error, code string) *HyperError {
	if err == nil {
		return nil
	}
	if he, ok := err.(*HyperError); ok {
		return he
	}
	return New(code).Wrap(err)
}
