package shared

import "errors"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the underlying cause
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches domain errors by code so wrapped copies of a sentinel compare equal
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Wrap returns a copy of the error carrying cause and a more specific message
func (e *DomainError) Wrap(message string, cause error) *DomainError {
	if message == "" {
		message = e.Message
	}
	return &DomainError{Code: e.Code, Message: message, Err: cause}
}

// Common domain errors
var (
	ErrNotFound          = NewDomainError("NOT_FOUND", "Resource not found")
	ErrInvalidInput      = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrSourceUnavailable = NewDomainError("SOURCE_UNAVAILABLE", "Source table could not be loaded")
)
