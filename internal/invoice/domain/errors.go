package domain

import (
	"errors"
	"strings"
)

var (
	ErrInvoiceNotFound = errors.New("invoice_not_found")
	ErrInvalidStatus   = errors.New("invalid_status")
	ErrInvalidOwner    = errors.New("invalid_owner")
	ErrDuplicate       = errors.New("duplicate_invoice")
)

// FieldError describes one rejected input field, e.g. items[1].quantity.
type FieldError struct {
	Field   string
	Code    string
	Message string
}

// ValidationError collects every rejected field of a request.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "validation error"
	}
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return "validation error: " + strings.Join(names, ", ")
}

// Add records a rejected field.
func (e *ValidationError) Add(field, code, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Code: code, Message: message})
}

// Err returns nil when nothing was recorded.
func (e *ValidationError) Err() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// NewValidationError builds a single-field validation error.
func NewValidationError(field, code, message string) error {
	v := &ValidationError{}
	v.Add(field, code, message)
	return v
}

