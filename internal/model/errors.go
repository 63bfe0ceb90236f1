package model

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared by every layer.
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrStorage      = errors.New("storage error")
	ErrAnnotation   = errors.New("annotation error")
	ErrImportFormat = errors.New("invalid backup format")
)

// FieldError describes a validation failure on a single field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists field-level validation failures.
type ValidationError struct {
	Errors []FieldError `json:"errors"`
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+" "+fe.Message)
	}
	return fmt.Sprintf("validation: %d errors (%s)", len(e.Errors), strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Errors: []FieldError{{Field: field, Message: message}}}
}

// StorageError wraps a persistence failure with the operation that hit it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() []error { return []error{ErrStorage, e.Err} }

// NewStorageError returns nil when err is nil.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// AnnotationError reports a single photo that could not be processed.
type AnnotationError struct {
	File string
	Err  error
}

func (e *AnnotationError) Error() string {
	return fmt.Sprintf("annotate %s: %v", e.File, e.Err)
}

func (e *AnnotationError) Unwrap() []error { return []error{ErrAnnotation, e.Err} }

// ImportFormatError rejects a whole backup document.
type ImportFormatError struct {
	Reason string
	Err    error
}

func (e *ImportFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("import: %s: %v", e.Reason, e.Err)
	}
	return "import: " + e.Reason
}

func (e *ImportFormatError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrImportFormat}
	}
	return []error{ErrImportFormat, e.Err}
}
