package apperr

import (
	"errors"
	"strings"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidSchema = errors.New("invalid schema")
	ErrUnsupported   = errors.New("unsupported schema format")
)

// SchemaError carries the diagnostics of a document that failed to parse.
type SchemaError struct {
	Path     string
	Errors   []string
	Warnings []string
}

func (e *SchemaError) Error() string {
	msg := ErrInvalidSchema.Error()
	if e.Path != "" {
		msg += " " + e.Path
	}
	if len(e.Errors) > 0 {
		msg += ": " + strings.Join(e.Errors, "; ")
	}
	return msg
}

func (e *SchemaError) Unwrap() error { return ErrInvalidSchema }
