package sddl

import (
	"errors"
	"strconv"
	"strings"
)

// Error categories. Every error produced while parsing a declaration or
// building a variable wraps exactly one of these.
var (
	ErrGrammar      = errors.New("grammar error")
	ErrTypeMismatch = errors.New("type mismatch")
	ErrUnknownEnum  = errors.New("unknown enum value")
	ErrStructure    = errors.New("structure error")
	ErrConstraint   = errors.New("constraint violation")
	ErrDuplicate    = errors.New("duplicate name")
)

// DeclError is a diagnostic tied to a declaration and optionally one of its
// metadata fields. Msg names the field itself, so Field is not repeated in
// Error.
type DeclError struct {
	Kind  error
	Decl  string
	Field string
	Msg   string
}

func (e *DeclError) Error() string {
	var b strings.Builder
	if e.Decl != "" {
		b.WriteString(strconv.Quote(e.Decl))
		b.WriteString(": ")
	}
	b.WriteString(e.Msg)
	return b.String()
}

func (e *DeclError) Unwrap() error { return e.Kind }

func grammarError(decl, msg string) error {
	return &DeclError{Kind: ErrGrammar, Decl: decl, Msg: msg}
}

func fieldError(kind error, decl, field, msg string) error {
	return &DeclError{Kind: kind, Decl: decl, Field: field, Msg: msg}
}
