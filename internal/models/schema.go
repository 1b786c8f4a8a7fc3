// Package models defines the domain types of the schema registry.
package models

import (
	"time"

	"github.com/starford/sddl/internal/sddl"
)

// Schema is a stored SDDL document together with its parse outcome.
type Schema struct {
	Path        string     `json:"path"`
	Content     []byte     `json:"-"`
	Source      string     `json:"source"`
	Format      string     `json:"format"`
	OK          bool       `json:"ok"`
	Description string     `json:"description,omitempty"`
	Authors     []string   `json:"authors,omitempty"`
	Errors      []string   `json:"errors,omitempty"`
	Warnings    []string   `json:"warnings,omitempty"`
	Variables   []Variable `json:"variables,omitempty"`
	Checksum    string     `json:"checksum"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// SchemaMetadata is what storage reports for each schema file.
type SchemaMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SchemaSummary is one row of the schema listing.
type SchemaSummary struct {
	Path        string    `json:"path"`
	Checksum    string    `json:"checksum"`
	OK          bool      `json:"ok"`
	Description string    `json:"description,omitempty"`
	Authors     []string  `json:"authors,omitempty"`
	NumErrors   int       `json:"num_errors"`
	NumWarnings int       `json:"num_warnings"`
	NumVars     int       `json:"num_variables"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Variable is a flattened view of one declared variable. FullName is the
// dotted path from the document root; array elements end in "[]".
type Variable struct {
	Path        string   `json:"path"`
	FullName    string   `json:"full_name"`
	Name        string   `json:"name"`
	Decl        string   `json:"decl"`
	Datatype    string   `json:"datatype"`
	Direction   string   `json:"direction"`
	Optionality string   `json:"optionality,omitempty"`
	Description string   `json:"description,omitempty"`
	Units       string   `json:"units,omitempty"`
	MinValue    *float64 `json:"min_value,omitempty"`
	MaxValue    *float64 `json:"max_value,omitempty"`
	Regex       *string  `json:"regex,omitempty"`
	DisplayHint string   `json:"display_hint"`
	Depth       int      `json:"depth"`
	Position    int      `json:"position"`
}

// NewVariable flattens v. Direction is the resolved one.
func NewVariable(path, fullName string, depth, position int, v *sddl.VarNode) Variable {
	out := Variable{
		Path:        path,
		FullName:    fullName,
		Name:        v.Name(),
		Decl:        v.DeclString(),
		Datatype:    v.Datatype().String(),
		Direction:   v.Direction().String(),
		Description: v.Description(),
		Units:       v.Units(),
		DisplayHint: v.DisplayHint().String(),
		Depth:       depth,
		Position:    position,
	}
	if o := v.Optionality(); o != sddl.Unspecified {
		out.Optionality = o.String()
	}
	if lo, ok := v.MinValue(); ok {
		out.MinValue = &lo
	}
	if hi, ok := v.MaxValue(); ok {
		out.MaxValue = &hi
	}
	if re, ok := v.Regex(); ok {
		out.Regex = &re
	}
	return out
}

// Flatten lists every variable of doc in pre-order.
func Flatten(path string, doc *sddl.Document) []Variable {
	var out []Variable
	_ = doc.Walk(func(full string, depth int, v *sddl.VarNode) error {
		out = append(out, NewVariable(path, full, depth, len(out), v))
		return nil
	})
	return out
}
