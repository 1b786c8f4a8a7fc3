package sddl

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/sddl/internal/docval"
)

// ParseResult is the outcome of parsing a document. It is never nil; OK is
// false whenever Errors is non-empty, and the document of a failed parse may
// be partial.
type ParseResult struct {
	OK       bool
	Errors   []string
	Warnings []string

	errs []error
	doc  *Document
}

// Document returns the parsed document without taking a reference.
func (r *ParseResult) Document() *Document { return r.doc }

// RefDocument returns the document with an added reference, so it outlives
// Release.
func (r *ParseResult) RefDocument() *Document {
	if r.doc == nil {
		return nil
	}
	return r.doc.Ref()
}

// Release drops the result's reference to its document.
func (r *ParseResult) Release() {
	if r.doc != nil {
		r.doc.Unref()
		r.doc = nil
	}
}

// Err joins the recorded errors, or returns nil for a successful parse.
func (r *ParseResult) Err() error {
	return errors.Join(r.errs...)
}

func (r *ParseResult) fail(err error) {
	r.errs = append(r.errs, err)
	r.Errors = append(r.Errors, err.Error())
	r.OK = false
}

func failed(err error) *ParseResult {
	r := &ParseResult{doc: NewDocument()}
	r.fail(err)
	return r
}

// Parse parses a JSON SDDL document.
func Parse(data []byte, opts ...Option) *ParseResult {
	v, err := docval.ParseJSON(data)
	if err != nil {
		return failed(&DeclError{Kind: ErrStructure, Msg: "JSON parsing failed: " + err.Error()})
	}
	return build(v, newOptions(opts))
}

// ParseYAML parses an SDDL document written in YAML. Mapping order is
// preserved just like JSON key order.
func ParseYAML(data []byte, opts ...Option) *ParseResult {
	v, err := docval.ParseYAML(data)
	if err != nil {
		return failed(&DeclError{Kind: ErrStructure, Msg: "YAML parsing failed: " + err.Error()})
	}
	return build(v, newOptions(opts))
}

// ParseReader reads r to the end and parses the JSON document it holds.
func ParseReader(r io.Reader, opts ...Option) *ParseResult {
	data, err := io.ReadAll(r)
	if err != nil {
		return failed(&DeclError{Kind: ErrStructure, Msg: "read failed: " + err.Error()})
	}
	return Parse(data, opts...)
}

// LoadAndParse reads the file at path and parses it as YAML when its
// extension is .yaml or .yml, as JSON otherwise.
func LoadAndParse(path string, opts ...Option) *ParseResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return failed(&DeclError{Kind: ErrStructure, Msg: fmt.Sprintf("load %s: %v", path, err)})
	}
	return ParseNamed(path, data, opts...)
}

// ParseNamed parses data as YAML or JSON depending on the extension of name.
func ParseNamed(name string, data []byte, opts ...Option) *ParseResult {
	if IsYAMLPath(name) {
		return ParseYAML(data, opts...)
	}
	return Parse(data, opts...)
}

// IsYAMLPath reports whether path names a YAML-authored document.
func IsYAMLPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func build(v docval.Value, opts *options) *ParseResult {
	res := &ParseResult{OK: true, doc: NewDocument()}
	obj, ok := v.AsObject()
	if !ok {
		res.fail(&DeclError{Kind: ErrStructure, Msg: "expected object at document top level"})
		return res
	}

	b := &builder{opts: opts}
	doc := res.doc
	for _, key := range obj.Keys() {
		val, _ := obj.Get(key)
		var err error
		switch key {
		case fieldAuthors:
			doc.authors, err = authorList(val)
		case fieldDescription:
			s, ok := val.AsString()
			if !ok {
				err = fieldError(ErrTypeMismatch, "", key, "description must be string")
			}
			doc.description = s
		default:
			var n *VarNode
			n, err = b.buildVar(key, val, nil)
			if err == nil {
				err = doc.AddVar(n)
			}
		}
		if err != nil {
			res.fail(err)
			opts.logger.Debug("sddl: declaration rejected", slog.String("key", key), slog.Any("err", err))
			if opts.failFast {
				break
			}
		}
	}
	res.Warnings = b.warnings
	return res
}

func authorList(v docval.Value) ([]string, error) {
	items, ok := v.AsArray()
	if !ok {
		return nil, fieldError(ErrTypeMismatch, "", fieldAuthors, "Expected list for authors")
	}
	authors := make([]string, 0, len(items))
	for _, it := range items {
		s, ok := it.AsString()
		if !ok {
			return nil, fieldError(ErrTypeMismatch, "", fieldAuthors, "Expected string in authors list")
		}
		authors = append(authors, s)
	}
	return authors, nil
}
