// Package schemaservice coordinates schema storage, the SDDL parser and the
// search index.
package schemaservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/starford/sddl/internal/apperr"
	"github.com/starford/sddl/internal/checksum"
	"github.com/starford/sddl/internal/index"
	"github.com/starford/sddl/internal/models"
	"github.com/starford/sddl/internal/sddl"
	"github.com/starford/sddl/internal/storage"
)

// Option configures a Service.
type Option func(*Service)

// WithParseOptions sets the options every parse runs with.
func WithParseOptions(opts ...sddl.Option) Option {
	return func(s *Service) { s.parseOpts = append(s.parseOpts, opts...) }
}

// WithStrict makes writes reject documents that parse with warnings.
func WithStrict(on bool) Option {
	return func(s *Service) { s.strict = on }
}

// Service coordinates storage and index operations.
type Service struct {
	store     storage.Provider
	db        *index.DB
	parseOpts []sddl.Option
	strict    bool
}

// NewService creates a new schema service.
func NewService(store storage.Provider, db *index.DB, opts ...Option) *Service {
	s := &Service{store: store, db: db}
	for _, o := range opts {
		o(s)
	}
	return s
}

// GetSchema reads a schema from storage and parses it.
func (s *Service) GetSchema(_ context.Context, path string) (*models.Schema, error) {
	data, err := s.read(path)
	if err != nil {
		return nil, err
	}
	return s.Describe(path, data), nil
}

// CreateSchema validates, writes and indexes a new schema.
func (s *Service) CreateSchema(_ context.Context, path string, content []byte) (*models.Schema, error) {
	if !s.store.Accepts(path) {
		return nil, fmt.Errorf("%w: %s", apperr.ErrUnsupported, path)
	}
	if _, err := s.store.Read(path); err == nil {
		return nil, apperr.ErrAlreadyExists
	}
	detail := s.Describe(path, content)
	if err := s.check(detail); err != nil {
		return nil, err
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if _, err := s.IndexFile(path, content); err != nil {
		return nil, err
	}
	return detail, nil
}

// UpdateSchema writes updated content with optimistic concurrency. An empty
// ifMatch skips the checksum comparison.
func (s *Service) UpdateSchema(_ context.Context, path string, content []byte, ifMatch string) (*models.Schema, error) {
	existing, err := s.read(path)
	if err != nil {
		return nil, err
	}
	if !checksum.Matches(ifMatch, checksum.Sum(existing)) {
		return nil, apperr.ErrConflict
	}
	detail := s.Describe(path, content)
	if err := s.check(detail); err != nil {
		return nil, err
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if _, err := s.IndexFile(path, content); err != nil {
		return nil, err
	}
	return detail, nil
}

// DeleteSchema removes a schema from storage and index.
func (s *Service) DeleteSchema(_ context.Context, path string) error {
	if err := s.store.Delete(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return apperr.ErrNotFound
		}
		return err
	}
	return s.db.DeleteSchema(path)
}

// ListSchemas returns a summary of every indexed schema.
func (s *Service) ListSchemas(_ context.Context) ([]models.SchemaSummary, error) {
	return s.db.ListSchemas()
}

// Summary returns the indexed summary of one schema.
func (s *Service) Summary(_ context.Context, path string) (*models.SchemaSummary, error) {
	return s.db.GetSchema(path)
}

// SearchVariables delegates full-text search to the index.
func (s *Service) SearchVariables(_ context.Context, query string, limit int) ([]models.Variable, error) {
	return s.db.SearchVariables(query, limit)
}

// GetVariable resolves a dotted variable path inside one schema. Array
// elements are addressed with a trailing "[]".
func (s *Service) GetVariable(_ context.Context, path, name string) (*models.Variable, error) {
	data, err := s.read(path)
	if err != nil {
		return nil, err
	}
	res := sddl.ParseNamed(path, data, s.parseOpts...)
	defer res.Release()
	if !res.OK {
		return nil, s.schemaError(path, res.Errors, res.Warnings)
	}

	var found *models.Variable
	pos := 0
	errStop := errors.New("stop")
	_ = res.Document().Walk(func(full string, depth int, v *sddl.VarNode) error {
		if full == name {
			mv := models.NewVariable(path, full, depth, pos, v)
			found = &mv
			return errStop
		}
		pos++
		return nil
	})
	if found == nil {
		return nil, apperr.ErrNotFound
	}
	return found, nil
}

// Canonicalize returns the canonical JSON form of a stored schema.
func (s *Service) Canonicalize(_ context.Context, path string) ([]byte, error) {
	data, err := s.read(path)
	if err != nil {
		return nil, err
	}
	return s.canonical(path, path, data)
}

// CanonicalizeText returns the canonical JSON form of an unstored document.
func (s *Service) CanonicalizeText(content []byte, format string) ([]byte, error) {
	name, err := inlineName(format)
	if err != nil {
		return nil, err
	}
	return s.canonical("", name, content)
}

// ParseText parses content without storing it. format is "json" or "yaml";
// empty means json.
func (s *Service) ParseText(content []byte, format string) (*models.Schema, error) {
	name, err := inlineName(format)
	if err != nil {
		return nil, err
	}
	detail := s.Describe(name, content)
	detail.Path = ""
	for i := range detail.Variables {
		detail.Variables[i].Path = ""
	}
	return detail, nil
}

// IndexFile parses data and upserts it into the index.
// Exported so that sync and watcher callers can reuse it.
func (s *Service) IndexFile(path string, data []byte) (index.Entry, error) {
	return index.IndexFile(s.db, path, data, s.parseOpts...)
}

// Describe parses data and builds the full schema representation without
// touching storage.
func (s *Service) Describe(path string, data []byte) *models.Schema {
	res := sddl.ParseNamed(path, data, s.parseOpts...)
	defer res.Release()

	doc := res.Document()
	out := &models.Schema{
		Path:        path,
		Content:     data,
		Source:      string(data),
		Format:      formatOf(path),
		OK:          res.OK,
		Description: doc.Description(),
		Authors:     nonNilSlice(doc.Authors()),
		Errors:      nonNilSlice(res.Errors),
		Warnings:    nonNilSlice(res.Warnings),
		Variables:   []models.Variable{},
		Checksum:    checksum.Sum(data),
		UpdatedAt:   time.Now().UTC(),
	}
	if res.OK {
		out.Variables = nonNilSlice(models.Flatten(path, doc))
	}
	return out
}

// canonical parses data, choosing the syntax from the extension of name,
// and marshals the document. path only labels diagnostics.
func (s *Service) canonical(path, name string, data []byte) ([]byte, error) {
	res := sddl.ParseNamed(name, data, s.parseOpts...)
	defer res.Release()
	if !res.OK {
		return nil, s.schemaError(path, res.Errors, res.Warnings)
	}
	return json.MarshalIndent(res.Document(), "", "  ")
}

func inlineName(format string) (string, error) {
	switch strings.ToLower(format) {
	case "", "json", "sddl":
		return "inline.json", nil
	case "yaml", "yml":
		return "inline.yaml", nil
	}
	return "", fmt.Errorf("%w: %s", apperr.ErrUnsupported, format)
}

func (s *Service) read(path string) ([]byte, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (s *Service) check(detail *models.Schema) error {
	if !detail.OK || (s.strict && len(detail.Warnings) > 0) {
		return s.schemaError(detail.Path, detail.Errors, detail.Warnings)
	}
	return nil
}

func (s *Service) schemaError(path string, errs, warnings []string) error {
	if len(errs) == 0 && len(warnings) > 0 {
		errs = warnings
	}
	return &apperr.SchemaError{Path: path, Errors: errs, Warnings: warnings}
}

func formatOf(path string) string {
	if sddl.IsYAMLPath(path) {
		return "yaml"
	}
	if strings.EqualFold(filepath.Ext(path), ".sddl") {
		return "sddl"
	}
	return "json"
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
