// Package storage defines the schema directory abstraction.
package storage

import "github.com/starford/sddl/internal/models"

// DefaultExtensions are the file extensions treated as schema documents.
var DefaultExtensions = []string{".sddl", ".json", ".yaml", ".yml"}

// Provider is the interface for schema file operations. All paths are
// relative to the schema root.
type Provider interface {
	// List returns metadata for every schema file under dir.
	List(dir string) ([]models.SchemaMetadata, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Move renames oldPath to newPath.
	Move(oldPath, newPath string) error
	// Accepts reports whether path names a schema file.
	Accepts(path string) bool
}
