package index

import "github.com/starford/sddl/internal/models"

// SchemaIndex defines the interface for schema indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type SchemaIndex interface {
	UpsertSchema(row SchemaRow, vars []models.Variable) error
	DeleteSchema(path string) error
	GetChecksum(path string) (string, error)
	GetSchema(path string) (*models.SchemaSummary, error)
	ListSchemas() ([]models.SchemaSummary, error)
	Variables(path string) ([]models.Variable, error)
	SearchVariables(query string, limit int) ([]models.Variable, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies SchemaIndex at compile time.
var _ SchemaIndex = (*DB)(nil)
