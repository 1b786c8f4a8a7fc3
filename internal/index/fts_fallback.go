//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"

	"github.com/starford/sddl/internal/models"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; search uses LIKE on the variables table.
	return nil
}

func ftsUpsert(_ *sql.Tx, _ string, _ []models.Variable) error {
	// Searchable columns already live in the variables table.
	return nil
}

func ftsDelete(_ *sql.Tx, _ string) error { return nil }

// SearchVariables performs a LIKE-based search over variable names,
// descriptions and units (fallback when FTS5 is not compiled in).
func (db *DB) SearchVariables(query string, limit int) ([]models.Variable, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := db.conn.Query(`
		SELECT `+variableColumns+`
		FROM variables v
		WHERE v.full_name LIKE ? OR v.description LIKE ? OR v.units LIKE ?
		ORDER BY v.path, v.position
		LIMIT ?
	`, like, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	return scanVariables(rows)
}
