//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/starford/sddl/internal/models"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS variables_fts USING fts5(
			path UNINDEXED,
			full_name,
			description,
			units,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, path string, vars []models.Variable) error {
	if err := ftsDelete(tx, path); err != nil {
		return err
	}
	for _, v := range vars {
		_, err := tx.Exec(`INSERT INTO variables_fts (path, full_name, description, units) VALUES (?, ?, ?, ?)`,
			path, v.FullName, v.Description, v.Units)
		if err != nil {
			return fmt.Errorf("index: upsert fts: %w", err)
		}
	}
	return nil
}

func ftsDelete(tx *sql.Tx, path string) error {
	if _, err := tx.Exec(`DELETE FROM variables_fts WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete fts: %w", err)
	}
	return nil
}

// ftsQuery turns free text into a prefix phrase query so user input never
// hits FTS5 query syntax.
func ftsQuery(q string) string {
	return `"` + strings.ReplaceAll(q, `"`, `""`) + `"*`
}

// SearchVariables performs an FTS5 full-text search over variable names,
// descriptions and units, best matches first.
func (db *DB) SearchVariables(query string, limit int) ([]models.Variable, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT `+variableColumns+`
		FROM variables_fts
		JOIN variables v ON v.path = variables_fts.path AND v.full_name = variables_fts.full_name
		WHERE variables_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, ftsQuery(query), limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	return scanVariables(rows)
}
