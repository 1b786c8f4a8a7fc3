package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/starford/sddl/internal/apperr"
	"github.com/starford/sddl/internal/models"
)

// SchemaRow represents a row in the schemas table.
type SchemaRow struct {
	Path        string
	Checksum    string
	OK          bool
	Description string
	Authors     []string
	Errors      []string
	Warnings    []string
	UpdatedAt   time.Time
}

const variableColumns = `v.path, v.full_name, v.name, v.decl, v.datatype, v.direction, v.optionality,
	v.description, v.units, v.min_value, v.max_value, v.regex, v.display_hint, v.depth, v.position`

// UpsertSchema inserts or replaces a schema, its variables and their FTS
// entries within a transaction.
func (db *DB) UpsertSchema(s SchemaRow, vars []models.Variable) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	authors, _ := json.Marshal(nonNil(s.Authors))
	errs, _ := json.Marshal(nonNil(s.Errors))
	warnings, _ := json.Marshal(nonNil(s.Warnings))

	_, err = tx.Exec(`
		INSERT INTO schemas (path, checksum, ok, description, authors, errors, warnings, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			checksum    = excluded.checksum,
			ok          = excluded.ok,
			description = excluded.description,
			authors     = excluded.authors,
			errors      = excluded.errors,
			warnings    = excluded.warnings,
			updated_at  = excluded.updated_at
	`, s.Path, s.Checksum, s.OK, s.Description, string(authors), string(errs), string(warnings), s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert schema: %w", err)
	}

	// Replace variables: delete old then bulk insert.
	if _, err := tx.Exec(`DELETE FROM variables WHERE path = ?`, s.Path); err != nil {
		return fmt.Errorf("index: clear variables: %w", err)
	}
	if len(vars) > 0 {
		stmt, err := tx.Prepare(`
			INSERT INTO variables (path, full_name, name, decl, datatype, direction, optionality,
				description, units, min_value, max_value, regex, display_hint, depth, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare variable insert: %w", err)
		}
		defer stmt.Close()
		for _, v := range vars {
			_, err := stmt.Exec(s.Path, v.FullName, v.Name, v.Decl, v.Datatype, v.Direction, v.Optionality,
				v.Description, v.Units, v.MinValue, v.MaxValue, v.Regex, v.DisplayHint, v.Depth, v.Position)
			if err != nil {
				return fmt.Errorf("index: insert variable %s: %w", v.FullName, err)
			}
		}
	}

	// FTS upsert (no-op when FTS5 tag is absent).
	if err := ftsUpsert(tx, s.Path, vars); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteSchema removes a schema, its variables and their FTS entries.
func (db *DB) DeleteSchema(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := ftsDelete(tx, path); err != nil {
		return err
	}
	_, _ = tx.Exec(`DELETE FROM variables WHERE path = ?`, path)
	_, _ = tx.Exec(`DELETE FROM schemas WHERE path = ?`, path)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a schema, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM schemas WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// AllChecksums returns path → checksum for every indexed schema.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM schemas`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

const summaryQuery = `
	SELECT s.path, s.checksum, s.ok, s.description, s.authors, s.errors, s.warnings, s.updated_at,
	       (SELECT count(*) FROM variables v WHERE v.path = s.path AND v.depth = 0)
	FROM schemas s`

// GetSchema returns the summary of one schema or apperr.ErrNotFound.
func (db *DB) GetSchema(path string) (*models.SchemaSummary, error) {
	row := db.conn.QueryRow(summaryQuery+` WHERE s.path = ?`, path)
	s, err := scanSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("index: get schema: %w", err)
	}
	return &s, nil
}

// ListSchemas returns every indexed schema ordered by path.
func (db *DB) ListSchemas() ([]models.SchemaSummary, error) {
	rows, err := db.conn.Query(summaryQuery + ` ORDER BY s.path`)
	if err != nil {
		return nil, fmt.Errorf("index: list schemas: %w", err)
	}
	defer rows.Close()

	out := []models.SchemaSummary{}
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("index: list schemas: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Variables returns the flattened variables of one schema in declaration order.
func (db *DB) Variables(path string) ([]models.Variable, error) {
	rows, err := db.conn.Query(`SELECT `+variableColumns+` FROM variables v WHERE v.path = ? ORDER BY v.position`, path)
	if err != nil {
		return nil, fmt.Errorf("index: variables: %w", err)
	}
	return scanVariables(rows)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(sc scanner) (models.SchemaSummary, error) {
	var s models.SchemaSummary
	var authors, errs, warnings string
	err := sc.Scan(&s.Path, &s.Checksum, &s.OK, &s.Description, &authors, &errs, &warnings, &s.UpdatedAt, &s.NumVars)
	if err != nil {
		return s, err
	}
	_ = json.Unmarshal([]byte(authors), &s.Authors)
	var list []string
	_ = json.Unmarshal([]byte(errs), &list)
	s.NumErrors = len(list)
	list = nil
	_ = json.Unmarshal([]byte(warnings), &list)
	s.NumWarnings = len(list)
	return s, nil
}

func scanVariables(rows *sql.Rows) ([]models.Variable, error) {
	defer rows.Close()
	out := []models.Variable{}
	for rows.Next() {
		var v models.Variable
		var lo, hi sql.NullFloat64
		var re sql.NullString
		err := rows.Scan(&v.Path, &v.FullName, &v.Name, &v.Decl, &v.Datatype, &v.Direction, &v.Optionality,
			&v.Description, &v.Units, &lo, &hi, &re, &v.DisplayHint, &v.Depth, &v.Position)
		if err != nil {
			return nil, err
		}
		if lo.Valid {
			v.MinValue = &lo.Float64
		}
		if hi.Valid {
			v.MaxValue = &hi.Float64
		}
		if re.Valid {
			v.Regex = &re.String
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
