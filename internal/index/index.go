// Package index provides the SQLite-backed schema registry index with
// optional FTS5 search over declared variables.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS schemas (
	path        TEXT PRIMARY KEY,
	checksum    TEXT NOT NULL DEFAULT '',
	ok          INTEGER NOT NULL DEFAULT 0,
	description TEXT NOT NULL DEFAULT '',
	authors     TEXT NOT NULL DEFAULT '[]',
	errors      TEXT NOT NULL DEFAULT '[]',
	warnings    TEXT NOT NULL DEFAULT '[]',
	updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS variables (
	path         TEXT NOT NULL REFERENCES schemas(path) ON DELETE CASCADE,
	full_name    TEXT NOT NULL,
	name         TEXT NOT NULL DEFAULT '',
	decl         TEXT NOT NULL DEFAULT '',
	datatype     TEXT NOT NULL,
	direction    TEXT NOT NULL,
	optionality  TEXT NOT NULL DEFAULT '',
	description  TEXT NOT NULL DEFAULT '',
	units        TEXT NOT NULL DEFAULT '',
	min_value    REAL,
	max_value    REAL,
	regex        TEXT,
	display_hint TEXT NOT NULL DEFAULT 'normal',
	depth        INTEGER NOT NULL DEFAULT 0,
	position     INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (path, full_name)
);

CREATE INDEX IF NOT EXISTS idx_variables_name ON variables(name);
`

// DB wraps a sql.DB with index-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping verifies the database connection is alive.
func (db *DB) Ping() error {
	return db.conn.Ping()
}
