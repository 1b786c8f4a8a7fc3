// Package testutil provides shared test helpers for schema directories and
// index databases.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/sddl/internal/index"
	"github.com/starford/sddl/internal/storage"
)

// Thermostat is a small valid document used across package tests.
const Thermostat = `{
	"description": "thermostat",
	"authors": ["ops@example.com"],
	"out struct reading": {
		"float64 temperature": {"units": "celsius", "description": "ambient temperature"},
		"float32 humidity": {"units": "percent", "numeric-display-hint": "percentage", "min-value": 0, "max-value": 100}
	},
	"in float64 setpoint": {"units": "celsius", "description": "target temperature"},
	"uint8[4] serial": {}
}`

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "sddl-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestSchemaDir creates a temporary schema directory with a storage.Provider.
func TestSchemaDir(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// WriteFile writes content to rel under dir, creating parent directories.
func WriteFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	full := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
