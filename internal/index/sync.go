package index

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/sddl/internal/checksum"
	"github.com/starford/sddl/internal/models"
	"github.com/starford/sddl/internal/sddl"
	"github.com/starford/sddl/internal/storage"
)

// Entry is one analyzed schema file, ready to be upserted.
type Entry struct {
	Row  SchemaRow
	Vars []models.Variable
}

// Analyze parses data and derives its index entry. Documents that fail to
// parse still produce a row carrying their diagnostics, but no variables.
func Analyze(path string, data []byte, opts ...sddl.Option) Entry {
	res := sddl.ParseNamed(path, data, opts...)
	defer res.Release()

	doc := res.Document()
	e := Entry{Row: SchemaRow{
		Path:        path,
		Checksum:    checksum.Sum(data),
		OK:          res.OK,
		Description: doc.Description(),
		Authors:     doc.Authors(),
		Errors:      res.Errors,
		Warnings:    res.Warnings,
		UpdatedAt:   time.Now().UTC(),
	}}
	if res.OK {
		e.Vars = models.Flatten(path, doc)
	}
	return e
}

// Sync walks the schema directory and brings the index up to date:
//   - new/changed files are parsed (in parallel) and upserted
//   - files removed from disk are deleted from the index
func Sync(ctx context.Context, db *DB, store storage.Provider, logger *slog.Logger, opts ...sddl.Option) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	var changed []models.SchemaMetadata
	for _, m := range metas {
		disk[m.Path] = struct{}{}
		if checksums[m.Path] != m.Checksum {
			changed = append(changed, m)
		}
	}

	// Parsing is CPU bound and independent per file; writes stay serial.
	entries := make([]*Entry, len(changed))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, m := range changed {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := store.Read(m.Path)
			if err != nil {
				logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
				return nil
			}
			e := Analyze(m.Path, data, opts...)
			entries[i] = &e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, e := range entries {
		if e == nil {
			continue
		}
		if err := db.UpsertSchema(e.Row, e.Vars); err != nil {
			logger.Warn("sync: index failed", slog.String("path", e.Row.Path), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("sync: indexed", slog.String("path", e.Row.Path), slog.Bool("ok", e.Row.OK))
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteSchema(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// IndexFile parses data and upserts it into the DB. It returns the entry so
// callers can report diagnostics.
func IndexFile(db *DB, path string, data []byte, opts ...sddl.Option) (Entry, error) {
	e := Analyze(path, data, opts...)
	return e, db.UpsertSchema(e.Row, e.Vars)
}
