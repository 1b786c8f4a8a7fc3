package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/starford/sddl/internal/sddl"
	"github.com/starford/sddl/internal/storage"
)

// EventCallback is called after a watcher-driven index change.
// kind is one of "created", "updated", "deleted".
type EventCallback func(kind string, path string)

const reconcileDelay = 200 * time.Millisecond

type watcher struct {
	fsw    *fsnotify.Watcher
	db     *DB
	store  storage.Provider
	root   string
	logger *slog.Logger
	cb     EventCallback
	opts   []sddl.Option
}

// Watch keeps the index in step with the schema root until ctx is
// cancelled, calling cb (if non-nil) after each index mutation.
//
// Directories created at runtime join the watch list and their schema files
// are indexed. A rename drops the old path at once and schedules a debounced
// reconciliation against the directory contents.
func Watch(ctx context.Context, db *DB, store storage.Provider, root string, logger *slog.Logger, cb EventCallback, opts ...sddl.Option) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	w := &watcher{fsw: fsw, db: db, store: store, root: root, logger: logger, cb: cb, opts: opts}
	if err := w.addDirs(root); err != nil {
		return err
	}
	logger.Info("watcher: started", slog.String("root", root))

	reconcile := time.NewTimer(reconcileDelay)
	reconcile.Stop()
	defer reconcile.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case <-reconcile.C:
			w.reconcile()

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if w.handle(ev) {
				reconcile.Reset(reconcileDelay)
			}

		case watchErr, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// handle applies one fsnotify event and reports whether a reconciliation
// pass is needed.
func (w *watcher) handle(ev fsnotify.Event) bool {
	if ev.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addDirs(ev.Name); err != nil {
				w.logger.Warn("watcher: add new dir failed", slog.String("path", ev.Name), slog.String("error", err.Error()))
			}
			w.indexDir(ev.Name)
			return false
		}
	}

	if !w.store.Accepts(ev.Name) {
		return false
	}
	rel, ok := w.rel(ev.Name)
	if !ok {
		return false
	}

	switch {
	case ev.Op&fsnotify.Create != 0:
		w.index(rel, "created")
	case ev.Op&fsnotify.Write != 0:
		w.index(rel, "updated")
	case ev.Op&fsnotify.Remove != 0:
		w.remove(rel)
	case ev.Op&fsnotify.Rename != 0:
		// fsnotify reports the old name only; the new one arrives as a
		// Create if it stays under a watched directory.
		w.remove(rel)
		return true
	}
	return false
}

func (w *watcher) rel(abs string) (string, bool) {
	rel, err := filepath.Rel(w.root, abs)
	if err != nil {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (w *watcher) notify(kind, rel string) {
	if w.cb != nil {
		w.cb(kind, rel)
	}
}

// index parses and upserts rel. Documents with errors are indexed too, so
// their diagnostics stay visible; the errors are logged here.
func (w *watcher) index(rel, kind string) {
	data, err := w.store.Read(rel)
	if err != nil {
		w.logger.Warn("watcher: read failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	entry, err := IndexFile(w.db, rel, data, w.opts...)
	if err != nil {
		w.logger.Warn("watcher: index failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	if !entry.Row.OK {
		w.logger.Warn("watcher: schema has errors",
			slog.String("path", rel),
			slog.Int("errors", len(entry.Row.Errors)),
			slog.Int("warnings", len(entry.Row.Warnings)))
	}
	w.logger.Debug("watcher: indexed", slog.String("path", rel), slog.String("op", kind), slog.Int("variables", len(entry.Vars)))
	w.notify(kind, rel)
}

func (w *watcher) remove(rel string) {
	if err := w.db.DeleteSchema(rel); err != nil {
		w.logger.Warn("watcher: delete failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	w.logger.Debug("watcher: deleted", slog.String("path", rel))
	w.notify("deleted", rel)
}

// reconcile compares index checksums with the files on disk, dropping
// stale rows and indexing new or changed files.
func (w *watcher) reconcile() {
	indexed, err := w.db.AllChecksums()
	if err != nil {
		w.logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}
	metas, err := w.store.List("")
	if err != nil {
		w.logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	onDisk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		onDisk[m.Path] = struct{}{}
		sum, known := indexed[m.Path]
		switch {
		case !known:
			w.index(m.Path, "created")
		case sum != m.Checksum:
			w.index(m.Path, "updated")
		}
	}
	for p := range indexed {
		if _, ok := onDisk[p]; !ok {
			w.remove(p)
		}
	}
}

func (w *watcher) indexDir(dir string) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !w.store.Accepts(path) {
			return nil
		}
		if rel, ok := w.rel(path); ok {
			w.index(rel, "created")
		}
		return nil
	})
}

// addDirs adds root and all its subdirectories to the watch list.
func (w *watcher) addDirs(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fsw.Add(path)
		}
		return nil
	})
}
