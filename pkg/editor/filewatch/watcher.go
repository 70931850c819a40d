// Package filewatch tells the editor when the file of a step disappears from, or comes back to, the project.
package filewatch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/askiada/pipeline-editor/internal/ctxlog"
)

// Config of the project watcher.
type Config struct {
	Root   string   `yaml:"root"`
	Ignore []string `yaml:"ignore"`
}

func DefaultConfig() Config {
	return Config{
		Ignore: []string{".git", ".ipynb_checkpoints", "__pycache__"},
	}
}

// Handler receives a path relative to the root and whether the file is now missing.
type Handler func(path string, missing bool)

// Watcher watches a project directory tree.
type Watcher struct {
	cfg     Config
	handler Handler
}

func New(cfg Config, handler Handler) *Watcher {
	return &Watcher{cfg: cfg, handler: handler}
}

// Sync reports every path of paths that does not exist under the root.
func (w *Watcher) Sync(paths []string) {
	for _, path := range paths {
		_, err := os.Stat(filepath.Join(w.cfg.Root, path))
		w.handler(path, errors.Is(err, fs.ErrNotExist))
	}
}

// Run watches the root until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx).With("root", w.cfg.Root)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "unable to create file watcher")
	}
	defer watcher.Close()

	if err := w.addRecursive(watcher, w.cfg.Root); err != nil {
		return errors.Wrapf(err, "unable to watch %s", w.cfg.Root)
	}

	logger.Debug("watching project files")

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			w.handle(watcher, event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			logger.Warn("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(watcher *fsnotify.Watcher, event fsnotify.Event) {
	if w.ignored(event.Name) {
		return
	}

	rel, err := filepath.Rel(w.cfg.Root, event.Name)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)

	switch {
	case event.Has(fsnotify.Create):
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			_ = w.addRecursive(watcher, event.Name)

			return
		}

		w.handler(rel, false)
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.handler(rel, true)
	}
}

func (w *Watcher) addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}

			return nil
		}

		if !d.IsDir() {
			return nil
		}

		if path != root && w.ignored(path) {
			return filepath.SkipDir
		}

		return watcher.Add(path)
	})
}

func (w *Watcher) ignored(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range w.cfg.Ignore {
		if base == pattern {
			return true
		}

		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}

		if strings.Contains(filepath.ToSlash(path), "/"+pattern+"/") {
			return true
		}
	}

	return false
}
