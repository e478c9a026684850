// Package watch reports batches of changed source files.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period before a batch of changes is delivered.
const DefaultDebounce = 300 * time.Millisecond

// Watcher watches directory trees and single files and delivers debounced
// batches of changed files that pass its filter.
type Watcher struct {
	watcher  *fsnotify.Watcher
	filter   func(path string) bool
	ignore   func(relPath string, dir bool) bool
	debounce time.Duration
	logger   *zap.Logger

	dirs  []string
	files map[string]bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a batch fires.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithLogger sets the logger for watch errors.
func WithLogger(logger *zap.Logger) Option {
	return func(w *Watcher) { w.logger = logger }
}

// WithIgnore skips paths under directory roots. ignore receives the path
// relative to its root, slash-separated. Ignored directories are not watched.
func WithIgnore(ignore func(relPath string, dir bool) bool) Option {
	return func(w *Watcher) { w.ignore = ignore }
}

// New watches every directory under the directory roots and each root that is
// a file. filter decides which changed paths under directory roots are
// reported; file roots are always reported.
func New(roots []string, filter func(path string) bool, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  fsw,
		filter:   filter,
		debounce: DefaultDebounce,
		logger:   zap.NewNop(),
		files:    make(map[string]bool),
	}
	for _, opt := range opts {
		opt(w)
	}

	for _, root := range roots {
		root = filepath.Clean(root)
		info, err := os.Stat(root)
		if err != nil {
			fsw.Close()
			return nil, err
		}
		if !info.IsDir() {
			// Events arrive for the whole directory; relevant keeps only root.
			w.files[root] = true
			if err := fsw.Add(filepath.Dir(root)); err != nil {
				fsw.Close()
				return nil, err
			}
			continue
		}
		w.dirs = append(w.dirs, root)
		if err := w.addRecursive(root, root); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

// Run delivers batches to fn until ctx is done. Batches are sorted and hold
// each path once. fn runs on the Run goroutine.
func (w *Watcher) Run(ctx context.Context, fn func(paths []string)) error {
	defer w.watcher.Close()

	pending := make(map[string]bool)
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			event.Name = filepath.Clean(event.Name)
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if root, rel, ok := w.locate(event.Name); ok && !w.ignored(rel, true) {
						if err := w.addRecursive(root, event.Name); err != nil {
							w.logger.Warn("failed to watch new directory", zap.String("path", event.Name), zap.Error(err))
						}
					}
					continue
				}
			}
			if !w.relevant(event) {
				continue
			}
			pending[event.Name] = true
			timer.Reset(w.debounce)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			pending = make(map[string]bool)
			fn(paths)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return false
	}
	if w.files[event.Name] {
		return true
	}
	_, rel, ok := w.locate(event.Name)
	if !ok || w.ignored(rel, false) {
		return false
	}
	return w.filter == nil || w.filter(event.Name)
}

// locate finds the directory root holding path and the slash-separated path
// relative to it.
func (w *Watcher) locate(path string) (string, string, bool) {
	for _, root := range w.dirs {
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		return root, filepath.ToSlash(rel), true
	}
	return "", "", false
}

func (w *Watcher) ignored(relPath string, dir bool) bool {
	return w.ignore != nil && relPath != "." && w.ignore(relPath, dir)
}

// addRecursive watches dir and the directories below it that are not ignored
// relative to root.
func (w *Watcher) addRecursive(root, dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			w.logger.Warn("error accessing path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if rel, err := filepath.Rel(root, path); err == nil && w.ignored(filepath.ToSlash(rel), true) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", zap.String("path", path), zap.Error(err))
		}
		return nil
	})
}
