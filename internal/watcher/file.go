package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/julianstephens/dayquote/internal/logger"
)

// FileWatcher reports writes to a single file. The parent directory is
// watched so that atomic replace-by-rename and sqlite -wal/-journal
// companions are seen.
type FileWatcher struct {
	path      string
	watcher   *fsnotify.Watcher
	closeOnce sync.Once
}

func NewFileWatcher(path string) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve watch path: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	return &FileWatcher{path: abs, watcher: w}, nil
}

// Matches reports whether an event path refers to the watched file or one of
// its sqlite companions.
func (f *FileWatcher) Matches(name string) bool {
	if name == f.path {
		return true
	}
	return strings.HasPrefix(name, f.path+"-")
}

// Run calls notify for every relevant change until ctx is done, then closes
// the underlying watcher.
func (f *FileWatcher) Run(ctx context.Context, notify func()) error {
	defer f.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-f.watcher.Events:
			if !ok {
				return nil
			}
			if !f.Matches(event.Name) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				logger.Debug("Store file changed", "path", event.Name, "op", event.Op.String())
				notify()
			}
		case err, ok := <-f.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("File watcher error", "error", err)
		}
	}
}

func (f *FileWatcher) Close() error {
	var err error
	f.closeOnce.Do(func() { err = f.watcher.Close() })
	return err
}
