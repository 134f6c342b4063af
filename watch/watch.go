// Package watch reruns a callback when benchmark artifacts change on disk.
package watch

import (
	"context"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const DefaultDebounce = 500 * time.Millisecond

// Watcher watches a set of artifact files. wrk and dstat write their output
// in several bursts, so events are debounced before the callback runs.
type Watcher struct {
	// Dir is watched as a whole when Files is empty.
	Dir      string
	Debounce time.Duration
	// Files are the watched paths. Their parent directories are watched and
	// events are matched on the full path.
	Files  []string
	Logger *zap.Logger
}

func New(dir string, files []string, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{Dir: dir, Debounce: DefaultDebounce, Files: files, Logger: logger}
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

// targets returns the directories to add and the cleaned absolute file set.
func (w *Watcher) targets() (dirs, files []string) {
	if len(w.Files) == 0 {
		return []string{absPath(w.Dir)}, nil
	}
	for _, f := range w.Files {
		f = absPath(f)
		if !slices.Contains(files, f) {
			files = append(files, f)
		}
		if d := filepath.Dir(f); !slices.Contains(dirs, d) {
			dirs = append(dirs, d)
		}
	}
	return dirs, files
}

func relevant(ev fsnotify.Event, files []string) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
		!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	return len(files) == 0 || slices.Contains(files, absPath(ev.Name))
}

// Run calls onChange after every quiet period following a change, until ctx
// is done. Errors from onChange are logged, not returned.
func (w *Watcher) Run(ctx context.Context, onChange func(context.Context) error) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	dirs, files := w.targets()
	var watched int
	var addErr error
	for _, d := range dirs {
		if err := fw.Add(d); err != nil {
			w.Logger.Warn("cannot watch directory", zap.String("dir", d), zap.Error(err))
			addErr = multierr.Append(addErr, err)
			continue
		}
		watched++
	}
	if watched == 0 {
		return addErr
	}
	w.Logger.Info("watching for artifact changes", zap.Strings("dirs", dirs), zap.Int("files", len(files)))

	timer := time.NewTimer(w.Debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !relevant(ev, files) {
				continue
			}
			w.Logger.Debug("artifact changed", zap.String("file", ev.Name), zap.Stringer("op", ev.Op))
			timer.Reset(w.Debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.Logger.Warn("watch error", zap.Error(err))

		case <-timer.C:
			if err := onChange(ctx); err != nil {
				w.Logger.Error("update after change failed", zap.Error(err))
			}
		}
	}
}
