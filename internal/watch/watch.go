// Package watch reports changes to a set of files with a trailing debounce.
package watch

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	mdwerror "github.com/msto63/cdlc/foundation/core/error"
	mdwlog "github.com/msto63/cdlc/foundation/core/log"
)

// Watcher watches files for writes, creates and renames. The parent
// directories are watched so that editors replacing a file are noticed.
type Watcher struct {
	fs       *fsnotify.Watcher
	files    map[string]bool
	debounce time.Duration
	logger   *mdwlog.Logger
}

// New creates a watcher for paths. Events for one file arriving within
// debounce of each other are reported once.
func New(paths []string, debounce time.Duration, logger *mdwlog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, mdwerror.Wrap(err, "failed to create watcher").
			WithCode(mdwerror.CodeInternal).
			WithOperation("watch.New")
	}

	w := &Watcher{
		fs:       fsw,
		files:    make(map[string]bool),
		debounce: debounce,
		logger:   logger.WithName("watch"),
	}

	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fsw.Close()
			return nil, mdwerror.Wrap(err, "invalid path").
				WithCode(mdwerror.CodeInvalidInput).
				WithOperation("watch.New").
				WithDetail("path", p)
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}

	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, mdwerror.Wrap(err, "failed to watch directory").
				WithCode(mdwerror.CodeNotFound).
				WithOperation("watch.New").
				WithDetail("dir", dir)
		}
	}
	return w, nil
}

// Run delivers changed paths to onChange until ctx is done. onChange is
// called from the Run goroutine, one path at a time.
func (w *Watcher) Run(ctx context.Context, onChange func(path string)) error {
	defer w.fs.Close()

	pending := make(map[string]*time.Timer)
	fired := make(chan string, len(w.files))
	defer func() {
		for _, t := range pending {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case path := <-fired:
			delete(pending, path)
			onChange(path)

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.files[event.Name] || !event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			w.logger.Debug("file event", mdwlog.Fields{"file": event.Name, "op": event.Op.String()})

			if t, ok := pending[event.Name]; ok {
				t.Reset(w.debounce)
				continue
			}
			name := event.Name
			pending[name] = time.AfterFunc(w.debounce, func() {
				select {
				case fired <- name:
				case <-ctx.Done():
				}
			})

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", mdwlog.Err(err))
		}
	}
}

// Files returns the absolute paths being watched
func (w *Watcher) Files() []string {
	out := make([]string, 0, len(w.files))
	for f := range w.files {
		out = append(out, f)
	}
	return out
}
