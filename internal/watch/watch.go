// Package watch re-runs a build whenever its input files change.
//
// File events are collected until no new event arrives for the debounce
// window, then the handler runs once for the whole batch. The handler runs on
// the event loop, so a run never overlaps the previous one.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/agentstation/rollcall/pkg/constants"
	"github.com/agentstation/rollcall/pkg/errors"
	"github.com/agentstation/rollcall/pkg/logging"
)

// Handler is called with the changed paths of one settled batch.
type Handler func(ctx context.Context, paths []string) error

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long the watcher waits for events to settle.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// Watcher watches files and directories for changes.
type Watcher struct {
	fs       *fsnotify.Watcher
	handler  Handler
	debounce time.Duration

	dirs  map[string]bool // watched recursively
	files map[string]bool // watched through their parent directory
}

// New starts watching paths. A directory is watched with all of its
// subdirectories. A file is watched through its parent so that editors that
// replace files on save are still seen.
func New(handler Handler, paths []string, opts ...Option) (*Watcher, error) {
	if handler == nil {
		return nil, errors.NewValidationError("handler", nil, "cannot be nil")
	}
	if len(paths) == 0 {
		return nil, errors.NewValidationError("paths", nil, "nothing to watch")
	}

	notify, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WrapResource("create", "watcher", "", err)
	}
	w := &Watcher{
		fs:       notify,
		handler:  handler,
		debounce: constants.WatchDebounce,
		dirs:     make(map[string]bool),
		files:    make(map[string]bool),
	}
	for _, opt := range opts {
		opt(w)
	}

	for _, p := range paths {
		if err := w.add(p); err != nil {
			_ = notify.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) add(path string) error {
	path = filepath.Clean(path)
	info, err := os.Stat(path)
	if err != nil {
		return errors.WrapIO("watch", path, err)
	}
	if !info.IsDir() {
		w.files[path] = true
		return errors.WrapIO("watch", path, w.fs.Add(filepath.Dir(path)))
	}
	return w.addRecursive(path)
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.WrapIO("walk", path, err)
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && hidden(path) {
			return filepath.SkipDir
		}
		w.dirs[path] = true
		return errors.WrapIO("watch", path, w.fs.Add(path))
	})
}

// relevant reports whether an event on path belongs to a watched input.
func (w *Watcher) relevant(path string) bool {
	if hidden(path) {
		return false
	}
	if w.files[path] {
		return true
	}
	return w.dirs[filepath.Dir(path)]
}

// Run processes events until ctx is cancelled. Handler errors are logged and
// do not stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	logger := logging.FromContext(ctx).With().Str("component", "watch").Logger()
	defer func() { _ = w.fs.Close() }()

	var batch []string
	var timer *time.Timer
	var timerC <-chan time.Time

	flush := func() {
		if len(batch) == 0 {
			return
		}
		paths := slices.Clone(batch)
		slices.Sort(paths)
		paths = slices.Compact(paths)
		batch = batch[:0]

		logger.Info().Strs("paths", paths).Msg("Inputs changed")
		if err := w.handler(ctx, paths); err != nil {
			logger.Error().Err(err).Msg("Run after change failed")
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if event.Op == fsnotify.Chmod || !w.relevant(event.Name) {
				continue
			}
			if event.Has(fsnotify.Create) && w.dirs[filepath.Dir(event.Name)] {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(event.Name); err != nil {
						logger.Warn().Err(err).Str("path", event.Name).Msg("Could not watch new directory")
					}
				}
			}
			batch = append(batch, event.Name)

			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			flush()

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("Watcher error")
		}
	}
}

// Close stops watching without waiting for Run to return.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

func hidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
