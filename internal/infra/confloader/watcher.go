package confloader

import (
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches a configuration file for changes. It watches the
// containing directory rather than the file itself so editor-style
// rename-and-replace writes are still seen.
type Watcher struct {
	watcher  *fsnotify.Watcher
	callback func(string)
	done     chan struct{}
	logger   *slog.Logger
}

// NewWatcher creates a watcher that invokes callback with the changed
// path on every write or create event.
func NewWatcher(logger *slog.Logger, callback func(string)) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		watcher:  w,
		callback: callback,
		done:     make(chan struct{}),
		logger:   logger,
	}, nil
}

// Watch adds the directory containing path to the watch set.
func (w *Watcher) Watch(path string) error {
	dir := filepath.Dir(path)
	if err := w.watcher.Add(dir); err != nil {
		return err
	}
	w.logger.Debug("watching directory for changes", "path", dir, "file", filepath.Base(path))
	return nil
}

// Start consumes events until Stop is called. Run it in its own
// goroutine.
func (w *Watcher) Start() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.logger.Debug("configuration file changed", "file", event.Name, "op", event.Op.String())
				w.callback(event.Name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("configuration watcher error", "error", err)
		case <-w.done:
			return
		}
	}
}

// Stop terminates the watcher.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.watcher.Close()
}
