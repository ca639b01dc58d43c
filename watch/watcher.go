// Package watch re-syncs linked pages when the task list changes on disk.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/teranos/dex/engine"
	"github.com/teranos/dex/errors"
	"github.com/teranos/dex/logger"
	"github.com/teranos/dex/vault"
)

// DefaultDebounce coalesces the burst of events one editor save produces
const DefaultDebounce = 500 * time.Millisecond

// SyncCallback is called after each debounced resync
type SyncCallback func(*engine.LinkedSync, error)

// Watcher watches the task list and re-syncs every page it links after a change
type Watcher struct {
	engine         *engine.Engine
	watcher        *fsnotify.Watcher
	files          map[string]bool // base names that trigger a resync
	callbacks      []SyncCallback
	mu             sync.Mutex
	debounceTimer  *time.Timer
	debouncePeriod time.Duration
	log            *zap.SugaredLogger
}

// New watches the directories holding the task list and the week priorities of
// the engine's current layout. debounce <= 0 uses DefaultDebounce.
func New(e *engine.Engine, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	l := e.Vault().Layout()
	dir := filepath.Dir(l.Tasks())
	if _, err := os.Stat(dir); err != nil {
		return nil, errors.WithHintf(
			errors.NewNotFoundError("task list directory not found: %s", dir),
			"create %s or point vault.path at your vault", vault.TasksFile,
		)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	// the directory, not the file: atomic writes replace the file's inode
	dirs := []string{dir}
	if wp := filepath.Dir(l.WeekPriorities()); wp != dir {
		if _, err := os.Stat(wp); err == nil {
			dirs = append(dirs, wp)
		}
	}
	for _, d := range dirs {
		if err := fw.Add(d); err != nil {
			fw.Close()
			return nil, errors.Wrapf(err, "failed to watch %s", d)
		}
	}

	return &Watcher{
		engine:  e,
		watcher: fw,
		files: map[string]bool{
			filepath.Base(l.Tasks()):          true,
			filepath.Base(l.WeekPriorities()): true,
		},
		debouncePeriod: debounce,
		log:            logger.ComponentLogger("watch"),
	}, nil
}

// OnSync registers a callback to be called after each resync
func (w *Watcher) OnSync(cb SyncCallback) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, cb)
}

// Run processes events until ctx is done, then closes the watcher
func (w *Watcher) Run(ctx context.Context) error {
	defer w.stop()
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.log.Debugw("Task list changed", logger.FieldFile, event.Name, "op", event.Op.String())
			w.scheduleSync(ctx)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warnw("Watcher error", logger.FieldError, err)
		}
	}
}

// relevant reports whether event changes a watched document. Renames onto the
// file arrive as Create.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	return w.files[filepath.Base(event.Name)]
}

// scheduleSync debounces rapid changes and triggers one resync
func (w *Watcher) scheduleSync(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debouncePeriod, func() {
		if ctx.Err() != nil {
			return
		}
		w.sync(ctx)
	})
}

func (w *Watcher) sync(ctx context.Context) {
	res, err := w.engine.SyncLinkedPages(logger.WithComponent(ctx, "watch"))
	if err != nil {
		w.log.Errorw("Resync failed", logger.FieldError, err)
	} else {
		w.log.Infow("Resynced linked pages", logger.FieldCount, len(res.Pages), "failed", len(res.Failed))
	}

	w.mu.Lock()
	callbacks := make([]SyncCallback, len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()

	for _, cb := range callbacks {
		cb(res, err)
	}
}

func (w *Watcher) stop() {
	w.mu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.mu.Unlock()
	if err := w.watcher.Close(); err != nil {
		w.log.Debugw("Closing watcher", logger.FieldError, err)
	}
}
