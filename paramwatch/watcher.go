// Package paramwatch re-applies parameter overrides when their file changes.
// Only values that differ from the previous version of the file are written,
// and every write goes through the host's permission checks.
package paramwatch

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/GoCodeAlone/unitmod"
	"github.com/GoCodeAlone/unitmod/feeders"
	"github.com/GoCodeAlone/unitmod/klog"
)

// DefaultDebounce coalesces the burst of events an editor's save produces.
const DefaultDebounce = 200 * time.Millisecond

// Writer applies one parameter write. *unitmod.Host implements it.
type Writer interface {
	WriteParam(unit, param, text string) error
}

var _ Writer = (*unitmod.Host)(nil)

// Result summarizes one reload.
type Result struct {
	Applied []string
	Skipped []string
	Failed  []string
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the watcher's logger.
func WithLogger(l unitmod.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// WithDebounce sets how long the watcher waits after the last event.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// OnReload registers a callback run after every reload triggered by the file.
func OnReload(fn func(Result, error)) Option {
	return func(w *Watcher) { w.onReload = append(w.onReload, fn) }
}

// Watcher watches one overrides file.
type Watcher struct {
	mu       sync.Mutex
	path     string
	feeder   feeders.Feeder
	writer   Writer
	logger   unitmod.Logger
	debounce time.Duration
	last     feeders.Overrides
	onReload []func(Result, error)

	fsw    *fsnotify.Watcher
	stopCh chan struct{}
	doneCh chan struct{}
}

// New reads path once and returns a watcher that has not started watching.
// The initial overrides are available from Initial for use at load time.
func New(path string, writer Writer, opts ...Option) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}
	feeder, err := feeders.ForFile(absPath)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path:     absPath,
		feeder:   feeder,
		writer:   writer,
		logger:   klog.NewLogger(klog.Discard, "paramwatch"),
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.last, err = feeders.Load(feeder); err != nil {
		return nil, fmt.Errorf("load overrides: %w", err)
	}
	return w, nil
}

// Initial returns the overrides as last read from the file.
func (w *Watcher) Initial() feeders.Overrides {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(feeders.Overrides)
	out.Merge(w.last)
	return out
}

// Reload re-reads the file and writes every changed value. A file that fails
// to parse leaves the previous values in place.
func (w *Watcher) Reload() (Result, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	next, err := feeders.Load(w.feeder)
	if err != nil {
		w.logger.Error("Override reload failed, keeping current values", "path", w.path, "error", err)
		return Result{}, fmt.Errorf("reload overrides: %w", err)
	}

	var res Result
	for _, key := range changed(w.last, next) {
		unit, param := key[0], key[1]
		id := unit + "." + param
		err := w.writer.WriteParam(unit, param, next[unit][param])
		switch {
		case err == nil:
			res.Applied = append(res.Applied, id)
		case errors.Is(err, unitmod.ErrUnitNotLoaded):
			w.logger.Debug("Override for unit that is not loaded", "unit", unit, "param", param)
			res.Skipped = append(res.Skipped, id)
		default:
			w.logger.Warn("Override not applied", "unit", unit, "param", param, "error", err)
			res.Failed = append(res.Failed, id)
		}
	}
	w.last = next
	w.logger.Info("Overrides reloaded", "path", w.path, "applied", len(res.Applied), "failed", len(res.Failed))
	return res, nil
}

// changed returns the sorted unit/param pairs whose value differs between
// prev and next. Pairs removed from next keep their current value.
func changed(prev, next feeders.Overrides) [][2]string {
	var keys [][2]string
	for unit, params := range next {
		for param, value := range params {
			if old, ok := prev[unit][param]; ok && old == value {
				continue
			}
			keys = append(keys, [2]string{unit, param})
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})
	return keys
}

// Start begins watching the file's directory, which also catches editors
// that save by rename.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return fmt.Errorf("watching directory %s: %w", dir, err)
	}
	w.fsw = fsw
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	go w.loop()

	w.logger.Info("Watching overrides", "path", w.path)
	return nil
}

// Stop ends watching and waits for the watch loop to exit.
func (w *Watcher) Stop() error {
	if w.fsw == nil {
		return nil
	}
	close(w.stopCh)
	err := w.fsw.Close()
	<-w.doneCh
	w.fsw = nil
	return err
}

func (w *Watcher) loop() {
	defer close(w.doneCh)
	filename := filepath.Base(w.path)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			res, err := w.Reload()
			for _, fn := range w.onReload {
				fn(res, err)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", "error", err)

		case <-w.stopCh:
			return
		}
	}
}
