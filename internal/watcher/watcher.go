// Package watcher is the poller that keeps the note collection in step with
// the notes folder. It reacts to fsnotify events and also refreshes on a
// fixed interval, since folder-sync tools do not always produce events.
package watcher

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/notestxt/internal/apperr"
	"github.com/starford/notestxt/internal/collection"
	"github.com/starford/notestxt/internal/storage"
)

const defaultDebounce = 200 * time.Millisecond

// Target receives the refreshes. *noteservice.Service implements it.
type Target interface {
	Refresh(ctx context.Context) ([]string, error)
	AddFile(ctx context.Context, path string) error
}

// Watcher polls one notes folder.
type Watcher struct {
	folder   string
	target   Target
	interval time.Duration
	debounce time.Duration
	provider storage.Provider
	logger   *slog.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithInterval sets the polling interval. Zero disables interval polling.
func WithInterval(d time.Duration) Option {
	return func(w *Watcher) { w.interval = d }
}

// WithDebounce sets how long file events are coalesced before a refresh.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithProvider sets the filesystem used to scan for new note files.
func WithProvider(p storage.Provider) Option {
	return func(w *Watcher) { w.provider = p }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// New returns a watcher for folder.
func New(folder string, target Target, opts ...Option) *Watcher {
	w := &Watcher{
		folder:   folder,
		target:   target,
		interval: 2 * time.Second,
		debounce: defaultDebounce,
		provider: storage.NewFS(),
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Run processes file events and ticks until ctx is cancelled. When fsnotify
// is unavailable it falls back to interval polling alone.
func (w *Watcher) Run(ctx context.Context) error {
	var (
		events <-chan fsnotify.Event
		errs   <-chan error
	)
	fw, err := fsnotify.NewWatcher()
	if err == nil {
		defer fw.Close()
		err = fw.Add(w.folder)
	}
	if err != nil {
		if w.interval <= 0 {
			return err
		}
		w.logger.Warn("watcher: fsnotify unavailable, polling only",
			slog.String("folder", w.folder),
			slog.String("error", err.Error()))
	} else {
		events, errs = fw.Events, fw.Errors
	}

	var tick <-chan time.Time
	if w.interval > 0 {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	// debounceTimer coalesces bursts of events into one refresh.
	var debounceTimer *time.Timer
	var debounceCh <-chan time.Time
	scheduleRefresh := func() {
		if debounceTimer == nil {
			debounceTimer = time.NewTimer(w.debounce)
			debounceCh = debounceTimer.C
		} else {
			debounceTimer.Reset(w.debounce)
		}
	}

	w.logger.Info("watcher: started",
		slog.String("folder", w.folder),
		slog.Duration("interval", w.interval))

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			w.logger.Info("watcher: stopped")
			return nil

		case <-debounceCh:
			w.refresh(ctx)

		case <-tick:
			w.scan(ctx)
			w.refresh(ctx)

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if !collection.IsNoteFile(filepath.Base(ev.Name)) {
				continue
			}
			if ev.Op&fsnotify.Create != 0 {
				w.addFile(ctx, ev.Name)
			}
			scheduleRefresh()

		case watchErr, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			w.logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// scan picks up note files that appeared without an event.
func (w *Watcher) scan(ctx context.Context) {
	names, err := w.provider.List(w.folder)
	if err != nil {
		w.logger.Warn("watcher: list failed", slog.String("error", err.Error()))
		return
	}
	for _, name := range names {
		if collection.IsNoteFile(name) {
			w.addFile(ctx, filepath.Join(w.folder, name))
		}
	}
}

func (w *Watcher) addFile(ctx context.Context, path string) {
	if err := w.target.AddFile(ctx, path); err != nil {
		w.logger.Warn("watcher: add file failed", slog.String("path", path), slog.String("error", err.Error()))
	}
}

func (w *Watcher) refresh(ctx context.Context) {
	changed, err := w.target.Refresh(ctx)
	switch {
	case errors.Is(err, apperr.ErrConflict):
		w.logger.Warn("watcher: notes changed while edits are unsaved", slog.Any("paths", changed))
	case err != nil:
		w.logger.Error("watcher: refresh failed", slog.String("error", err.Error()))
	case len(changed) > 0:
		w.logger.Debug("watcher: refreshed", slog.Any("paths", changed))
	}
}
