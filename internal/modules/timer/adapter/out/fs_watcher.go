package out

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	timerout "cadence/internal/modules/timer/port/out"
	"cadence/internal/platform/logging"
)

const defaultWatchDebounce = 100 * time.Millisecond

// FSWatcher reports changed state keys by watching the state directory.
// Bursts of events for the same key are collapsed.
type FSWatcher struct {
	dir      string
	debounce time.Duration
	logger   *slog.Logger
}

type WatcherOption func(*FSWatcher)

func WithDebounce(debounce time.Duration) WatcherOption {
	return func(w *FSWatcher) {
		if debounce > 0 {
			w.debounce = debounce
		}
	}
}

func NewFSWatcher(dir string, logger *slog.Logger, opts ...WatcherOption) *FSWatcher {
	w := &FSWatcher{
		dir:      dir,
		debounce: defaultWatchDebounce,
		logger:   logging.Component(logger, "timer.watch"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

var _ timerout.ChangeWatcher = (*FSWatcher)(nil)

func (w *FSWatcher) Watch(ctx context.Context, onChange func(key string)) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start state watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	var (
		mu     sync.Mutex
		timers = map[string]*time.Timer{}
	)
	defer func() {
		mu.Lock()
		for _, timer := range timers {
			timer.Stop()
		}
		mu.Unlock()
	}()
	schedule := func(key string) {
		mu.Lock()
		defer mu.Unlock()
		if timer, ok := timers[key]; ok {
			timer.Stop()
		}
		timers[key] = time.AfterFunc(w.debounce, func() {
			if ctx.Err() != nil {
				return
			}
			onChange(key)
		})
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			key, ok := KeyOf(event.Name)
			if !ok {
				continue
			}
			schedule(key)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("state watcher error", "error", err)
		}
	}
}
