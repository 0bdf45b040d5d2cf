package maintenance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"fsort/internal/paths"
	"fsort/internal/slogutil"
	"fsort/internal/storage"
)

// EventType represents the type of file system event
type EventType int

const (
	EventCreate EventType = iota
	EventModify
	EventDelete
	EventRename
)

func (e EventType) String() string {
	switch e {
	case EventCreate:
		return "create"
	case EventModify:
		return "modify"
	case EventDelete:
		return "delete"
	case EventRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Event is a file system change seen by the watcher.
type Event struct {
	Type      EventType
	Path      string
	Timestamp time.Time
}

func translate(ev fsnotify.Event) (Event, bool) {
	e := Event{Path: ev.Name, Timestamp: time.Now()}
	switch {
	case ev.Has(fsnotify.Remove):
		e.Type = EventDelete
	case ev.Has(fsnotify.Rename):
		e.Type = EventRename
	case ev.Has(fsnotify.Create):
		e.Type = EventCreate
	case ev.Has(fsnotify.Write):
		e.Type = EventModify
	default:
		return Event{}, false
	}
	return e, true
}

// PruneHandler is told about the rows removed from dir after a change settled.
type PruneHandler func(dir string, removed []CachedEntry)

// WatchConfig contains watcher configuration
type WatchConfig struct {
	DebounceMs     int      `json:"debounceMs" mapstructure:"debounceMs"`
	IgnorePatterns []string `json:"ignorePatterns" mapstructure:"ignorePatterns"`
}

// DefaultWatchConfig returns the default watcher configuration
func DefaultWatchConfig() WatchConfig {
	return WatchConfig{
		DebounceMs: 500,
		IgnorePatterns: []string{
			"*.tmp",
			"*.swp",
			"*.part",
			"*.crdownload",
			".DS_Store",
			"~$*",
		},
	}
}

// Watcher prunes cache rows for files deleted or renamed away from the
// watched directories. Changes are debounced per directory.
type Watcher struct {
	store     storage.TaxonomyStore
	config    WatchConfig
	logger    *slog.Logger
	onPrune   PruneHandler
	fs        *fsnotify.Watcher
	debouncer *Debouncer
	ready     chan []string
	done      chan struct{}

	mu      sync.RWMutex
	watched map[string]struct{}
}

// NewWatcher creates a watcher. onPrune may be nil.
func NewWatcher(store storage.TaxonomyStore, config WatchConfig, logger *slog.Logger, onPrune PruneHandler) (*Watcher, error) {
	if store == nil {
		return nil, errors.New("watcher needs a taxonomy store")
	}
	if config.DebounceMs <= 0 {
		config.DebounceMs = DefaultWatchConfig().DebounceMs
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		store:   store,
		config:  config,
		logger:  slogutil.OrDiscard(logger),
		onPrune: onPrune,
		fs:      fw,
		ready:   make(chan []string, 1),
		done:    make(chan struct{}),
		watched: make(map[string]struct{}),
	}
	w.debouncer = NewDebouncer(time.Duration(config.DebounceMs)*time.Millisecond, func(dirs []string) {
		select {
		case w.ready <- dirs:
		case <-w.done:
		}
	})
	return w, nil
}

// Watch adds dir. Watching the same directory twice is a no-op.
func (w *Watcher) Watch(dir string) error {
	if dir == "" {
		return errors.New("directory is required")
	}
	dir = paths.CleanDir(dir)

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.watched[dir]; ok {
		return nil
	}
	if err := w.fs.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	w.watched[dir] = struct{}{}
	w.logger.Info("Watching directory", "path", dir)
	return nil
}

// Unwatch removes dir.
func (w *Watcher) Unwatch(dir string) error {
	if dir == "" {
		return errors.New("directory is required")
	}
	dir = paths.CleanDir(dir)

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.watched[dir]; !ok {
		return nil
	}
	delete(w.watched, dir)
	if err := w.fs.Remove(dir); err != nil && !errors.Is(err, fsnotify.ErrNonExistentWatch) {
		return fmt.Errorf("failed to unwatch %s: %w", dir, err)
	}
	w.logger.Info("Stopped watching directory", "path", dir)
	return nil
}

// Watched returns the watched directories, sorted.
func (w *Watcher) Watched() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	dirs := make([]string, 0, len(w.watched))
	for d := range w.watched {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	return dirs
}

// Run processes events until ctx is done or Close is called. Pending
// directories are pruned before it returns.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.done)

	w.logger.Info("Starting file watcher", "debounceMs", w.config.DebounceMs)
	for {
		select {
		case <-ctx.Done():
			w.shutdown(context.WithoutCancel(ctx))
			return nil

		case ev, ok := <-w.fs.Events:
			if !ok {
				w.shutdown(ctx)
				return nil
			}
			w.handle(ev)

		case err, ok := <-w.fs.Errors:
			if !ok {
				w.shutdown(ctx)
				return nil
			}
			w.logger.Warn("File watcher error", "error", err)

		case dirs := <-w.ready:
			w.prune(ctx, dirs)
		}
	}
}

// Close stops the underlying watcher; Run returns after draining.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

func (w *Watcher) handle(ev fsnotify.Event) {
	e, ok := translate(ev)
	if !ok || w.IsIgnored(e.Path) {
		return
	}
	w.logger.Debug("File change", "type", e.Type.String(), "path", e.Path)
	if e.Type == EventDelete || e.Type == EventRename {
		w.debouncer.Add(filepath.Dir(e.Path))
	}
}

func (w *Watcher) shutdown(ctx context.Context) {
	dirs := w.debouncer.Drain()
	select {
	case more := <-w.ready:
		dirs = append(dirs, more...)
	default:
	}
	w.prune(ctx, dirs)
	w.logger.Info("File watcher stopped")
}

func (w *Watcher) prune(ctx context.Context, dirs []string) {
	for _, dir := range dirs {
		removed, err := PruneEmptyCachedEntries(ctx, w.store, dir)
		if err != nil {
			w.logger.Error("Failed to prune cache", "dir", dir, "error", err)
			continue
		}
		if len(removed) == 0 {
			continue
		}
		w.logger.Info("Pruned cache entries", "dir", dir, "removed", len(removed))
		if w.onPrune != nil {
			w.onPrune(dir, removed)
		}
	}
}

// IsIgnored checks if the base name of path matches an ignore pattern.
func (w *Watcher) IsIgnored(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range w.config.IgnorePatterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
		if strings.EqualFold(pattern, base) {
			return true
		}
	}
	return false
}
