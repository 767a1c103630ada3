// Package watch re-triggers fixture runs when fixtures or the binary change.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ppiankov/langbench/internal/fixture"
)

// debounceDefault collapses bursts of writes (editor saves, rebuilds) into one run.
const debounceDefault = 200 * time.Millisecond

// pollDefault is the polling interval when fsnotify is unavailable.
const pollDefault = time.Second

// Config holds watcher configuration.
type Config struct {
	Dir          string        // fixture directory
	Binary       string        // binary under test; empty when resolved via PATH
	Poll         bool          // poll instead of using fsnotify
	Debounce     time.Duration // 0 = debounceDefault
	PollInterval time.Duration // 0 = pollDefault
}

// Watcher reports changes to fixture files and the binary under test.
type Watcher struct {
	cfg Config
}

// New validates cfg and creates a watcher.
func New(cfg Config) (*Watcher, error) {
	info, err := os.Stat(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("watch dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch dir: %s is not a directory", cfg.Dir)
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = debounceDefault
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = pollDefault
	}
	return &Watcher{cfg: cfg}, nil
}

// Run blocks until ctx is cancelled, calling onChange with the base name of
// the last changed file after each debounced burst. Calls are made from the
// Run goroutine, so they never overlap.
func (w *Watcher) Run(ctx context.Context, onChange func(trigger string)) error {
	if w.cfg.Poll {
		return w.runPollWatcher(ctx, onChange)
	}
	return w.runFSWatcher(ctx, onChange)
}

// relevant reports whether path is a fixture file or the binary.
func (w *Watcher) relevant(path string) bool {
	if w.cfg.Binary != "" && sameFile(path, w.cfg.Binary) {
		return true
	}
	return sameFile(filepath.Dir(path), w.cfg.Dir) && fixture.IsFixtureFile(filepath.Base(path))
}

func (w *Watcher) runFSWatcher(ctx context.Context, onChange func(string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(w.cfg.Dir); err != nil {
		return fmt.Errorf("watch dir: %w", err)
	}
	// Builds usually replace the binary, so watch its directory rather than the file.
	if w.cfg.Binary != "" {
		binDir := filepath.Dir(w.cfg.Binary)
		if !sameFile(binDir, w.cfg.Dir) {
			if err := watcher.Add(binDir); err != nil {
				return fmt.Errorf("watch binary dir: %w", err)
			}
		}
	}

	slog.Info("watching fixtures", "mode", "fsnotify", "dir", w.cfg.Dir, "binary", w.cfg.Binary)

	var (
		timer   *time.Timer
		fire    <-chan time.Time
		trigger string
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			slog.Info("watch stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !w.relevant(event.Name) {
				continue
			}
			slog.Debug("watch event", "file", event.Name, "op", event.Op.String())

			trigger = filepath.Base(event.Name)
			if timer == nil {
				timer = time.NewTimer(w.cfg.Debounce)
			} else {
				timer.Reset(w.cfg.Debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			onChange(trigger)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

type fileStamp struct {
	modTime time.Time
	size    int64
}

func (w *Watcher) runPollWatcher(ctx context.Context, onChange func(string)) error {
	slog.Info("watching fixtures", "mode", "poll", "dir", w.cfg.Dir, "interval", w.cfg.PollInterval)

	seen := w.snapshot()
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("watch stopped")
			return nil
		case <-ticker.C:
			current := w.snapshot()
			if trigger, changed := diffSnapshots(seen, current); changed {
				seen = current
				onChange(trigger)
			}
		}
	}
}

func (w *Watcher) snapshot() map[string]fileStamp {
	stamps := make(map[string]fileStamp)
	if entries, err := os.ReadDir(w.cfg.Dir); err == nil {
		for _, e := range entries {
			if e.IsDir() || !fixture.IsFixtureFile(e.Name()) {
				continue
			}
			if info, err := e.Info(); err == nil {
				stamps[filepath.Join(w.cfg.Dir, e.Name())] = fileStamp{info.ModTime(), info.Size()}
			}
		}
	}
	if w.cfg.Binary != "" {
		if info, err := os.Stat(w.cfg.Binary); err == nil {
			stamps[w.cfg.Binary] = fileStamp{info.ModTime(), info.Size()}
		}
	}
	return stamps
}

// diffSnapshots returns the base name of one changed, added or removed file.
func diffSnapshots(prev, cur map[string]fileStamp) (string, bool) {
	for path, st := range cur {
		if old, ok := prev[path]; !ok || old != st {
			return filepath.Base(path), true
		}
	}
	for path := range prev {
		if _, ok := cur[path]; !ok {
			return filepath.Base(path), true
		}
	}
	return "", false
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
