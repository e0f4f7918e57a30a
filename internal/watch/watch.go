// Package watch monitors the output directory and coalesces file-change
// bursts into change sets for the reload channel.
//
// The build pipeline proper is an external collaborator; this watcher
// exists so the standalone CLI has a change-event source when pointed at
// a directory some other tool writes into.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultIgnore contains file patterns never reported as changes.
var DefaultIgnore = []string{
	".git",
	"node_modules",
	"*.tmp",
	"*.swp",
	"*~",
}

// Config configures the watcher.
type Config struct {
	// Dir is the directory tree to watch.
	Dir string

	// Ignore patterns to skip (matched against base names).
	Ignore []string

	// Debounce is how long to wait after the last event before reporting
	// the accumulated change set.
	Debounce time.Duration
}

// Watcher reports batches of changed files under one directory tree.
type Watcher struct {
	config   Config
	onChange func(files []string)

	mu      sync.Mutex
	pending map[string]bool
	running bool
}

// New creates a watcher for the given configuration.
func New(config Config) *Watcher {
	if config.Debounce == 0 {
		config.Debounce = 100 * time.Millisecond
	}
	if len(config.Ignore) == 0 {
		config.Ignore = DefaultIgnore
	}
	return &Watcher{
		config:  config,
		pending: make(map[string]bool),
	}
}

// OnChange sets the callback invoked with each coalesced change set.
func (w *Watcher) OnChange(fn func(files []string)) {
	w.onChange = fn
}

// Start watches until the context is canceled. Subdirectories created
// while running are picked up as they appear.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := w.addTree(fsw, w.config.Dir); err != nil {
		return err
	}

	w.mu.Lock()
	w.running = true
	w.mu.Unlock()

	timer := time.NewTimer(w.config.Debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if w.ignored(event.Name) {
				continue
			}
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					w.addTree(fsw, event.Name)
					continue
				}
			}
			if event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename) {
				w.mu.Lock()
				w.pending[event.Name] = true
				w.mu.Unlock()
				timer.Reset(w.config.Debounce)
			}

		case _, ok := <-fsw.Errors:
			if !ok {
				return nil
			}

		case <-timer.C:
			w.flush()
		}
	}
}

// flush reports and clears the pending change set.
func (w *Watcher) flush() {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	files := make([]string, 0, len(w.pending))
	for f := range w.pending {
		files = append(files, f)
	}
	w.pending = make(map[string]bool)
	w.mu.Unlock()

	if w.onChange != nil {
		w.onChange(files)
	}
}

// addTree registers dir and every subdirectory with the fsnotify watcher.
func (w *Watcher) addTree(fsw *fsnotify.Watcher, dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if w.ignored(path) {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
}

func (w *Watcher) ignored(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range w.config.Ignore {
		if strings.ContainsAny(pattern, "*?[") {
			if ok, _ := filepath.Match(pattern, base); ok {
				return true
			}
			continue
		}
		if base == pattern {
			return true
		}
	}
	return false
}
