// Package watcher provides file system watching with debouncing for a source
// directory of Go resources.
package watcher

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zjrosen/roster/internal/log"
)

// Watcher monitors a source tree for resource changes and sends notifications.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	root      string
	debounce  time.Duration
	onChange  chan struct{}
	done      chan struct{}
}

// Config holds watcher configuration options.
type Config struct {
	Root        string
	DebounceDur time.Duration
}

// DefaultConfig returns sensible defaults for the watcher.
func DefaultConfig(root string) Config {
	return Config{
		Root:        root,
		DebounceDur: 300 * time.Millisecond,
	}
}

// New creates a new source tree watcher.
func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	return &Watcher{
		fsWatcher: fsw,
		root:      cfg.Root,
		debounce:  cfg.DebounceDur,
		onChange:  make(chan struct{}, 1),
		done:      make(chan struct{}),
	}, nil
}

// Start begins watching the root and every directory below it.
// Returns a channel that receives a signal when a resource changes.
func (w *Watcher) Start() (<-chan struct{}, error) {
	if err := w.addTree(w.root); err != nil {
		return nil, err
	}

	go w.loop()

	return w.onChange, nil
}

// Stop terminates the watcher and releases resources.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.fsWatcher.Close()
}

// addTree watches dir and its subdirectories. fsnotify is not recursive.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != dir && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fsWatcher.Add(p); err != nil {
			return fmt.Errorf("watching directory %s: %w", p, err)
		}
		return nil
	})
}

// loop processes file system events with debouncing.
func (w *Watcher) loop() {
	var (
		timer   *time.Timer
		pending bool
	)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			relevant := isRelevantEvent(event)
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if skipDir(info.Name()) {
						continue
					}
					// A directory moved in may already hold resources.
					if err := w.addTree(event.Name); err != nil {
						log.ErrorErr(log.CatWatcher, "Failed to watch new directory", err, "dir", event.Name)
						continue
					}
					relevant = true
				}
			}

			if !relevant {
				continue
			}
			log.Debug(log.CatWatcher, "Resource changed", "path", event.Name, "op", event.Op.String())

			// Reset or start debounce timer
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				pending = true
			} else {
				if !timer.Stop() {
					// Drain the timer channel if it already fired
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
				pending = true
			}

		case <-func() <-chan time.Time {
			if timer != nil {
				return timer.C
			}
			return nil
		}():
			if pending {
				// Non-blocking send - drop if channel full
				select {
				case w.onChange <- struct{}{}:
				default:
				}
				pending = false
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.ErrorErr(log.CatWatcher, "Watcher error", err)

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// isRelevantEvent checks if the event can change the loaded types. A removed
// or renamed path can no longer be inspected, so any name that may be a
// directory counts: one without an extension that is not skipped.
func isRelevantEvent(event fsnotify.Event) bool {
	base := filepath.Base(event.Name)
	switch {
	case event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0:
		return false
	case isResource(base):
		return true
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		return filepath.Ext(base) == "" && !skipDir(base)
	}
	return false
}

func isResource(name string) bool {
	return strings.HasSuffix(name, ".go") && !strings.HasSuffix(name, "_test.go")
}

func skipDir(name string) bool {
	return name == "testdata" || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}
