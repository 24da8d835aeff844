package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// EventType represents the type of file change event
type EventType int

const (
	CatalogChanged EventType = iota
	CatalogRemoved
)

func (t EventType) String() string {
	switch t {
	case CatalogChanged:
		return "changed"
	case CatalogRemoved:
		return "removed"
	}
	return "unknown"
}

// Event represents a change to a watched file
type Event struct {
	Type EventType
	Path string
}

// Watcher watches catalog files for changes
type Watcher struct {
	watcher *fsnotify.Watcher
	Events  chan Event
	Errors  chan error
	done    chan struct{}
	mu      sync.Mutex
	running bool
	closed  bool
	files   map[string]bool // base names of watched files, keyed by cleaned path
}

// New creates a new file watcher
func New() (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		watcher: fsWatcher,
		Events:  make(chan Event, 100),
		Errors:  make(chan error, 10),
		done:    make(chan struct{}),
		files:   make(map[string]bool),
	}, nil
}

// WatchFile watches path for writes. The parent directory is watched so that
// editors replacing the file by rename are still seen.
func (w *Watcher) WatchFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	dir := filepath.Dir(abs)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return fmt.Errorf("catalog directory does not exist: %s", dir)
	}

	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch catalog directory: %w", err)
	}

	w.mu.Lock()
	w.files[abs] = true
	w.mu.Unlock()
	return nil
}

// Start begins watching for file changes
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.running || w.closed {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	go w.eventLoop()
}

// eventLoop processes file system events
func (w *Watcher) eventLoop() {
	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			e := w.classifyEvent(event)
			if e != nil {
				// Non-blocking send
				select {
				case w.Events <- *e:
				default:
					// Channel full, skip event
				}
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		}
	}
}

// classifyEvent maps a raw event on a watched file to an Event
func (w *Watcher) classifyEvent(event fsnotify.Event) *Event {
	path := filepath.Clean(event.Name)

	w.mu.Lock()
	watched := w.files[path]
	w.mu.Unlock()
	if !watched {
		return nil
	}

	switch {
	case event.Op&(fsnotify.Write|fsnotify.Create) != 0:
		return &Event{Type: CatalogChanged, Path: path}
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		return &Event{Type: CatalogRemoved, Path: path}
	}
	return nil
}

// Stop stops the watcher and releases the underlying fsnotify watcher
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	if w.running {
		close(w.done)
		w.running = false
	}
	return w.watcher.Close()
}

// Close is an alias for Stop
func (w *Watcher) Close() error {
	return w.Stop()
}
