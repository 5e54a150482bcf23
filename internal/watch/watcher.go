// Package watch reports when the run documents under a directory tree change.
package watch

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the tree must stay quiet before a Change is sent.
const DefaultDebounce = 250 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	// Names restricts events to files with these base names. Empty means any file.
	Names []string
	// ExcludeDirs names directories that are not watched.
	ExcludeDirs []string
	// SkipHidden leaves directories whose name starts with "." unwatched.
	SkipHidden bool
	// Debounce defaults to DefaultDebounce.
	Debounce time.Duration
}

// Change is a burst of filesystem activity, coalesced.
type Change struct {
	Paths []string // Sorted, de-duplicated paths that triggered the change
	Time  time.Time
}

// Watcher watches a directory tree recursively, picking up directories
// created after it started.
type Watcher struct {
	watcher    *fsnotify.Watcher
	names      map[string]bool
	exclude    map[string]bool
	skipHidden bool
	debounce   time.Duration

	changes chan Change
	errors  chan error
	done    chan struct{}

	mu      sync.Mutex
	pending map[string]bool
	timer   *time.Timer
	closed  bool
}

// New starts watching root. Root must be an existing directory.
func New(root string, opts Options) (*Watcher, error) {
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &fs.PathError{Op: "watch", Path: root, Err: errors.New("not a directory")}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:    fsw,
		names:      toSet(opts.Names),
		exclude:    toSet(opts.ExcludeDirs),
		skipHidden: opts.SkipHidden,
		debounce:   opts.Debounce,
		changes:    make(chan Change, 1),
		errors:     make(chan error, 10),
		done:       make(chan struct{}),
		pending:    make(map[string]bool),
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}

	if err := w.addRecursive(root); err != nil {
		fsw.Close()
		return nil, err
	}

	go w.processEvents()
	return w, nil
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}

// addRecursive watches dir and every directory below it
func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// vanished or unreadable directories are not watched
			if os.IsNotExist(err) || os.IsPermission(err) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && w.skipped(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil && !os.IsPermission(err) {
			return err
		}
		return nil
	})
}

func (w *Watcher) skipped(name string) bool {
	return w.exclude[name] || (w.skipHidden && strings.HasPrefix(name, "."))
}

func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.sendError(err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if w.skipped(filepath.Base(event.Name)) {
				return
			}
			if err := w.addRecursive(event.Name); err != nil {
				w.sendError(err)
			}
			// a new directory may already hold run documents
			w.schedule(event.Name)
			return
		}
	}

	if len(w.names) > 0 && !w.names[filepath.Base(event.Name)] {
		// a removed directory takes its documents with it
		if !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
			return
		}
	}
	w.schedule(event.Name)
}

// schedule records path and restarts the quiet-period timer
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	w.pending[path] = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	if w.closed || len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]bool)
	w.timer = nil
	w.mu.Unlock()

	sort.Strings(paths)
	change := Change{Paths: paths, Time: time.Now()}

	select {
	case w.changes <- change:
	case <-w.done:
	default:
		// a change is already waiting; the receiver will recollect anyway
	}
}

func (w *Watcher) sendError(err error) {
	select {
	case w.errors <- err:
	default:
	}
}

// Changes delivers coalesced changes. At most one change is buffered.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Errors delivers watcher errors. Errors are dropped when nobody is reading.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	close(w.done)
	return w.watcher.Close()
}
