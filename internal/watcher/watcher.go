// Package watcher reports debounced changes below a set of directory trees.
// New subdirectories are watched as they appear, so a freshly created nested
// route is noticed without restarting.
package watcher

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/kleeedolinux/goa-cli/internal/logging"
)

// FileWatcher watches directory trees and hands batches of changes to its
// handlers once the tree has been quiet for the debounce delay.
type FileWatcher struct {
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
	filters   []FileFilter
	handlers  []ChangeHandler
	logger    logging.Logger
	mutex     sync.RWMutex

	roots []string
	// pending maps roots that do not exist yet to the parent watched in
	// their place
	pending map[string]string
}

// ChangeEvent represents a file change event
type ChangeEvent struct {
	Type EventType
	Path string
}

// EventType represents the type of file change
type EventType int

const (
	EventTypeCreated EventType = iota
	EventTypeModified
	EventTypeDeleted
	EventTypeRenamed
)

// String returns the string representation of the EventType
func (e EventType) String() string {
	switch e {
	case EventTypeCreated:
		return "created"
	case EventTypeModified:
		return "modified"
	case EventTypeDeleted:
		return "deleted"
	case EventTypeRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// FileFilter reports whether a changed path is interesting.
type FileFilter func(path string) bool

// ChangeHandler handles one debounced batch.
type ChangeHandler func(ctx context.Context, events []ChangeEvent) error

// Debouncer groups rapid changes into one batch per path.
type Debouncer struct {
	delay   time.Duration
	events  chan ChangeEvent
	output  chan []ChangeEvent
	timer   *time.Timer
	pending map[string]ChangeEvent
	mutex   sync.Mutex
}

// NewFileWatcher creates a watcher with the given debounce delay.
func NewFileWatcher(debounceDelay time.Duration, logger logging.Logger) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &FileWatcher{
		watcher: w,
		debouncer: &Debouncer{
			delay:   debounceDelay,
			events:  make(chan ChangeEvent, 256),
			output:  make(chan []ChangeEvent, 1),
			pending: make(map[string]ChangeEvent),
		},
		logger:  logging.OrNop(logger).WithComponent("watcher"),
		pending: make(map[string]string),
	}, nil
}

// AddFilter adds a file filter. Directory events bypass filters.
func (fw *FileWatcher) AddFilter(filter FileFilter) {
	fw.mutex.Lock()
	defer fw.mutex.Unlock()
	fw.filters = append(fw.filters, filter)
}

// AddHandler adds a change handler
func (fw *FileWatcher) AddHandler(handler ChangeHandler) {
	fw.mutex.Lock()
	defer fw.mutex.Unlock()
	fw.handlers = append(fw.handlers, handler)
}

// AddRecursive watches root and every directory below it. Hidden directories
// are skipped. A root that does not exist yet is not an error: its nearest
// existing parent is watched until the root appears.
func (fw *FileWatcher) AddRecursive(root string) error {
	root = filepath.Clean(root)

	fw.mutex.Lock()
	if !slices.Contains(fw.roots, root) {
		fw.roots = append(fw.roots, root)
	}
	fw.mutex.Unlock()

	return fw.watchRoot(context.Background(), root)
}

// PendingRoots returns the roots that did not exist when last checked, sorted.
func (fw *FileWatcher) PendingRoots() []string {
	fw.mutex.RLock()
	defer fw.mutex.RUnlock()

	roots := make([]string, 0, len(fw.pending))
	for root := range fw.pending {
		roots = append(roots, root)
	}
	sort.Strings(roots)
	return roots
}

func (fw *FileWatcher) watchRoot(ctx context.Context, root string) error {
	if _, err := os.Stat(root); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return fw.watchParent(ctx, root)
	}

	fw.mutex.Lock()
	delete(fw.pending, root)
	fw.mutex.Unlock()

	return fw.walk(root)
}

func (fw *FileWatcher) watchParent(ctx context.Context, root string) error {
	parent := existingParent(root)

	fw.mutex.Lock()
	previous, known := fw.pending[root]
	fw.pending[root] = parent
	fw.mutex.Unlock()

	if !known {
		fw.logger.Warn(ctx, nil, "directory does not exist yet, watching its parent", "root", root, "parent", parent)
	}
	if parent == "" || parent == previous {
		return nil
	}
	return fw.watcher.Add(parent)
}

func (fw *FileWatcher) walk(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return fs.SkipDir
		}
		return fw.watcher.Add(path)
	})
}

// retryPending starts watching pending roots that exist now, and moves the
// others closer as their parents appear.
func (fw *FileWatcher) retryPending(ctx context.Context) {
	for _, root := range fw.PendingRoots() {
		if err := fw.watchRoot(ctx, root); err != nil {
			fw.logger.Warn(ctx, err, "cannot watch directory", "root", root)
		}
	}
}

// relevant reports whether path lies below a root, or on the way to a root
// that does not exist yet. Parents watched in place of a pending root see
// unrelated changes too.
func (fw *FileWatcher) relevant(path string) bool {
	fw.mutex.RLock()
	defer fw.mutex.RUnlock()

	for _, root := range fw.roots {
		if within(path, root) {
			return true
		}
	}
	for root := range fw.pending {
		if within(root, path) {
			return true
		}
	}
	return false
}

// belowRoot reports whether path is an existing root or lies below one.
func (fw *FileWatcher) belowRoot(path string) bool {
	fw.mutex.RLock()
	defer fw.mutex.RUnlock()

	for _, root := range fw.roots {
		if _, pending := fw.pending[root]; !pending && within(path, root) {
			return true
		}
	}
	return false
}

func existingParent(path string) string {
	for dir := filepath.Dir(path); ; dir = filepath.Dir(dir) {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
		if filepath.Dir(dir) == dir {
			return ""
		}
	}
}

func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// WatchedPaths returns the watched directories, sorted.
func (fw *FileWatcher) WatchedPaths() []string {
	paths := fw.watcher.WatchList()
	sort.Strings(paths)
	return paths
}

// Start runs the watcher until ctx is done.
func (fw *FileWatcher) Start(ctx context.Context) error {
	go fw.debouncer.start(ctx)
	go fw.processEvents(ctx)
	go fw.watchLoop(ctx)

	return nil
}

// Stop stops the file watcher and cleans up resources
func (fw *FileWatcher) Stop() error {
	fw.debouncer.mutex.Lock()
	if fw.debouncer.timer != nil {
		fw.debouncer.timer.Stop()
	}
	fw.debouncer.mutex.Unlock()

	return fw.watcher.Close()
}

func (fw *FileWatcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleFsnotifyEvent(ctx, event)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn(ctx, err, "file watcher error")
		}
	}
}

func (fw *FileWatcher) handleFsnotifyEvent(ctx context.Context, event fsnotify.Event) {
	if event.Op == fsnotify.Chmod || !fw.relevant(event.Name) {
		return
	}

	isDir := false
	if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
		isDir = true
		if event.Has(fsnotify.Create) {
			if fw.belowRoot(event.Name) {
				if err := fw.walk(event.Name); err != nil {
					fw.logger.Warn(ctx, err, "cannot watch new directory", "path", event.Name)
				}
			}
			fw.retryPending(ctx)
		}
	}

	if !isDir && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		fw.mutex.RLock()
		filters := fw.filters
		fw.mutex.RUnlock()

		for _, filter := range filters {
			if !filter(event.Name) {
				return
			}
		}
	}

	var eventType EventType
	switch {
	case event.Has(fsnotify.Create):
		eventType = EventTypeCreated
	case event.Has(fsnotify.Write):
		eventType = EventTypeModified
	case event.Has(fsnotify.Remove):
		eventType = EventTypeDeleted
	case event.Has(fsnotify.Rename):
		eventType = EventTypeRenamed
	default:
		eventType = EventTypeModified
	}

	select {
	case fw.debouncer.events <- ChangeEvent{Type: eventType, Path: event.Name}:
	default:
		fw.logger.Debug(ctx, "event queue full, dropping event", "path", event.Name)
	}
}

func (fw *FileWatcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case events := <-fw.debouncer.output:
			fw.mutex.RLock()
			handlers := fw.handlers
			fw.mutex.RUnlock()

			for _, handler := range handlers {
				if err := handler(ctx, events); err != nil {
					fw.logger.Error(ctx, err, "change handler failed")
				}
			}
		}
	}
}

func (d *Debouncer) start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-d.events:
			d.addEvent(event)
		}
	}
}

func (d *Debouncer) addEvent(event ChangeEvent) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	// the latest event for a path wins
	d.pending[event.Path] = event

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.flush)
}

func (d *Debouncer) flush() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if len(d.pending) == 0 {
		return
	}

	events := make([]ChangeEvent, 0, len(d.pending))
	for _, event := range d.pending {
		events = append(events, event)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Path < events[j].Path })

	select {
	case d.output <- events:
		d.pending = make(map[string]ChangeEvent)
	default:
		// consumer busy; keep the batch and retry after another delay
		d.timer = time.AfterFunc(d.delay, d.flush)
	}
}

// NameFilter accepts paths whose base name is one of names or ends in one
// of the given extensions.
func NameFilter(names []string, exts []string) FileFilter {
	return func(path string) bool {
		base := filepath.Base(path)
		for _, n := range names {
			if base == n {
				return true
			}
		}
		for _, e := range exts {
			if filepath.Ext(base) == e {
				return true
			}
		}
		return false
	}
}

// NoHiddenFilter rejects dot files and temporary files left by editors and
// atomic writes.
func NoHiddenFilter(path string) bool {
	base := filepath.Base(path)
	return !strings.HasPrefix(base, ".") && !strings.HasSuffix(base, "~")
}
