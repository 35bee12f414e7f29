package watcher

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventTypeString(t *testing.T) {
	testCases := []struct {
		eventType EventType
		expected  string
	}{
		{EventTypeCreated, "created"},
		{EventTypeModified, "modified"},
		{EventTypeDeleted, "deleted"},
		{EventTypeRenamed, "renamed"},
		{EventType(99), "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.eventType.String())
		})
	}
}

func TestAddRecursive(t *testing.T) {
	watcher, err := NewFileWatcher(50*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "api", "users"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git", "objects"), 0755))

	require.NoError(t, watcher.AddRecursive(root))
	assert.Equal(t, []string{
		root,
		filepath.Join(root, "api"),
		filepath.Join(root, "api", "users"),
	}, watcher.WatchedPaths())

	// a root that does not exist yet is tolerated
	missing := filepath.Join(root, "missing", "deeper")
	assert.NoError(t, watcher.AddRecursive(missing))
	assert.Equal(t, []string{missing}, watcher.PendingRoots())
	assert.Len(t, watcher.WatchedPaths(), 3)
}

func TestWatcherPicksUpLateRoot(t *testing.T) {
	project := t.TempDir()
	app := filepath.Join(project, "app")
	api := filepath.Join(app, "api")

	watcher, err := NewFileWatcher(50*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	require.NoError(t, watcher.AddRecursive(api))
	assert.Equal(t, []string{api}, watcher.PendingRoots())
	assert.Equal(t, []string{project}, watcher.WatchedPaths())

	watcher.AddFilter(NameFilter([]string{"route.go"}, nil))
	c := &collector{}
	watcher.AddHandler(c.handle)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, watcher.Start(ctx))

	// changes next to the missing root are not reported
	require.NoError(t, os.WriteFile(filepath.Join(project, "route.go"), []byte("package main"), 0644))

	require.NoError(t, os.Mkdir(app, 0755))
	assert.Eventually(t, func() bool {
		return slices.Contains(watcher.WatchedPaths(), app)
	}, 2*time.Second, 20*time.Millisecond)

	require.NoError(t, os.Mkdir(api, 0755))
	assert.Eventually(t, func() bool {
		return len(watcher.PendingRoots()) == 0 && slices.Contains(watcher.WatchedPaths(), api)
	}, 2*time.Second, 20*time.Millisecond)

	users := filepath.Join(api, "users")
	require.NoError(t, os.Mkdir(users, 0755))
	assert.Eventually(t, func() bool {
		return slices.Contains(watcher.WatchedPaths(), users)
	}, 2*time.Second, 20*time.Millisecond)

	route := filepath.Join(users, "route.go")
	require.NoError(t, os.WriteFile(route, []byte("package users"), 0644))
	assert.Eventually(t, func() bool {
		return slices.Contains(c.paths(), route)
	}, 2*time.Second, 20*time.Millisecond)

	assert.NotContains(t, c.paths(), filepath.Join(project, "route.go"))
}

// collector records handler batches.
type collector struct {
	mu      sync.Mutex
	batches [][]ChangeEvent
}

func (c *collector) handle(_ context.Context, events []ChangeEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batches = append(c.batches, events)
	return nil
}

func (c *collector) paths() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, b := range c.batches {
		for _, e := range b {
			out = append(out, e.Path)
		}
	}
	return out
}

func TestWatcherReportsFilteredChanges(t *testing.T) {
	root := t.TempDir()

	watcher, err := NewFileWatcher(50*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	require.NoError(t, watcher.AddRecursive(root))
	watcher.AddFilter(NoHiddenFilter)
	watcher.AddFilter(NameFilter([]string{"route.go"}, []string{".html"}))

	c := &collector{}
	watcher.AddHandler(c.handle)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, watcher.Start(ctx))

	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "card.html"), []byte("x"), 0644))

	assert.Eventually(t, func() bool {
		for _, p := range c.paths() {
			if p == filepath.Join(root, "card.html") {
				return true
			}
		}
		return false
	}, 2*time.Second, 20*time.Millisecond)

	assert.NotContains(t, c.paths(), filepath.Join(root, "notes.txt"))
}

func TestWatcherFollowsNewDirectories(t *testing.T) {
	root := t.TempDir()

	watcher, err := NewFileWatcher(50*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	require.NoError(t, watcher.AddRecursive(root))
	watcher.AddFilter(NameFilter([]string{"route.go"}, nil))

	c := &collector{}
	watcher.AddHandler(c.handle)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, watcher.Start(ctx))

	nested := filepath.Join(root, "users")
	require.NoError(t, os.Mkdir(nested, 0755))

	assert.Eventually(t, func() bool {
		for _, p := range watcher.WatchedPaths() {
			if p == nested {
				return true
			}
		}
		return false
	}, 2*time.Second, 20*time.Millisecond)

	route := filepath.Join(nested, "route.go")
	require.NoError(t, os.WriteFile(route, []byte("package api"), 0644))

	assert.Eventually(t, func() bool {
		for _, p := range c.paths() {
			if p == route {
				return true
			}
		}
		return false
	}, 2*time.Second, 20*time.Millisecond)
}

func TestDebouncerCoalesces(t *testing.T) {
	d := &Debouncer{
		delay:   30 * time.Millisecond,
		events:  make(chan ChangeEvent, 10),
		output:  make(chan []ChangeEvent, 1),
		pending: make(map[string]ChangeEvent),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.start(ctx)

	d.events <- ChangeEvent{Path: "b.html", Type: EventTypeCreated}
	d.events <- ChangeEvent{Path: "a.html", Type: EventTypeCreated}
	d.events <- ChangeEvent{Path: "b.html", Type: EventTypeModified}

	select {
	case batch := <-d.output:
		require.Len(t, batch, 2)
		assert.Equal(t, "a.html", batch[0].Path)
		assert.Equal(t, "b.html", batch[1].Path)
		assert.Equal(t, EventTypeModified, batch[1].Type)
	case <-time.After(2 * time.Second):
		t.Fatal("no batch delivered")
	}
}

func TestFilters(t *testing.T) {
	entity := NameFilter([]string{"route.go", "index.html"}, []string{".html"})

	testCases := []struct {
		path     string
		expected bool
	}{
		{"app/api/users/route.go", true},
		{"app/dashboard/index.html", true},
		{"app/components/card.html", true},
		{"app/api/users/helpers.go", false},
		{"README.md", false},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.expected, entity(tc.path))
		})
	}

	assert.False(t, NoHiddenFilter("app/.route.go.tmp-123"))
	assert.False(t, NoHiddenFilter("app/index.html~"))
	assert.True(t, NoHiddenFilter("app/index.html"))
}

func TestStopTwice(t *testing.T) {
	watcher, err := NewFileWatcher(10*time.Millisecond, nil)
	require.NoError(t, err)

	assert.NoError(t, watcher.Stop())
	assert.NoError(t, watcher.Stop())
}
