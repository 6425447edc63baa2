package watcher

import (
	"context"
	"os"
	"path/filepath"
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
		{EventType(42), "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.eventType.String())
		})
	}
}

func TestNewFileWatcher(t *testing.T) {
	watcher, err := NewFileWatcher(100 * time.Millisecond)
	require.NoError(t, err)
	defer watcher.Stop()

	assert.NotNil(t, watcher.watcher)
	assert.NotNil(t, watcher.debouncer)
	assert.Empty(t, watcher.filters)
	assert.Empty(t, watcher.handlers)
}

func TestFileWatcherStopIsIdempotent(t *testing.T) {
	watcher, err := NewFileWatcher(10 * time.Millisecond)
	require.NoError(t, err)

	assert.NoError(t, watcher.Stop())
	assert.NoError(t, watcher.Stop())
}

func TestDebouncerMergesEvents(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)

	d.addEvent(ChangeEvent{Type: EventTypeCreated, Path: "b.css"})
	d.addEvent(ChangeEvent{Type: EventTypeModified, Path: "a.css"})
	d.addEvent(ChangeEvent{Type: EventTypeModified, Path: "b.css"})

	select {
	case events := <-d.Output():
		require.Len(t, events, 2)
		assert.Equal(t, "a.css", events[0].Path)
		assert.Equal(t, "b.css", events[1].Path)
		assert.Equal(t, EventTypeModified, events[1].Type, "latest event per path wins")
	case <-time.After(2 * time.Second):
		t.Fatal("debouncer did not flush")
	}

	select {
	case events := <-d.Output():
		t.Fatalf("unexpected second batch: %v", events)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDebouncerStopCancelsPendingFlush(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	d.addEvent(ChangeEvent{Path: "a.css"})
	d.stop()

	select {
	case events := <-d.Output():
		t.Fatalf("unexpected batch after stop: %v", events)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestAddRecursiveSkipsExcludedDirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "css", "base"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "node_modules", "pkg"), 0o755))

	watcher, err := NewFileWatcher(10*time.Millisecond, WithExclude(dir, []string{"node_modules/**"}))
	require.NoError(t, err)
	defer watcher.Stop()

	require.NoError(t, watcher.AddRecursive(dir))

	watched := watcher.watcher.WatchList()
	assert.Contains(t, watched, dir)
	assert.Contains(t, watched, filepath.Join(dir, "css"))
	assert.Contains(t, watched, filepath.Join(dir, "css", "base"))
	assert.NotContains(t, watched, filepath.Join(dir, "node_modules"))
	assert.NotContains(t, watched, filepath.Join(dir, "node_modules", "pkg"))
}

func TestAddPathMissing(t *testing.T) {
	watcher, err := NewFileWatcher(10 * time.Millisecond)
	require.NoError(t, err)
	defer watcher.Stop()

	assert.Error(t, watcher.AddPath(filepath.Join(t.TempDir(), "missing")))
}

type batchRecorder struct {
	mu     sync.Mutex
	events []ChangeEvent
	calls  int
}

func (r *batchRecorder) handle(_ context.Context, events []ChangeEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
	r.calls++
	return nil
}

func (r *batchRecorder) paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	paths := make([]string, 0, len(r.events))
	for _, e := range r.events {
		paths = append(paths, e.Path)
	}
	return paths
}

func TestFileWatcherReportsMatchingChanges(t *testing.T) {
	dir := t.TempDir()
	css := filepath.Join(dir, "button.css")
	require.NoError(t, os.WriteFile(css, []byte(".btn {}"), 0o644))

	watcher, err := NewFileWatcher(50 * time.Millisecond)
	require.NoError(t, err)
	defer watcher.Stop()

	filter, err := GlobFilter(dir, []string{"**/*.css"})
	require.NoError(t, err)
	watcher.AddFilter(filter)

	rec := &batchRecorder{}
	watcher.AddHandler(rec.handle)

	require.NoError(t, watcher.AddRecursive(dir))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, watcher.Start(ctx))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))
	require.NoError(t, os.WriteFile(css, []byte(".btn { color: red; }"), 0o644))

	assert.Eventually(t, func() bool {
		return len(rec.paths()) > 0
	}, 3*time.Second, 20*time.Millisecond)

	assert.Contains(t, rec.paths(), css)
	assert.NotContains(t, rec.paths(), filepath.Join(dir, "notes.txt"))
}

func TestFileWatcherFollowsNewDirectories(t *testing.T) {
	dir := t.TempDir()

	watcher, err := NewFileWatcher(30 * time.Millisecond)
	require.NoError(t, err)
	defer watcher.Stop()

	rec := &batchRecorder{}
	watcher.AddHandler(rec.handle)
	require.NoError(t, watcher.AddRecursive(dir))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, watcher.Start(ctx))

	sub := filepath.Join(dir, "components")
	require.NoError(t, os.Mkdir(sub, 0o755))
	assert.Eventually(t, func() bool {
		for _, p := range watcher.watcher.WatchList() {
			if p == sub {
				return true
			}
		}
		return false
	}, 3*time.Second, 20*time.Millisecond)

	file := filepath.Join(sub, "card.css")
	require.NoError(t, os.WriteFile(file, []byte(".card {}"), 0o644))

	assert.Eventually(t, func() bool {
		for _, p := range rec.paths() {
			if p == file {
				return true
			}
		}
		return false
	}, 3*time.Second, 20*time.Millisecond)
}
