// Package registry keeps the parsed guide files of the current run and
// notifies watchers when they change.
package registry

import (
	"sort"
	"sync"
	"time"

	"github.com/conneroisu/frontnote/internal/types"
)

// GuideRegistry manages the parsed files keyed by path.
type GuideRegistry struct {
	entries  map[string]*types.FileEntry
	mutex    sync.RWMutex
	watchers []chan Event
}

// Event represents a change in the registry
type Event struct {
	Type      EventType
	Entry     *types.FileEntry
	Timestamp time.Time
}

// EventType represents the type of registry event
type EventType int

const (
	EventTypeAdded EventType = iota
	EventTypeUpdated
	EventTypeRemoved
)

// String returns the event name.
func (t EventType) String() string {
	switch t {
	case EventTypeAdded:
		return "added"
	case EventTypeUpdated:
		return "updated"
	case EventTypeRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// watcherBuffer is the capacity of each watch channel. Events are dropped
// for watchers that fall this far behind.
const watcherBuffer = 100

// New creates an empty registry.
func New() *GuideRegistry {
	return &GuideRegistry{
		entries:  make(map[string]*types.FileEntry),
		watchers: make([]chan Event, 0),
	}
}

// Register adds or replaces the entry for entry.File. It reports whether
// anything changed: re-registering an entry with the same hash is a no-op.
func (r *GuideRegistry) Register(entry *types.FileEntry) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	eventType := EventTypeAdded
	if existing, exists := r.entries[entry.File]; exists {
		if existing.Hash != "" && existing.Hash == entry.Hash {
			return false
		}
		eventType = EventTypeUpdated
	}

	r.entries[entry.File] = entry
	r.notify(eventType, entry)
	return true
}

// Get retrieves an entry by path
func (r *GuideRegistry) Get(path string) (*types.FileEntry, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	entry, exists := r.entries[path]
	return entry, exists
}

// All returns every entry sorted by path.
func (r *GuideRegistry) All() []*types.FileEntry {
	r.mutex.RLock()
	result := make([]*types.FileEntry, 0, len(r.entries))
	for _, entry := range r.entries {
		result = append(result, entry)
	}
	r.mutex.RUnlock()

	sort.Slice(result, func(i, j int) bool { return result[i].File < result[j].File })
	return result
}

// Remove removes an entry from the registry
func (r *GuideRegistry) Remove(path string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	entry, exists := r.entries[path]
	if !exists {
		return
	}

	delete(r.entries, path)
	r.notify(EventTypeRemoved, entry)
}

// Retain removes every entry whose path is not in keep and returns the
// removed paths, sorted.
func (r *GuideRegistry) Retain(keep []string) []string {
	set := make(map[string]struct{}, len(keep))
	for _, path := range keep {
		set[path] = struct{}{}
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	var removed []string
	for path, entry := range r.entries {
		if _, ok := set[path]; ok {
			continue
		}
		delete(r.entries, path)
		r.notify(EventTypeRemoved, entry)
		removed = append(removed, path)
	}

	sort.Strings(removed)
	return removed
}

// notify must be called with the mutex held.
func (r *GuideRegistry) notify(eventType EventType, entry *types.FileEntry) {
	event := Event{
		Type:      eventType,
		Entry:     entry,
		Timestamp: time.Now(),
	}

	for _, watcher := range r.watchers {
		select {
		case watcher <- event:
		default:
		}
	}
}

// Watch returns a channel that receives registry events
func (r *GuideRegistry) Watch() <-chan Event {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	ch := make(chan Event, watcherBuffer)
	r.watchers = append(r.watchers, ch)
	return ch
}

// UnWatch removes a watcher channel and closes it
func (r *GuideRegistry) UnWatch(ch <-chan Event) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for i, watcher := range r.watchers {
		if watcher == ch {
			close(watcher)
			r.watchers = append(r.watchers[:i], r.watchers[i+1:]...)
			break
		}
	}
}

// Count returns the number of registered entries
func (r *GuideRegistry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.entries)
}
