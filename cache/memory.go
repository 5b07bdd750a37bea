package cache

import "sync"

// DefaultCapacity is the default bound on in-memory entries.
const DefaultCapacity = 10

// Entry is one cached extraction result. Method and Scanned carry how the
// text was produced so cache hits can report it; they are plain strings to
// keep the tier free of higher-level types.
type Entry struct {
	Text    string
	Method  string
	Scanned string
}

// Memory is a bounded in-process cache of extraction results. Admission
// stops once the capacity is reached; there is no eviction, so the tier
// degrades to caching the first N distinct requests of the process lifetime.
type Memory struct {
	mu       sync.RWMutex
	entries  map[string]Entry
	capacity int
}

// NewMemory creates a Memory cache holding at most capacity entries.
// A non-positive capacity falls back to DefaultCapacity.
func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Memory{
		entries:  make(map[string]Entry, capacity),
		capacity: capacity,
	}
}

// Get returns the cached entry for the path and page selection.
func (m *Memory) Get(path string, pages []int) (Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[Key(path, pages)]
	return entry, ok
}

// Set stores an entry for the path and page selection. An existing key is
// always overwritten (last writer wins); a new key is admitted only while
// the cache is below capacity.
func (m *Memory) Set(path string, pages []int, entry Entry) {
	key := Key(path, pages)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[key]; !exists && len(m.entries) >= m.capacity {
		return
	}
	m.entries[key] = entry
}

// Len returns the number of cached entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Clear removes all entries.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]Entry, m.capacity)
}
