package assets

import (
	"fmt"
	"sync"
)

// Handle refers to an asset of kind T that may not be loaded yet.
type Handle[T any] struct {
	ID   uint64
	Path string
}

func (h Handle[T]) Valid() bool {
	return h.ID != 0
}

func (h Handle[T]) String() string {
	if h.Path != "" {
		return h.Path
	}
	return fmt.Sprintf("asset#%d", h.ID)
}

// Assets stores loaded values of one kind. Loaders publish from background
// goroutines; the frame loop only calls Get.
type Assets[T any] struct {
	mu     sync.RWMutex
	nextID uint64
	values map[uint64]T
	// versions counts Inserts per handle, so reloads can be noticed.
	versions map[uint64]uint64
	byPath   map[string]uint64
}

func NewAssets[T any]() *Assets[T] {
	return &Assets[T]{
		values:   make(map[uint64]T),
		versions: make(map[uint64]uint64),
		byPath:   make(map[string]uint64),
	}
}

// Reserve returns the handle for path, allocating one if the path is new.
// The asset is not ready until Insert is called.
func (a *Assets[T]) Reserve(path string) (Handle[T], bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if id, ok := a.byPath[path]; ok && path != "" {
		return Handle[T]{ID: id, Path: path}, false
	}
	a.nextID++
	if path != "" {
		a.byPath[path] = a.nextID
	}
	return Handle[T]{ID: a.nextID, Path: path}, true
}

// Add stores an in-memory asset and returns its handle.
func (a *Assets[T]) Add(v T) Handle[T] {
	h, _ := a.Reserve("")
	a.Insert(h, v)
	return h
}

// Insert publishes (or replaces) the value behind h.
func (a *Assets[T]) Insert(h Handle[T], v T) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.values[h.ID] = v
	a.versions[h.ID]++
}

// Version is the number of times h has been inserted.
func (a *Assets[T]) Version(h Handle[T]) uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.versions[h.ID]
}

// Get is the ready query: ok is false until the asset has been inserted.
func (a *Assets[T]) Get(h Handle[T]) (T, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	v, ok := a.values[h.ID]
	return v, ok
}

func (a *Assets[T]) IsReady(h Handle[T]) bool {
	_, ok := a.Get(h)
	return ok
}

// Remove drops the value, leaving the handle reserved.
func (a *Assets[T]) Remove(h Handle[T]) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.values, h.ID)
}

// Lookup finds the handle reserved for path.
func (a *Assets[T]) Lookup(path string) (Handle[T], bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	id, ok := a.byPath[path]
	return Handle[T]{ID: id, Path: path}, ok
}

// Len is the number of ready assets.
func (a *Assets[T]) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.values)
}
