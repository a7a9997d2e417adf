// Package cache keeps the in-memory resume lists held by open views consistent
// with each other. Lists are only mutated by replacing whole documents by id;
// fields are never merged.
package cache

import (
	"sync"

	"github.com/jonathan/resume-studio/internal/types"
)

// ListCache is an ordered list of resumes held by one mounted view.
// Reads are safe for concurrent use; writes go through the Synchronizer.
type ListCache struct {
	key   string
	mu    sync.RWMutex
	items []types.Resume
}

func newListCache(key string) *ListCache {
	return &ListCache{key: key}
}

// Key returns the key the list was mounted under.
func (l *ListCache) Key() string {
	return l.key
}

// Items returns a copy of the list in order.
func (l *ListCache) Items() []types.Resume {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]types.Resume, len(l.items))
	copy(out, l.items)
	return out
}

// Len returns the number of documents in the list.
func (l *ListCache) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// Get returns the copy of document id held by this list.
func (l *ListCache) Get(id int64) (types.Resume, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, r := range l.items {
		if r.ID == id {
			return r, true
		}
	}
	return types.Resume{}, false
}

func (l *ListCache) set(items []types.Resume) {
	cp := make([]types.Resume, len(items))
	copy(cp, items)
	l.mu.Lock()
	l.items = cp
	l.mu.Unlock()
}

// replace swaps every element with r's id for r and reports whether any matched.
func (l *ListCache) replace(r types.Resume) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	found := false
	for i := range l.items {
		if l.items[i].ID == r.ID {
			l.items[i] = r
			found = true
		}
	}
	return found
}

func (l *ListCache) remove(id int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.items[:0:0]
	for _, r := range l.items {
		if r.ID != id {
			out = append(out, r)
		}
	}
	removed := len(out) != len(l.items)
	l.items = out
	return removed
}
