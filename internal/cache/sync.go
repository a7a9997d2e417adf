package cache

import (
	"log"
	"math"
	"sort"
	"sync"

	"github.com/jonathan/resume-studio/internal/types"
)

// Ticket orders requests against the same document. Tickets are issued from a
// single increasing sequence, so a larger Seq was always requested later.
type Ticket struct {
	ID  int64
	Seq uint64
}

// applied records the last result applied for a document. doc is kept only
// while a fetch issued before seq is still outstanding and may need it.
type applied struct {
	seq uint64
	doc *types.Resume
}

// Synchronizer is the single owner of list mutation. It replaces a document by
// id in every mounted list and refuses results that are older than one it has
// already applied for the same document.
type Synchronizer struct {
	mu      sync.Mutex
	lists   map[string]*ListCache
	seq     uint64
	latest  map[int64]applied
	pending map[uint64]struct{}
}

// NewSynchronizer returns an empty synchronizer.
func NewSynchronizer() *Synchronizer {
	return &Synchronizer{
		lists:   make(map[string]*ListCache),
		latest:  make(map[int64]applied),
		pending: make(map[uint64]struct{}),
	}
}

// Mount registers an empty list under key and returns its handle. Mounting a
// key that is already mounted replaces the old handle, whose pending fills are
// then discarded.
func (s *Synchronizer) Mount(key string) *ListCache {
	l := newListCache(key)
	s.mu.Lock()
	s.lists[key] = l
	s.mu.Unlock()
	return l
}

// Unmount drops the list under key. Unmounted lists are never updated again.
func (s *Synchronizer) Unmount(key string) {
	s.mu.Lock()
	delete(s.lists, key)
	s.mu.Unlock()
}

// release unmounts h only if it is still the handle mounted under its key.
func (s *Synchronizer) release(h *ListCache) {
	s.mu.Lock()
	if s.lists[h.key] == h {
		delete(s.lists, h.key)
	}
	s.mu.Unlock()
}

// Mounted reports whether h is the handle currently mounted under its key.
func (s *Synchronizer) Mounted(h *ListCache) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lists[h.key] == h
}

// Lists returns the mounted handles sorted by key.
func (s *Synchronizer) Lists() []*ListCache {
	s.mu.Lock()
	out := make([]*ListCache, 0, len(s.lists))
	for _, l := range s.lists {
		out = append(out, l)
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
	return out
}

// Begin issues a ticket for a request about document id. Call it before the
// request is sent.
func (s *Synchronizer) Begin(id int64) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return Ticket{ID: id, Seq: s.seq}
}

// Mark issues a ticket for a fetch whose result will be passed to Fill, such as
// a list load. Every Mark must end in Fill or Release.
func (s *Synchronizer) Mark() Ticket {
	return s.mark(0)
}

func (s *Synchronizer) mark(id int64) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.pending[s.seq] = struct{}{}
	return Ticket{ID: id, Seq: s.seq}
}

// Release abandons a Mark ticket whose fetch failed.
func (s *Synchronizer) Release(t Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, t.Seq)
	s.prune()
}

// Apply replaces r by id in every mounted list unconditionally and returns the
// number of lists that held it.
func (s *Synchronizer) Apply(r types.Resume) int {
	return s.ApplyTicket(s.Begin(r.ID), r)
}

// ApplyTicket replaces r by id in every mounted list unless a result from a
// later ticket for the same document was already applied. It returns the
// number of lists updated, or -1 when the result was stale and discarded.
func (s *Synchronizer) ApplyTicket(t Ticket, r types.Resume) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.latest[r.ID]; ok && prev.seq > t.Seq {
		log.Printf("[cache] discarding stale result for resume %d (ticket %d < %d)", r.ID, t.Seq, prev.seq)
		return -1
	}
	s.latest[r.ID] = applied{seq: t.Seq, doc: &r}

	n := 0
	for _, l := range s.lists {
		if l.replace(r) {
			n++
		}
	}
	s.prune()
	return n
}

// Fill loads items into h. Documents for which a result newer than t has
// already been applied are substituted with that result, so a list fetch sent
// before a toggle cannot revert it. Fill reports false and changes nothing if
// h is no longer mounted.
func (s *Synchronizer) Fill(h *ListCache, t Ticket, items []types.Resume) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.prune()
	delete(s.pending, t.Seq)

	if s.lists[h.key] != h {
		log.Printf("[cache] discarding fill for unmounted list %q", h.key)
		return false
	}

	out := make([]types.Resume, len(items))
	for i, r := range items {
		if prev, ok := s.latest[r.ID]; ok && prev.seq > t.Seq {
			if newer, ok := s.newest(prev, r.ID); ok {
				r = newer
			} else {
				log.Printf("[cache] no newer copy of resume %d retained for ticket %d", r.ID, t.Seq)
			}
		}
		out[i] = r
	}
	h.set(out)
	return true
}

// newest returns the applied copy of document id, falling back to a copy
// held by a mounted list, which always reflects the last applied result.
func (s *Synchronizer) newest(prev applied, id int64) (types.Resume, bool) {
	if prev.doc != nil {
		return *prev.doc, true
	}
	for _, l := range s.lists {
		if r, ok := l.Get(id); ok {
			return r, true
		}
	}
	return types.Resume{}, false
}

// prune drops applied documents no outstanding fetch could be older than.
// Their sequence numbers stay so stale single-document results are still refused.
// Callers hold s.mu.
func (s *Synchronizer) prune() {
	oldest := uint64(math.MaxUint64)
	for seq := range s.pending {
		oldest = min(oldest, seq)
	}
	for id, a := range s.latest {
		if a.doc != nil && a.seq <= oldest {
			s.latest[id] = applied{seq: a.seq}
		}
	}
}

// retained reports how many full documents are held for pending fetches.
func (s *Synchronizer) retained() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, a := range s.latest {
		if a.doc != nil {
			n++
		}
	}
	return n
}

// Remove drops document id from every mounted list and forgets its history.
// It returns the number of lists that held it.
func (s *Synchronizer) Remove(id int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.latest, id)
	n := 0
	for _, l := range s.lists {
		if l.remove(id) {
			n++
		}
	}
	return n
}
