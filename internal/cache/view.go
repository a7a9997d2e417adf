package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jonathan/resume-studio/internal/types"
)

// ErrViewClosed is returned by Load when the view was closed before the fetch completed.
var ErrViewClosed = errors.New("view closed")

// FetchFunc loads one document.
type FetchFunc func(ctx context.Context) (*types.Resume, error)

// DocumentView is a single-document view. Its copy lives in a mounted list of
// length one, so favorite toggles reach it like any other list.
type DocumentView struct {
	sync *Synchronizer
	id   int64
	list *ListCache

	mu     sync.Mutex
	cancel context.CancelFunc
	closed bool
}

// ViewKey returns the list key used by the view of document id.
func ViewKey(id int64) string {
	return fmt.Sprintf("resume/%d", id)
}

// OpenView mounts a view of document id.
func (s *Synchronizer) OpenView(id int64) *DocumentView {
	return &DocumentView{
		sync: s,
		id:   id,
		list: s.Mount(ViewKey(id)),
	}
}

// ID returns the viewed document's id.
func (v *DocumentView) ID() int64 {
	return v.id
}

// Resume returns the currently held copy, if loaded.
func (v *DocumentView) Resume() (types.Resume, bool) {
	return v.list.Get(v.id)
}

// Load runs fetch and stores its result. A Load in progress is cancelled by a
// later Load or by Close; a cancelled or late result is discarded.
func (v *DocumentView) Load(ctx context.Context, fetch FetchFunc) (*types.Resume, error) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil, ErrViewClosed
	}
	if v.cancel != nil {
		v.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	v.cancel = cancel
	ticket := v.sync.mark(v.id)
	v.mu.Unlock()
	defer cancel()

	r, err := fetch(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		v.sync.Release(ticket)
		return nil, ErrViewClosed
	}
	if err != nil {
		v.sync.Release(ticket)
		return nil, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		v.sync.Release(ticket)
		return nil, ctxErr
	}
	if !v.sync.Fill(v.list, ticket, []types.Resume{*r}) {
		return nil, ErrViewClosed
	}
	held, _ := v.list.Get(v.id)
	return &held, nil
}

// Close cancels any fetch in progress and unmounts the view.
func (v *DocumentView) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.closed = true
	if v.cancel != nil {
		v.cancel()
	}
	v.sync.release(v.list)
}
