// Package workspace drives resume lists and editing sessions against an actions.Service,
// keeping every mounted list consistent through a cache.Synchronizer.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-studio/internal/actions"
	"github.com/jonathan/resume-studio/internal/cache"
	"github.com/jonathan/resume-studio/internal/form"
	"github.com/jonathan/resume-studio/internal/types"
	"github.com/jonathan/resume-studio/internal/validation"
)

// List keys
const (
	KeyMine      = "mine"
	KeyPublic    = "public"
	KeyFavorites = "favorites"
)

// ErrToggleInFlight is returned when a favorite toggle for the same resume has not completed yet.
var ErrToggleInFlight = errors.New("favorite toggle already in flight")

// ValidationFailedError reports that a document is not eligible for the requested status.
// No request was sent.
type ValidationFailedError struct {
	Target types.Status
	Fields []types.FieldError
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("resume is not ready to be %s: %d field errors", e.Target, len(e.Fields))
}

type loader func(ctx context.Context) ([]types.Resume, error)

type mounted struct {
	list *cache.ListCache
	load loader
}

// Workspace is safe for concurrent use.
type Workspace struct {
	svc  actions.Service
	sync *cache.Synchronizer

	mu       sync.Mutex
	lists    map[string]mounted
	inflight map[int64]bool
}

// New returns a workspace over svc with its own synchronizer.
func New(svc actions.Service) *Workspace {
	return NewWithSynchronizer(svc, cache.NewSynchronizer())
}

// NewWithSynchronizer returns a workspace sharing s with other views.
func NewWithSynchronizer(svc actions.Service, s *cache.Synchronizer) *Workspace {
	return &Workspace{
		svc:      svc,
		sync:     s,
		lists:    make(map[string]mounted),
		inflight: make(map[int64]bool),
	}
}

// Synchronizer returns the synchronizer backing the workspace's lists.
func (w *Workspace) Synchronizer() *cache.Synchronizer {
	return w.sync
}

// MountMine mounts and loads the caller's own resumes.
func (w *Workspace) MountMine(ctx context.Context, opts actions.ListOptions) (*cache.ListCache, error) {
	return w.mount(ctx, KeyMine, func(ctx context.Context) ([]types.Resume, error) {
		page, err := w.svc.List(ctx, opts)
		if err != nil {
			return nil, err
		}
		return page.Results, nil
	})
}

// MountPublic mounts and loads the public feed.
func (w *Workspace) MountPublic(ctx context.Context, opts actions.ListOptions) (*cache.ListCache, error) {
	return w.mount(ctx, KeyPublic, func(ctx context.Context) ([]types.Resume, error) {
		page, err := w.svc.ListPublic(ctx, opts)
		if err != nil {
			return nil, err
		}
		return page.Results, nil
	})
}

// MountFavorites mounts and loads the caller's favorites.
func (w *Workspace) MountFavorites(ctx context.Context) (*cache.ListCache, error) {
	return w.mount(ctx, KeyFavorites, w.svc.ListFavorites)
}

func (w *Workspace) mount(ctx context.Context, key string, load loader) (*cache.ListCache, error) {
	list := w.sync.Mount(key)
	w.mu.Lock()
	w.lists[key] = mounted{list: list, load: load}
	w.mu.Unlock()

	if err := w.fill(ctx, list, load); err != nil {
		return list, err
	}
	return list, nil
}

func (w *Workspace) fill(ctx context.Context, list *cache.ListCache, load loader) error {
	mark := w.sync.Mark()
	items, err := load(ctx)
	if err != nil {
		w.sync.Release(mark)
		return fmt.Errorf("failed to load %s: %w", list.Key(), err)
	}
	if !w.sync.Fill(list, mark, items) {
		log.Printf("[workspace] %s was unmounted while loading", list.Key())
	}
	return nil
}

// Unmount drops a mounted list. It will not be updated again.
func (w *Workspace) Unmount(key string) {
	w.mu.Lock()
	delete(w.lists, key)
	w.mu.Unlock()
	w.sync.Unmount(key)
}

// Refresh reloads every mounted list concurrently.
func (w *Workspace) Refresh(ctx context.Context) error {
	w.mu.Lock()
	snapshot := make([]mounted, 0, len(w.lists))
	for _, m := range w.lists {
		snapshot = append(snapshot, m)
	}
	w.mu.Unlock()

	g, ctx := errgroup.WithContext(ctx)
	for _, m := range snapshot {
		g.Go(func() error {
			return w.fill(ctx, m.list, m.load)
		})
	}
	return g.Wait()
}

// OpenView mounts a single-document view and loads it.
func (w *Workspace) OpenView(ctx context.Context, id int64) (*cache.DocumentView, error) {
	v := w.sync.OpenView(id)
	if _, err := v.Load(ctx, func(ctx context.Context) (*types.Resume, error) {
		return w.svc.Get(ctx, id)
	}); err != nil {
		v.Close()
		return nil, err
	}
	return v, nil
}

// ToggleFavorite flips the caller's favorite flag and propagates the
// server-returned document to every mounted list holding it.
func (w *Workspace) ToggleFavorite(ctx context.Context, id int64) (*types.Resume, error) {
	w.mu.Lock()
	if w.inflight[id] {
		w.mu.Unlock()
		return nil, ErrToggleInFlight
	}
	w.inflight[id] = true
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		delete(w.inflight, id)
		w.mu.Unlock()
	}()

	ticket := w.sync.Begin(id)
	res, err := w.svc.ToggleFavorite(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to toggle favorite on resume %d: %w", id, err)
	}
	w.sync.ApplyTicket(ticket, res.Resume)
	return &res.Resume, nil
}

// Archive moves a resume to ARCHIVED.
func (w *Workspace) Archive(ctx context.Context, id int64) (*types.Resume, error) {
	return w.setStatus(ctx, id, types.StatusArchived)
}

// Unarchive moves a resume back to DRAFT.
func (w *Workspace) Unarchive(ctx context.Context, id int64) (*types.Resume, error) {
	return w.setStatus(ctx, id, types.StatusDraft)
}

// Publish validates the stored document for PUBLISHED and then moves it there.
func (w *Workspace) Publish(ctx context.Context, id int64) (*types.Resume, error) {
	stored, err := w.svc.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch resume %d: %w", id, err)
	}
	if fields := validation.Validate(form.ToEditable(*stored), types.StatusPublished); len(fields) > 0 {
		return nil, &ValidationFailedError{Target: types.StatusPublished, Fields: fields}
	}
	return w.setStatus(ctx, id, types.StatusPublished)
}

func (w *Workspace) setStatus(ctx context.Context, id int64, status types.Status) (*types.Resume, error) {
	ticket := w.sync.Begin(id)
	r, err := w.svc.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("failed to set resume %d to %s: %w", id, status, err)
	}
	w.sync.ApplyTicket(ticket, *r)
	return r, nil
}

// Delete removes a resume and drops it from every mounted list.
func (w *Workspace) Delete(ctx context.Context, id int64) error {
	if err := w.svc.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete resume %d: %w", id, err)
	}
	w.sync.Remove(id)
	return nil
}

// Share returns a shareable view URL.
func (w *Workspace) Share(ctx context.Context, id int64) (string, error) {
	u, err := w.svc.ViewURL(ctx, id)
	if err != nil {
		return "", fmt.Errorf("failed to get view link for resume %d: %w", id, err)
	}
	return u, nil
}

// Download fetches the rendered resume. The caller must close its body.
func (w *Workspace) Download(ctx context.Context, id int64) (*actions.Download, error) {
	d, err := w.svc.Download(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to download resume %d: %w", id, err)
	}
	return d, nil
}

// Stats returns engagement totals across the caller's resumes.
func (w *Workspace) Stats(ctx context.Context) (*types.UserStats, error) {
	return w.svc.Stats(ctx)
}
