package workspace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/jonathan/resume-studio/internal/actions"
	"github.com/jonathan/resume-studio/internal/form"
	"github.com/jonathan/resume-studio/internal/types"
)

// mockService is an in-memory actions.Service for a single viewer.
type mockService struct {
	mu        sync.Mutex
	resumes   map[int64]types.Resume
	favorites map[int64]bool
	counts    map[int64]int
	nextID    int64

	calls map[string]int

	// Optional hooks run before the call returns.
	beforeToggle     func(ctx context.Context)
	beforeListPublic func(ctx context.Context)

	failWith error
}

func newMockService(docs ...types.Resume) *mockService {
	m := &mockService{
		resumes:   make(map[int64]types.Resume),
		favorites: make(map[int64]bool),
		counts:    make(map[int64]int),
		calls:     make(map[string]int),
		nextID:    100,
	}
	for _, d := range docs {
		m.resumes[d.ID] = d
	}
	return m
}

func (m *mockService) record(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[name]++
	return m.failWith
}

func (m *mockService) callCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

// decorate attaches the viewer's favorite flag and count, as the service does.
func (m *mockService) decorate(r types.Resume) types.Resume {
	fav := m.favorites[r.ID]
	count := m.counts[r.ID]
	r.IsFavorited = &fav
	r.FavoriteCount = &count
	return r
}

func (m *mockService) sorted(filter func(types.Resume) bool) []types.Resume {
	out := []types.Resume{}
	for _, r := range m.resumes {
		if filter(r) {
			out = append(out, m.decorate(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *mockService) List(_ context.Context, _ actions.ListOptions) (*types.ResumePage, error) {
	if err := m.record("List"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	res := m.sorted(func(r types.Resume) bool { return r.User != nil && r.User.Username == "me" })
	return &types.ResumePage{Count: len(res), Results: res}, nil
}

func (m *mockService) ListPublic(ctx context.Context, _ actions.ListOptions) (*types.ResumePage, error) {
	if err := m.record("ListPublic"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	res := m.sorted(func(r types.Resume) bool { return r.Privacy == types.PrivacyPublic })
	m.mu.Unlock()
	if m.beforeListPublic != nil {
		m.beforeListPublic(ctx)
	}
	return &types.ResumePage{Count: len(res), Results: res}, nil
}

func (m *mockService) ListFavorites(_ context.Context) ([]types.Resume, error) {
	if err := m.record("ListFavorites"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(r types.Resume) bool { return m.favorites[r.ID] }), nil
}

func (m *mockService) Get(_ context.Context, id int64) (*types.Resume, error) {
	if err := m.record("Get"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.resumes[id]
	if !ok {
		return nil, actions.ErrNotFound
	}
	r = m.decorate(r)
	return &r, nil
}

func (m *mockService) Create(_ context.Context, p types.SubmissionPayload) (*types.Resume, error) {
	if err := m.record("Create"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r := form.FromSubmission(p)
	m.nextID++
	r.ID = m.nextID
	r.User = &types.Owner{Username: "me"}
	m.resumes[r.ID] = r
	r = m.decorate(r)
	return &r, nil
}

func (m *mockService) Replace(_ context.Context, id int64, p types.SubmissionPayload) (*types.Resume, error) {
	if err := m.record("Replace"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.resumes[id]
	if !ok {
		return nil, actions.ErrNotFound
	}
	r := form.FromSubmission(p)
	r.ID = id
	r.User = old.User
	m.resumes[id] = r
	r = m.decorate(r)
	return &r, nil
}

func (m *mockService) UpdateStatus(_ context.Context, id int64, status types.Status) (*types.Resume, error) {
	if err := m.record("UpdateStatus"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.resumes[id]
	if !ok {
		return nil, actions.ErrNotFound
	}
	r.Status = status
	m.resumes[id] = r
	r = m.decorate(r)
	return &r, nil
}

func (m *mockService) Delete(_ context.Context, id int64) error {
	if err := m.record("Delete"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.resumes[id]; !ok {
		return actions.ErrNotFound
	}
	delete(m.resumes, id)
	return nil
}

func (m *mockService) ToggleFavorite(ctx context.Context, id int64) (*types.FavoriteResult, error) {
	if err := m.record("ToggleFavorite"); err != nil {
		return nil, err
	}
	if m.beforeToggle != nil {
		m.beforeToggle(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.resumes[id]
	if !ok {
		return nil, actions.ErrNotFound
	}
	if m.favorites[id] {
		delete(m.favorites, id)
		m.counts[id]--
	} else {
		m.favorites[id] = true
		m.counts[id]++
	}
	return &types.FavoriteResult{IsFavorited: m.favorites[id], Resume: m.decorate(r)}, nil
}

func (m *mockService) ViewURL(_ context.Context, id int64) (string, error) {
	if err := m.record("ViewURL"); err != nil {
		return "", err
	}
	return fmt.Sprintf("http://localhost/resumes/%d/view", id), nil
}

func (m *mockService) Download(_ context.Context, _ int64) (*actions.Download, error) {
	if err := m.record("Download"); err != nil {
		return nil, err
	}
	return &actions.Download{
		Filename:    "resume.json",
		ContentType: "application/json",
		Body:        io.NopCloser(strings.NewReader(`{}`)),
	}, nil
}

func (m *mockService) Stats(_ context.Context) (*types.UserStats, error) {
	if err := m.record("Stats"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return &types.UserStats{Favorites: len(m.favorites)}, nil
}

var errNetwork = errors.New("connection refused")
