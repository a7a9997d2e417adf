package server

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-studio/internal/db"
	"github.com/jonathan/resume-studio/internal/types"
)

type favoriteKey struct {
	user   uuid.UUID
	resume int64
}

// mockStore is an in-memory Store. Set err to make every call fail.
type mockStore struct {
	mu        sync.Mutex
	users     map[uuid.UUID]*db.User
	resumes   map[int64]*db.Resume
	favorites map[favoriteKey]bool
	nextID    int64
	err       error
}

func newMockStore() *mockStore {
	return &mockStore{
		users:     map[uuid.UUID]*db.User{},
		resumes:   map[int64]*db.Resume{},
		favorites: map[favoriteKey]bool{},
	}
}

func (m *mockStore) CreateUser(_ context.Context, username, email, passwordHash string) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return uuid.Nil, m.err
	}
	id := uuid.New()
	now := time.Now()
	m.users[id] = &db.User{ID: id, Username: username, Email: email, PasswordHash: passwordHash, CreatedAt: now, UpdatedAt: now}
	return id, nil
}

func (m *mockStore) GetUser(_ context.Context, id uuid.UUID) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *mockStore) GetUserByUsername(_ context.Context, username string) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockStore) CheckUserExists(_ context.Context, username, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	for _, u := range m.users {
		if u.Username == username || strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockStore) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return false, nil
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now()
	return true, nil
}

// DeleteUser mirrors the ON DELETE CASCADE of the users table.
func (m *mockStore) DeleteUser(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if _, ok := m.users[id]; !ok {
		return false, nil
	}
	delete(m.users, id)
	for rid, r := range m.resumes {
		if r.UserID == id {
			delete(m.resumes, rid)
		}
	}
	for k := range m.favorites {
		if k.user == id || m.resumes[k.resume] == nil {
			delete(m.favorites, k)
		}
	}
	return true, nil
}

func (m *mockStore) CreateResume(_ context.Context, userID uuid.UUID, in db.ResumeInput) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	u, ok := m.users[userID]
	if !ok {
		return 0, errors.New("foreign key violation")
	}
	m.nextID++
	now := time.Now()
	r := &db.Resume{ID: m.nextID, UserID: userID, Username: u.Username, CreatedAt: now}
	m.apply(r, in, now)
	m.resumes[r.ID] = r
	return r.ID, nil
}

func (m *mockStore) apply(r *db.Resume, in db.ResumeInput, now time.Time) {
	r.Title = in.Title
	r.Template = in.Template
	r.Status = in.Status
	r.Privacy = in.Privacy
	r.IsAnonymized = in.IsAnonymized
	r.Content = in.Content
	r.UpdatedAt = now
}

// row copies a resume with the viewer-relative favorite data filled in. Callers hold mu.
func (m *mockStore) row(r *db.Resume, viewer uuid.UUID) db.Resume {
	cp := *r
	cp.FavoriteCount = 0
	for k := range m.favorites {
		if k.resume == r.ID {
			cp.FavoriteCount++
		}
	}
	cp.IsFavorited = m.favorites[favoriteKey{viewer, r.ID}]
	return cp
}

func (m *mockStore) GetResume(_ context.Context, id int64, viewer uuid.UUID) (*db.Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	r, ok := m.resumes[id]
	if !ok {
		return nil, nil
	}
	row := m.row(r, viewer)
	return &row, nil
}

func (m *mockStore) ListResumes(_ context.Context, f db.ResumeFilters) ([]db.Resume, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, 0, m.err
	}
	var matched []db.Resume
	for _, r := range m.resumes {
		switch {
		case f.OwnerID != nil && r.UserID != *f.OwnerID:
			continue
		case f.ExcludeOwner != nil && r.UserID == *f.ExcludeOwner:
			continue
		case f.FavoritedBy != nil && !m.favorites[favoriteKey{*f.FavoritedBy, r.ID}]:
			continue
		case f.PublicOnly && r.Privacy != types.PrivacyPublic:
			continue
		}
		matched = append(matched, m.row(r, f.Viewer))
	}
	// Newest first, matching the default ordering.
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	total := len(matched)
	if f.Offset > 0 {
		matched = matched[min(f.Offset, len(matched)):]
	}
	if f.Limit > 0 && len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}
	return matched, total, nil
}

func (m *mockStore) UpdateResume(_ context.Context, id int64, in db.ResumeInput) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	r, ok := m.resumes[id]
	if !ok {
		return false, nil
	}
	m.apply(r, in, time.Now())
	return true, nil
}

func (m *mockStore) UpdateResumeStatus(_ context.Context, id int64, status types.Status) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	r, ok := m.resumes[id]
	if !ok {
		return false, nil
	}
	r.Status = status
	r.UpdatedAt = time.Now()
	return true, nil
}

func (m *mockStore) DeleteResume(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if _, ok := m.resumes[id]; !ok {
		return false, nil
	}
	delete(m.resumes, id)
	for k := range m.favorites {
		if k.resume == id {
			delete(m.favorites, k)
		}
	}
	return true, nil
}

func (m *mockStore) ToggleFavorite(_ context.Context, userID uuid.UUID, resumeID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	k := favoriteKey{userID, resumeID}
	if m.favorites[k] {
		delete(m.favorites, k)
		return false, nil
	}
	m.favorites[k] = true
	return true, nil
}

func (m *mockStore) RecordView(_ context.Context, resumeID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if r, ok := m.resumes[resumeID]; ok {
		r.Views++
	}
	return nil
}

func (m *mockStore) RecordDownload(_ context.Context, resumeID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if r, ok := m.resumes[resumeID]; ok {
		r.Downloads++
	}
	return nil
}

func (m *mockStore) GetUserStats(_ context.Context, userID uuid.UUID) (*db.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	st := &db.Stats{}
	for _, r := range m.resumes {
		if r.UserID != userID {
			continue
		}
		st.Views += r.Views
		st.Downloads += r.Downloads
		for k := range m.favorites {
			if k.resume == r.ID && k.user != userID {
				st.Favorites++
			}
		}
	}
	return st, nil
}

// addUser registers a user directly, bypassing password hashing.
func (m *mockStore) addUser(username string) uuid.UUID {
	id, _ := m.CreateUser(context.Background(), username, username+"@example.com", "")
	return id
}

// addResume stores a resume directly.
func (m *mockStore) addResume(owner uuid.UUID, title string, status types.Status, privacy types.Privacy) int64 {
	in := db.NewInput(publishedPayloadResume(title))
	in.Status = status
	in.Privacy = privacy
	id, _ := m.CreateResume(context.Background(), owner, in)
	return id
}

func strPtr(s string) *string { return &s }

// publishedPayload returns a submission that satisfies every PUBLISHED requirement.
func publishedPayload(title string) types.SubmissionPayload {
	return types.SubmissionPayload{
		Title:    title,
		Status:   types.StatusPublished,
		Privacy:  types.PrivacyPublic,
		Template: types.TemplateClassic,
		PersonalDetails: types.PersonalDetailsPayload{
			FirstName: "Ada",
			LastName:  "Lovelace",
			Email:     "ada@example.com",
			Phone:     "+4420123456",
			GitHub:    strPtr("https://github.com/ada"),
		},
		Education: []types.EducationPayload{{
			Institution: "University of London",
			Major:       strPtr("Mathematics"),
			StartDate:   strPtr("1832-01-01"),
			EndDate:     strPtr("1835-06-01"),
		}},
		WorkExperience: []types.WorkExperiencePayload{{
			Employer:  "Analytical Engines Ltd",
			Role:      "Programmer",
			StartDate: strPtr("1842-09-01"),
		}},
		Skills: []types.SkillPayload{{SkillName: "Go", SkillType: types.SkillTechnical}},
	}
}

func publishedPayloadResume(title string) types.Resume {
	p := publishedPayload(title)
	r, err := acceptSubmission(p)
	if err != nil {
		panic(err)
	}
	return r
}
