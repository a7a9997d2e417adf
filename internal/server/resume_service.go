package server

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/resume-studio/internal/db"
	"github.com/jonathan/resume-studio/internal/form"
	"github.com/jonathan/resume-studio/internal/types"
	"github.com/jonathan/resume-studio/internal/validation"
)

// ResumeService applies ownership, visibility and validation rules on top of the store.
// Every method takes the caller's user ID; uuid.Nil means anonymous.
type ResumeService struct {
	store ResumeStore
}

// NewResumeService creates a new ResumeService
func NewResumeService(store ResumeStore) *ResumeService {
	return &ResumeService{store: store}
}

// PageRequest selects one page of a listing.
type PageRequest struct {
	Ordering string
	Page     int
	PageSize int
}

func (p PageRequest) filters() db.ResumeFilters {
	return db.ResumeFilters{
		Ordering: p.Ordering,
		Limit:    p.PageSize,
		Offset:   (p.Page - 1) * p.PageSize,
	}
}

// ListOwn returns one page of the caller's resumes and the total count.
func (s *ResumeService) ListOwn(ctx context.Context, caller uuid.UUID, page PageRequest) ([]types.Resume, int, error) {
	f := page.filters()
	f.OwnerID = &caller
	f.Viewer = caller
	return s.list(ctx, f)
}

// ListPublic returns one page of public resumes, excluding the caller's own.
func (s *ResumeService) ListPublic(ctx context.Context, caller uuid.UUID, page PageRequest) ([]types.Resume, int, error) {
	f := page.filters()
	f.PublicOnly = true
	f.Viewer = caller
	if caller != uuid.Nil {
		f.ExcludeOwner = &caller
	}
	return s.list(ctx, f)
}

// ListFavorites returns every resume the caller has favorited that is still public.
func (s *ResumeService) ListFavorites(ctx context.Context, caller uuid.UUID) ([]types.Resume, error) {
	docs, _, err := s.list(ctx, db.ResumeFilters{
		FavoritedBy: &caller,
		PublicOnly:  true,
		Viewer:      caller,
	})
	return docs, err
}

func (s *ResumeService) list(ctx context.Context, f db.ResumeFilters) ([]types.Resume, int, error) {
	rows, total, err := s.store.ListResumes(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list resumes: %w", err)
	}
	return presentAll(rows, f.Viewer), total, nil
}

// Create stores a new resume owned by the caller.
func (s *ResumeService) Create(ctx context.Context, caller uuid.UUID, p types.SubmissionPayload) (*types.Resume, error) {
	doc, err := acceptSubmission(p)
	if err != nil {
		return nil, err
	}
	id, err := s.store.CreateResume(ctx, caller, db.NewInput(doc))
	if err != nil {
		return nil, fmt.Errorf("failed to create resume: %w", err)
	}
	return s.reload(ctx, id, caller)
}

// Get returns a resume the caller may see. Private resumes of other users are forbidden.
func (s *ResumeService) Get(ctx context.Context, caller uuid.UUID, id int64) (*types.Resume, error) {
	row, err := s.visible(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	doc := present(row, caller)
	return &doc, nil
}

// Replace overwrites a resume owned by the caller.
func (s *ResumeService) Replace(ctx context.Context, caller uuid.UUID, id int64, p types.SubmissionPayload) (*types.Resume, error) {
	if _, err := s.owned(ctx, caller, id); err != nil {
		return nil, err
	}
	doc, err := acceptSubmission(p)
	if err != nil {
		return nil, err
	}
	found, err := s.store.UpdateResume(ctx, id, db.NewInput(doc))
	if err != nil {
		return nil, fmt.Errorf("failed to update resume: %w", err)
	}
	if !found {
		return nil, &ErrResumeNotFound{ID: id}
	}
	return s.reload(ctx, id, caller)
}

// UpdateStatus moves a resume owned by the caller to status.
// The stored document must satisfy the requirements of the target status.
func (s *ResumeService) UpdateStatus(ctx context.Context, caller uuid.UUID, id int64, status types.Status) (*types.Resume, error) {
	if !status.Valid() {
		return nil, &ErrValidation{Field: "resume_status", Message: fmt.Sprintf("%q is not a valid choice.", status)}
	}
	row, err := s.owned(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if fields := validation.Validate(form.ToEditable(row.Document()), status); len(fields) > 0 {
		return nil, &ErrFieldValidation{Fields: fields}
	}
	found, err := s.store.UpdateResumeStatus(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("failed to update resume status: %w", err)
	}
	if !found {
		return nil, &ErrResumeNotFound{ID: id}
	}
	return s.reload(ctx, id, caller)
}

// Delete removes a resume owned by the caller.
func (s *ResumeService) Delete(ctx context.Context, caller uuid.UUID, id int64) error {
	if _, err := s.owned(ctx, caller, id); err != nil {
		return err
	}
	found, err := s.store.DeleteResume(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete resume: %w", err)
	}
	if !found {
		return &ErrResumeNotFound{ID: id}
	}
	return nil
}

// ToggleFavorite flips the caller's favorite on another user's resume.
func (s *ResumeService) ToggleFavorite(ctx context.Context, caller uuid.UUID, id int64) (*types.FavoriteResult, error) {
	row, err := s.visible(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if isOwner(row, caller) {
		return nil, &ErrValidation{Field: "resume", Message: "Cannot favorite your own resume."}
	}
	favorited, err := s.store.ToggleFavorite(ctx, caller, id)
	if err != nil {
		return nil, fmt.Errorf("failed to toggle favorite: %w", err)
	}
	doc, err := s.reload(ctx, id, caller)
	if err != nil {
		return nil, err
	}
	return &types.FavoriteResult{IsFavorited: favorited, Resume: *doc}, nil
}

// View returns a resume for display and counts the view when the caller is not the owner.
func (s *ResumeService) View(ctx context.Context, caller uuid.UUID, id int64) (*types.Resume, error) {
	return s.track(ctx, caller, id, s.store.RecordView)
}

// Download returns a resume for export and counts the download when the caller is not the owner.
func (s *ResumeService) Download(ctx context.Context, caller uuid.UUID, id int64) (*types.Resume, error) {
	return s.track(ctx, caller, id, s.store.RecordDownload)
}

func (s *ResumeService) track(ctx context.Context, caller uuid.UUID, id int64, record func(context.Context, int64) error) (*types.Resume, error) {
	row, err := s.visible(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if !isOwner(row, caller) {
		if err := record(ctx, id); err != nil {
			return nil, fmt.Errorf("failed to record analytics: %w", err)
		}
	}
	doc := present(row, caller)
	return &doc, nil
}

// Stats aggregates engagement over the caller's resumes.
func (s *ResumeService) Stats(ctx context.Context, caller uuid.UUID) (*types.UserStats, error) {
	st, err := s.store.GetUserStats(ctx, caller)
	if err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}
	return &types.UserStats{Views: st.Views, Downloads: st.Downloads, Favorites: st.Favorites}, nil
}

// visible loads a resume the caller may read.
func (s *ResumeService) visible(ctx context.Context, caller uuid.UUID, id int64) (*db.Resume, error) {
	row, err := s.store.GetResume(ctx, id, caller)
	if err != nil {
		return nil, fmt.Errorf("failed to get resume: %w", err)
	}
	if row == nil {
		return nil, &ErrResumeNotFound{ID: id}
	}
	if row.Privacy == types.PrivacyPrivate && !isOwner(row, caller) {
		return nil, &ErrForbidden{ID: id}
	}
	return row, nil
}

// owned loads a resume for modification. Other users' resumes are reported as missing.
func (s *ResumeService) owned(ctx context.Context, caller uuid.UUID, id int64) (*db.Resume, error) {
	row, err := s.store.GetResume(ctx, id, caller)
	if err != nil {
		return nil, fmt.Errorf("failed to get resume: %w", err)
	}
	if row == nil || !isOwner(row, caller) {
		return nil, &ErrResumeNotFound{ID: id}
	}
	return row, nil
}

func (s *ResumeService) reload(ctx context.Context, id int64, caller uuid.UUID) (*types.Resume, error) {
	row, err := s.store.GetResume(ctx, id, caller)
	if err != nil {
		return nil, fmt.Errorf("failed to reload resume: %w", err)
	}
	if row == nil {
		return nil, &ErrResumeNotFound{ID: id}
	}
	doc := present(row, caller)
	return &doc, nil
}

// acceptSubmission checks a payload against the rules of its requested status
// and returns the canonical record to store.
func acceptSubmission(p types.SubmissionPayload) (types.Resume, error) {
	if !p.Status.Valid() {
		return types.Resume{}, &ErrValidation{Field: "resume_status", Message: fmt.Sprintf("%q is not a valid choice.", p.Status)}
	}
	if !p.Privacy.Valid() {
		return types.Resume{}, &ErrValidation{Field: "privacy_setting", Message: fmt.Sprintf("%q is not a valid choice.", p.Privacy)}
	}
	if p.Template != "" && !p.Template.Valid() {
		return types.Resume{}, &ErrValidation{Field: "template", Message: fmt.Sprintf("%q is not a valid choice.", p.Template)}
	}
	doc := form.FromSubmission(p)
	if fields := validation.Validate(form.ToEditable(doc), p.Status); len(fields) > 0 {
		return types.Resume{}, &ErrFieldValidation{Fields: fields}
	}
	return doc, nil
}
