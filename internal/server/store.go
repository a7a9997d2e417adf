package server

import (
	"context"

	"github.com/google/uuid"

	"github.com/jonathan/resume-studio/internal/db"
	"github.com/jonathan/resume-studio/internal/types"
)

// UserStore is the account storage used by UserService.
type UserStore interface {
	CreateUser(ctx context.Context, username, email, passwordHash string) (uuid.UUID, error)
	GetUser(ctx context.Context, id uuid.UUID) (*db.User, error)
	GetUserByUsername(ctx context.Context, username string) (*db.User, error)
	CheckUserExists(ctx context.Context, username, email string) (bool, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) (bool, error)
	DeleteUser(ctx context.Context, id uuid.UUID) (bool, error)
}

// ResumeStore is the resume storage used by ResumeService.
// Lookups return nil, nil when nothing matches; writes report whether a row matched.
type ResumeStore interface {
	CreateResume(ctx context.Context, userID uuid.UUID, in db.ResumeInput) (int64, error)
	GetResume(ctx context.Context, id int64, viewer uuid.UUID) (*db.Resume, error)
	ListResumes(ctx context.Context, f db.ResumeFilters) ([]db.Resume, int, error)
	UpdateResume(ctx context.Context, id int64, in db.ResumeInput) (bool, error)
	UpdateResumeStatus(ctx context.Context, id int64, status types.Status) (bool, error)
	DeleteResume(ctx context.Context, id int64) (bool, error)
	ToggleFavorite(ctx context.Context, userID uuid.UUID, resumeID int64) (bool, error)
	RecordView(ctx context.Context, resumeID int64) error
	RecordDownload(ctx context.Context, resumeID int64) error
	GetUserStats(ctx context.Context, userID uuid.UUID) (*db.Stats, error)
}

// Store is everything the server persists.
type Store interface {
	UserStore
	ResumeStore
}

var _ Store = (*db.DB)(nil)
