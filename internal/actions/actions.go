// Package actions defines the boundary between the editing core and the service that
// stores resumes. The core only ever talks to a Service; it never retries a call.
package actions

import (
	"context"
	"errors"
	"io"

	"github.com/jonathan/resume-studio/internal/types"
)

// ErrNotFound is returned when a resume does not exist or is not visible to the caller.
var ErrNotFound = errors.New("resume not found")

// ErrUnauthorized is returned when the session has no valid token.
var ErrUnauthorized = errors.New("not authenticated")

// ListOptions selects one page of a listing.
// Ordering is a field name optionally prefixed with "-" for descending order.
type ListOptions struct {
	Ordering string
	Page     int
	PageSize int
}

// Download is a rendered resume handed back by the service.
// The caller must close Body.
type Download struct {
	Filename    string
	ContentType string
	Body        io.ReadCloser
}

// Service is the set of verbs the core issues against the backing store.
// Every verb may fail; none is retried here.
type Service interface {
	// List returns the caller's own resumes.
	List(ctx context.Context, opts ListOptions) (*types.ResumePage, error)
	// ListPublic returns the public feed, excluding the caller's own resumes.
	ListPublic(ctx context.Context, opts ListOptions) (*types.ResumePage, error)
	// ListFavorites returns the resumes the caller has favorited.
	ListFavorites(ctx context.Context) ([]types.Resume, error)

	Get(ctx context.Context, id int64) (*types.Resume, error)
	Create(ctx context.Context, p types.SubmissionPayload) (*types.Resume, error)
	Replace(ctx context.Context, id int64, p types.SubmissionPayload) (*types.Resume, error)
	UpdateStatus(ctx context.Context, id int64, status types.Status) (*types.Resume, error)
	Delete(ctx context.Context, id int64) error

	// ToggleFavorite flips the caller's favorite flag and returns the
	// authoritative document, including the new flag and count.
	ToggleFavorite(ctx context.Context, id int64) (*types.FavoriteResult, error)

	ViewURL(ctx context.Context, id int64) (string, error)
	Download(ctx context.Context, id int64) (*Download, error)
	Stats(ctx context.Context) (*types.UserStats, error)
}
