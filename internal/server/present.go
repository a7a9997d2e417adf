package server

import (
	"github.com/google/uuid"

	"github.com/jonathan/resume-studio/internal/db"
	"github.com/jonathan/resume-studio/internal/types"
)

// Placeholders shown in place of an anonymized owner's contact details.
const (
	anonymousUsername = "Anonymous"
	anonymousName     = "XXX"
	anonymousEmail    = "xxx@email.com"
	anonymousPhone    = "xxx-xxx-xxxx"
)

// present converts a stored row into the document a viewer may see.
// viewer is uuid.Nil for anonymous callers.
//
// Counters are reported only to the owner and only once the resume is published.
// Anonymized public resumes hide the owner and contact details from everyone else.
func present(r *db.Resume, viewer uuid.UUID) types.Resume {
	doc := r.Document()
	owner := isOwner(r, viewer)

	favorited := viewer != uuid.Nil && r.IsFavorited
	doc.IsFavorited = &favorited

	if owner && r.Status == types.StatusPublished {
		favorites, views, downloads := r.FavoriteCount, r.Views, r.Downloads
		doc.FavoriteCount = &favorites
		doc.ViewsCount = &views
		doc.DownloadsCount = &downloads
	}

	if !owner && r.IsAnonymized && r.Privacy == types.PrivacyPublic {
		anonymize(&doc)
	}
	return doc
}

func anonymize(doc *types.Resume) {
	doc.User = &types.Owner{ID: nil, Username: anonymousUsername}
	doc.PersonalDetails = types.PersonalDetails{
		FirstName: anonymousName,
		LastName:  anonymousName,
		Email:     anonymousEmail,
		Phone:     anonymousPhone,
	}
}

func isOwner(r *db.Resume, viewer uuid.UUID) bool {
	return viewer != uuid.Nil && r.UserID == viewer
}

// presentAll applies present to every row.
func presentAll(rows []db.Resume, viewer uuid.UUID) []types.Resume {
	out := make([]types.Resume, 0, len(rows))
	for i := range rows {
		out = append(out, present(&rows[i], viewer))
	}
	return out
}
