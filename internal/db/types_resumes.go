package db

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-studio/internal/types"
)

// Content holds the resume sections stored in the JSONB content column.
// Section order is preserved as written.
type Content struct {
	PersonalDetails types.PersonalDetails  `json:"personal_details"`
	Education       []types.Education      `json:"education"`
	WorkExperience  []types.WorkExperience `json:"work_experience"`
	Skills          []types.Skill          `json:"skills"`
	Awards          []types.Award          `json:"awards"`
	Projects        []types.Project        `json:"projects"`
}

// Scan implements the Scanner interface
func (c *Content) Scan(src interface{}) error {
	if src == nil {
		*c = Content{}
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("failed to scan resume content")
	}
	return json.Unmarshal(data, c)
}

// Value implements the Valuer interface
func (c Content) Value() (driver.Value, error) {
	return json.Marshal(c.normalized())
}

// normalized replaces nil sections with empty ones so they encode as [] rather than null.
func (c Content) normalized() Content {
	if c.Education == nil {
		c.Education = []types.Education{}
	}
	if c.WorkExperience == nil {
		c.WorkExperience = []types.WorkExperience{}
	}
	if c.Skills == nil {
		c.Skills = []types.Skill{}
	}
	if c.Awards == nil {
		c.Awards = []types.Award{}
	}
	if c.Projects == nil {
		c.Projects = []types.Project{}
	}
	return c
}

// ResumeInput is the writable part of a resume row
type ResumeInput struct {
	Title        string
	Template     types.Template
	Status       types.Status
	Privacy      types.Privacy
	IsAnonymized bool
	Content      Content
}

// Resume represents a resume row joined with its owner, analytics and favorite data
type Resume struct {
	ID           int64
	UserID       uuid.UUID
	Username     string
	Title        string
	Template     types.Template
	Status       types.Status
	Privacy      types.Privacy
	IsAnonymized bool
	Content      Content
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Views         int
	Downloads     int
	FavoriteCount int
	// IsFavorited is relative to the viewer passed to the query.
	IsFavorited bool
}

// ResumeFilters selects and orders resumes for listing
type ResumeFilters struct {
	OwnerID      *uuid.UUID
	ExcludeOwner *uuid.UUID
	FavoritedBy  *uuid.UUID
	PublicOnly   bool
	// Viewer determines IsFavorited. uuid.Nil for anonymous callers.
	Viewer   uuid.UUID
	Ordering string
	Limit    int
	Offset   int
}

// Stats aggregates engagement across one owner's resumes
type Stats struct {
	Views     int
	Downloads int
	Favorites int
}

// NewInput converts a canonical document into a writable row.
func NewInput(r types.Resume) ResumeInput {
	tmpl := r.Template
	if tmpl == "" {
		tmpl = types.DefaultTemplate
	}
	return ResumeInput{
		Title:        r.Title,
		Template:     tmpl,
		Status:       r.Status,
		Privacy:      r.Privacy,
		IsAnonymized: r.IsAnonymized,
		Content: Content{
			PersonalDetails: r.PersonalDetails,
			Education:       r.Education,
			WorkExperience:  r.WorkExperience,
			Skills:          r.Skills,
			Awards:          r.Awards,
			Projects:        r.Projects,
		},
	}
}

// Document converts the row into the canonical wire document. Counters are not attached.
func (r *Resume) Document() types.Resume {
	owner := r.UserID
	c := r.Content.normalized()
	return types.Resume{
		ID:              r.ID,
		User:            &types.Owner{ID: &owner, Username: r.Username},
		Title:           r.Title,
		Template:        r.Template,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
		Status:          r.Status,
		Privacy:         r.Privacy,
		IsAnonymized:    r.IsAnonymized,
		PersonalDetails: c.PersonalDetails,
		Education:       c.Education,
		WorkExperience:  c.WorkExperience,
		Skills:          c.Skills,
		Awards:          c.Awards,
		Projects:        c.Projects,
	}
}
