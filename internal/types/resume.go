// Package types provides type definitions for structured data used throughout the resume-studio system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle tag of a resume.
type Status string

// Status values
const (
	StatusDraft     Status = "DRAFT"
	StatusPublished Status = "PUBLISHED"
	StatusArchived  Status = "ARCHIVED"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// Privacy is the visibility tag of a resume, independent of its status.
type Privacy string

// Privacy values
const (
	PrivacyPrivate Privacy = "PRIVATE"
	PrivacyPublic  Privacy = "PUBLIC"
)

// Valid reports whether p is a known privacy setting.
func (p Privacy) Valid() bool {
	return p == PrivacyPrivate || p == PrivacyPublic
}

// SkillType classifies a skill entry.
type SkillType string

// SkillType values
const (
	SkillTechnical SkillType = "TECHNICAL"
	SkillSoft      SkillType = "SOFT"
	SkillLanguage  SkillType = "LANGUAGE"
	SkillOther     SkillType = "OTHER"
)

// Valid reports whether t is a known skill type.
func (t SkillType) Valid() bool {
	switch t {
	case SkillTechnical, SkillSoft, SkillLanguage, SkillOther:
		return true
	}
	return false
}

// Template names the layout a resume is rendered with.
type Template string

// Template values
const (
	TemplateClassic Template = "template_classic"
	TemplateDeedy   Template = "template_deedy"

	DefaultTemplate = TemplateClassic
)

// Valid reports whether t is a known template.
func (t Template) Valid() bool {
	return t == TemplateClassic || t == TemplateDeedy
}

// Owner is the public reference to the user owning a resume.
// ID is null for anonymized public resumes.
type Owner struct {
	ID       *uuid.UUID `json:"id"`
	Username string     `json:"username"`
}

// PersonalDetails holds the contact block of a resume.
type PersonalDetails struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	Phone     string  `json:"phone"`
	Website   *string `json:"website"`
	GitHub    *string `json:"github"`
	LinkedIn  *string `json:"linkedin"`
}

// Education is a stored education entry. A nil EndDate means the entry is ongoing.
type Education struct {
	Institution       string   `json:"institution"`
	Major             *string  `json:"major"`
	StartDate         *string  `json:"start_date"`
	EndDate           *string  `json:"end_date"`
	CurrentlyStudying *bool    `json:"currently_studying,omitempty"`
	CGPA              *float64 `json:"cgpa"`
}

// WorkExperience is a stored employment entry.
type WorkExperience struct {
	Employer         string  `json:"employer"`
	Role             string  `json:"role"`
	Location         *string `json:"location"`
	StartDate        *string `json:"start_date"`
	EndDate          *string `json:"end_date"`
	CurrentlyWorking bool    `json:"currently_working"`
	Description      *string `json:"description"`
}

// Skill is a stored skill entry.
type Skill struct {
	SkillName   string    `json:"skill_name"`
	SkillType   SkillType `json:"skill_type"`
	Proficiency *string   `json:"proficiency"`
}

// Award is a stored award entry.
type Award struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Year        int     `json:"year"`
}

// Project is a stored project entry.
type Project struct {
	Title            string  `json:"title"`
	Technologies     *string `json:"technologies"`
	StartDate        *string `json:"start_date"`
	EndDate          *string `json:"end_date"`
	CurrentlyWorking bool    `json:"currently_working"`
	Description      *string `json:"description"`
}

// Resume is the canonical document as persisted and returned by the backing service.
// Collection order is significant and determines on-page ordering.
type Resume struct {
	ID              int64            `json:"id"`
	User            *Owner           `json:"user"`
	Title           string           `json:"title"`
	Template        Template         `json:"template,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	Status          Status           `json:"resume_status"`
	Privacy         Privacy          `json:"privacy_setting"`
	IsAnonymized    bool             `json:"is_anonymized"`
	PersonalDetails PersonalDetails  `json:"personal_details"`
	Education       []Education      `json:"education"`
	WorkExperience  []WorkExperience `json:"work_experience"`
	Skills          []Skill          `json:"skills"`
	Awards          []Award          `json:"awards"`
	Projects        []Project        `json:"projects"`

	// Attached by the backing service, never edited by clients.
	FavoriteCount  *int  `json:"favorite_count,omitempty"`
	IsFavorited    *bool `json:"is_favorited,omitempty"`
	ViewsCount     *int  `json:"views_count,omitempty"`
	DownloadsCount *int  `json:"downloads_count,omitempty"`
}

// Favorited reports the viewer's favorite flag, treating an absent flag as false.
func (r *Resume) Favorited() bool {
	return r.IsFavorited != nil && *r.IsFavorited
}

// ResumePage is one page of a paginated resume listing.
type ResumePage struct {
	Count    int      `json:"count"`
	Next     *string  `json:"next"`
	Previous *string  `json:"previous"`
	Results  []Resume `json:"results"`
}

// FavoriteResult is the response to a favorite toggle.
type FavoriteResult struct {
	IsFavorited bool   `json:"is_favorited"`
	Resume      Resume `json:"resume"`
}

// UserStats aggregates engagement across all of a user's resumes.
type UserStats struct {
	Views     int `json:"views"`
	Downloads int `json:"downloads"`
	Favorites int `json:"favorites"`
}

// StatusUpdate is the body of a partial status update.
type StatusUpdate struct {
	Status Status `json:"resume_status" validate:"required,oneof=DRAFT PUBLISHED ARCHIVED"`
}

// ViewLink is the response carrying a shareable view URL.
type ViewLink struct {
	URL string `json:"url"`
}
