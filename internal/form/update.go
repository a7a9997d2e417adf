package form

import "github.com/jonathan/resume-studio/internal/types"

// PersonalField names a text field of the personal details block.
type PersonalField int

// Personal detail fields
const (
	PersonalFirstName PersonalField = iota
	PersonalLastName
	PersonalEmail
	PersonalPhone
	PersonalWebsite
	PersonalGitHub
	PersonalLinkedIn
)

// WithPersonal returns d with field f set to v.
func WithPersonal(d types.EditablePersonalDetails, f PersonalField, v string) types.EditablePersonalDetails {
	switch f {
	case PersonalFirstName:
		d.FirstName = v
	case PersonalLastName:
		d.LastName = v
	case PersonalEmail:
		d.Email = v
	case PersonalPhone:
		d.Phone = v
	case PersonalWebsite:
		d.Website = v
	case PersonalGitHub:
		d.GitHub = v
	case PersonalLinkedIn:
		d.LinkedIn = v
	}
	return d
}

// EducationField names a text field of an education entry.
type EducationField int

// Education text fields
const (
	EducationInstitution EducationField = iota
	EducationMajor
	EducationGrade
)

// WithEducationText returns e with field f set to v.
func WithEducationText(e types.EditableEducation, f EducationField, v string) types.EditableEducation {
	switch f {
	case EducationInstitution:
		e.Institution = v
	case EducationMajor:
		e.Major = v
	case EducationGrade:
		e.Grade = v
	}
	return e
}

// WithEducationStart returns e with a new start instant.
func WithEducationStart(e types.EditableEducation, start types.MonthYear) types.EditableEducation {
	e.Start = start
	return e
}

// WithEducationEnd returns e with a new end instant. A complete end instant ends the entry.
func WithEducationEnd(e types.EditableEducation, end types.MonthYear) types.EditableEducation {
	e.End = end
	if !end.IsZero() {
		e.CurrentlyStudying = false
	}
	return e
}

// WithCurrentlyStudying returns e with the flag set. Marking an entry current clears its end.
func WithCurrentlyStudying(e types.EditableEducation, current bool) types.EditableEducation {
	e.CurrentlyStudying = current
	if current {
		e.End = types.MonthYear{}
	}
	return e
}

// WorkField names a text field of a work experience entry.
type WorkField int

// Work experience text fields
const (
	WorkEmployer WorkField = iota
	WorkRole
	WorkLocation
	WorkDescription
)

// WithWorkText returns w with field f set to v.
func WithWorkText(w types.EditableWorkExperience, f WorkField, v string) types.EditableWorkExperience {
	switch f {
	case WorkEmployer:
		w.Employer = v
	case WorkRole:
		w.Role = v
	case WorkLocation:
		w.Location = v
	case WorkDescription:
		w.Description = v
	}
	return w
}

// WithWorkStart returns w with a new start instant.
func WithWorkStart(w types.EditableWorkExperience, start types.MonthYear) types.EditableWorkExperience {
	w.Start = start
	return w
}

// WithWorkEnd returns w with a new end instant. A complete end instant ends the entry.
func WithWorkEnd(w types.EditableWorkExperience, end types.MonthYear) types.EditableWorkExperience {
	w.End = end
	if !end.IsZero() {
		w.CurrentlyWorking = false
	}
	return w
}

// WithCurrentlyWorking returns w with the flag set. Marking an entry current clears its end.
// Clearing the flag without an end instant is allowed; the entry then submits a null end.
func WithCurrentlyWorking(w types.EditableWorkExperience, current bool) types.EditableWorkExperience {
	w.CurrentlyWorking = current
	if current {
		w.End = types.MonthYear{}
	}
	return w
}

// ProjectField names a text field of a project entry.
type ProjectField int

// Project text fields
const (
	ProjectTitle ProjectField = iota
	ProjectTechnologies
	ProjectDescription
)

// WithProjectText returns p with field f set to v.
func WithProjectText(p types.EditableProject, f ProjectField, v string) types.EditableProject {
	switch f {
	case ProjectTitle:
		p.Title = v
	case ProjectTechnologies:
		p.Technologies = v
	case ProjectDescription:
		p.Description = v
	}
	return p
}

// WithProjectStart returns p with a new start instant.
func WithProjectStart(p types.EditableProject, start types.MonthYear) types.EditableProject {
	p.Start = start
	return p
}

// WithProjectEnd returns p with a new end instant. A complete end instant ends the project.
func WithProjectEnd(p types.EditableProject, end types.MonthYear) types.EditableProject {
	p.End = end
	if !end.IsZero() {
		p.CurrentlyWorking = false
	}
	return p
}

// WithProjectCurrent returns p with the flag set. Marking a project current clears its end.
func WithProjectCurrent(p types.EditableProject, current bool) types.EditableProject {
	p.CurrentlyWorking = current
	if current {
		p.End = types.MonthYear{}
	}
	return p
}

// SkillField names a text field of a skill entry.
type SkillField int

// Skill text fields
const (
	SkillName SkillField = iota
	SkillProficiency
)

// WithSkillText returns s with field f set to v.
func WithSkillText(s types.EditableSkill, f SkillField, v string) types.EditableSkill {
	switch f {
	case SkillName:
		s.Name = v
	case SkillProficiency:
		s.Proficiency = v
	}
	return s
}

// WithSkillType returns s with a new type.
func WithSkillType(s types.EditableSkill, t types.SkillType) types.EditableSkill {
	s.Type = t
	return s
}

// AwardField names a text field of an award entry.
type AwardField int

// Award text fields
const (
	AwardName AwardField = iota
	AwardDescription
)

// WithAwardText returns a with field f set to v.
func WithAwardText(a types.EditableAward, f AwardField, v string) types.EditableAward {
	switch f {
	case AwardName:
		a.Name = v
	case AwardDescription:
		a.Description = v
	}
	return a
}

// WithAwardYear returns a with a new year.
func WithAwardYear(a types.EditableAward, year int) types.EditableAward {
	a.Year = year
	return a
}

// NewEducation returns a blank education entry.
func NewEducation() types.EditableEducation {
	return types.EditableEducation{}
}

// NewWorkExperience returns a blank work experience entry.
func NewWorkExperience() types.EditableWorkExperience {
	return types.EditableWorkExperience{}
}

// NewProject returns a blank project entry.
func NewProject() types.EditableProject {
	return types.EditableProject{}
}

// NewSkill returns a blank skill entry of type OTHER.
func NewSkill() types.EditableSkill {
	return types.EditableSkill{Type: types.SkillOther}
}

// NewAward returns a blank award entry.
func NewAward() types.EditableAward {
	return types.EditableAward{}
}

// AddEntry returns a new slice with v appended. s is not modified.
func AddEntry[T any](s []T, v T) []T {
	out := make([]T, len(s), len(s)+1)
	copy(out, s)
	return append(out, v)
}

// RemoveEntry returns a new slice without the element at i.
// An out-of-range index returns an unchanged copy.
func RemoveEntry[T any](s []T, i int) []T {
	out := make([]T, 0, len(s))
	for j, v := range s {
		if j != i {
			out = append(out, v)
		}
	}
	return out
}

// UpdateEntry returns a new slice with the element at i replaced by fn(element).
// An out-of-range index returns an unchanged copy.
func UpdateEntry[T any](s []T, i int, fn func(T) T) []T {
	out := make([]T, len(s))
	copy(out, s)
	if i >= 0 && i < len(out) {
		out[i] = fn(out[i])
	}
	return out
}

// MoveEntry returns a new slice with the element at from moved to position to.
// Out-of-range positions return an unchanged copy.
func MoveEntry[T any](s []T, from, to int) []T {
	out := make([]T, len(s))
	copy(out, s)
	if from < 0 || from >= len(out) || to < 0 || to >= len(out) || from == to {
		return out
	}
	v := out[from]
	if from < to {
		copy(out[from:to], out[from+1:to+1])
	} else {
		copy(out[to+1:from+1], out[to:from])
	}
	out[to] = v
	return out
}

// Clone returns a deep copy of doc so later edits cannot alias its collections.
func Clone(doc types.EditableResume) types.EditableResume {
	doc.Education = append([]types.EditableEducation{}, doc.Education...)
	doc.WorkExperience = append([]types.EditableWorkExperience{}, doc.WorkExperience...)
	doc.Skills = append([]types.EditableSkill{}, doc.Skills...)
	doc.Awards = append([]types.EditableAward{}, doc.Awards...)
	doc.Projects = append([]types.EditableProject{}, doc.Projects...)
	return doc
}
