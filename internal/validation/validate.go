// Package validation checks editable resumes against the requirements of a target status.
package validation

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/resume-studio/internal/types"
)

var (
	emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	phonePattern = regexp.MustCompile(`^\+?\d{7,15}$`)

	validate = validator.New()
)

// Field paths
const (
	FieldTitle      = "title"
	FieldEducation  = "education"
	FieldExperience = "experience"
)

// Messages
const (
	MsgDraftTitleRequired = "Resume title is required even for drafts"
	MsgTitleRequired      = "Resume title is required."
	MsgFirstNameRequired  = "First name is required."
	MsgLastNameRequired   = "Last name is required."
	MsgEmailRequired      = "Email is required."
	MsgEmailInvalid       = "A valid email address is required."
	MsgPhoneRequired      = "Phone number is required."
	MsgPhoneInvalid       = "A valid phone number is required."
	MsgEducationRequired  = "Please add at least one education entry."
	MsgExperienceRequired = "At least one work experience or project entry is required"
)

// Validate returns the field errors that block doc from reaching target, in
// document layout order. An empty result means the transition is allowed.
//
// ARCHIVED is a pure status transition and always validates.
func Validate(doc types.EditableResume, target types.Status) []types.FieldError {
	switch target {
	case types.StatusDraft:
		return validateDraft(doc)
	case types.StatusPublished:
		return validatePublished(doc)
	case types.StatusArchived:
		return nil
	}
	return []types.FieldError{{Field: "resume_status", Message: fmt.Sprintf("Unknown status %q.", target)}}
}

// Eligible reports whether doc may move to target.
func Eligible(doc types.EditableResume, target types.Status) bool {
	return len(Validate(doc, target)) == 0
}

// Check is Validate returning an *Error when any field fails.
func Check(doc types.EditableResume, target types.Status) error {
	if fields := Validate(doc, target); len(fields) > 0 {
		return &Error{Target: target, Fields: fields}
	}
	return nil
}

func validateDraft(doc types.EditableResume) []types.FieldError {
	if blank(doc.Title) {
		return []types.FieldError{{Field: FieldTitle, Message: MsgDraftTitleRequired}}
	}
	return nil
}

func validatePublished(doc types.EditableResume) []types.FieldError {
	var errs []types.FieldError
	add := func(field, msg string) {
		errs = append(errs, types.FieldError{Field: field, Message: msg})
	}

	if blank(doc.Title) {
		add(FieldTitle, MsgTitleRequired)
	}

	pd := doc.PersonalDetails
	if blank(pd.FirstName) {
		add("personal_details.first_name", MsgFirstNameRequired)
	}
	if blank(pd.LastName) {
		add("personal_details.last_name", MsgLastNameRequired)
	}
	switch email := strings.TrimSpace(pd.Email); {
	case email == "":
		add("personal_details.email", MsgEmailRequired)
	case !emailPattern.MatchString(email):
		add("personal_details.email", MsgEmailInvalid)
	}
	switch phone := strings.TrimSpace(pd.Phone); {
	case phone == "":
		add("personal_details.phone", MsgPhoneRequired)
	case !phonePattern.MatchString(phone):
		add("personal_details.phone", MsgPhoneInvalid)
	}
	for _, u := range []struct{ field, label, value string }{
		{"personal_details.website", "Website", pd.Website},
		{"personal_details.github", "GitHub", pd.GitHub},
		{"personal_details.linkedin", "LinkedIn", pd.LinkedIn},
	} {
		if !blank(u.value) && !validURL(u.value) {
			add(u.field, fmt.Sprintf("%s must be a valid URL.", u.label))
		}
	}

	if len(doc.Education) == 0 {
		add(FieldEducation, MsgEducationRequired)
	}
	for i, edu := range doc.Education {
		n := i + 1
		if blank(edu.Institution) {
			add(entryField("education", i, "institution"), fmt.Sprintf("Education entry %d is missing the institution name.", n))
		}
		if blank(edu.Major) {
			add(entryField("education", i, "major"), fmt.Sprintf("Education entry %d is missing the major.", n))
		}
		if edu.Start.IsZero() {
			add(entryField("education", i, "start_date"), fmt.Sprintf("Education entry %d is missing the start date.", n))
		}
		if !blank(edu.Grade) && !validGrade(edu.Grade) {
			add(entryField("education", i, "cgpa"), fmt.Sprintf("Education entry %d has a grade that is not a number.", n))
		}
	}

	switch {
	case len(doc.WorkExperience) > 0:
		for i, work := range doc.WorkExperience {
			n := i + 1
			if blank(work.Employer) {
				add(entryField("work_experience", i, "employer"), fmt.Sprintf("Work experience entry %d is missing the employer name.", n))
			}
			if blank(work.Role) {
				add(entryField("work_experience", i, "role"), fmt.Sprintf("Work experience entry %d is missing the role.", n))
			}
			if work.Start.IsZero() {
				add(entryField("work_experience", i, "start_date"), fmt.Sprintf("Work experience entry %d is missing the start date.", n))
			}
		}
	case len(doc.Projects) > 0:
		for i, p := range doc.Projects {
			n := i + 1
			if blank(p.Title) {
				add(entryField("projects", i, "title"), fmt.Sprintf("Project entry %d is missing the title.", n))
			}
			if p.Start.IsZero() {
				add(entryField("projects", i, "start_date"), fmt.Sprintf("Project entry %d is missing the start date.", n))
			}
		}
	default:
		add(FieldExperience, MsgExperienceRequired)
	}

	for i, s := range doc.Skills {
		n := i + 1
		if blank(s.Name) {
			add(entryField("skills", i, "skill_name"), fmt.Sprintf("Skill entry %d is missing the name.", n))
		}
		switch {
		case s.Type == "":
			add(entryField("skills", i, "skill_type"), fmt.Sprintf("Skill entry %d is missing the type.", n))
		case !s.Type.Valid():
			add(entryField("skills", i, "skill_type"), fmt.Sprintf("Skill entry %d has an unknown type %q.", n, s.Type))
		}
	}

	return errs
}

func entryField(collection string, i int, field string) string {
	return collection + "." + strconv.Itoa(i) + "." + field
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func validURL(s string) bool {
	return validate.Var(strings.TrimSpace(s), "url") == nil
}

func validGrade(s string) bool {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil && !math.IsNaN(v) && !math.IsInf(v, 0)
}
