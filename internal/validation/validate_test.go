package validation

import (
	"errors"
	"testing"

	"github.com/jonathan/resume-studio/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func publishable() types.EditableResume {
	return types.EditableResume{
		Title:   "Staff Engineer",
		Status:  types.StatusPublished,
		Privacy: types.PrivacyPublic,
		PersonalDetails: types.EditablePersonalDetails{
			FirstName: "Grace",
			LastName:  "Hopper",
			Email:     "grace@example.com",
			Phone:     "+15551234567",
			Website:   "https://grace.dev",
		},
		Education: []types.EditableEducation{
			{Institution: "Yale", Major: "Mathematics", Start: types.MonthYear{Month: "September", Year: "1930"}, Grade: "0"},
		},
		WorkExperience: []types.EditableWorkExperience{
			{Employer: "US Navy", Role: "Rear Admiral", Start: types.MonthYear{Month: "May", Year: "1943"}, CurrentlyWorking: true},
		},
		Skills: []types.EditableSkill{{Name: "COBOL", Type: types.SkillTechnical}},
		Awards: []types.EditableAward{{Name: "National Medal of Technology", Year: 1991}},
	}
}

func fields(errs []types.FieldError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Field)
	}
	return out
}

func TestValidate_DraftTitleOnly(t *testing.T) {
	errs := Validate(types.EditableResume{Title: "", Status: types.StatusDraft}, types.StatusDraft)
	assert.Equal(t, []types.FieldError{{Field: "title", Message: "Resume title is required even for drafts"}}, errs)
}

func TestValidate_DraftIgnoresEverythingButTitle(t *testing.T) {
	doc := types.EditableResume{
		Title:           "WIP",
		PersonalDetails: types.EditablePersonalDetails{Email: "nope"},
		Education:       []types.EditableEducation{{Grade: "abc"}},
		Skills:          []types.EditableSkill{{}},
	}
	assert.Empty(t, Validate(doc, types.StatusDraft))

	doc.Title = "   "
	assert.Len(t, Validate(doc, types.StatusDraft), 1)
}

func TestValidate_PublishedValid(t *testing.T) {
	assert.Empty(t, Validate(publishable(), types.StatusPublished))
	assert.True(t, Eligible(publishable(), types.StatusPublished))
}

func TestValidate_BadEmailOnly(t *testing.T) {
	doc := publishable()
	doc.PersonalDetails.Email = "not-an-email"

	errs := Validate(doc, types.StatusPublished)

	require.Len(t, errs, 1)
	assert.Equal(t, types.FieldError{Field: "personal_details.email", Message: MsgEmailInvalid}, errs[0])
}

func TestValidate_BlankContactDetailsAreRequiredNotMalformed(t *testing.T) {
	doc := publishable()
	doc.PersonalDetails.Email = "  "
	doc.PersonalDetails.Phone = ""

	assert.Equal(t, []types.FieldError{
		{Field: "personal_details.email", Message: MsgEmailRequired},
		{Field: "personal_details.phone", Message: MsgPhoneRequired},
	}, Validate(doc, types.StatusPublished))

	doc.PersonalDetails.Phone = "555-1234"
	errs := Validate(doc, types.StatusPublished)
	require.Len(t, errs, 2)
	assert.Equal(t, MsgPhoneInvalid, errs[1].Message)
}

func TestValidate_ExperienceDisjunction(t *testing.T) {
	doc := publishable()
	doc.WorkExperience = nil

	errs := Validate(doc, types.StatusPublished)
	count := 0
	for _, e := range errs {
		if e.Field == FieldExperience {
			count++
		}
	}
	assert.Equal(t, 1, count)

	withProject := doc
	withProject.Projects = []types.EditableProject{{Title: "Compiler", Start: types.MonthYear{Month: "May", Year: "1952"}}}
	assert.Empty(t, Validate(withProject, types.StatusPublished))

	withWork := doc
	withWork.WorkExperience = publishable().WorkExperience
	assert.Empty(t, Validate(withWork, types.StatusPublished))
}

func TestValidate_ProjectsIgnoredWhenWorkPresent(t *testing.T) {
	doc := publishable()
	doc.Projects = []types.EditableProject{{}}
	assert.Empty(t, Validate(doc, types.StatusPublished))

	doc.WorkExperience = nil
	assert.Equal(t, []string{"projects.0.title", "projects.0.start_date"}, fields(Validate(doc, types.StatusPublished)))
}

func TestValidate_PublishedOrderFollowsLayout(t *testing.T) {
	doc := types.EditableResume{
		Education: []types.EditableEducation{{Grade: "x"}},
		Skills:    []types.EditableSkill{{Name: "Go"}, {Type: "WIZARDRY"}},
	}
	doc.PersonalDetails.LinkedIn = "not a url"

	got := fields(Validate(doc, types.StatusPublished))

	assert.Equal(t, []string{
		"title",
		"personal_details.first_name",
		"personal_details.last_name",
		"personal_details.email",
		"personal_details.phone",
		"personal_details.linkedin",
		"education.0.institution",
		"education.0.major",
		"education.0.start_date",
		"education.0.cgpa",
		"experience",
		"skills.0.skill_type",
		"skills.1.skill_name",
		"skills.1.skill_type",
	}, got)
}

func TestValidate_EdgeCases(t *testing.T) {
	doc := publishable()
	doc.Education[0].Grade = "0"
	doc.Awards = []types.EditableAward{{Name: "No description", Year: 2000}}
	doc.Skills = []types.EditableSkill{{Name: "Go", Type: types.SkillLanguage, Proficiency: ""}}
	assert.Empty(t, Validate(doc, types.StatusPublished))

	doc.Education[0].Grade = "NaN"
	assert.Equal(t, []string{"education.0.cgpa"}, fields(Validate(doc, types.StatusPublished)))
}

func TestValidate_PhonePattern(t *testing.T) {
	tests := []struct {
		phone string
		ok    bool
	}{
		{"+15551234567", true},
		{"5551234", true},
		{"555-1234", false},
		{"+123456", false},
		{"1234567890123456", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			doc := publishable()
			doc.PersonalDetails.Phone = tt.phone
			assert.Equal(t, tt.ok, Eligible(doc, types.StatusPublished))
		})
	}
}

func TestValidate_ArchivedAlwaysPasses(t *testing.T) {
	assert.Empty(t, Validate(types.EditableResume{}, types.StatusArchived))
}

func TestValidate_UnknownTarget(t *testing.T) {
	assert.Equal(t, []string{"resume_status"}, fields(Validate(publishable(), "LIMBO")))
}

func TestCheck(t *testing.T) {
	require.NoError(t, Check(publishable(), types.StatusPublished))

	err := Check(types.EditableResume{}, types.StatusDraft)
	require.Error(t, err)

	var vErr *Error
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, types.StatusDraft, vErr.Target)
	assert.Contains(t, err.Error(), "title")
}
