package validation

import (
	"encoding/json"
	"testing"

	"github.com/jonathan/resume-studio/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlatten_ServerErrorBody(t *testing.T) {
	body := `{
		"title": ["This field may not be blank."],
		"personal_details": {"email": ["Enter a valid email address."]},
		"education": [{}, {"institution": ["This field is required."], "start_date": ["Date has wrong format."]}],
		"non_field_errors": "Resume limit reached."
	}`
	var nested any
	require.NoError(t, json.Unmarshal([]byte(body), &nested))

	got := Flatten(nested)

	assert.Equal(t, []types.FieldError{
		{Field: "education.1.institution", Message: "This field is required."},
		{Field: "education.1.start_date", Message: "Date has wrong format."},
		{Field: "non_field_errors", Message: "Resume limit reached."},
		{Field: "personal_details.email", Message: "Enter a valid email address."},
		{Field: "title", Message: "This field may not be blank."},
	}, got)
}

func TestFlatten_NumericKeysSortNumerically(t *testing.T) {
	got := Flatten(map[string]any{
		"skills": map[string]any{
			"10": map[string][]string{"skill_name": {"b"}},
			"2":  map[string]string{"skill_name": "a"},
		},
	})
	assert.Equal(t, []string{"skills.2.skill_name", "skills.10.skill_name"}, fields(got))
}

func TestFlatten_Nil(t *testing.T) {
	assert.Empty(t, Flatten(nil))
}

func TestNest_InverseOfFlatten(t *testing.T) {
	doc := types.EditableResume{
		Education: []types.EditableEducation{{}},
		Skills:    []types.EditableSkill{{}},
	}
	errs := Validate(doc, types.StatusPublished)
	require.NotEmpty(t, errs)

	nested := Nest(errs)

	data, err := json.Marshal(nested)
	require.NoError(t, err)
	var decoded any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.ElementsMatch(t, errs, Flatten(decoded))
	assert.ElementsMatch(t, errs, Flatten(nested))
}
