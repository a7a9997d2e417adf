package types

// MonthYear is the editable form of a calendar instant: a month name and a year string.
// The zero value means "unset".
type MonthYear struct {
	Month string `json:"month"`
	Year  string `json:"year"`
}

// IsZero reports whether either component is missing.
func (m MonthYear) IsZero() bool {
	return m.Month == "" || m.Year == ""
}

// EditablePersonalDetails is the form-bound variant of PersonalDetails.
type EditablePersonalDetails struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Website   string `json:"website"`
	GitHub    string `json:"github"`
	LinkedIn  string `json:"linkedin"`
}

// EditableEducation is the form-bound variant of Education.
// Grade stays a string until submission so partial input survives editing.
type EditableEducation struct {
	Institution       string    `json:"institution"`
	Major             string    `json:"major"`
	Start             MonthYear `json:"start"`
	End               MonthYear `json:"end"`
	CurrentlyStudying bool      `json:"currently_studying"`
	Grade             string    `json:"grade"`
}

// EditableWorkExperience is the form-bound variant of WorkExperience.
type EditableWorkExperience struct {
	Employer         string    `json:"employer"`
	Role             string    `json:"role"`
	Location         string    `json:"location"`
	Start            MonthYear `json:"start"`
	End              MonthYear `json:"end"`
	CurrentlyWorking bool      `json:"currently_working"`
	Description      string    `json:"description"`
}

// EditableSkill is the form-bound variant of Skill.
type EditableSkill struct {
	Name        string    `json:"skill_name"`
	Type        SkillType `json:"skill_type"`
	Proficiency string    `json:"proficiency"`
}

// EditableAward is the form-bound variant of Award.
type EditableAward struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Year        int    `json:"year"`
}

// EditableProject is the form-bound variant of Project.
type EditableProject struct {
	Title            string    `json:"title"`
	Technologies     string    `json:"technologies"`
	Start            MonthYear `json:"start"`
	End              MonthYear `json:"end"`
	CurrentlyWorking bool      `json:"currently_working"`
	Description      string    `json:"description"`
}

// EditableResume is the identifier-stripped document owned by an editing session.
type EditableResume struct {
	Title           string                   `json:"title"`
	Status          Status                   `json:"resume_status"`
	Privacy         Privacy                  `json:"privacy_setting"`
	Template        Template                 `json:"template"`
	IsAnonymized    bool                     `json:"is_anonymized"`
	PersonalDetails EditablePersonalDetails  `json:"personal_details"`
	Education       []EditableEducation      `json:"education"`
	WorkExperience  []EditableWorkExperience `json:"work_experience"`
	Skills          []EditableSkill          `json:"skills"`
	Awards          []EditableAward          `json:"awards"`
	Projects        []EditableProject        `json:"projects"`
}

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
