package types

// PersonalDetailsPayload is the outbound contact block. Blank optional URLs are sent as null.
type PersonalDetailsPayload struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	Phone     string  `json:"phone"`
	Website   *string `json:"website"`
	GitHub    *string `json:"github"`
	LinkedIn  *string `json:"linkedin"`
}

// EducationPayload is the outbound education entry. Dates are ISO dates or null, never "".
type EducationPayload struct {
	Institution       string   `json:"institution"`
	Major             *string  `json:"major"`
	StartDate         *string  `json:"start_date"`
	EndDate           *string  `json:"end_date"`
	CurrentlyStudying bool     `json:"currently_studying"`
	CGPA              *float64 `json:"cgpa"`
}

// WorkExperiencePayload is the outbound employment entry.
type WorkExperiencePayload struct {
	Employer         string  `json:"employer"`
	Role             string  `json:"role"`
	Location         *string `json:"location"`
	StartDate        *string `json:"start_date"`
	EndDate          *string `json:"end_date"`
	CurrentlyWorking bool    `json:"currently_working"`
	Description      *string `json:"description"`
}

// SkillPayload is the outbound skill entry.
type SkillPayload struct {
	SkillName   string    `json:"skill_name"`
	SkillType   SkillType `json:"skill_type"`
	Proficiency *string   `json:"proficiency"`
}

// AwardPayload is the outbound award entry.
type AwardPayload struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Year        int     `json:"year"`
}

// ProjectPayload is the outbound project entry.
type ProjectPayload struct {
	Title            string  `json:"title"`
	Technologies     *string `json:"technologies"`
	StartDate        *string `json:"start_date"`
	EndDate          *string `json:"end_date"`
	CurrentlyWorking bool    `json:"currently_working"`
	Description      *string `json:"description"`
}

// SubmissionPayload is the body sent on create and full replace.
type SubmissionPayload struct {
	Title           string                  `json:"title"`
	Status          Status                  `json:"resume_status"`
	Privacy         Privacy                 `json:"privacy_setting"`
	Template        Template                `json:"template"`
	IsAnonymized    bool                    `json:"is_anonymized"`
	PersonalDetails PersonalDetailsPayload  `json:"personal_details"`
	Education       []EducationPayload      `json:"education"`
	WorkExperience  []WorkExperiencePayload `json:"work_experience"`
	Skills          []SkillPayload          `json:"skills"`
	Awards          []AwardPayload          `json:"awards"`
	Projects        []ProjectPayload        `json:"projects"`
}
