// Package form converts resumes between their stored shape, the editable shape bound to
// editing controls, and the submission payload sent on create and replace.
//
// Every conversion here is pure and never fails: malformed input is coerced to an empty
// value and left for the validation package to report.
package form

import (
	"log"
	"math"
	"strconv"
	"strings"

	"github.com/jonathan/resume-studio/internal/dates"
	"github.com/jonathan/resume-studio/internal/types"
)

// NewEditable returns the blank document a new editing session starts from.
func NewEditable() types.EditableResume {
	return types.EditableResume{
		Status:         types.StatusDraft,
		Privacy:        types.PrivacyPrivate,
		Template:       types.DefaultTemplate,
		Education:      []types.EditableEducation{},
		WorkExperience: []types.EditableWorkExperience{},
		Skills:         []types.EditableSkill{},
		Awards:         []types.EditableAward{},
		Projects:       []types.EditableProject{},
	}
}

// ToEditable converts a stored resume into an editable document.
// Identifiers, ownership, timestamps and counters are dropped; optional scalars become "".
// An absent end date is the single source of truth for "currently working/studying".
func ToEditable(stored types.Resume) types.EditableResume {
	out := types.EditableResume{
		Title:        stored.Title,
		Status:       stored.Status,
		Privacy:      stored.Privacy,
		Template:     stored.Template,
		IsAnonymized: stored.IsAnonymized,
		PersonalDetails: types.EditablePersonalDetails{
			FirstName: stored.PersonalDetails.FirstName,
			LastName:  stored.PersonalDetails.LastName,
			Email:     stored.PersonalDetails.Email,
			Phone:     stored.PersonalDetails.Phone,
			Website:   deref(stored.PersonalDetails.Website),
			GitHub:    deref(stored.PersonalDetails.GitHub),
			LinkedIn:  deref(stored.PersonalDetails.LinkedIn),
		},
		Education:      make([]types.EditableEducation, 0, len(stored.Education)),
		WorkExperience: make([]types.EditableWorkExperience, 0, len(stored.WorkExperience)),
		Skills:         make([]types.EditableSkill, 0, len(stored.Skills)),
		Awards:         make([]types.EditableAward, 0, len(stored.Awards)),
		Projects:       make([]types.EditableProject, 0, len(stored.Projects)),
	}

	if !out.Status.Valid() {
		log.Printf("[form] resume %d: unknown status %q, editing as draft", stored.ID, stored.Status)
		out.Status = types.StatusDraft
	}
	if !out.Privacy.Valid() {
		out.Privacy = types.PrivacyPrivate
	}
	if !out.Template.Valid() {
		out.Template = types.DefaultTemplate
	}

	for i, edu := range stored.Education {
		end := dates.Decode(edu.EndDate)
		studying := end.IsZero()
		if edu.CurrentlyStudying != nil && *edu.CurrentlyStudying != studying {
			log.Printf("[form] resume %d education %d: currently_studying=%t disagrees with end date, using end date",
				stored.ID, i, *edu.CurrentlyStudying)
		}
		out.Education = append(out.Education, types.EditableEducation{
			Institution:       edu.Institution,
			Major:             deref(edu.Major),
			Start:             dates.Decode(edu.StartDate),
			End:               end,
			CurrentlyStudying: studying,
			Grade:             formatGrade(edu.CGPA),
		})
	}

	for i, work := range stored.WorkExperience {
		end := dates.Decode(work.EndDate)
		current := end.IsZero()
		if work.CurrentlyWorking != current {
			log.Printf("[form] resume %d work experience %d: currently_working=%t disagrees with end date, using end date",
				stored.ID, i, work.CurrentlyWorking)
		}
		out.WorkExperience = append(out.WorkExperience, types.EditableWorkExperience{
			Employer:         work.Employer,
			Role:             work.Role,
			Location:         deref(work.Location),
			Start:            dates.Decode(work.StartDate),
			End:              end,
			CurrentlyWorking: current,
			Description:      deref(work.Description),
		})
	}

	for _, skill := range stored.Skills {
		st := skill.SkillType
		if st != "" && !st.Valid() {
			st = types.SkillOther
		}
		out.Skills = append(out.Skills, types.EditableSkill{
			Name:        skill.SkillName,
			Type:        st,
			Proficiency: deref(skill.Proficiency),
		})
	}

	for _, award := range stored.Awards {
		out.Awards = append(out.Awards, types.EditableAward{
			Name:        award.Name,
			Description: deref(award.Description),
			Year:        award.Year,
		})
	}

	for _, p := range stored.Projects {
		end := dates.Decode(p.EndDate)
		out.Projects = append(out.Projects, types.EditableProject{
			Title:            p.Title,
			Technologies:     deref(p.Technologies),
			Start:            dates.Decode(p.StartDate),
			End:              end,
			CurrentlyWorking: end.IsZero(),
			Description:      deref(p.Description),
		})
	}

	return out
}

// ToSubmission converts an editable document into the outbound payload.
// Dates are re-encoded as ISO dates or null. An entry marked current always
// submits a null end date, whatever end the form still holds.
func ToSubmission(doc types.EditableResume) types.SubmissionPayload {
	out := types.SubmissionPayload{
		Title:        doc.Title,
		Status:       doc.Status,
		Privacy:      doc.Privacy,
		Template:     doc.Template,
		IsAnonymized: doc.IsAnonymized,
		PersonalDetails: types.PersonalDetailsPayload{
			FirstName: doc.PersonalDetails.FirstName,
			LastName:  doc.PersonalDetails.LastName,
			Email:     doc.PersonalDetails.Email,
			Phone:     doc.PersonalDetails.Phone,
			Website:   optional(doc.PersonalDetails.Website),
			GitHub:    optional(doc.PersonalDetails.GitHub),
			LinkedIn:  optional(doc.PersonalDetails.LinkedIn),
		},
		Education:      make([]types.EducationPayload, 0, len(doc.Education)),
		WorkExperience: make([]types.WorkExperiencePayload, 0, len(doc.WorkExperience)),
		Skills:         make([]types.SkillPayload, 0, len(doc.Skills)),
		Awards:         make([]types.AwardPayload, 0, len(doc.Awards)),
		Projects:       make([]types.ProjectPayload, 0, len(doc.Projects)),
	}
	if out.Status == "" {
		out.Status = types.StatusDraft
	}
	if out.Privacy == "" {
		out.Privacy = types.PrivacyPrivate
	}
	if out.Template == "" {
		out.Template = types.DefaultTemplate
	}

	for _, edu := range doc.Education {
		out.Education = append(out.Education, types.EducationPayload{
			Institution:       edu.Institution,
			Major:             optional(edu.Major),
			StartDate:         dates.EncodePtr(edu.Start),
			EndDate:           endDate(edu.CurrentlyStudying, edu.End),
			CurrentlyStudying: edu.CurrentlyStudying,
			CGPA:              submittedGrade(edu.Grade),
		})
	}

	for _, work := range doc.WorkExperience {
		out.WorkExperience = append(out.WorkExperience, types.WorkExperiencePayload{
			Employer:         work.Employer,
			Role:             work.Role,
			Location:         optional(work.Location),
			StartDate:        dates.EncodePtr(work.Start),
			EndDate:          endDate(work.CurrentlyWorking, work.End),
			CurrentlyWorking: work.CurrentlyWorking,
			Description:      optional(work.Description),
		})
	}

	for _, skill := range doc.Skills {
		out.Skills = append(out.Skills, types.SkillPayload{
			SkillName:   skill.Name,
			SkillType:   skill.Type,
			Proficiency: optional(skill.Proficiency),
		})
	}

	for _, award := range doc.Awards {
		out.Awards = append(out.Awards, types.AwardPayload{
			Name:        award.Name,
			Description: optional(award.Description),
			Year:        award.Year,
		})
	}

	for _, p := range doc.Projects {
		out.Projects = append(out.Projects, types.ProjectPayload{
			Title:            p.Title,
			Technologies:     optional(p.Technologies),
			StartDate:        dates.EncodePtr(p.Start),
			EndDate:          endDate(p.CurrentlyWorking, p.End),
			CurrentlyWorking: p.CurrentlyWorking,
			Description:      optional(p.Description),
		})
	}

	return out
}

// FromSubmission builds the canonical record for an accepted payload.
// Identity, ownership, timestamps and counters are left for the store to fill in.
func FromSubmission(p types.SubmissionPayload) types.Resume {
	r := types.Resume{
		Title:        p.Title,
		Template:     p.Template,
		Status:       p.Status,
		Privacy:      p.Privacy,
		IsAnonymized: p.IsAnonymized,
		PersonalDetails: types.PersonalDetails{
			FirstName: p.PersonalDetails.FirstName,
			LastName:  p.PersonalDetails.LastName,
			Email:     p.PersonalDetails.Email,
			Phone:     p.PersonalDetails.Phone,
			Website:   p.PersonalDetails.Website,
			GitHub:    p.PersonalDetails.GitHub,
			LinkedIn:  p.PersonalDetails.LinkedIn,
		},
		Education:      make([]types.Education, 0, len(p.Education)),
		WorkExperience: make([]types.WorkExperience, 0, len(p.WorkExperience)),
		Skills:         make([]types.Skill, 0, len(p.Skills)),
		Awards:         make([]types.Award, 0, len(p.Awards)),
		Projects:       make([]types.Project, 0, len(p.Projects)),
	}

	for _, edu := range p.Education {
		end := edu.EndDate
		if edu.CurrentlyStudying {
			end = nil
		}
		r.Education = append(r.Education, types.Education{
			Institution: edu.Institution,
			Major:       edu.Major,
			StartDate:   edu.StartDate,
			EndDate:     end,
			CGPA:        edu.CGPA,
		})
	}
	for _, work := range p.WorkExperience {
		end := work.EndDate
		if work.CurrentlyWorking {
			end = nil
		}
		r.WorkExperience = append(r.WorkExperience, types.WorkExperience{
			Employer:         work.Employer,
			Role:             work.Role,
			Location:         work.Location,
			StartDate:        work.StartDate,
			EndDate:          end,
			CurrentlyWorking: end == nil,
			Description:      work.Description,
		})
	}
	for _, s := range p.Skills {
		r.Skills = append(r.Skills, types.Skill(s))
	}
	for _, a := range p.Awards {
		r.Awards = append(r.Awards, types.Award(a))
	}
	for _, pr := range p.Projects {
		end := pr.EndDate
		if pr.CurrentlyWorking {
			end = nil
		}
		r.Projects = append(r.Projects, types.Project{
			Title:            pr.Title,
			Technologies:     pr.Technologies,
			StartDate:        pr.StartDate,
			EndDate:          end,
			CurrentlyWorking: end == nil,
			Description:      pr.Description,
		})
	}
	return r
}

// ParseGrade converts a grade typed into a form into a number.
// Blank input is nil. Malformed input is NaN, which validation rejects.
func ParseGrade(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) {
		v = math.NaN()
	}
	return &v
}

// submittedGrade is the payload value of a typed grade. A grade that does not
// parse is sent as null; the form keeps the typed text for validation to report.
func submittedGrade(s string) *float64 {
	v := ParseGrade(s)
	if v == nil || math.IsNaN(*v) {
		return nil
	}
	return v
}

func formatGrade(v *float64) string {
	if v == nil || math.IsNaN(*v) {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func endDate(current bool, end types.MonthYear) *string {
	if current {
		return nil
	}
	return dates.EncodePtr(end)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
