package access

import "github.com/dmitrijs2005/capstone/internal/server/models"

// People resolves user ids to summaries when building full views.
type People map[int64]*models.User

func (p People) summary(id *int64) *models.UserSummary {
	if id == nil {
		return nil
	}
	u, ok := p[*id]
	if !ok {
		return nil
	}
	s := u.Summary()
	return &s
}

// ProjectView is what a caller receives for a project. Fields tagged
// omitempty are only set at the FULL level.
type ProjectView struct {
	Level       Level    `json:"-"`
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Company     string   `json:"company"`
	Image       *string  `json:"image,omitempty"`
	Description *string  `json:"description,omitempty"`
	SkillsReq   []string `json:"skills_req"`

	ProjDoc      *string              `json:"proj_doc,omitempty"`
	Status       models.ProjectStatus `json:"status,omitempty"`
	Visible      *bool                `json:"visible,omitempty"`
	Mentor       *models.UserSummary  `json:"mentor,omitempty"`
	Sponsor      *models.UserSummary  `json:"sponsor,omitempty"`
	Advisor      *models.UserSummary  `json:"advisor,omitempty"`
	AssignedTeam *int64               `json:"assigned_team,omitempty"`
}

// ViewProject projects p at the given level. NONE yields nil.
func ViewProject(level Level, p *models.Project, people People, assignedTeam *int64) *ProjectView {
	if level == None || p == nil {
		return nil
	}

	v := &ProjectView{
		Level:       level,
		ID:          p.ID,
		Name:        p.Name,
		Company:     p.Company,
		Image:       p.Image,
		Description: p.Description,
		SkillsReq:   p.SkillsReq,
	}
	if level < Full {
		return v
	}

	visible := p.Visible
	v.ProjDoc = p.ProjDoc
	v.Status = p.Status
	v.Visible = &visible
	v.Mentor = people.summary(p.Mentor)
	v.Sponsor = people.summary(p.Sponsor)
	v.Advisor = people.summary(p.Advisor)
	v.AssignedTeam = assignedTeam
	return v
}

// Member is one student on a team as loaded by the service.
type Member struct {
	User    *models.User
	Student *models.Student
}

// MemberView is a team member as shown to a caller. Restricted views carry
// only the major and skills.
type MemberView struct {
	User   *models.UserSummary `json:"user,omitempty"`
	Major  string              `json:"major"`
	Skills []string            `json:"skills"`
	Resume *string             `json:"resume,omitempty"`
	Leader bool                `json:"leader,omitempty"`
}

// TeamView is what a caller receives for a team. The team password is never
// part of it.
type TeamView struct {
	Level        Level        `json:"-"`
	ID           int64        `json:"id"`
	Name         string       `json:"name"`
	AssignedProj *int64       `json:"assigned_proj,omitempty"`
	MembLimit    int64        `json:"memb_limit"`
	Members      []MemberView `json:"members"`
	HasPassword  bool         `json:"has_password"`

	Leader   *models.UserSummary `json:"leader,omitempty"`
	Budget   *int64              `json:"budget,omitempty"`
	Comments *string             `json:"comments,omitempty"`
	Choices  []models.Choice     `json:"choices,omitempty"`
}

// ViewTeam projects t and its members at the given level. NONE yields nil.
func ViewTeam(level Level, t *models.Team, members []Member) *TeamView {
	if level == None || t == nil {
		return nil
	}

	v := &TeamView{
		Level:        level,
		ID:           t.ID,
		Name:         t.Name,
		AssignedProj: t.AssignedProj,
		MembLimit:    t.MembLimit,
		HasPassword:  t.HasPassword(),
		Members:      make([]MemberView, 0, len(members)),
	}

	full := level == Full
	for _, m := range members {
		mv := MemberView{}
		if m.Student != nil {
			mv.Major = m.Student.Major
			mv.Skills = m.Student.Skills
		}
		if full {
			if m.User != nil {
				s := m.User.Summary()
				mv.User = &s
				mv.Leader = t.Leader != nil && *t.Leader == m.User.ID
				if mv.Leader {
					v.Leader = &s
				}
			}
			if m.Student != nil {
				mv.Resume = m.Student.Resume
			}
		}
		v.Members = append(v.Members, mv)
	}

	if full {
		budget := t.Budget
		v.Budget = &budget
		v.Comments = t.Comments
		v.Choices = t.Choices
	}
	return v
}
