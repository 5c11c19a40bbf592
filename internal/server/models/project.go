package models

// ProjectStatus is the review state of a project proposal.
type ProjectStatus string

const (
	StatusSubmitted     ProjectStatus = "submitted"
	StatusNeedsRevision ProjectStatus = "needs-revision"
	StatusAccepted      ProjectStatus = "accepted"
	StatusRejected      ProjectStatus = "rejected"
	StatusArchived      ProjectStatus = "archived"
)

type statusFlags struct {
	visible    bool
	modifiable bool
}

var statuses = map[ProjectStatus]statusFlags{
	StatusSubmitted:     {visible: false, modifiable: true},
	StatusNeedsRevision: {visible: false, modifiable: true},
	StatusAccepted:      {visible: true, modifiable: false},
	StatusRejected:      {visible: false, modifiable: false},
	StatusArchived:      {visible: false, modifiable: false},
}

func (s ProjectStatus) Valid() bool {
	_, ok := statuses[s]
	return ok
}

// Visible reports whether projects in this status may be shown to anyone
// but their owners. Unknown statuses are not visible.
func (s ProjectStatus) Visible() bool { return statuses[s].visible }

// Modifiable reports whether the proposer may still edit the project.
func (s ProjectStatus) Modifiable() bool { return statuses[s].modifiable }

type Company struct {
	Name    string
	Logo    *string
	Manager *int64
}

// Project is a capstone proposal from a company.
type Project struct {
	ID          int64
	Name        string
	Company     string
	Image       *string
	ProjDoc     *string
	Description *string
	Mentor      *int64
	Sponsor     *int64
	Advisor     *int64
	Status      ProjectStatus
	Visible     bool
	SkillsReq   []string
}
