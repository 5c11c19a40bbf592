// Package access decides how much of a project or team record a principal
// may see. The decision is tri-state: nothing, a redacted projection, or the
// full record. Rules are evaluated in a fixed order and later rules may
// upgrade an earlier NONE, so the order below is significant.
package access

import (
	"fmt"
	"slices"

	"github.com/dmitrijs2005/capstone/internal/server/models"
)

type Level int

const (
	None Level = iota
	Restricted
	Full
)

func (l Level) String() string {
	switch l {
	case None:
		return "NONE"
	case Restricted:
		return "RESTRICTED"
	case Full:
		return "FULL"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// Principal is the resolved caller. It is read-only input to the resolver.
// Teams holds the student's memberOf team, or the faculty's advisory slot.
type Principal struct {
	UserID     int64        `json:"uid"`
	IsUtd      bool         `json:"is_utd"`
	UType      models.UType `json:"u_type,omitempty"`
	IsAdmin    bool         `json:"is_admin"`
	IsEmployee bool         `json:"is_employee"`
	WorksAt    string       `json:"works_at,omitempty"`
	Teams      []int64      `json:"teams,omitempty"`
}

func (p *Principal) OnTeam(tid int64) bool {
	return slices.Contains(p.Teams, tid)
}

func (p *Principal) isStudent() bool {
	return p.IsUtd && p.UType == models.UTypeStudent
}

// IsStaffOrAdmin reports whether the principal administers records.
func (p *Principal) IsStaffOrAdmin() bool {
	return p.IsUtd && (p.UType == models.UTypeStaff || p.IsAdmin)
}

func isUser(id *int64, uid int64) bool {
	return id != nil && *id == uid
}

// ProjectLevel resolves pr's access to project. assignedTeam is the team
// the project is assigned to, or nil. A nil principal sees nothing.
func ProjectLevel(pr *Principal, project *models.Project, assignedTeam *int64) Level {
	if pr == nil || project == nil {
		return None
	}

	level := Restricted

	if !project.Visible {
		level = None
	}
	if !project.Status.Visible() {
		level = None
	}

	if pr.IsUtd {
		switch pr.UType {
		case models.UTypeStudent:
			if len(pr.Teams) > 0 {
				level = None
			}
		case models.UTypeStaff:
			level = Full
		}
		if pr.IsAdmin {
			level = Full
		}
	} else {
		level = None
	}

	if pr.IsEmployee && pr.WorksAt != "" && pr.WorksAt == project.Company {
		level = Full
	}

	if isUser(project.Advisor, pr.UserID) || isUser(project.Sponsor, pr.UserID) || isUser(project.Mentor, pr.UserID) {
		level = Full
	}

	if assignedTeam != nil && pr.OnTeam(*assignedTeam) {
		level = Full
	}

	return level
}

// TeamLevel resolves pr's access to team. Membership always wins, even over
// a team password.
func TeamLevel(pr *Principal, team *models.Team) Level {
	if pr == nil || team == nil {
		return None
	}

	level := Restricted

	if team.HasPassword() {
		level = None
	}
	if pr.isStudent() && len(pr.Teams) > 0 && !pr.OnTeam(team.ID) {
		level = None
	}
	if pr.IsStaffOrAdmin() {
		level = Full
	}
	if pr.OnTeam(team.ID) {
		level = Full
	}

	return level
}
