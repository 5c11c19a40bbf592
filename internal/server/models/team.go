package models

import "time"

// MaxChoices is the number of ranked project choices a team may hold.
const MaxChoices = 6

type Team struct {
	ID           int64
	Name         string
	AssignedProj *int64
	Budget       int64
	Leader       *int64
	MembLimit    int64
	Password     *string
	Comments     *string
	Choices      []Choice
}

// HasPassword reports whether joining or viewing the team is password gated.
func (t *Team) HasPassword() bool {
	return t.Password != nil && *t.Password != ""
}

// Choice is one ranked project preference. Ranking is 0..MaxChoices-1 and
// unique per team.
type Choice struct {
	TID     int64
	Ranking int
	PID     *int64
}

type HelpStatus string

const (
	HelpOpen     HelpStatus = "open"
	HelpClosed   HelpStatus = "closed"
	HelpResolved HelpStatus = "resolved"
)

func (s HelpStatus) Valid() bool {
	switch s {
	case HelpOpen, HelpClosed, HelpResolved:
		return true
	}
	return false
}

type HelpTicket struct {
	ID          int64
	Status      HelpStatus
	Description string
	Requestor   *int64
}

// Invite lets a company manager register. It is redeemable until Expiration.
type Invite struct {
	ID           string
	Expiration   time.Time
	Company      string
	ManagerFName string
	ManagerLName string
	ManagerEmail string
}

func (i *Invite) Expired(now time.Time) bool {
	return !now.Before(i.Expiration)
}
