package models

// UType is the kind of UTD personnel a user is.
type UType string

const (
	UTypeStudent UType = "STUDENT"
	UTypeStaff   UType = "STAFF"
	UTypeFaculty UType = "FACULTY"
)

func (u UType) Valid() bool {
	switch u {
	case UTypeStudent, UTypeStaff, UTypeFaculty:
		return true
	}
	return false
}

// User is any person known to the system. IsUtd and IsEmployee mirror the
// existence of a UTDPersonnel or Employee row and are maintained by the
// registration workflows, never by callers.
type User struct {
	ID         int64
	FName      string
	LName      string
	Email      string
	Address    *string
	IsUtd      bool
	IsEmployee bool
}

// UTDPersonnel specialises a User who belongs to the university.
type UTDPersonnel struct {
	UID     int64
	UType   UType
	NetID   string
	IsAdmin bool
}

type Student struct {
	SUID     int64
	Major    string
	Resume   *string
	MemberOf *int64
	Skills   []string
}

// Faculty ranks projects through the choices of the team slot TID.
type Faculty struct {
	FUID    int64
	TID     *int64
	Choices []Choice
}

// Employee is a company-side user. Password holds an encoded hash, never the
// plain password.
type Employee struct {
	EUID        int64
	WorksAt     string
	Password    string
	OneTimePass bool
}

// UserSummary is the identifying subset of a User shown to other users.
type UserSummary struct {
	ID    int64  `json:"id"`
	FName string `json:"fname"`
	LName string `json:"lname"`
	Email string `json:"email"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, FName: u.FName, LName: u.LName, Email: u.Email}
}
