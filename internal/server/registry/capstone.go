package registry

// Entity names used throughout the server.
const (
	User         = "user"
	UTDPersonnel = "utd_personnel"
	Company      = "company"
	Employee     = "employee"
	Project      = "project"
	Team         = "team"
	Student      = "student"
	Faculty      = "faculty"
	HelpTicket   = "help_ticket"
	Invite       = "invite"
)

func pk(name string, t FieldType, ref string) Field {
	return Field{Name: name, Type: t, Role: RolePrimaryKey, Ref: ref}
}

func str(name, def string) Field {
	return Field{Name: name, Type: TypeString, Default: def, Alterable: true}
}

func optStr(name string) Field {
	return Field{Name: name, Type: TypeString, Nullable: true, Alterable: true}
}

func optRef(name, ref string) Field {
	return Field{Name: name, Type: TypeInt, Nullable: true, Alterable: true, Ref: ref}
}

func derived(name string) Field {
	return Field{Name: name, Type: TypeBool, Role: RoleDerived, Default: false}
}

// Default builds the registry of capstone entities. Parents are registered
// before children; companies.manager, projects.advisor and teams.leader are
// back-references to entities registered later.
func Default() *Registry {
	r := New()
	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}

	must(r.Register(Entity{Name: User, Table: "users", Fields: []Field{
		pk("user_id", TypeInt, ""),
		str("fname", ""),
		str("lname", ""),
		{Name: "email", Type: TypeString, Required: true, Alterable: true},
		optStr("address"),
		derived("is_utd"),
		derived("is_employee"),
	}}))

	must(r.Register(Entity{Name: UTDPersonnel, Table: "utd_personnel", Fields: []Field{
		pk("uid", TypeInt, User),
		{Name: "u_type", Type: TypeString, Required: true},
		str("net_id", ""),
		{Name: "is_admin", Type: TypeBool, Default: false, Alterable: true},
	}}))

	must(r.Register(Entity{Name: Company, Table: "companies", Fields: []Field{
		pk("name", TypeString, ""),
		optStr("logo"),
		optRef("manager", Employee),
	}}))

	must(r.Register(Entity{Name: Employee, Table: "employees", Fields: []Field{
		pk("euid", TypeInt, User),
		{Name: "works_at", Type: TypeString, Required: true, Ref: Company},
		str("password", ""),
		{Name: "one_time_pass", Type: TypeBool, Default: true, Alterable: true},
	}}))

	must(r.Register(Entity{Name: Project, Table: "projects", Fields: []Field{
		pk("proj_id", TypeInt, ""),
		str("p_name", ""),
		{Name: "company", Type: TypeString, Required: true, Ref: Company},
		optStr("image"),
		optStr("proj_doc"),
		optStr("p_desc"),
		optRef("mentor", User),
		optRef("sponsor", User),
		optRef("advisor", Faculty),
		str("status", "submitted"),
		{Name: "visible", Type: TypeBool, Default: true, Alterable: true},
	}}))

	must(r.Register(Entity{Name: Team, Table: "teams", Fields: []Field{
		pk("tid", TypeInt, ""),
		str("name", ""),
		optRef("assigned_proj", Project),
		{Name: "budget", Type: TypeInt, Default: 0, Alterable: true},
		optRef("leader", Student),
		{Name: "memb_limit", Type: TypeInt, Default: 6, Alterable: true},
		optStr("password"),
		optStr("comments"),
	}}))

	must(r.Register(Entity{Name: Student, Table: "students", Fields: []Field{
		pk("suid", TypeInt, UTDPersonnel),
		str("major", ""),
		optStr("resume"),
		optRef("member_of", Team),
	}}))

	must(r.Register(Entity{Name: Faculty, Table: "faculty", Fields: []Field{
		pk("fuid", TypeInt, UTDPersonnel),
		optRef("tid", Team),
	}}))

	must(r.Register(Entity{Name: HelpTicket, Table: "help_tickets", Fields: []Field{
		pk("hid", TypeInt, ""),
		str("h_status", "open"),
		str("h_description", ""),
		optRef("requestor", User),
	}}))

	must(r.Register(Entity{Name: Invite, Table: "invites", Fields: []Field{
		pk("invite_id", TypeString, ""),
		{Name: "expiration", Type: TypeTime, Required: true},
		{Name: "company", Type: TypeString, Required: true},
		str("manager_fname", ""),
		str("manager_lname", ""),
		{Name: "manager_email", Type: TypeString, Required: true},
	}}))

	must(r.RegisterAux("choices", Team, Project))
	must(r.RegisterAux("student_skills", Student))
	must(r.RegisterAux("project_skills", Project))
	must(r.Check())
	return r
}
