package model

// Role is the access level of a user. Values are persisted as integers.
type Role int

const (
	RoleAdmin  Role = 1 // manages groups and their tasks
	RoleMember Role = 2 // personal tasks, group participation
	RoleMaster Role = 3 // user administration
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember || r == RoleMaster
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleMember:
		return "member"
	case RoleMaster:
		return "master"
	default:
		return "unknown"
	}
}
