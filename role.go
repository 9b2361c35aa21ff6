package gemchat

// Role represents the speaker of a turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Valid reports whether r is a role the completion endpoint accepts.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleModel
}
