package model

// Role is the authorization role attached to a user and embedded in tokens.
type Role string

const (
	// RoleAdmin may mutate records through the protected routes.
	RoleAdmin Role = "admin"
	// RoleUser is the default role for registered users.
	RoleUser Role = "user"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}
