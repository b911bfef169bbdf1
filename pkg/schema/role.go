package schema

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Role is the coarse-grained role of a user.
type Role string

////////////////////////////////////////////////////////////////////////////////
// CONSTANTS

const (
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
)

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (r Role) Valid() bool {
	return r == RoleViewer || r == RoleEditor || r == RoleAdmin
}
