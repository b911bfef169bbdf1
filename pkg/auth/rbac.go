package auth

import (
	// Packages
	schema "github.com/mutablelogic/go-dms/pkg/schema"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

type Action string

////////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	ActionRead  Action = "read"  // browse, list and download
	ActionWrite Action = "write" // upload, rename, move, trash, restore, tag, share
	ActionAdmin Action = "admin" // hierarchy management and purge
)

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Can returns true if the role may perform the action
func Can(role schema.Role, action Action) bool {
	switch role {
	case schema.RoleAdmin:
		return true
	case schema.RoleEditor:
		return action == ActionRead || action == ActionWrite
	case schema.RoleViewer:
		return action == ActionRead
	default:
		return false
	}
}

// CanDocument returns true if the role, together with any share the user
// holds on a document, permits the action on that document
func CanDocument(role schema.Role, share schema.Permission, action Action) bool {
	if Can(role, action) {
		return true
	}
	switch share {
	case schema.PermissionEdit:
		return action == ActionRead || action == ActionWrite
	case schema.PermissionView:
		return action == ActionRead
	default:
		return false
	}
}

// Can returns true if the principal's role permits the action
func (p Principal) Can(action Action) bool {
	return Can(p.Role, action)
}
