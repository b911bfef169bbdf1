package schema

import (
	"time"

	// Packages
	types "github.com/mutablelogic/go-server/pkg/types"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Permission is the access a share grants on a document.
type Permission string

type ShareRequest struct {
	User       string     `json:"user"`
	Permission Permission `json:"permission,omitempty"` // defaults to view
}

type Share struct {
	ID         string     `json:"id"`
	Document   string     `json:"document"`
	User       string     `json:"user"`
	Permission Permission `json:"permission"`
	CreatedBy  string     `json:"created_by,omitempty"`
	Created    time.Time  `json:"created,omitzero"`
}

type ShareListResponse struct {
	Body []Share `json:"body"`
}

// TagCount is the number of live documents carrying a tag.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

type TagListResponse struct {
	Body []TagCount `json:"body"`
}

////////////////////////////////////////////////////////////////////////////////
// CONSTANTS

const (
	PermissionView Permission = "view"
	PermissionEdit Permission = "edit"
)

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (p Permission) Valid() bool {
	return p == PermissionView || p == PermissionEdit
}

////////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (s Share) String() string {
	return types.Stringify(s)
}

func (r ShareListResponse) String() string {
	return types.Stringify(r)
}

func (r TagListResponse) String() string {
	return types.Stringify(r)
}
