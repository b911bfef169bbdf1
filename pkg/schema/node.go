package schema

import (
	"time"

	// Packages
	types "github.com/mutablelogic/go-server/pkg/types"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// NodeKind is the kind of a container in the document hierarchy.
type NodeKind string

// NodeMeta is the request body used to create a node.
type NodeMeta struct {
	Kind   NodeKind `json:"kind"`
	Name   string   `json:"name"`
	Parent string   `json:"parent,omitempty"` // empty for departments
}

// NodeUpdate is the request body used to rename a node.
type NodeUpdate struct {
	Name string `json:"name"`
}

// Node is a department, category, subcategory or folder. Children is only
// populated in tree responses.
type Node struct {
	ID       string    `json:"id"`
	Kind     NodeKind  `json:"kind"`
	Name     string    `json:"name"`
	Parent   string    `json:"parent,omitempty"`
	Created  time.Time `json:"created,omitzero"`
	Children []Node    `json:"children,omitempty"`
}

// Crumb is one entry in a breadcrumb.
type Crumb struct {
	ID   string   `json:"id"`
	Kind NodeKind `json:"kind"`
	Name string   `json:"name"`
}

// Breadcrumb is the ordered path of containers from a department down to
// (and including) the current node.
type Breadcrumb []Crumb

type TreeResponse struct {
	Body []Node `json:"body"`
}

type NodeResponse struct {
	Node
	Breadcrumb Breadcrumb `json:"breadcrumb"`
}

////////////////////////////////////////////////////////////////////////////////
// CONSTANTS

const (
	NodeDepartment  NodeKind = "department"
	NodeCategory    NodeKind = "category"
	NodeSubcategory NodeKind = "subcategory"
	NodeFolder      NodeKind = "folder"
)

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Valid returns true if the kind is one of the known node kinds
func (k NodeKind) Valid() bool {
	switch k {
	case NodeDepartment, NodeCategory, NodeSubcategory, NodeFolder:
		return true
	}
	return false
}

// CanParent reports whether a node of kind k may be placed under a node of
// kind parent. An empty parent kind means the root of the hierarchy.
func (k NodeKind) CanParent(parent NodeKind) bool {
	switch k {
	case NodeDepartment:
		return parent == ""
	case NodeCategory:
		return parent == NodeDepartment
	case NodeSubcategory:
		return parent == NodeCategory
	case NodeFolder:
		return parent == NodeCategory || parent == NodeSubcategory || parent == NodeFolder
	}
	return false
}

// Crumb returns the breadcrumb entry for the node
func (n Node) Crumb() Crumb {
	return Crumb{ID: n.ID, Kind: n.Kind, Name: n.Name}
}

// String returns the breadcrumb as a slash-separated path
func (b Breadcrumb) String() string {
	if len(b) == 0 {
		return "/"
	}
	var result string
	for _, c := range b {
		result += "/" + c.Name
	}
	return result
}

////////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (n Node) String() string {
	return types.Stringify(n)
}

func (r NodeMeta) String() string {
	return types.Stringify(r)
}

func (r TreeResponse) String() string {
	return types.Stringify(r)
}

func (r NodeResponse) String() string {
	return types.Stringify(r)
}
