// Package navtree computes navigation views (tree, breadcrumbs, display
// paths) over the department/category/subcategory/folder hierarchy. The
// hierarchy is small and always fully loaded, so every operation works on
// an in-memory index built once from the forest.
package navtree

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	// Packages
	schema "github.com/mutablelogic/go-dms/pkg/schema"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Tree is an index over a forest of nodes. It is read-only once built and
// safe for concurrent use.
type Tree struct {
	roots    []string
	nodes    map[string]*schema.Node // children stripped
	parent   map[string]string
	children map[string][]string
}

// WalkFunc is called for every node in depth-first pre-order. Returning
// SkipChildren skips the subtree below the node.
type WalkFunc func(node schema.Node, depth int) error

////////////////////////////////////////////////////////////////////////////////
// GLOBALS

var (
	ErrNotFound  = errors.New("node not found")
	ErrCycle     = errors.New("cycle in hierarchy")
	ErrOrphan    = errors.New("parent not found")
	ErrDuplicate = errors.New("duplicate node id")

	// SkipChildren can be returned from a WalkFunc to skip the subtree
	SkipChildren = errors.New("skip children")
)

////////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New indexes a forest (as returned by Build or by the tree endpoint).
// Duplicate IDs are ignored after the first occurrence.
func New(forest []schema.Node) *Tree {
	t := &Tree{
		nodes:    make(map[string]*schema.Node),
		parent:   make(map[string]string),
		children: make(map[string][]string),
	}
	var index func(parent string, nodes []schema.Node)
	index = func(parent string, nodes []schema.Node) {
		for _, n := range nodes {
			if _, exists := t.nodes[n.ID]; exists {
				continue
			}
			flat := n
			flat.Children = nil
			flat.Parent = parent
			t.nodes[n.ID] = &flat
			if parent == "" {
				t.roots = append(t.roots, n.ID)
			} else {
				t.parent[n.ID] = parent
				t.children[parent] = append(t.children[parent], n.ID)
			}
			index(n.ID, n.Children)
		}
	}
	index("", forest)
	return t
}

// Build assembles a sorted forest from a flat list of nodes, using each
// node's Parent field. A node whose parent is unknown, or a set of nodes
// which form a cycle, results in an error.
func Build(flat []schema.Node) ([]schema.Node, error) {
	byID := make(map[string]schema.Node, len(flat))
	kids := make(map[string][]string, len(flat))
	for _, n := range flat {
		if _, exists := byID[n.ID]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicate, n.ID)
		}
		n.Children = nil
		byID[n.ID] = n
	}
	var roots []string
	for _, n := range flat {
		if n.Parent == "" {
			roots = append(roots, n.ID)
		} else if _, exists := byID[n.Parent]; !exists {
			return nil, fmt.Errorf("%w: %q (parent of %q)", ErrOrphan, n.Parent, n.ID)
		} else {
			kids[n.Parent] = append(kids[n.Parent], n.ID)
		}
	}

	// Every node must be reachable from a root, otherwise there is a cycle
	visited := make(map[string]bool, len(flat))
	var build func(id string) schema.Node
	build = func(id string) schema.Node {
		visited[id] = true
		node := byID[id]
		for _, child := range kids[id] {
			node.Children = append(node.Children, build(child))
		}
		sortNodes(node.Children)
		return node
	}
	result := make([]schema.Node, 0, len(roots))
	for _, id := range roots {
		result = append(result, build(id))
	}
	sortNodes(result)
	if len(visited) != len(byID) {
		for _, n := range flat {
			if !visited[n.ID] {
				return nil, fmt.Errorf("%w: %q", ErrCycle, n.ID)
			}
		}
	}

	return result, nil
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Len returns the number of nodes in the tree
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Find returns the node with the given ID, without its children
func (t *Tree) Find(id string) (schema.Node, bool) {
	if n, exists := t.nodes[id]; exists {
		return *n, true
	}
	return schema.Node{}, false
}

// Parent returns the parent of a node, or false for departments and
// unknown nodes
func (t *Tree) Parent(id string) (schema.Node, bool) {
	if parent, exists := t.parent[id]; exists {
		return t.Find(parent)
	}
	return schema.Node{}, false
}

// Children returns the immediate children of a node in display order.
// An empty id returns the departments.
func (t *Tree) Children(id string) []schema.Node {
	ids := t.roots
	if id != "" {
		ids = t.children[id]
	}
	result := make([]schema.Node, 0, len(ids))
	for _, child := range ids {
		result = append(result, *t.nodes[child])
	}
	sortNodes(result)
	return result
}

// Breadcrumb returns the path from the department down to and including the
// node with the given ID
func (t *Tree) Breadcrumb(id string) (schema.Breadcrumb, error) {
	if _, exists := t.nodes[id]; !exists {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	var result schema.Breadcrumb
	for cur := id; cur != ""; cur = t.parent[cur] {
		if len(result) > len(t.nodes) {
			return nil, fmt.Errorf("%w: %q", ErrCycle, id)
		}
		result = append(result, t.nodes[cur].Crumb())
	}
	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	return result, nil
}

// Path returns the display path of a node, for example "/Finance/Invoices/2026",
// or an empty string if the node does not exist
func (t *Tree) Path(id string) string {
	crumbs, err := t.Breadcrumb(id)
	if err != nil {
		return ""
	}
	return crumbs.String()
}

// Resolve returns the node at a display path. Names are compared
// case-insensitively and empty segments are ignored.
func (t *Tree) Resolve(path string) (schema.Node, error) {
	var cur *schema.Node
	candidates := t.roots
	for _, segment := range strings.Split(path, "/") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		cur = nil
		for _, id := range candidates {
			if strings.EqualFold(t.nodes[id].Name, segment) {
				cur = t.nodes[id]
				break
			}
		}
		if cur == nil {
			return schema.Node{}, fmt.Errorf("%w: %q", ErrNotFound, path)
		}
		candidates = t.children[cur.ID]
	}
	if cur == nil {
		return schema.Node{}, fmt.Errorf("%w: %q", ErrNotFound, path)
	}
	return *cur, nil
}

// IsAncestor returns true if ancestor is a strict ancestor of id
func (t *Tree) IsAncestor(ancestor, id string) bool {
	for cur, n := t.parent[id], 0; cur != "" && n <= len(t.nodes); cur, n = t.parent[cur], n+1 {
		if cur == ancestor {
			return true
		}
	}
	return false
}

// Descendants returns the IDs of all nodes below id, in pre-order
func (t *Tree) Descendants(id string) []string {
	var result []string
	var walk func(string)
	walk = func(parent string) {
		for _, child := range t.Children(parent) {
			result = append(result, child.ID)
			walk(child.ID)
		}
	}
	if _, exists := t.nodes[id]; exists {
		walk(id)
	}
	return result
}

// Walk visits every node in depth-first pre-order, departments at depth 0
func (t *Tree) Walk(fn WalkFunc) error {
	var walk func(nodes []schema.Node, depth int) error
	walk = func(nodes []schema.Node, depth int) error {
		for _, n := range nodes {
			if err := fn(n, depth); errors.Is(err, SkipChildren) {
				continue
			} else if err != nil {
				return err
			}
			if err := walk(t.Children(n.ID), depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(t.Children(""), 0)
}

// Filter returns the nodes whose name contains the query (case-insensitive)
// in pre-order. An empty query returns nothing.
func (t *Tree) Filter(query string) []schema.Node {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	var result []schema.Node
	_ = t.Walk(func(n schema.Node, _ int) error {
		if strings.Contains(strings.ToLower(n.Name), query) {
			result = append(result, n)
		}
		return nil
	})
	return result
}

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// sortNodes orders siblings by name (case-insensitive), then by ID
func sortNodes(nodes []schema.Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := strings.ToLower(nodes[i].Name), strings.ToLower(nodes[j].Name)
		if a != b {
			return a < b
		}
		return nodes[i].ID < nodes[j].ID
	})
}
