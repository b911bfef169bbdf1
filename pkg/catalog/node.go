package catalog

import (
	"strings"

	// Packages
	navtree "github.com/mutablelogic/go-dms/pkg/navtree"
	schema "github.com/mutablelogic/go-dms/pkg/schema"
	httpresponse "github.com/mutablelogic/go-server/pkg/httpresponse"
)

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// CreateNode adds a department, category, subcategory or folder
func (c *Catalog) CreateNode(user string, meta schema.NodeMeta) (schema.Node, error) {
	name, err := ValidName(meta.Name)
	if err != nil {
		return schema.Node{}, err
	} else if !meta.Kind.Valid() {
		return schema.Node{}, httpresponse.ErrBadRequest.Withf("invalid node kind %q", meta.Kind)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Check the parent
	var parentKind schema.NodeKind
	if meta.Parent != "" {
		parent, exists := c.nodes[meta.Parent]
		if !exists {
			return schema.Node{}, httpresponse.ErrNotFound.Withf("parent %q not found", meta.Parent)
		}
		parentKind = parent.Kind
	}
	if !meta.Kind.CanParent(parentKind) {
		if parentKind == "" {
			return schema.Node{}, httpresponse.ErrBadRequest.Withf("a %s requires a parent", meta.Kind)
		}
		return schema.Node{}, httpresponse.ErrBadRequest.Withf("a %s cannot be placed in a %s", meta.Kind, parentKind)
	}
	if c.siblingExists(meta.Parent, name, "") {
		return schema.Node{}, httpresponse.ErrConflict.Withf("%q already exists", name)
	}

	// Create the node
	node := &schema.Node{
		ID:      c.newID(),
		Kind:    meta.Kind,
		Name:    name,
		Parent:  meta.Parent,
		Created: c.now(),
	}
	c.nodes[node.ID] = node
	c.log(schema.Activity{
		User:   user,
		Action: schema.ActionCreate,
		Node:   node.ID,
		Name:   node.Name,
		Detail: string(node.Kind),
	})

	// Return success
	return *node, nil
}

// RenameNode changes the name of a node
func (c *Catalog) RenameNode(user, id, name string) (schema.Node, error) {
	name, err := ValidName(name)
	if err != nil {
		return schema.Node{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	node, exists := c.nodes[id]
	if !exists {
		return schema.Node{}, httpresponse.ErrNotFound.Withf("node %q not found", id)
	} else if node.Name == name {
		return *node, nil
	} else if c.siblingExists(node.Parent, name, node.ID) {
		return schema.Node{}, httpresponse.ErrConflict.Withf("%q already exists", name)
	}

	old := node.Name
	node.Name = name
	c.log(schema.Activity{
		User:   user,
		Action: schema.ActionRename,
		Node:   node.ID,
		Name:   node.Name,
		Detail: "from " + old,
	})

	// Return success
	return *node, nil
}

// DeleteNode removes a node which has no children and holds no documents,
// including documents in the trash
func (c *Catalog) DeleteNode(user, id string) (schema.Node, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	node, exists := c.nodes[id]
	if !exists {
		return schema.Node{}, httpresponse.ErrNotFound.Withf("node %q not found", id)
	}
	for _, n := range c.nodes {
		if n.Parent == id {
			return schema.Node{}, httpresponse.ErrConflict.Withf("%q is not empty", node.Name)
		}
	}
	for _, d := range c.docs {
		if d.Folder == id {
			return schema.Node{}, httpresponse.ErrConflict.Withf("%q contains documents", node.Name)
		}
	}

	delete(c.nodes, id)
	c.log(schema.Activity{
		User:   user,
		Action: schema.ActionDelete,
		Node:   node.ID,
		Name:   node.Name,
		Detail: string(node.Kind),
	})

	// Return success
	return *node, nil
}

// GetNode returns a node and its breadcrumb
func (c *Catalog) GetNode(id string) (*schema.NodeResponse, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	node, exists := c.nodes[id]
	if !exists {
		return nil, httpresponse.ErrNotFound.Withf("node %q not found", id)
	}
	tree, err := c.tree()
	if err != nil {
		return nil, err
	}
	crumbs, err := tree.Breadcrumb(id)
	if err != nil {
		return nil, httpresponse.ErrInternalError.With(err.Error())
	}
	return &schema.NodeResponse{Node: *node, Breadcrumb: crumbs}, nil
}

// Tree returns the whole hierarchy as a sorted forest
func (c *Catalog) Tree() ([]schema.Node, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	forest, err := navtree.Build(c.flatNodes())
	if err != nil {
		return nil, httpresponse.ErrInternalError.With(err.Error())
	}
	return forest, nil
}

// FindNode returns a node by ID, without children
func (c *Catalog) FindNode(id string) (schema.Node, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if node, exists := c.nodes[id]; exists {
		return *node, true
	}
	return schema.Node{}, false
}

// NodeByPath returns the node at a display path such as "/Finance/Invoices"
func (c *Catalog) NodeByPath(path string) (schema.Node, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tree, err := c.tree()
	if err != nil {
		return schema.Node{}, err
	}
	node, err := tree.Resolve(path)
	if err != nil {
		return schema.Node{}, httpresponse.ErrNotFound.With(err.Error())
	}
	return node, nil
}

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (c *Catalog) flatNodes() []schema.Node {
	result := make([]schema.Node, 0, len(c.nodes))
	for _, n := range c.nodes {
		result = append(result, *n)
	}
	return result
}

func (c *Catalog) tree() (*navtree.Tree, error) {
	forest, err := navtree.Build(c.flatNodes())
	if err != nil {
		return nil, httpresponse.ErrInternalError.With(err.Error())
	}
	return navtree.New(forest), nil
}

// siblingExists returns true if a node other than except, under parent,
// has the name (case-insensitive)
func (c *Catalog) siblingExists(parent, name, except string) bool {
	for _, n := range c.nodes {
		if n.Parent == parent && n.ID != except && strings.EqualFold(n.Name, name) {
			return true
		}
	}
	return false
}
