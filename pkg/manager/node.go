package manager

import (
	"context"

	// Packages
	auth "github.com/mutablelogic/go-dms/pkg/auth"
	config "github.com/mutablelogic/go-dms/pkg/config"
	schema "github.com/mutablelogic/go-dms/pkg/schema"
)

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Tree returns the container hierarchy
func (manager *Manager) Tree(ctx context.Context) (_ *schema.TreeResponse, err error) {
	_, end := manager.begin(ctx, "Tree")
	defer func() { end(err) }()

	if _, err := manager.principal(ctx, auth.ActionRead); err != nil {
		return nil, err
	}
	forest, err := manager.catalog.Tree()
	if err != nil {
		return nil, err
	}
	return &schema.TreeResponse{Body: forest}, nil
}

// GetNode returns a node with its breadcrumb
func (manager *Manager) GetNode(ctx context.Context, id string) (_ *schema.NodeResponse, err error) {
	_, end := manager.begin(ctx, "GetNode")
	defer func() { end(err) }()

	if _, err := manager.principal(ctx, auth.ActionRead); err != nil {
		return nil, err
	}
	return manager.catalog.GetNode(id)
}

// CreateNode adds a department, category, subcategory or folder
func (manager *Manager) CreateNode(ctx context.Context, meta schema.NodeMeta) (_ *schema.Node, err error) {
	child, end := manager.begin(ctx, "CreateNode")
	defer func() { end(err) }()

	p, err := manager.principal(ctx, auth.ActionAdmin)
	if err != nil {
		return nil, err
	}
	node, err := manager.catalog.CreateNode(p.User, meta)
	if err != nil {
		return nil, err
	}
	manager.persist(child)
	return &node, nil
}

// RenameNode changes the name of a node
func (manager *Manager) RenameNode(ctx context.Context, id string, update schema.NodeUpdate) (_ *schema.Node, err error) {
	child, end := manager.begin(ctx, "RenameNode")
	defer func() { end(err) }()

	p, err := manager.principal(ctx, auth.ActionAdmin)
	if err != nil {
		return nil, err
	}
	node, err := manager.catalog.RenameNode(p.User, id, update.Name)
	if err != nil {
		return nil, err
	}
	manager.persist(child)
	return &node, nil
}

// DeleteNode removes an empty node
func (manager *Manager) DeleteNode(ctx context.Context, id string) (_ *schema.Node, err error) {
	child, end := manager.begin(ctx, "DeleteNode")
	defer func() { end(err) }()

	p, err := manager.principal(ctx, auth.ActionAdmin)
	if err != nil {
		return nil, err
	}
	node, err := manager.catalog.DeleteNode(p.User, id)
	if err != nil {
		return nil, err
	}
	manager.persist(child)
	return &node, nil
}

// Seed creates any nodes of the configured hierarchy which do not exist,
// returning the number of nodes created
func (manager *Manager) Seed(ctx context.Context, nodes []config.SeedNode) (_ int, err error) {
	child, end := manager.begin(ctx, "Seed")
	defer func() { end(err) }()

	var created int
	defer func() {
		if created > 0 {
			manager.persist(child)
		}
	}()
	for _, seed := range nodes {
		if _, err := manager.catalog.NodeByPath(seed.Parent + "/" + seed.Name); err == nil {
			continue
		}
		meta := schema.NodeMeta{Kind: seed.Kind, Name: seed.Name}
		if seed.Parent != "" {
			parent, err := manager.catalog.NodeByPath(seed.Parent)
			if err != nil {
				return created, err
			}
			meta.Parent = parent.ID
		}
		if _, err := manager.catalog.CreateNode(SystemUser, meta); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}
