package httpclient

import (
	"context"
	"net/http"

	// Packages
	client "github.com/mutablelogic/go-client"
	schema "github.com/mutablelogic/go-dms/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Tree returns the navigation tree, departments at the root
func (c *Client) Tree(ctx context.Context) (*schema.TreeResponse, error) {
	var response schema.TreeResponse
	if err := c.do(ctx, client.NewRequest(), &response, client.OptPath("tree")); err != nil {
		return nil, err
	}
	return &response, nil
}

// GetNode returns a node and its breadcrumb
func (c *Client) GetNode(ctx context.Context, id string) (*schema.NodeResponse, error) {
	var response schema.NodeResponse
	if err := c.do(ctx, client.NewRequest(), &response, client.OptPath("node", id)); err != nil {
		return nil, err
	}
	return &response, nil
}

// CreateNode creates a department, category, subcategory or folder
func (c *Client) CreateNode(ctx context.Context, meta schema.NodeMeta) (*schema.Node, error) {
	req, err := client.NewJSONRequest(meta)
	if err != nil {
		return nil, err
	}
	var response schema.Node
	if err := c.do(ctx, req, &response, client.OptPath("node")); err != nil {
		return nil, err
	}
	return &response, nil
}

// RenameNode changes the name of a node
func (c *Client) RenameNode(ctx context.Context, id, name string) (*schema.Node, error) {
	req, err := newJSONPayload(http.MethodPatch, schema.NodeUpdate{Name: name})
	if err != nil {
		return nil, err
	}
	var response schema.Node
	if err := c.do(ctx, req, &response, client.OptPath("node", id)); err != nil {
		return nil, err
	}
	return &response, nil
}

// DeleteNode removes an empty node and returns it
func (c *Client) DeleteNode(ctx context.Context, id string) (*schema.Node, error) {
	var response schema.Node
	if err := c.do(ctx, client.NewRequestEx(http.MethodDelete, "application/json"), &response, client.OptPath("node", id)); err != nil {
		return nil, err
	}
	return &response, nil
}
