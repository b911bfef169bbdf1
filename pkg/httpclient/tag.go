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

// ListTags returns every tag in use with the number of live documents
func (c *Client) ListTags(ctx context.Context) (*schema.TagListResponse, error) {
	var response schema.TagListResponse
	if err := c.do(ctx, client.NewRequest(), &response, client.OptPath("tag")); err != nil {
		return nil, err
	}
	return &response, nil
}

// AddTag tags a document
func (c *Client) AddTag(ctx context.Context, id, tag string) (*schema.Document, error) {
	var response schema.Document
	if err := c.do(ctx, client.NewRequestEx(http.MethodPut, "application/json"), &response, client.OptPath("document", id, "tag", tag)); err != nil {
		return nil, err
	}
	return &response, nil
}

// RemoveTag removes a tag from a document
func (c *Client) RemoveTag(ctx context.Context, id, tag string) (*schema.Document, error) {
	var response schema.Document
	if err := c.do(ctx, client.NewRequestEx(http.MethodDelete, "application/json"), &response, client.OptPath("document", id, "tag", tag)); err != nil {
		return nil, err
	}
	return &response, nil
}
