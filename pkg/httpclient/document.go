package httpclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	// Packages
	client "github.com/mutablelogic/go-client"
	schema "github.com/mutablelogic/go-dms/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// ListDocuments returns documents matching the request. A zero limit returns
// the count only.
func (c *Client) ListDocuments(ctx context.Context, req schema.DocumentListRequest) (*schema.DocumentListResponse, error) {
	query := make(url.Values)
	setQuery(query, "folder", req.Folder)
	setQuery(query, "tag", req.Tag)
	setQuery(query, "q", req.Query)
	setQuery(query, "type", req.Type)
	setQuery(query, "shared_with", req.SharedWith)
	setQuery(query, "sort", req.Sort)
	setQuery(query, "order", req.Order)
	if req.Deleted {
		query.Set("deleted", "true")
	}
	if req.Offset > 0 {
		query.Set("offset", strconv.Itoa(req.Offset))
	}
	if req.Limit > 0 {
		query.Set("limit", strconv.Itoa(req.Limit))
	}
	var response schema.DocumentListResponse
	if err := c.do(ctx, client.NewRequest(), &response,
		client.OptPath("document"),
		client.OptQuery(query),
	); err != nil {
		return nil, err
	}
	return &response, nil
}

// GetDocument returns document metadata
func (c *Client) GetDocument(ctx context.Context, id string) (*schema.Document, error) {
	var response schema.Document
	if err := c.do(ctx, client.NewRequest(), &response, client.OptPath("document", id)); err != nil {
		return nil, err
	}
	return &response, nil
}

// UpdateDocument renames and/or moves a document
func (c *Client) UpdateDocument(ctx context.Context, id string, update schema.DocumentUpdate) (*schema.Document, error) {
	req, err := newJSONPayload(http.MethodPatch, update)
	if err != nil {
		return nil, err
	}
	var response schema.Document
	if err := c.do(ctx, req, &response, client.OptPath("document", id)); err != nil {
		return nil, err
	}
	return &response, nil
}

// DeleteDocument moves a document to the trash
func (c *Client) DeleteDocument(ctx context.Context, id string) (*schema.Document, error) {
	return c.deleteDocument(ctx, id, false)
}

// PurgeDocument permanently removes a trashed document and its content
func (c *Client) PurgeDocument(ctx context.Context, id string) (*schema.Document, error) {
	return c.deleteDocument(ctx, id, true)
}

// RestoreDocument moves a document out of the trash
func (c *Client) RestoreDocument(ctx context.Context, id string) (*schema.Document, error) {
	var response schema.Document
	if err := c.do(ctx, client.NewRequestEx(http.MethodPost, "application/json"), &response, client.OptPath("document", id, "restore")); err != nil {
		return nil, err
	}
	return &response, nil
}

// DocumentURL returns a presigned download URL for the document content
func (c *Client) DocumentURL(ctx context.Context, id string) (*schema.URLResponse, error) {
	var response schema.URLResponse
	if err := c.do(ctx, client.NewRequest(), &response, client.OptPath("document", id, "url")); err != nil {
		return nil, err
	}
	return &response, nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (c *Client) deleteDocument(ctx context.Context, id string, purge bool) (*schema.Document, error) {
	opts := []client.RequestOpt{client.OptPath("document", id)}
	if purge {
		opts = append(opts, client.OptQuery(url.Values{"purge": []string{"true"}}))
	}
	var response schema.Document
	if err := c.do(ctx, client.NewRequestEx(http.MethodDelete, "application/json"), &response, opts...); err != nil {
		return nil, err
	}
	return &response, nil
}

func setQuery(query url.Values, key, value string) {
	if value != "" {
		query.Set(key, value)
	}
}
