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

// ListShares returns the shares of a document
func (c *Client) ListShares(ctx context.Context, id string) (*schema.ShareListResponse, error) {
	var response schema.ShareListResponse
	if err := c.do(ctx, client.NewRequest(), &response, client.OptPath("document", id, "share")); err != nil {
		return nil, err
	}
	return &response, nil
}

// Share grants a user view or edit permission on a document
func (c *Client) Share(ctx context.Context, id string, share schema.ShareRequest) (*schema.Share, error) {
	req, err := client.NewJSONRequest(share)
	if err != nil {
		return nil, err
	}
	var response schema.Share
	if err := c.do(ctx, req, &response, client.OptPath("document", id, "share")); err != nil {
		return nil, err
	}
	return &response, nil
}

// Unshare removes a share and returns it
func (c *Client) Unshare(ctx context.Context, shareID string) (*schema.Share, error) {
	var response schema.Share
	if err := c.do(ctx, client.NewRequestEx(http.MethodDelete, "application/json"), &response, client.OptPath("share", shareID)); err != nil {
		return nil, err
	}
	return &response, nil
}
