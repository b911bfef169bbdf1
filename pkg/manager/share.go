package manager

import (
	"context"

	// Packages
	auth "github.com/mutablelogic/go-dms/pkg/auth"
	schema "github.com/mutablelogic/go-dms/pkg/schema"
)

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Shares returns the shares on a document
func (manager *Manager) Shares(ctx context.Context, id string) (_ *schema.ShareListResponse, err error) {
	_, end := manager.begin(ctx, "Shares")
	defer func() { end(err) }()

	if _, err := manager.document(ctx, id, auth.ActionRead); err != nil {
		return nil, err
	}
	shares, err := manager.catalog.Shares(id)
	if err != nil {
		return nil, err
	}
	return &schema.ShareListResponse{Body: shares}, nil
}

// Share grants a user access to a document
func (manager *Manager) Share(ctx context.Context, id string, req schema.ShareRequest) (_ *schema.Share, err error) {
	child, end := manager.begin(ctx, "Share")
	defer func() { end(err) }()

	p, err := manager.document(ctx, id, auth.ActionWrite)
	if err != nil {
		return nil, err
	}
	share, err := manager.catalog.Share(p.User, id, req)
	if err != nil {
		return nil, err
	}
	manager.persist(child)
	return &share, nil
}

// Unshare removes a share
func (manager *Manager) Unshare(ctx context.Context, shareID string) (_ *schema.Share, err error) {
	child, end := manager.begin(ctx, "Unshare")
	defer func() { end(err) }()

	if _, err := manager.principal(ctx, auth.ActionRead); err != nil {
		return nil, err
	}
	share, err := manager.catalog.GetShare(shareID)
	if err != nil {
		return nil, err
	}
	p, err := manager.document(ctx, share.Document, auth.ActionWrite)
	if err != nil {
		return nil, err
	}
	result, err := manager.catalog.Unshare(p.User, shareID)
	if err != nil {
		return nil, err
	}
	manager.persist(child)
	return &result, nil
}

// Activity returns activity entries, newest first
func (manager *Manager) Activity(ctx context.Context, req schema.ActivityListRequest) (_ *schema.ActivityListResponse, err error) {
	_, end := manager.begin(ctx, "Activity")
	defer func() { end(err) }()

	if _, err := manager.principal(ctx, auth.ActionRead); err != nil {
		return nil, err
	}
	return manager.catalog.Activity(req), nil
}
