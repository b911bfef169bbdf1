package catalog

import (
	"sort"

	// Packages
	schema "github.com/mutablelogic/go-dms/pkg/schema"
	httpresponse "github.com/mutablelogic/go-server/pkg/httpresponse"
)

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Share grants a user access to a live document. Sharing with a user who
// already has a share replaces the permission.
func (c *Catalog) Share(user, id string, req schema.ShareRequest) (schema.Share, error) {
	if req.User == "" {
		return schema.Share{}, httpresponse.ErrBadRequest.With("missing user")
	} else if req.Permission == "" {
		req.Permission = schema.PermissionView
	} else if !req.Permission.Valid() {
		return schema.Share{}, httpresponse.ErrBadRequest.Withf("invalid permission %q", req.Permission)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	d, err := c.liveDocument(id)
	if err != nil {
		return schema.Share{}, err
	}

	share := c.shareFor(id, req.User)
	if share == nil {
		share = &schema.Share{
			ID:        c.newID(),
			Document:  id,
			User:      req.User,
			CreatedBy: user,
			Created:   c.now(),
		}
		c.shares[share.ID] = share
	} else if share.Permission == req.Permission {
		return *share, nil
	}
	share.Permission = req.Permission
	c.log(schema.Activity{
		User:     user,
		Action:   schema.ActionShare,
		Document: d.ID,
		Node:     d.Folder,
		Name:     d.Name,
		Detail:   req.User + ":" + string(req.Permission),
	})

	// Return success
	return *share, nil
}

// Unshare removes a share by ID
func (c *Catalog) Unshare(user, shareID string) (schema.Share, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	share, exists := c.shares[shareID]
	if !exists {
		return schema.Share{}, httpresponse.ErrNotFound.Withf("share %q not found", shareID)
	}
	delete(c.shares, shareID)

	var folder, name string
	if d, exists := c.docs[share.Document]; exists {
		folder, name = d.Folder, d.Name
	}
	c.log(schema.Activity{
		User:     user,
		Action:   schema.ActionUnshare,
		Document: share.Document,
		Node:     folder,
		Name:     name,
		Detail:   share.User,
	})

	// Return success
	return *share, nil
}

// GetShare returns a share by ID
func (c *Catalog) GetShare(shareID string) (schema.Share, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if share, exists := c.shares[shareID]; exists {
		return *share, nil
	}
	return schema.Share{}, httpresponse.ErrNotFound.Withf("share %q not found", shareID)
}

// Shares returns the shares on a document, ordered by user
func (c *Catalog) Shares(id string) ([]schema.Share, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, exists := c.docs[id]; !exists {
		return nil, httpresponse.ErrNotFound.Withf("document %q not found", id)
	}
	result := make([]schema.Share, 0, 4)
	for _, share := range c.shares {
		if share.Document == id {
			result = append(result, *share)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].User < result[j].User
	})
	return result, nil
}

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (c *Catalog) shareFor(id, user string) *schema.Share {
	for _, share := range c.shares {
		if share.Document == id && share.User == user {
			return share
		}
	}
	return nil
}
