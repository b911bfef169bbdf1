package manager

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"

	// Packages
	uuid "github.com/google/uuid"
	auth "github.com/mutablelogic/go-dms/pkg/auth"
	catalog "github.com/mutablelogic/go-dms/pkg/catalog"
	schema "github.com/mutablelogic/go-dms/pkg/schema"
	httpresponse "github.com/mutablelogic/go-server/pkg/httpresponse"
)

////////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	defaultContentType = "application/octet-stream"
)

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Presign reserves a storage key for an upload and returns a URL to which
// the content should be transferred, before calling Commit
func (manager *Manager) Presign(ctx context.Context, req schema.PresignRequest) (_ *schema.PresignResponse, err error) {
	child, end := manager.begin(ctx, "Presign")
	defer func() { end(err) }()

	p, err := manager.principal(ctx, auth.ActionWrite)
	if err != nil {
		return nil, err
	}
	name, err := catalog.ValidName(req.Name)
	if err != nil {
		return nil, err
	} else if err := manager.checkFolder(req.Folder); err != nil {
		return nil, err
	} else if req.Size < 0 {
		return nil, httpresponse.ErrBadRequest.Withf("invalid size %d", req.Size)
	} else if manager.maxSize > 0 && req.Size > manager.maxSize {
		return nil, httpresponse.Err(http.StatusRequestEntityTooLarge).Withf("%q exceeds the upload limit of %d bytes", name, manager.maxSize)
	}
	contentType := req.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}

	// Sign the URL
	key := DocumentPrefix + uuid.NewString()
	expires := manager.now().Add(manager.expiry)
	signed, err := manager.storage.Presign(child, key, http.MethodPut, contentType, manager.expiry)
	if err != nil {
		return nil, err
	}

	// Record the pending upload
	manager.pendingMu.Lock()
	expired := manager.expirePending()
	manager.pending[key] = pending{
		Folder:      req.Folder,
		Name:        name,
		Size:        req.Size,
		ContentType: contentType,
		User:        p.User,
		Expires:     expires,
	}
	manager.metrics.SetPending(len(manager.pending))
	manager.pendingMu.Unlock()
	manager.discard(child, expired...)

	// Return the signed URL
	return &schema.PresignResponse{
		Key:     key,
		URL:     signed,
		Method:  http.MethodPut,
		Headers: http.Header{"Content-Type": []string{contentType}},
		Expires: expires,
	}, nil
}

// Commit registers transferred content as a document. The key must have
// been issued by Presign to the same user and not yet expired.
func (manager *Manager) Commit(ctx context.Context, req schema.CommitRequest) (_ *schema.Document, err error) {
	child, end := manager.begin(ctx, "Commit")
	defer func() { end(err) }()

	p, err := manager.principal(ctx, auth.ActionWrite)
	if err != nil {
		return nil, err
	}

	// Consume the pending upload
	manager.pendingMu.Lock()
	expired := manager.expirePending()
	upload, exists := manager.pending[req.Key]
	if exists && upload.User == p.User {
		delete(manager.pending, req.Key)
	}
	manager.metrics.SetPending(len(manager.pending))
	manager.pendingMu.Unlock()
	manager.discard(child, expired...)
	if !exists || upload.User != p.User {
		return nil, httpresponse.ErrBadRequest.Withf("unknown or expired upload %q", req.Key)
	}

	// Fields in the commit request take precedence
	if req.Folder != "" {
		upload.Folder = req.Folder
	}
	if req.Name != "" {
		upload.Name = req.Name
	}
	if req.Size != 0 {
		upload.Size = req.Size
	}
	if req.ContentType != "" {
		upload.ContentType = req.ContentType
	}

	// Check the object arrived intact
	object, err := manager.storage.Stat(child, req.Key)
	if err != nil {
		if errors.Is(err, httpresponse.ErrNotFound) {
			return nil, httpresponse.ErrBadRequest.Withf("upload %q has not been transferred", req.Key)
		}
		return nil, err
	}
	if upload.Size != 0 && object.Size != upload.Size {
		manager.discard(child, req.Key)
		return nil, httpresponse.ErrBadRequest.Withf("upload %q is %d bytes, expected %d", upload.Name, object.Size, upload.Size)
	}

	// Create the document
	doc, err := manager.catalog.AddDocument(p.User, schema.Document{
		Folder:      upload.Folder,
		Name:        upload.Name,
		Size:        object.Size,
		ContentType: upload.ContentType,
		Key:         req.Key,
		ETag:        object.ETag,
	})
	if err != nil {
		manager.discard(child, req.Key)
		return nil, err
	}
	manager.persist(child)
	manager.metrics.RecordUpload(doc.Size)
	return &doc, nil
}

// TransferWrite stores content sent to a presigned PUT URL. Only keys with
// an upload awaiting commit can be written.
func (manager *Manager) TransferWrite(ctx context.Context, u *url.URL, r io.Reader, contentType string) (_ *schema.Object, err error) {
	child, end := manager.begin(ctx, "TransferWrite")
	defer func() { end(err) }()

	key, err := manager.storage.Verify(child, u, http.MethodPut)
	if err != nil {
		return nil, err
	}
	manager.pendingMu.Lock()
	upload, exists := manager.pending[key]
	manager.pendingMu.Unlock()
	if !exists || manager.now().After(upload.Expires) {
		return nil, httpresponse.ErrForbidden.Withf("upload %q is not pending", key)
	}
	if contentType == "" {
		contentType = upload.ContentType
	}

	// Limit the body to the upload limit, reading one more byte to detect
	// content which is too large
	if manager.maxSize > 0 {
		r = io.LimitReader(r, manager.maxSize+1)
	}
	object, err := manager.storage.Write(child, key, r, contentType)
	if err != nil {
		return nil, err
	} else if manager.maxSize > 0 && object.Size > manager.maxSize {
		manager.discard(child, key)
		return nil, httpresponse.Err(http.StatusRequestEntityTooLarge).Withf("upload exceeds the limit of %d bytes", manager.maxSize)
	}
	return object, nil
}

// TransferRead returns the content for a presigned GET URL. The caller must
// close the reader.
func (manager *Manager) TransferRead(ctx context.Context, u *url.URL) (_ io.ReadCloser, _ *schema.Object, err error) {
	child, end := manager.begin(ctx, "TransferRead")
	defer func() { end(err) }()

	key, err := manager.storage.Verify(child, u, http.MethodGet)
	if err != nil {
		return nil, nil, err
	}
	r, object, err := manager.storage.Read(child, key)
	if err != nil {
		return nil, nil, err
	}
	manager.metrics.RecordDownload(object.Size)
	return r, object, nil
}

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (manager *Manager) checkFolder(id string) error {
	node, exists := manager.catalog.FindNode(id)
	if !exists {
		return httpresponse.ErrNotFound.Withf("folder %q not found", id)
	} else if node.Kind != schema.NodeFolder {
		return httpresponse.ErrBadRequest.Withf("%q is a %s, documents can only be placed in a folder", node.Name, node.Kind)
	}
	return nil
}

// expirePending removes expired uploads and returns their keys, for the
// caller to discard once the pending lock is released. The pending lock
// must be held.
func (manager *Manager) expirePending() []string {
	var expired []string
	now := manager.now()
	for key, upload := range manager.pending {
		if now.After(upload.Expires) {
			delete(manager.pending, key)
			expired = append(expired, key)
		}
	}
	return expired
}

// discard removes content which will not become a document
func (manager *Manager) discard(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if err := manager.storage.Delete(context.WithoutCancel(ctx), key); err != nil && !errors.Is(err, httpresponse.ErrNotFound) {
			manager.logger.Warn().Err(err).Str("key", key).Msg("upload not discarded")
		}
	}
}
