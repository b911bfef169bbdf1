package manager

import (
	"context"
	"io"
	"net/http"

	// Packages
	auth "github.com/mutablelogic/go-dms/pkg/auth"
	schema "github.com/mutablelogic/go-dms/pkg/schema"
)

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// ListDocuments returns documents matching the request
func (manager *Manager) ListDocuments(ctx context.Context, req schema.DocumentListRequest) (_ *schema.DocumentListResponse, err error) {
	_, end := manager.begin(ctx, "ListDocuments")
	defer func() { end(err) }()

	if _, err := manager.principal(ctx, auth.ActionRead); err != nil {
		return nil, err
	}
	return manager.catalog.ListDocuments(req)
}

// GetDocument returns a document, including documents in the trash
func (manager *Manager) GetDocument(ctx context.Context, id string) (_ *schema.Document, err error) {
	_, end := manager.begin(ctx, "GetDocument")
	defer func() { end(err) }()

	if _, err := manager.document(ctx, id, auth.ActionRead); err != nil {
		return nil, err
	}
	doc, err := manager.catalog.GetDocument(id)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// UpdateDocument renames or moves a document
func (manager *Manager) UpdateDocument(ctx context.Context, id string, update schema.DocumentUpdate) (_ *schema.Document, err error) {
	child, end := manager.begin(ctx, "UpdateDocument")
	defer func() { end(err) }()

	p, err := manager.document(ctx, id, auth.ActionWrite)
	if err != nil {
		return nil, err
	}
	doc, err := manager.catalog.UpdateDocument(p.User, id, update)
	if err != nil {
		return nil, err
	}
	manager.persist(child)
	return &doc, nil
}

// DeleteDocument moves a document to the trash
func (manager *Manager) DeleteDocument(ctx context.Context, id string) (_ *schema.Document, err error) {
	child, end := manager.begin(ctx, "DeleteDocument")
	defer func() { end(err) }()

	p, err := manager.document(ctx, id, auth.ActionWrite)
	if err != nil {
		return nil, err
	}
	doc, err := manager.catalog.DeleteDocument(p.User, id)
	if err != nil {
		return nil, err
	}
	manager.persist(child)
	return &doc, nil
}

// RestoreDocument moves a document out of the trash
func (manager *Manager) RestoreDocument(ctx context.Context, id string) (_ *schema.Document, err error) {
	child, end := manager.begin(ctx, "RestoreDocument")
	defer func() { end(err) }()

	p, err := manager.document(ctx, id, auth.ActionWrite)
	if err != nil {
		return nil, err
	}
	doc, err := manager.catalog.RestoreDocument(p.User, id)
	if err != nil {
		return nil, err
	}
	manager.persist(child)
	return &doc, nil
}

// PurgeDocument permanently removes a document in the trash and its content
func (manager *Manager) PurgeDocument(ctx context.Context, id string) (_ *schema.Document, err error) {
	child, end := manager.begin(ctx, "PurgeDocument")
	defer func() { end(err) }()

	p, err := manager.principal(ctx, auth.ActionAdmin)
	if err != nil {
		return nil, err
	}
	doc, err := manager.catalog.PurgeDocument(p.User, id)
	if err != nil {
		return nil, err
	}
	manager.persist(child)

	// A failed delete leaves an unreferenced object
	if err := manager.storage.Delete(child, doc.Key); err != nil {
		manager.logger.Warn().Err(err).Str("key", doc.Key).Msg("purged document content not deleted")
	}
	return &doc, nil
}

// ReadDocument returns the content of a document. The caller must close
// the reader.
func (manager *Manager) ReadDocument(ctx context.Context, id string) (_ io.ReadCloser, _ *schema.Document, err error) {
	child, end := manager.begin(ctx, "ReadDocument")
	defer func() { end(err) }()

	if _, err := manager.document(ctx, id, auth.ActionRead); err != nil {
		return nil, nil, err
	}
	doc, err := manager.catalog.GetDocument(id)
	if err != nil {
		return nil, nil, err
	}
	r, _, err := manager.storage.Read(child, doc.Key)
	if err != nil {
		return nil, nil, err
	}
	manager.metrics.RecordDownload(doc.Size)
	return r, &doc, nil
}

// DocumentURL returns a presigned URL from which the content of a document
// can be downloaded
func (manager *Manager) DocumentURL(ctx context.Context, id string) (_ *schema.URLResponse, err error) {
	child, end := manager.begin(ctx, "DocumentURL")
	defer func() { end(err) }()

	if _, err := manager.document(ctx, id, auth.ActionRead); err != nil {
		return nil, err
	}
	doc, err := manager.catalog.GetDocument(id)
	if err != nil {
		return nil, err
	}
	expires := manager.now().Add(manager.expiry)
	url, err := manager.storage.Presign(child, doc.Key, http.MethodGet, "", manager.expiry)
	if err != nil {
		return nil, err
	}
	return &schema.URLResponse{URL: url, Expires: expires}, nil
}

// Tag adds a tag to a document
func (manager *Manager) Tag(ctx context.Context, id, tag string) (_ *schema.Document, err error) {
	child, end := manager.begin(ctx, "Tag")
	defer func() { end(err) }()

	p, err := manager.document(ctx, id, auth.ActionWrite)
	if err != nil {
		return nil, err
	}
	doc, err := manager.catalog.Tag(p.User, id, tag)
	if err != nil {
		return nil, err
	}
	manager.persist(child)
	return &doc, nil
}

// Untag removes a tag from a document
func (manager *Manager) Untag(ctx context.Context, id, tag string) (_ *schema.Document, err error) {
	child, end := manager.begin(ctx, "Untag")
	defer func() { end(err) }()

	p, err := manager.document(ctx, id, auth.ActionWrite)
	if err != nil {
		return nil, err
	}
	doc, err := manager.catalog.Untag(p.User, id, tag)
	if err != nil {
		return nil, err
	}
	manager.persist(child)
	return &doc, nil
}

// Tags returns the tags in use, with the number of documents carrying each
func (manager *Manager) Tags(ctx context.Context) (_ *schema.TagListResponse, err error) {
	_, end := manager.begin(ctx, "Tags")
	defer func() { end(err) }()

	if _, err := manager.principal(ctx, auth.ActionRead); err != nil {
		return nil, err
	}
	return &schema.TagListResponse{Body: manager.catalog.Tags()}, nil
}
