package catalog

import (
	"sort"
	"strings"

	// Packages
	schema "github.com/mutablelogic/go-dms/pkg/schema"
	httpresponse "github.com/mutablelogic/go-server/pkg/httpresponse"
)

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// AddDocument registers a document in a folder. The ID, owner and
// timestamps are assigned by the catalog.
func (c *Catalog) AddDocument(user string, doc schema.Document) (schema.Document, error) {
	name, err := ValidName(doc.Name)
	if err != nil {
		return schema.Document{}, err
	} else if doc.Key == "" {
		return schema.Document{}, httpresponse.ErrBadRequest.With("document has no storage key")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkFolder(doc.Folder); err != nil {
		return schema.Document{}, err
	} else if c.documentExists(doc.Folder, name, "") {
		return schema.Document{}, httpresponse.ErrConflict.Withf("document %q already exists", name)
	}

	now := c.now()
	d := &schema.Document{
		ID:          c.newID(),
		Folder:      doc.Folder,
		Name:        name,
		Size:        doc.Size,
		ContentType: doc.ContentType,
		Key:         doc.Key,
		ETag:        doc.ETag,
		Owner:       user,
		Created:     now,
		Modified:    now,
	}
	for _, tag := range doc.Tags {
		if tag, err := ValidTag(tag); err != nil {
			return schema.Document{}, err
		} else if !d.HasTag(tag) {
			d.Tags = addTag(d.Tags, tag)
		}
	}
	c.docs[d.ID] = d
	c.log(schema.Activity{
		User:     user,
		Action:   schema.ActionUpload,
		Document: d.ID,
		Node:     d.Folder,
		Name:     d.Name,
	})

	// Return success
	return copyDocument(d), nil
}

// GetDocument returns a document, including documents in the trash
func (c *Catalog) GetDocument(id string) (schema.Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if d, exists := c.docs[id]; exists {
		return copyDocument(d), nil
	}
	return schema.Document{}, httpresponse.ErrNotFound.Withf("document %q not found", id)
}

// UpdateDocument renames and/or moves a live document
func (c *Catalog) UpdateDocument(user, id string, update schema.DocumentUpdate) (schema.Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	d, err := c.liveDocument(id)
	if err != nil {
		return schema.Document{}, err
	}

	// Determine the new name and folder
	name, folder := d.Name, d.Folder
	if update.Name != nil {
		if name, err = ValidName(*update.Name); err != nil {
			return schema.Document{}, err
		}
	}
	if update.Folder != nil && *update.Folder != d.Folder {
		if err := c.checkFolder(*update.Folder); err != nil {
			return schema.Document{}, err
		}
		folder = *update.Folder
	}
	if name == d.Name && folder == d.Folder {
		return copyDocument(d), nil
	} else if c.documentExists(folder, name, d.ID) {
		return schema.Document{}, httpresponse.ErrConflict.Withf("document %q already exists", name)
	}

	// Apply and log each change
	if name != d.Name {
		c.log(schema.Activity{
			User:     user,
			Action:   schema.ActionRename,
			Document: d.ID,
			Node:     d.Folder,
			Name:     name,
			Detail:   "from " + d.Name,
		})
		d.Name = name
	}
	if folder != d.Folder {
		c.log(schema.Activity{
			User:     user,
			Action:   schema.ActionMove,
			Document: d.ID,
			Node:     folder,
			Name:     d.Name,
			Detail:   "from " + d.Folder,
		})
		d.Folder = folder
	}
	d.Modified = c.now()

	// Return success
	return copyDocument(d), nil
}

// DeleteDocument moves a live document to the trash
func (c *Catalog) DeleteDocument(user, id string) (schema.Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	d, err := c.liveDocument(id)
	if err != nil {
		return schema.Document{}, err
	}
	now := c.now()
	d.Deleted = &now
	c.log(schema.Activity{
		User:     user,
		Action:   schema.ActionDelete,
		Document: d.ID,
		Node:     d.Folder,
		Name:     d.Name,
	})

	// Return success
	return copyDocument(d), nil
}

// RestoreDocument moves a document out of the trash. It fails if a live
// document with the same name now exists in the folder.
func (c *Catalog) RestoreDocument(user, id string) (schema.Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	d, err := c.trashedDocument(id)
	if err != nil {
		return schema.Document{}, err
	} else if err := c.checkFolder(d.Folder); err != nil {
		return schema.Document{}, err
	} else if c.documentExists(d.Folder, d.Name, d.ID) {
		return schema.Document{}, httpresponse.ErrConflict.Withf("cannot restore: document %q already exists", d.Name)
	}
	d.Deleted = nil
	d.Modified = c.now()
	c.log(schema.Activity{
		User:     user,
		Action:   schema.ActionRestore,
		Document: d.ID,
		Node:     d.Folder,
		Name:     d.Name,
	})

	// Return success
	return copyDocument(d), nil
}

// PurgeDocument permanently removes a document in the trash, and its shares.
// The caller is responsible for removing the stored content.
func (c *Catalog) PurgeDocument(user, id string) (schema.Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	d, err := c.trashedDocument(id)
	if err != nil {
		return schema.Document{}, err
	}
	delete(c.docs, id)
	for key, share := range c.shares {
		if share.Document == id {
			delete(c.shares, key)
		}
	}
	c.log(schema.Activity{
		User:     user,
		Action:   schema.ActionPurge,
		Document: d.ID,
		Node:     d.Folder,
		Name:     d.Name,
	})

	// Return success
	return copyDocument(d), nil
}

// Tag adds a tag to a live document. Adding an existing tag is a no-op.
func (c *Catalog) Tag(user, id, tag string) (schema.Document, error) {
	tag, err := ValidTag(tag)
	if err != nil {
		return schema.Document{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	d, err := c.liveDocument(id)
	if err != nil {
		return schema.Document{}, err
	} else if d.HasTag(tag) {
		return copyDocument(d), nil
	}
	d.Tags = addTag(d.Tags, tag)
	c.log(schema.Activity{
		User:     user,
		Action:   schema.ActionTag,
		Document: d.ID,
		Node:     d.Folder,
		Name:     d.Name,
		Detail:   tag,
	})

	// Return success
	return copyDocument(d), nil
}

// Untag removes a tag from a live document. Removing a missing tag is a no-op.
func (c *Catalog) Untag(user, id, tag string) (schema.Document, error) {
	tag, err := ValidTag(tag)
	if err != nil {
		return schema.Document{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	d, err := c.liveDocument(id)
	if err != nil {
		return schema.Document{}, err
	} else if !d.HasTag(tag) {
		return copyDocument(d), nil
	}
	tags := make([]string, 0, len(d.Tags)-1)
	for _, t := range d.Tags {
		if t != tag {
			tags = append(tags, t)
		}
	}
	d.Tags = tags
	c.log(schema.Activity{
		User:     user,
		Action:   schema.ActionUntag,
		Document: d.ID,
		Node:     d.Folder,
		Name:     d.Name,
		Detail:   tag,
	})

	// Return success
	return copyDocument(d), nil
}

// Tags returns the tags in use on live documents, with their counts
func (c *Catalog) Tags() []schema.TagCount {
	c.mu.RLock()
	defer c.mu.RUnlock()

	counts := make(map[string]int)
	for _, d := range c.docs {
		if d.IsDeleted() {
			continue
		}
		for _, tag := range d.Tags {
			counts[tag]++
		}
	}
	result := make([]schema.TagCount, 0, len(counts))
	for tag, count := range counts {
		result = append(result, schema.TagCount{Tag: tag, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Tag < result[j].Tag
	})
	return result
}

// ListDocuments returns live documents (or the trash) matching the request.
// Count is the number of matches before offset and limit are applied.
func (c *Catalog) ListDocuments(req schema.DocumentListRequest) (*schema.DocumentListResponse, error) {
	less, err := documentOrder(req.Sort, req.Order)
	if err != nil {
		return nil, err
	}
	var tag string
	if req.Tag != "" {
		if tag, err = ValidTag(req.Tag); err != nil {
			return nil, err
		}
	}
	query := strings.ToLower(strings.TrimSpace(req.Query))

	c.mu.RLock()
	defer c.mu.RUnlock()

	// Documents shared with a user
	var shared map[string]bool
	if req.SharedWith != "" {
		shared = make(map[string]bool)
		for _, share := range c.shares {
			if share.User == req.SharedWith {
				shared[share.Document] = true
			}
		}
	}

	// Filter
	var matches []schema.Document
	for _, d := range c.docs {
		switch {
		case d.IsDeleted() != req.Deleted:
			continue
		case req.Folder != "" && d.Folder != req.Folder:
			continue
		case tag != "" && !d.HasTag(tag):
			continue
		case query != "" && !strings.Contains(strings.ToLower(d.Name), query):
			continue
		case req.Type != "" && !strings.HasPrefix(d.ContentType, req.Type):
			continue
		case shared != nil && !shared[d.ID]:
			continue
		}
		matches = append(matches, copyDocument(d))
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return less(matches[i], matches[j])
	})

	// Paginate
	response := &schema.DocumentListResponse{Count: len(matches)}
	if req.Limit <= 0 {
		return response, nil
	}
	response.Body = paginate(matches, req.Offset, req.Limit)
	return response, nil
}

// Permission returns the permission a user has been granted on a document
// through a share
func (c *Catalog) Permission(id, user string) (schema.Permission, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, share := range c.shares {
		if share.Document == id && share.User == user {
			return share.Permission, true
		}
	}
	return "", false
}

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (c *Catalog) checkFolder(id string) error {
	node, exists := c.nodes[id]
	if !exists {
		return httpresponse.ErrNotFound.Withf("folder %q not found", id)
	} else if node.Kind != schema.NodeFolder {
		return httpresponse.ErrBadRequest.Withf("%q is a %s, documents can only be placed in a folder", node.Name, node.Kind)
	}
	return nil
}

// documentExists returns true if a live document other than except, in the
// folder, has the name (case-insensitive)
func (c *Catalog) documentExists(folder, name, except string) bool {
	for _, d := range c.docs {
		if d.Folder == folder && d.ID != except && !d.IsDeleted() && strings.EqualFold(d.Name, name) {
			return true
		}
	}
	return false
}

func (c *Catalog) liveDocument(id string) (*schema.Document, error) {
	d, exists := c.docs[id]
	if !exists {
		return nil, httpresponse.ErrNotFound.Withf("document %q not found", id)
	} else if d.IsDeleted() {
		return nil, httpresponse.ErrConflict.Withf("document %q is in the trash", d.Name)
	}
	return d, nil
}

func (c *Catalog) trashedDocument(id string) (*schema.Document, error) {
	d, exists := c.docs[id]
	if !exists {
		return nil, httpresponse.ErrNotFound.Withf("document %q not found", id)
	} else if !d.IsDeleted() {
		return nil, httpresponse.ErrConflict.Withf("document %q is not in the trash", d.Name)
	}
	return d, nil
}

func documentOrder(key, order string) (func(a, b schema.Document) bool, error) {
	var less func(a, b schema.Document) bool
	switch key {
	case "", schema.SortName:
		less = func(a, b schema.Document) bool {
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	case schema.SortSize:
		less = func(a, b schema.Document) bool { return a.Size < b.Size }
	case schema.SortCreated:
		less = func(a, b schema.Document) bool { return a.Created.Before(b.Created) }
	case schema.SortModified:
		less = func(a, b schema.Document) bool { return a.Modified.Before(b.Modified) }
	case schema.SortType:
		less = func(a, b schema.Document) bool { return a.ContentType < b.ContentType }
	default:
		return nil, httpresponse.ErrBadRequest.Withf("invalid sort key %q", key)
	}

	// Ties are broken by ID so that pages are stable
	var desc bool
	switch order {
	case "", schema.OrderAsc:
	case schema.OrderDesc:
		desc = true
	default:
		return nil, httpresponse.ErrBadRequest.Withf("invalid sort order %q", order)
	}
	return func(a, b schema.Document) bool {
		if less(a, b) {
			return !desc
		} else if less(b, a) {
			return desc
		}
		return a.ID < b.ID
	}, nil
}

func addTag(tags []string, tag string) []string {
	tags = append(tags, tag)
	sort.Strings(tags)
	return tags
}

func copyDocument(d *schema.Document) schema.Document {
	result := *d
	if d.Tags != nil {
		result.Tags = append([]string(nil), d.Tags...)
	}
	if d.Deleted != nil {
		deleted := *d.Deleted
		result.Deleted = &deleted
	}
	return result
}

func paginate[T any](items []T, offset, limit int) []T {
	offset = max(0, min(offset, len(items)))
	items = items[offset:]
	limit = min(limit, schema.MaxListLimit)
	if limit < len(items) {
		items = items[:limit]
	}
	return items
}
