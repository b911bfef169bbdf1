package schema

import (
	"time"

	// Packages
	types "github.com/mutablelogic/go-server/pkg/types"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Document is a file stored in a folder. Key is the storage key of the
// content. Deleted is set while the document is in the trash.
type Document struct {
	ID          string     `json:"id"`
	Folder      string     `json:"folder"`
	Name        string     `json:"name"`
	Size        int64      `json:"size"`
	ContentType string     `json:"type,omitempty"`
	Key         string     `json:"key,omitempty"`
	ETag        string     `json:"etag,omitempty"`
	Owner       string     `json:"owner,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Created     time.Time  `json:"created,omitzero"`
	Modified    time.Time  `json:"modified,omitzero"`
	Deleted     *time.Time `json:"deleted,omitempty"`
}

// DocumentUpdate renames and/or moves a document. Nil fields are unchanged.
type DocumentUpdate struct {
	Name   *string `json:"name,omitempty"`
	Folder *string `json:"folder,omitempty"`
}

type DocumentListRequest struct {
	Folder     string `json:"folder,omitempty"`      // only documents in this folder
	Tag        string `json:"tag,omitempty"`         // only documents with this tag
	Query      string `json:"q,omitempty"`           // case-insensitive substring of the name
	Type       string `json:"type,omitempty"`        // content type prefix, e.g. "image/"
	SharedWith string `json:"shared_with,omitempty"` // only documents shared with this user
	Deleted    bool   `json:"deleted,omitempty"`     // list the trash instead of live documents
	Sort       string `json:"sort,omitempty"`        // name, size, created, modified, type
	Order      string `json:"order,omitempty"`       // asc or desc
	Offset     int    `json:"offset,omitempty"`
	Limit      int    `json:"limit,omitempty"` // 0 returns the count only
}

type DocumentListResponse struct {
	Count int        `json:"count"`
	Body  []Document `json:"body,omitempty"`
}

////////////////////////////////////////////////////////////////////////////////
// CONSTANTS

const (
	SortName     = "name"
	SortSize     = "size"
	SortCreated  = "created"
	SortModified = "modified"
	SortType     = "type"

	OrderAsc  = "asc"
	OrderDesc = "desc"
)

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// IsDeleted returns true if the document is in the trash
func (d Document) IsDeleted() bool {
	return d.Deleted != nil
}

// HasTag returns true if the document carries the tag
func (d Document) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

////////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (d Document) String() string {
	return types.Stringify(d)
}

func (r DocumentUpdate) String() string {
	return types.Stringify(r)
}

func (r DocumentListRequest) String() string {
	return types.Stringify(r)
}

func (r DocumentListResponse) String() string {
	return types.Stringify(r)
}
