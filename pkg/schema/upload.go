package schema

import (
	"net/http"
	"time"

	// Packages
	types "github.com/mutablelogic/go-server/pkg/types"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// UploadStatus is the state of a single file in the upload pipeline.
type UploadStatus string

// PresignRequest asks the backend for a signed URL to upload one file.
type PresignRequest struct {
	Folder      string `json:"folder"`
	Name        string `json:"name"`
	Size        int64  `json:"size,omitempty"`
	ContentType string `json:"type,omitempty"`
}

// PresignResponse carries the signed URL the client transfers bytes to,
// and the storage key it must quote when committing the upload.
type PresignResponse struct {
	Key     string      `json:"key"`
	URL     string      `json:"url"`
	Method  string      `json:"method"`
	Headers http.Header `json:"headers,omitempty"`
	Expires time.Time   `json:"expires"`
}

// CommitRequest registers a transferred object as a document.
type CommitRequest struct {
	Key         string `json:"key"`
	Folder      string `json:"folder"`
	Name        string `json:"name"`
	Size        int64  `json:"size,omitempty"`
	ContentType string `json:"type,omitempty"`
}

// URLResponse is a presigned download URL for a document.
type URLResponse struct {
	URL     string    `json:"url"`
	Expires time.Time `json:"expires"`
}

////////////////////////////////////////////////////////////////////////////////
// CONSTANTS

const (
	UploadUploading UploadStatus = "uploading"
	UploadComplete  UploadStatus = "complete"
	UploadFailed    UploadStatus = "failed"
	UploadCancelled UploadStatus = "cancelled"
)

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Terminal returns true when no further transitions are possible
func (s UploadStatus) Terminal() bool {
	return s == UploadComplete || s == UploadFailed || s == UploadCancelled
}

////////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (r PresignRequest) String() string {
	return types.Stringify(r)
}

func (r PresignResponse) String() string {
	return types.Stringify(r)
}

func (r CommitRequest) String() string {
	return types.Stringify(r)
}
