package dms

import (
	"context"
	"io"
	"net/url"
	"time"

	// Packages
	schema "github.com/mutablelogic/go-dms/pkg/schema"
)

////////////////////////////////////////////////////////////////////////////////
// INTERFACES

// Storage is the object store which holds document content. Keys are
// relative, slash-separated and never start with a slash.
type Storage interface {
	io.Closer

	// Name returns the name of the storage backend
	Name() string

	// URL returns the backend location, without credentials
	URL() *url.URL

	// Write stores content under a key, replacing any existing object
	Write(ctx context.Context, key string, r io.Reader, contentType string) (*schema.Object, error)

	// Read returns the content of an object. The caller must close the reader.
	Read(ctx context.Context, key string) (io.ReadCloser, *schema.Object, error)

	// Stat returns object metadata
	Stat(ctx context.Context, key string) (*schema.Object, error)

	// Delete removes an object. Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error

	// Presign returns a URL which allows the holder to perform method
	// (GET or PUT) on the key until expiry, without further credentials
	Presign(ctx context.Context, key, method, contentType string, expiry time.Duration) (string, error)

	// Verify checks a presigned URL for the given method, and returns the key
	// it was issued for
	Verify(ctx context.Context, u *url.URL, method string) (string, error)
}
