package backend

import (
	"context"
	"errors"
	"io"

	// Packages
	schema "github.com/mutablelogic/go-dms/pkg/schema"
	blob "gocloud.dev/blob"
	gcerrors "gocloud.dev/gcerrors"
)

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Write stores the content of r under key
func (b *blobbackend) Write(ctx context.Context, key string, r io.Reader, contentType string) (*schema.Object, error) {
	sk, err := b.storageKey(key)
	if err != nil {
		return nil, err
	}

	// Write the object, removing any partial object on failure
	if w, err := b.bucket.NewWriter(ctx, sk, &blob.WriterOptions{
		ContentType: contentType,
	}); err != nil {
		return nil, blobErr(err, key)
	} else if _, err := io.Copy(w, r); err != nil {
		err = errors.Join(err, w.Close())
		b.bucket.Delete(ctx, sk)
		return nil, blobErr(err, key)
	} else if err := w.Close(); err != nil {
		b.bucket.Delete(ctx, sk)
		return nil, blobErr(err, key)
	}

	// Get attributes to return
	attrs, err := b.bucket.Attributes(ctx, sk)
	if err != nil {
		// The write succeeded but we couldn't fetch the final metadata
		return &schema.Object{Key: key, ContentType: contentType}, nil
	}

	// Return success
	return b.attrsToObject(key, attrs), nil
}

// Read returns a reader for the object content and its metadata
func (b *blobbackend) Read(ctx context.Context, key string) (io.ReadCloser, *schema.Object, error) {
	sk, err := b.storageKey(key)
	if err != nil {
		return nil, nil, err
	}
	attrs, err := b.bucket.Attributes(ctx, sk)
	if err != nil {
		return nil, nil, blobErr(err, key)
	}
	r, err := b.bucket.NewReader(ctx, sk, nil)
	if err != nil {
		return nil, nil, blobErr(err, key)
	}
	return r, b.attrsToObject(key, attrs), nil
}

// Stat returns the object metadata
func (b *blobbackend) Stat(ctx context.Context, key string) (*schema.Object, error) {
	sk, err := b.storageKey(key)
	if err != nil {
		return nil, err
	}
	if attrs, err := b.bucket.Attributes(ctx, sk); err != nil {
		return nil, blobErr(err, key)
	} else {
		return b.attrsToObject(key, attrs), nil
	}
}

// Delete removes the object. A missing object is not an error.
func (b *blobbackend) Delete(ctx context.Context, key string) error {
	sk, err := b.storageKey(key)
	if err != nil {
		return err
	}
	if err := b.bucket.Delete(ctx, sk); err != nil && gcerrors.Code(err) != gcerrors.NotFound {
		return blobErr(err, key)
	}
	return nil
}
