package backend

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"syscall"

	// Packages
	aws "github.com/aws/aws-sdk-go-v2/aws"
	s3 "github.com/aws/aws-sdk-go-v2/service/s3"
	dms "github.com/mutablelogic/go-dms"
	schema "github.com/mutablelogic/go-dms/pkg/schema"
	httpresponse "github.com/mutablelogic/go-server/pkg/httpresponse"
	types "github.com/mutablelogic/go-server/pkg/types"
	blob "gocloud.dev/blob"
	s3blob "gocloud.dev/blob/s3blob"
	gcerrors "gocloud.dev/gcerrors"

	// Drivers
	_ "gocloud.dev/blob/fileblob" // file:// URLs
	_ "gocloud.dev/blob/memblob"  // mem:// URLs
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

type blobbackend struct {
	*opt
	name         string
	bucket       *blob.Bucket
	bucketPrefix string // key prefix for bucket operations (empty for file://)
}

var _ dms.Storage = (*blobbackend)(nil)

////////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewBlobBackend creates a new blob backend using Go CDK.
// Supported URL schemes: s3://, file://, mem://
// Examples:
//   - "s3://my-bucket?region=us-east-1"
//   - "s3://my-bucket/documents" (keys are stored under documents/)
//   - "file://name/path/to/directory"
//   - "mem://name"
//
// The URL host is the backend name. For S3 it is also the bucket name.
func NewBlobBackend(ctx context.Context, u string, opts ...Opt) (*blobbackend, error) {
	self := new(blobbackend)

	// Set the options
	if url, err := url.Parse(u); err != nil {
		return nil, err
	} else if opt, err := apply(url, opts...); err != nil {
		return nil, err
	} else {
		self.opt = opt
	}

	// Validate the backend name (URL host) is a valid identifier
	if !types.IsIdentifier(self.url.Host) {
		return nil, fmt.Errorf("backend name %q must be a valid identifier (letter, digits, underscores, hyphens; max 64 chars)", self.url.Host)
	} else {
		self.name = self.url.Host
	}

	// For file:// the path is the bucket root directory. For s3 and mem
	// the path is a key prefix within the bucket.
	if self.url.Scheme != "file" {
		self.bucketPrefix = strings.Trim(self.url.Path, "/")
	}

	// Open the bucket
	var bucket *blob.Bucket
	var err error
	switch {
	case self.url.Scheme == "s3" && self.awsConfig != nil:
		bucket, err = s3blob.OpenBucket(ctx, self.s3Client(), self.url.Host, nil)
	case self.url.Scheme == "file":
		if !path.IsAbs(self.url.Path) || self.url.Path == "/" {
			return nil, fmt.Errorf("file backend %q requires an absolute directory path", self.name)
		}
		openURL := &url.URL{Scheme: "file", Path: self.url.Path, RawQuery: self.url.RawQuery}
		bucket, err = blob.OpenBucket(ctx, openURL.String())
	case self.url.Scheme == "s3" || self.url.Scheme == "mem":
		// Open at the root, the prefix is applied in storageKey
		openURL := *self.url
		openURL.Path = ""
		openURL.RawPath = ""
		if self.url.Scheme == "mem" {
			openURL.Host = ""
			openURL.RawQuery = ""
		}
		bucket, err = blob.OpenBucket(ctx, openURL.String())
	default:
		return nil, fmt.Errorf("unsupported backend scheme %q", self.url.Scheme)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open bucket: %w", err)
	}
	self.bucket = bucket

	// Return success
	return self, nil
}

// Close the backend
func (b *blobbackend) Close() error {
	var result error
	if b.bucket != nil {
		result = errors.Join(result, b.bucket.Close())
		b.bucket = nil
	}

	// Return any errors
	return result
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Name returns the name of the backend (the host component of the URL)
func (b *blobbackend) Name() string {
	return b.name
}

// URL returns the backend URL, with only non-credential query parameters
func (b *blobbackend) URL() *url.URL {
	u := *b.url
	u.User = nil
	q := u.Query()
	for key := range q {
		switch key {
		case "region", "endpoint", "anonymous", "create_dir":
			continue
		default:
			q.Del(key)
		}
	}
	u.RawQuery = q.Encode()
	return &u
}

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// storageKey returns the blob key for a relative key, prepending the bucket
// prefix. Keys are cleaned so that they cannot escape the prefix.
func (b *blobbackend) storageKey(key string) (string, error) {
	key = strings.TrimPrefix(path.Clean("/"+key), "/")
	if key == "" {
		return "", httpresponse.ErrBadRequest.With("empty object key")
	}
	if b.bucketPrefix != "" {
		return b.bucketPrefix + "/" + key, nil
	}
	return key, nil
}

func (b *blobbackend) attrsToObject(key string, attrs *blob.Attributes) *schema.Object {
	return &schema.Object{
		Key:         key,
		Size:        attrs.Size,
		ModTime:     attrs.ModTime,
		ContentType: attrs.ContentType,
		ETag:        attrs.ETag,
	}
}

// s3Client returns the S3 client for the AWS configuration. A custom
// endpoint uses path-style addressing, as S3-compatible stores expect.
func (b *blobbackend) s3Client() *s3.Client {
	cfg := b.awsConfig.Copy()
	if b.anonymous {
		cfg.Credentials = aws.AnonymousCredentials{}
	}
	if b.endpoint != "" {
		cfg.BaseEndpoint = aws.String(b.endpoint)
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != nil {
			o.UsePathStyle = true
		}
	})
}

// blobErr wraps a go-cloud blob error with the appropriate httpresponse error
func blobErr(err error, key string) error {
	if err == nil {
		return nil
	}
	// Check for OS-level errors before go-cloud classification, since the
	// gcerrors default path wraps with %v and breaks the chain.
	if errors.Is(err, syscall.EISDIR) || errors.Is(err, syscall.EEXIST) {
		return httpresponse.ErrBadRequest.Withf("cannot overwrite directory with object: %q", key)
	}
	switch gcerrors.Code(err) {
	case gcerrors.NotFound:
		return httpresponse.ErrNotFound.Withf("object %q not found", key)
	case gcerrors.PermissionDenied:
		return httpresponse.ErrForbidden.Withf("permission denied for %q", key)
	case gcerrors.InvalidArgument:
		return httpresponse.ErrBadRequest.Withf("invalid argument for %q: %v", key, err)
	case gcerrors.FailedPrecondition:
		return httpresponse.ErrConflict.Withf("precondition failed for %q: %v", key, err)
	case gcerrors.Unimplemented:
		return httpresponse.ErrNotImplemented.Withf("not supported for %q: %v", key, err)
	default:
		return httpresponse.ErrInternalError.Withf("blob operation failed: %v", err)
	}
}
