package backend

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	// Packages
	httpresponse "github.com/mutablelogic/go-server/pkg/httpresponse"
	blob "gocloud.dev/blob"
	driver "gocloud.dev/blob/driver"
)

////////////////////////////////////////////////////////////////////////////////
// GLOBALS

// DefaultExpiry is used when Presign is called without an expiry
const DefaultExpiry = 15 * time.Minute

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Presign returns a URL which allows method (GET or PUT) on key until expiry.
// S3 backends return a native presigned URL. Other backends return a URL
// signed with the configured signer, which the /transfer handler verifies.
func (b *blobbackend) Presign(ctx context.Context, key, method, contentType string, expiry time.Duration) (string, error) {
	if method != http.MethodGet && method != http.MethodPut {
		return "", httpresponse.ErrBadRequest.Withf("cannot presign method %q", method)
	}
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	sk, err := b.storageKey(key)
	if err != nil {
		return "", err
	}

	// Native presigning
	if b.url.Scheme == "s3" {
		opts := &blob.SignedURLOptions{
			Expiry: expiry,
			Method: method,
		}
		if method == http.MethodPut {
			opts.ContentType = contentType
			opts.EnforceAbsentContentType = contentType == ""
		}
		signed, err := b.bucket.SignedURL(ctx, sk, opts)
		if err != nil {
			return "", blobErr(err, key)
		}
		return signed, nil
	}

	// HMAC signing. The method is part of the signed value so that a URL
	// issued for GET cannot be used to overwrite the object.
	if b.signer == nil {
		return "", httpresponse.ErrNotImplemented.Withf("backend %q cannot presign URLs without a signer", b.Name())
	}
	u, err := b.signer.URLFromKey(ctx, method+":"+key, &driver.SignedURLOptions{
		Expiry:      expiry,
		Method:      method,
		ContentType: contentType,
	})
	if err != nil {
		return "", httpresponse.ErrInternalError.Withf("sign %q: %v", key, err)
	}
	return u.String(), nil
}

// Verify checks a URL returned by Presign against the request method and
// returns the object key. Expired or tampered URLs return a forbidden error.
func (b *blobbackend) Verify(ctx context.Context, u *url.URL, method string) (string, error) {
	if b.signer == nil {
		return "", httpresponse.ErrNotImplemented.Withf("backend %q has no signer", b.Name())
	}
	signed, err := b.signer.KeyFromURL(ctx, u)
	if err != nil {
		return "", httpresponse.ErrForbidden.With("invalid or expired signature")
	}
	signedMethod, key, ok := strings.Cut(signed, ":")
	if !ok || key == "" {
		return "", httpresponse.ErrForbidden.With("invalid signature")
	}
	if signedMethod != method {
		return "", httpresponse.ErrForbidden.Withf("signature not valid for %s", method)
	}
	return key, nil
}
