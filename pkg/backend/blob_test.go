package backend

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	// Packages
	aws "github.com/aws/aws-sdk-go-v2/aws"
	credentials "github.com/aws/aws-sdk-go-v2/credentials"
	assert "github.com/stretchr/testify/assert"
	require "github.com/stretchr/testify/require"
)

func newMemBackend(t *testing.T, u string, opts ...Opt) *blobbackend {
	t.Helper()
	b, err := NewBlobBackend(context.Background(), u, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	return b
}

func TestBlobBackend_New(t *testing.T) {
	assert := assert.New(t)

	t.Run("InvalidName", func(t *testing.T) {
		_, err := NewBlobBackend(context.Background(), "mem://9bad")
		assert.Error(err)
	})
	t.Run("UnsupportedScheme", func(t *testing.T) {
		_, err := NewBlobBackend(context.Background(), "ftp://docs")
		assert.Error(err)
	})
	t.Run("FileRequiresPath", func(t *testing.T) {
		_, err := NewBlobBackend(context.Background(), "file://docs")
		assert.Error(err)
	})
	t.Run("Mem", func(t *testing.T) {
		b := newMemBackend(t, "mem://docs")
		assert.Equal("docs", b.Name())
		assert.Equal("mem", b.URL().Scheme)
	})
	t.Run("File", func(t *testing.T) {
		b := newMemBackend(t, "file://docs"+t.TempDir())
		assert.Equal("docs", b.Name())
	})
	t.Run("InvalidSigner", func(t *testing.T) {
		_, err := NewBlobBackend(context.Background(), "mem://docs", WithSigner("ftp://x", []byte("secret")))
		assert.Error(err)
		_, err = NewBlobBackend(context.Background(), "mem://docs", WithSigner("http://x/transfer", nil))
		assert.Error(err)
	})
}

func TestBlobBackend_S3Client(t *testing.T) {
	ctx := context.Background()
	cfg := aws.Config{
		Region:      "eu-west-2",
		Credentials: credentials.NewStaticCredentialsProvider("K", "S", ""),
	}

	t.Run("Endpoint", func(t *testing.T) {
		b := newMemBackend(t, "s3://docs", WithAWSConfig(cfg), WithEndpoint("http://minio:9000"))
		opts := b.s3Client().Options()
		require.NotNil(t, opts.BaseEndpoint)
		assert.Equal(t, "http://minio:9000", *opts.BaseEndpoint)
		assert.True(t, opts.UsePathStyle)
		assert.Equal(t, "eu-west-2", opts.Region)
		creds, err := opts.Credentials.Retrieve(ctx)
		require.NoError(t, err)
		assert.Equal(t, "K", creds.AccessKeyID)
		assert.Equal(t, "S", creds.SecretAccessKey)
		assert.Equal(t, "http://minio:9000", b.URL().Query().Get("endpoint"))
	})

	t.Run("Anonymous", func(t *testing.T) {
		b := newMemBackend(t, "s3://docs", WithAWSConfig(cfg), WithAnonymous())
		opts := b.s3Client().Options()
		assert.Nil(t, opts.BaseEndpoint)
		assert.False(t, opts.UsePathStyle)
		assert.IsType(t, aws.AnonymousCredentials{}, opts.Credentials)
	})
}

func TestBlobBackend_StorageKey(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		key     string
		want    string
		wantErr bool
	}{
		{"plain", "mem://docs", "doc/abc", "doc/abc", false},
		{"leading slash", "mem://docs", "/doc/abc", "doc/abc", false},
		{"traversal", "mem://docs", "../../etc/passwd", "etc/passwd", false},
		{"prefix", "mem://docs/tenant", "doc/abc", "tenant/doc/abc", false},
		{"nested prefix", "mem://docs/a/b/", "x", "a/b/x", false},
		{"empty", "mem://docs", "", "", true},
		{"root", "mem://docs", "/", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newMemBackend(t, tt.backend)
			got, err := b.storageKey(tt.key)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBlobBackend_URL(t *testing.T) {
	assert := assert.New(t)
	u, err := url.Parse("s3://bucket?region=eu-west-1&awssdk=v2")
	require.NoError(t, err)
	b := &blobbackend{opt: &opt{url: u}}
	result := b.URL()
	assert.Equal("eu-west-1", result.Query().Get("region"))
	assert.Equal("", result.Query().Get("awssdk"))
}

func TestBlobBackend_Object(t *testing.T) {
	for _, u := range []string{"mem://docs", "file://docs" + t.TempDir()} {
		t.Run(u, func(t *testing.T) {
			assert := assert.New(t)
			ctx := context.Background()
			b := newMemBackend(t, u)

			obj, err := b.Write(ctx, "doc/one.txt", strings.NewReader("hello, world"), "text/plain")
			require.NoError(t, err)
			assert.Equal("doc/one.txt", obj.Key)
			assert.Equal(int64(12), obj.Size)

			stat, err := b.Stat(ctx, "doc/one.txt")
			require.NoError(t, err)
			assert.Equal(int64(12), stat.Size)
			assert.True(strings.HasPrefix(stat.ContentType, "text/plain"))

			r, obj, err := b.Read(ctx, "doc/one.txt")
			require.NoError(t, err)
			data, err := io.ReadAll(r)
			r.Close()
			assert.NoError(err)
			assert.Equal("hello, world", string(data))
			assert.Equal(int64(12), obj.Size)

			assert.NoError(b.Delete(ctx, "doc/one.txt"))
			_, err = b.Stat(ctx, "doc/one.txt")
			assert.Error(err)

			// Deleting a missing object is fine
			assert.NoError(b.Delete(ctx, "doc/one.txt"))

			_, _, err = b.Read(ctx, "doc/missing")
			assert.Error(err)
		})
	}
}

func TestBlobBackend_Presign(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	t.Run("NoSigner", func(t *testing.T) {
		b := newMemBackend(t, "mem://docs")
		_, err := b.Presign(ctx, "doc/x", http.MethodPut, "", time.Minute)
		assert.Error(err)
	})

	b := newMemBackend(t, "mem://docs", WithSigner("http://localhost/api/dms/transfer", []byte("secret")))

	t.Run("BadMethod", func(t *testing.T) {
		_, err := b.Presign(ctx, "doc/x", http.MethodDelete, "", time.Minute)
		assert.Error(err)
	})

	t.Run("RoundTrip", func(t *testing.T) {
		signed, err := b.Presign(ctx, "doc/x", http.MethodPut, "text/plain", time.Minute)
		require.NoError(t, err)
		assert.True(strings.HasPrefix(signed, "http://localhost/api/dms/transfer?"))

		u, err := url.Parse(signed)
		require.NoError(t, err)
		key, err := b.Verify(ctx, u, http.MethodPut)
		assert.NoError(err)
		assert.Equal("doc/x", key)

		// Not valid for a different method
		_, err = b.Verify(ctx, u, http.MethodGet)
		assert.Error(err)
	})

	t.Run("Tampered", func(t *testing.T) {
		signed, err := b.Presign(ctx, "doc/x", http.MethodGet, "", time.Minute)
		require.NoError(t, err)
		u, err := url.Parse(signed)
		require.NoError(t, err)
		q := u.Query()
		q.Set("obj", "GET:doc/other")
		u.RawQuery = q.Encode()
		_, err = b.Verify(ctx, u, http.MethodGet)
		assert.Error(err)
	})

	t.Run("OtherSecret", func(t *testing.T) {
		other := newMemBackend(t, "mem://docs", WithSigner("http://localhost/api/dms/transfer", []byte("other")))
		signed, err := other.Presign(ctx, "doc/x", http.MethodGet, "", time.Minute)
		require.NoError(t, err)
		u, err := url.Parse(signed)
		require.NoError(t, err)
		_, err = b.Verify(ctx, u, http.MethodGet)
		assert.Error(err)
	})
}
