package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	// Packages
	backend "github.com/mutablelogic/go-dms/pkg/backend"
	config "github.com/mutablelogic/go-dms/pkg/config"
	schema "github.com/mutablelogic/go-dms/pkg/schema"
	upload "github.com/mutablelogic/go-dms/pkg/upload"
	zerolog "github.com/rs/zerolog"
	assert "github.com/stretchr/testify/assert"
	require "github.com/stretchr/testify/require"
)

func Test_HumanSize(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("0B", humanSize(0))
	assert.Equal("1023B", humanSize(1023))
	assert.Equal("1.0K", humanSize(1024))
	assert.Equal("1.5M", humanSize(1536*1024))
}

func Test_ShortContentType(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("text/plain", shortContentType("text/plain; charset=utf-8", "a.txt"))
	assert.Equal("text/markdown", shortContentType("application/octet-stream", "README.md"))
	assert.Equal("-", shortContentType("", "noext"))
}

func Test_LocalEndpoint(t *testing.T) {
	assert := assert.New(t)
	endpoint, err := localEndpoint(":8080", "/api/dms")
	assert.NoError(err)
	assert.Equal("http://localhost:8080/api/dms", endpoint)

	endpoint, err = localEndpoint("[::1]:443", "/api")
	assert.NoError(err)
	assert.Equal("https://[::1]:443/api", endpoint)

	_, err = localEndpoint("nohost", "/")
	assert.Error(err)
}

func Test_ProgressView(t *testing.T) {
	assert := assert.New(t)
	var buf bytes.Buffer
	view := &progressView{w: &buf, printed: make(map[string]bool)}

	list := []upload.Upload{
		{ID: "1", Name: "a.txt", Status: schema.UploadUploading, Progress: 40},
		{ID: "2", Name: "b.txt", Status: schema.UploadFailed, Error: "conflict"},
	}
	view.render(list)
	view.render(list)
	assert.Equal("  failed  b.txt: conflict\n", buf.String())

	assert.Equal("   40%  a.txt", formatUpload(list[0], false))
}

func Test_AccessLog(t *testing.T) {
	assert := assert.New(t)
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	handler := accessLog(logger, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
		w.(http.Flusher).Flush()
	}))
	rw := httptest.NewRecorder()
	handler.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/tree", nil))
	assert.Equal(http.StatusTeapot, rw.Code)
	assert.Contains(buf.String(), `"status":418`)
	assert.Contains(buf.String(), `"bytes":15`)
}

func Test_BackendOpts(t *testing.T) {
	app := &Globals{ctx: context.Background(), logger: zerolog.Nop()}
	cmd := &RunServerCommand{}

	t.Run("S3Endpoint", func(t *testing.T) {
		cfg := config.Default()
		cfg.Backend = "s3://docs"
		cfg.S3 = config.S3Config{Region: "eu-west-2", Endpoint: "http://minio:9000", AccessKey: "K", SecretKey: "S"}
		opts, err := cmd.backendOpts(app, cfg)
		require.NoError(t, err)
		assert.Len(t, opts, 2)

		b, err := backend.NewBlobBackend(app.ctx, cfg.Backend, opts...)
		require.NoError(t, err)
		defer b.Close()
		assert.Equal(t, "http://minio:9000", b.URL().Query().Get("endpoint"))
	})

	t.Run("S3HalfCredentials", func(t *testing.T) {
		cfg := config.Default()
		cfg.Backend = "s3://docs"
		cfg.S3 = config.S3Config{Endpoint: "http://minio:9000", AccessKey: "K"}
		_, err := cmd.backendOpts(app, cfg)
		assert.Error(t, err)
	})

	t.Run("Mem", func(t *testing.T) {
		cfg := config.Default()
		cfg.Secret = "secret"
		opts, err := cmd.backendOpts(app, cfg)
		require.NoError(t, err)
		b, err := backend.NewBlobBackend(app.ctx, cfg.Backend, opts...)
		require.NoError(t, err)
		defer b.Close()
		assert.Equal(t, "mem", b.URL().Scheme)
	})
}
