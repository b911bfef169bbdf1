package httpclient

import (
	"context"
	"io"
	"net/http"

	// Packages
	client "github.com/mutablelogic/go-client"
	schema "github.com/mutablelogic/go-dms/pkg/schema"
	httpresponse "github.com/mutablelogic/go-server/pkg/httpresponse"
	types "github.com/mutablelogic/go-server/pkg/types"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// progressReader calls fn every progressInterval bytes and when the total is
// reached
type progressReader struct {
	r        io.Reader
	total    int64
	written  int64
	lastEmit int64
	fn       func(written, total int64)
}

///////////////////////////////////////////////////////////////////////////////
// CONSTANTS

const progressInterval = 64 * 1024

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Presign requests a signed URL for uploading a single file into a folder
func (c *Client) Presign(ctx context.Context, req schema.PresignRequest) (*schema.PresignResponse, error) {
	payload, err := client.NewJSONRequest(req)
	if err != nil {
		return nil, err
	}
	var response schema.PresignResponse
	if err := c.do(ctx, payload, &response, client.OptPath("upload", "presign")); err != nil {
		return nil, err
	}
	return &response, nil
}

// Transfer sends size bytes from body directly to the signed URL. The
// bearer token is not sent. When progress is not nil it is called every
// 64 KiB and once the transfer has completed.
func (c *Client) Transfer(ctx context.Context, presign *schema.PresignResponse, body io.Reader, size int64, progress func(written, total int64)) error {
	if presign == nil || presign.URL == "" {
		return httpresponse.ErrBadRequest.With("missing signed URL")
	}
	method := presign.Method
	if method == "" {
		method = http.MethodPut
	}

	// Wrap the body to report progress
	var pr *progressReader
	if progress != nil {
		pr = &progressReader{r: body, total: size, fn: progress}
		body = pr
	}

	req, err := http.NewRequestWithContext(ctx, method, presign.URL, io.NopCloser(body))
	if err != nil {
		return err
	}
	req.ContentLength = size
	if size == 0 {
		req.Body = http.NoBody
	}
	for key, values := range presign.Headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	c.identify(req)
	if req.Header.Get(types.ContentTypeHeader) == "" {
		req.Header.Set(types.ContentTypeHeader, types.ContentTypeBinary)
	}

	// Transfers are bounded by the context, not the client timeout
	hc := *c.Client.Client
	hc.Timeout = 0
	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := responseError(resp); err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	// Report completion
	if pr != nil {
		pr.done()
	}
	return nil
}

// Commit registers transferred content as a document
func (c *Client) Commit(ctx context.Context, req schema.CommitRequest) (*schema.Document, error) {
	payload, err := client.NewJSONRequest(req)
	if err != nil {
		return nil, err
	}
	var response schema.Document
	if err := c.do(ctx, payload, &response, client.OptPath("upload", "commit")); err != nil {
		return nil, err
	}
	return &response, nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if n > 0 {
		r.written += int64(n)
		if r.written-r.lastEmit >= progressInterval || (r.total > 0 && r.written >= r.total) {
			r.lastEmit = r.written
			r.fn(r.written, r.total)
		}
	}
	return n, err
}

// done reports the final count if it was not the last one emitted
func (r *progressReader) done() {
	if r.lastEmit != r.written || r.written == 0 {
		r.lastEmit = r.written
		r.fn(r.written, r.total)
	}
}
