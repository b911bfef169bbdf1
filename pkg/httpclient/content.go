package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	// Packages
	client "github.com/mutablelogic/go-client"
	schema "github.com/mutablelogic/go-dms/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// contentUnmarshaler copies the response body to w and captures the document
// metadata from the response header
type contentUnmarshaler struct {
	doc *schema.Document
	w   io.Writer
}

var _ client.Unmarshaler = (*contentUnmarshaler)(nil)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// ReadDocument streams the document content to w and returns the document
// metadata. w may be nil when only metadata is needed, in which case a HEAD
// request is made.
func (c *Client) ReadDocument(ctx context.Context, id string, w io.Writer) (*schema.Document, error) {
	u := &contentUnmarshaler{w: w}
	req := client.NewRequest()
	if w == nil {
		req = client.NewRequestEx(http.MethodHead, "")
	}
	if err := c.do(ctx, req, u, client.OptPath("document", id, "content"), client.OptNoTimeout()); err != nil {
		return nil, err
	}
	if u.doc == nil {
		return nil, fmt.Errorf("ReadDocument: missing %s header in response", schema.DocumentMetaHeader)
	}
	return u.doc, nil
}

///////////////////////////////////////////////////////////////////////////////
// INTERFACE IMPLEMENTATION

func (r *contentUnmarshaler) Unmarshal(header http.Header, reader io.Reader) error {
	meta := header.Get(schema.DocumentMetaHeader)
	if meta == "" {
		return fmt.Errorf("ReadDocument: missing %s header in response", schema.DocumentMetaHeader)
	}
	var doc schema.Document
	if err := json.Unmarshal([]byte(meta), &doc); err != nil {
		return err
	}
	r.doc = &doc
	if r.w == nil {
		return nil
	}
	_, err := io.Copy(r.w, reader)
	return err
}
