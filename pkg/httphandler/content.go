package httphandler

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	// Packages
	manager "github.com/mutablelogic/go-dms/pkg/manager"
	schema "github.com/mutablelogic/go-dms/pkg/schema"
	httpresponse "github.com/mutablelogic/go-server/pkg/httpresponse"
	openapi "github.com/mutablelogic/go-server/pkg/openapi/schema"
	types "github.com/mutablelogic/go-server/pkg/types"
)

///////////////////////////////////////////////////////////////////////////////
// HANDLER FUNCTIONS

// Path: /document/{id}/content
// GET streams the document content, HEAD returns its headers.
func DocumentContentHandler(mgr *manager.Manager) (string, http.HandlerFunc, *openapi.PathItem) {
	return "/document/{id}/content", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead:
				_ = documentContent(w, r, mgr)
			default:
				_ = httpresponse.Error(w, httpresponse.Err(http.StatusMethodNotAllowed), r.Method)
			}
		}, types.Ptr(openapi.PathItem{
			Get: &openapi.Operation{
				Description: "Download document content",
			},
			Head: &openapi.Operation{
				Description: "Get document content headers without body",
			},
		})
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func documentContent(w http.ResponseWriter, r *http.Request, mgr *manager.Manager) error {
	reader, doc, err := mgr.ReadDocument(r.Context(), r.PathValue("id"))
	if err != nil {
		return httpresponse.Error(w, err)
	}
	defer reader.Close()

	writeDocumentHeaders(w, doc)
	if checkPreconditions(w, r, doc.ETag, doc.Modified) {
		return nil
	}
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return nil
	}
	_, err = io.Copy(w, reader)
	return err
}

// writeDocumentHeaders sets Content-Type, Content-Disposition, Content-Length,
// ETag, Last-Modified and the document metadata header
func writeDocumentHeaders(w http.ResponseWriter, doc *schema.Document) {
	w.Header().Set(types.ContentTypeHeader, resolveContentType(doc.ContentType, filepath.Ext(doc.Name)))
	if cd := mime.FormatMediaType("inline", map[string]string{"filename": doc.Name}); cd != "" {
		w.Header().Set(types.ContentDispositonHeader, cd)
	}
	if doc.ETag != "" {
		w.Header().Set(types.ContentHashHeader, doc.ETag)
	}
	w.Header().Set(types.ContentLengthHeader, strconv.FormatInt(doc.Size, 10))
	w.Header().Set(types.ContentModifiedHeader, doc.Modified.UTC().Format(http.TimeFormat))
	if meta, err := json.Marshal(doc); err == nil {
		w.Header().Set(schema.DocumentMetaHeader, string(meta))
	}
}

// writeObjectHeaders sets the headers for content served from a signed URL
func writeObjectHeaders(w http.ResponseWriter, obj *schema.Object) {
	w.Header().Set(types.ContentTypeHeader, resolveContentType(obj.ContentType, filepath.Ext(obj.Key)))
	if obj.ETag != "" {
		w.Header().Set(types.ContentHashHeader, obj.ETag)
	}
	w.Header().Set(types.ContentLengthHeader, strconv.FormatInt(obj.Size, 10))
	if !obj.ModTime.IsZero() {
		w.Header().Set(types.ContentModifiedHeader, obj.ModTime.UTC().Format(http.TimeFormat))
	}
}

// resolveContentType prefers the stored content type, then the file
// extension, then the binary fallback
func resolveContentType(stored, ext string) string {
	if stored != "" && stored != types.ContentTypeBinary {
		return stored
	}
	if extType := mime.TypeByExtension(ext); extType != "" {
		return extType
	}
	return types.ContentTypeBinary
}

// checkPreconditions evaluates If-None-Match and If-Modified-Since. It writes
// 304 and returns true if the caller should stop processing.
func checkPreconditions(w http.ResponseWriter, r *http.Request, etag string, modtime time.Time) bool {
	if inm := r.Header.Get("If-None-Match"); inm != "" {
		if matchETags(inm, etag) {
			w.WriteHeader(http.StatusNotModified)
			return true
		}
	} else if ims := r.Header.Get("If-Modified-Since"); ims != "" {
		if t, err := http.ParseTime(ims); err == nil && !modtime.Truncate(time.Second).After(t) {
			w.WriteHeader(http.StatusNotModified)
			return true
		}
	}
	return false
}

// matchETags reports whether the header value ("*" or a comma-separated list
// of quoted ETags) matches etag, using weak comparison
func matchETags(header, etag string) bool {
	if etag == "" {
		return false
	} else if strings.TrimSpace(header) == "*" {
		return true
	}
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if strings.Trim(strings.TrimPrefix(part, "W/"), `"`) == strings.Trim(strings.TrimPrefix(etag, "W/"), `"`) {
			return true
		}
	}
	return false
}
