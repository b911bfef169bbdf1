package upload

import (
	"bytes"
	"io"
	"mime"
	"net/http"
	"path"

	// Packages
	types "github.com/mutablelogic/go-server/pkg/types"
)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

// wellKnownMIME maps file extensions that the system database may not know
// about to their canonical MIME type
var wellKnownMIME = map[string]string{
	".md":   "text/markdown",
	".csv":  "text/csv",
	".yaml": "application/yaml",
	".yml":  "application/yaml",
	".toml": "application/toml",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".odt":  "application/vnd.oasis.opendocument.text",
	".ods":  "application/vnd.oasis.opendocument.spreadsheet",
	".eml":  "message/rfc822",
	".heic": "image/heic",
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// MIMEByExt returns the MIME type for a file extension, or an empty string
func MIMEByExt(ext string) string {
	if ct, ok := wellKnownMIME[ext]; ok {
		return ct
	}
	return mime.TypeByExtension(ext)
}

// DetectContentType returns the content type for a file: by extension when
// known, otherwise by sniffing the first 512 bytes. The returned reader
// yields the full content.
func DetectContentType(name string, r io.Reader) (string, io.Reader) {
	if ct := MIMEByExt(path.Ext(name)); ct != "" && ct != types.ContentTypeBinary {
		return ct, r
	}
	var buf [512]byte
	n, _ := io.ReadFull(r, buf[:])
	r = io.MultiReader(bytes.NewReader(buf[:n]), r)
	if n == 0 {
		return types.ContentTypeBinary, r
	}
	return http.DetectContentType(buf[:n]), r
}
