package catalog

import (
	"strings"
	"unicode/utf8"

	// Packages
	schema "github.com/mutablelogic/go-dms/pkg/schema"
	httpresponse "github.com/mutablelogic/go-server/pkg/httpresponse"
)

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// ValidName trims a node or document name and checks it can be used
func ValidName(name string) (string, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return "", httpresponse.ErrBadRequest.With("name is empty")
	case !utf8.ValidString(name):
		return "", httpresponse.ErrBadRequest.Withf("name %q is not valid UTF-8", name)
	case name == "." || name == "..":
		return "", httpresponse.ErrBadRequest.Withf("invalid name %q", name)
	case len(name) > schema.MaxNameLength:
		return "", httpresponse.ErrBadRequest.Withf("name exceeds %d bytes", schema.MaxNameLength)
	case strings.ContainsAny(name, "/\\"):
		return "", httpresponse.ErrBadRequest.Withf("name %q contains a path separator", name)
	case strings.IndexFunc(name, isControl) >= 0:
		return "", httpresponse.ErrBadRequest.Withf("name %q contains control characters", name)
	}
	return name, nil
}

// ValidTag normalises a tag to lower case and checks its characters
func ValidTag(tag string) (string, error) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return "", httpresponse.ErrBadRequest.With("tag is empty")
	} else if len(tag) > schema.MaxTagLength {
		return "", httpresponse.ErrBadRequest.Withf("tag exceeds %d characters", schema.MaxTagLength)
	}
	for _, r := range tag {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			continue
		}
		return "", httpresponse.ErrBadRequest.Withf("tag %q may only contain letters, digits, '-' and '_'", tag)
	}
	return tag, nil
}

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func isControl(r rune) bool {
	return r < 0x20 || r == 0x7f
}
