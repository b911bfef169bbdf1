package schema

////////////////////////////////////////////////////////////////////////////////
// CONSTANTS

const (
	SchemaName = "dms"

	// MaxListLimit is the maximum number of documents or activity entries
	// returned in a single list call. Clients paginate with Offset.
	MaxListLimit = 1000

	// MaxNameLength is the maximum length of a node or document name, in bytes.
	MaxNameLength = 255

	// MaxTagLength is the maximum length of a tag.
	MaxTagLength = 64

	// HTTP headers
	DocumentMetaHeader = "X-Document-Meta"
)
