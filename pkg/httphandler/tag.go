package httphandler

import (
	"net/http"

	// Packages
	manager "github.com/mutablelogic/go-dms/pkg/manager"
	httprequest "github.com/mutablelogic/go-server/pkg/httprequest"
	httpresponse "github.com/mutablelogic/go-server/pkg/httpresponse"
	openapi "github.com/mutablelogic/go-server/pkg/openapi/schema"
	types "github.com/mutablelogic/go-server/pkg/types"
)

///////////////////////////////////////////////////////////////////////////////
// HANDLER FUNCTIONS

// Path: /tag
// GET returns the tags in use with their document counts.
func TagListHandler(mgr *manager.Manager) (string, http.HandlerFunc, *openapi.PathItem) {
	return "/tag", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				_ = tagList(w, r, mgr)
			default:
				_ = httpresponse.Error(w, httpresponse.Err(http.StatusMethodNotAllowed), r.Method)
			}
		}, types.Ptr(openapi.PathItem{
			Get: &openapi.Operation{
				Description: "List tags with the number of documents carrying each",
			},
		})
}

// Path: /document/{id}/tag/{tag}
// PUT adds a tag to a document, DELETE removes it.
func DocumentTagHandler(mgr *manager.Manager) (string, http.HandlerFunc, *openapi.PathItem) {
	return "/document/{id}/tag/{tag}", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPut:
				_ = documentTag(w, r, mgr)
			case http.MethodDelete:
				_ = documentUntag(w, r, mgr)
			default:
				_ = httpresponse.Error(w, httpresponse.Err(http.StatusMethodNotAllowed), r.Method)
			}
		}, types.Ptr(openapi.PathItem{
			Put: &openapi.Operation{
				Description: "Tag a document",
			},
			Delete: &openapi.Operation{
				Description: "Remove a tag from a document",
			},
		})
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func tagList(w http.ResponseWriter, r *http.Request, mgr *manager.Manager) error {
	response, err := mgr.Tags(r.Context())
	if err != nil {
		return httpresponse.Error(w, err)
	}
	return httpresponse.JSON(w, http.StatusOK, httprequest.Indent(r), response)
}

func documentTag(w http.ResponseWriter, r *http.Request, mgr *manager.Manager) error {
	doc, err := mgr.Tag(r.Context(), r.PathValue("id"), r.PathValue("tag"))
	if err != nil {
		return httpresponse.Error(w, err)
	}
	return httpresponse.JSON(w, http.StatusOK, httprequest.Indent(r), doc)
}

func documentUntag(w http.ResponseWriter, r *http.Request, mgr *manager.Manager) error {
	doc, err := mgr.Untag(r.Context(), r.PathValue("id"), r.PathValue("tag"))
	if err != nil {
		return httpresponse.Error(w, err)
	}
	return httpresponse.JSON(w, http.StatusOK, httprequest.Indent(r), doc)
}
