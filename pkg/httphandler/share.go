package httphandler

import (
	"net/http"

	// Packages
	manager "github.com/mutablelogic/go-dms/pkg/manager"
	schema "github.com/mutablelogic/go-dms/pkg/schema"
	httprequest "github.com/mutablelogic/go-server/pkg/httprequest"
	httpresponse "github.com/mutablelogic/go-server/pkg/httpresponse"
	openapi "github.com/mutablelogic/go-server/pkg/openapi/schema"
	types "github.com/mutablelogic/go-server/pkg/types"
)

///////////////////////////////////////////////////////////////////////////////
// HANDLER FUNCTIONS

// Path: /document/{id}/share
// GET lists the shares on a document, POST shares it with a user.
func DocumentShareHandler(mgr *manager.Manager) (string, http.HandlerFunc, *openapi.PathItem) {
	return "/document/{id}/share", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				_ = shareList(w, r, mgr)
			case http.MethodPost:
				_ = shareCreate(w, r, mgr)
			default:
				_ = httpresponse.Error(w, httpresponse.Err(http.StatusMethodNotAllowed), r.Method)
			}
		}, types.Ptr(openapi.PathItem{
			Get: &openapi.Operation{
				Description: "List the users a document is shared with",
			},
			Post: &openapi.Operation{
				Description: "Share a document with a user, replacing any existing permission",
			},
		})
}

// Path: /share/{id}
// DELETE removes a share.
func ShareHandler(mgr *manager.Manager) (string, http.HandlerFunc, *openapi.PathItem) {
	return "/share/{id}", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodDelete:
				_ = shareDelete(w, r, mgr)
			default:
				_ = httpresponse.Error(w, httpresponse.Err(http.StatusMethodNotAllowed), r.Method)
			}
		}, types.Ptr(openapi.PathItem{
			Delete: &openapi.Operation{
				Description: "Remove a share",
			},
		})
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func shareList(w http.ResponseWriter, r *http.Request, mgr *manager.Manager) error {
	response, err := mgr.Shares(r.Context(), r.PathValue("id"))
	if err != nil {
		return httpresponse.Error(w, err)
	}
	return httpresponse.JSON(w, http.StatusOK, httprequest.Indent(r), response)
}

func shareCreate(w http.ResponseWriter, r *http.Request, mgr *manager.Manager) error {
	var req schema.ShareRequest
	if err := httprequest.Read(r, &req); err != nil {
		return httpresponse.Error(w, httpresponse.ErrBadRequest.With(err.Error()))
	}
	share, err := mgr.Share(r.Context(), r.PathValue("id"), req)
	if err != nil {
		return httpresponse.Error(w, err)
	}
	return httpresponse.JSON(w, http.StatusCreated, httprequest.Indent(r), share)
}

func shareDelete(w http.ResponseWriter, r *http.Request, mgr *manager.Manager) error {
	share, err := mgr.Unshare(r.Context(), r.PathValue("id"))
	if err != nil {
		return httpresponse.Error(w, err)
	}
	return httpresponse.JSON(w, http.StatusOK, httprequest.Indent(r), share)
}
