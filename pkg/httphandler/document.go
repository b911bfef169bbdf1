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
// TYPES

type documentDeleteRequest struct {
	Purge bool `json:"purge,omitempty"`
}

///////////////////////////////////////////////////////////////////////////////
// HANDLER FUNCTIONS

// Path: /document
// GET lists documents, filtered and sorted by query parameters. With
// limit=0 (the default) only the count is returned.
func DocumentListHandler(mgr *manager.Manager) (string, http.HandlerFunc, *openapi.PathItem) {
	return "/document", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				_ = documentList(w, r, mgr)
			default:
				_ = httpresponse.Error(w, httpresponse.Err(http.StatusMethodNotAllowed), r.Method)
			}
		}, types.Ptr(openapi.PathItem{
			Get: &openapi.Operation{
				Description: "List documents by folder, tag, name, type or share; sort by name, size, created, modified or type",
			},
		})
}

// Path: /document/{id}
// GET returns document metadata, PATCH renames or moves the document, DELETE
// moves it to the trash or, with purge=true, removes it permanently.
func DocumentHandler(mgr *manager.Manager) (string, http.HandlerFunc, *openapi.PathItem) {
	return "/document/{id}", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				_ = documentGet(w, r, mgr)
			case http.MethodPatch:
				_ = documentUpdate(w, r, mgr)
			case http.MethodDelete:
				_ = documentDelete(w, r, mgr)
			default:
				_ = httpresponse.Error(w, httpresponse.Err(http.StatusMethodNotAllowed), r.Method)
			}
		}, types.Ptr(openapi.PathItem{
			Get: &openapi.Operation{
				Description: "Get document metadata. PATCH renames or moves the document",
			},
			Delete: &openapi.Operation{
				Description: "Move a document to the trash, or purge it from the trash with purge=true",
			},
		})
}

// Path: /document/{id}/restore
// POST moves a document out of the trash.
func DocumentRestoreHandler(mgr *manager.Manager) (string, http.HandlerFunc, *openapi.PathItem) {
	return "/document/{id}/restore", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost:
				_ = documentRestore(w, r, mgr)
			default:
				_ = httpresponse.Error(w, httpresponse.Err(http.StatusMethodNotAllowed), r.Method)
			}
		}, types.Ptr(openapi.PathItem{
			Post: &openapi.Operation{
				Description: "Restore a document from the trash",
			},
		})
}

// Path: /document/{id}/url
// GET returns a presigned URL for downloading the document content.
func DocumentURLHandler(mgr *manager.Manager) (string, http.HandlerFunc, *openapi.PathItem) {
	return "/document/{id}/url", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				_ = documentURL(w, r, mgr)
			default:
				_ = httpresponse.Error(w, httpresponse.Err(http.StatusMethodNotAllowed), r.Method)
			}
		}, types.Ptr(openapi.PathItem{
			Get: &openapi.Operation{
				Description: "Get a presigned download URL",
			},
		})
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func documentList(w http.ResponseWriter, r *http.Request, mgr *manager.Manager) error {
	var request schema.DocumentListRequest
	if err := httprequest.Query(r.URL.Query(), &request); err != nil {
		return httpresponse.Error(w, httpresponse.ErrBadRequest.With(err.Error()))
	}
	response, err := mgr.ListDocuments(r.Context(), request)
	if err != nil {
		return httpresponse.Error(w, err)
	}
	return httpresponse.JSON(w, http.StatusOK, httprequest.Indent(r), response)
}

func documentGet(w http.ResponseWriter, r *http.Request, mgr *manager.Manager) error {
	doc, err := mgr.GetDocument(r.Context(), r.PathValue("id"))
	if err != nil {
		return httpresponse.Error(w, err)
	}
	return httpresponse.JSON(w, http.StatusOK, httprequest.Indent(r), doc)
}

func documentUpdate(w http.ResponseWriter, r *http.Request, mgr *manager.Manager) error {
	var update schema.DocumentUpdate
	if err := httprequest.Read(r, &update); err != nil {
		return httpresponse.Error(w, httpresponse.ErrBadRequest.With(err.Error()))
	}
	doc, err := mgr.UpdateDocument(r.Context(), r.PathValue("id"), update)
	if err != nil {
		return httpresponse.Error(w, err)
	}
	return httpresponse.JSON(w, http.StatusOK, httprequest.Indent(r), doc)
}

func documentDelete(w http.ResponseWriter, r *http.Request, mgr *manager.Manager) error {
	var request documentDeleteRequest
	if err := httprequest.Query(r.URL.Query(), &request); err != nil {
		return httpresponse.Error(w, httpresponse.ErrBadRequest.With(err.Error()))
	}

	// Purge or move to trash
	var doc *schema.Document
	var err error
	if request.Purge {
		doc, err = mgr.PurgeDocument(r.Context(), r.PathValue("id"))
	} else {
		doc, err = mgr.DeleteDocument(r.Context(), r.PathValue("id"))
	}
	if err != nil {
		return httpresponse.Error(w, err)
	}
	return httpresponse.JSON(w, http.StatusOK, httprequest.Indent(r), doc)
}

func documentRestore(w http.ResponseWriter, r *http.Request, mgr *manager.Manager) error {
	doc, err := mgr.RestoreDocument(r.Context(), r.PathValue("id"))
	if err != nil {
		return httpresponse.Error(w, err)
	}
	return httpresponse.JSON(w, http.StatusOK, httprequest.Indent(r), doc)
}

func documentURL(w http.ResponseWriter, r *http.Request, mgr *manager.Manager) error {
	response, err := mgr.DocumentURL(r.Context(), r.PathValue("id"))
	if err != nil {
		return httpresponse.Error(w, err)
	}
	return httpresponse.JSON(w, http.StatusOK, httprequest.Indent(r), response)
}
