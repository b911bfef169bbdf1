package httphandler

import (
	"io"
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

// Path: /upload/presign
// POST reserves a storage key and returns a signed URL to transfer content to.
func PresignHandler(mgr *manager.Manager) (string, http.HandlerFunc, *openapi.PathItem) {
	return "/upload/presign", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost:
				_ = uploadPresign(w, r, mgr)
			default:
				_ = httpresponse.Error(w, httpresponse.Err(http.StatusMethodNotAllowed), r.Method)
			}
		}, types.Ptr(openapi.PathItem{
			Post: &openapi.Operation{
				Description: "Request a signed URL for uploading a document",
			},
		})
}

// Path: /upload/commit
// POST registers transferred content as a document.
func CommitHandler(mgr *manager.Manager) (string, http.HandlerFunc, *openapi.PathItem) {
	return "/upload/commit", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost:
				_ = uploadCommit(w, r, mgr)
			default:
				_ = httpresponse.Error(w, httpresponse.Err(http.StatusMethodNotAllowed), r.Method)
			}
		}, types.Ptr(openapi.PathItem{
			Post: &openapi.Operation{
				Description: "Commit an uploaded document",
			},
		})
}

// Path: /transfer
// PUT stores content and GET returns it, for URLs signed by the server. No
// bearer token is required.
func TransferHandler(mgr *manager.Manager) (string, http.HandlerFunc, *openapi.PathItem) {
	return "/transfer", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPut:
				_ = transferPut(w, r, mgr)
			case http.MethodGet:
				_ = transferGet(w, r, mgr)
			default:
				_ = httpresponse.Error(w, httpresponse.Err(http.StatusMethodNotAllowed), r.Method)
			}
		}, types.Ptr(openapi.PathItem{
			Put: &openapi.Operation{
				Description: "Upload content to a signed URL",
			},
			Get: &openapi.Operation{
				Description: "Download content from a signed URL",
			},
		})
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func uploadPresign(w http.ResponseWriter, r *http.Request, mgr *manager.Manager) error {
	var req schema.PresignRequest
	if err := httprequest.Read(r, &req); err != nil {
		return httpresponse.Error(w, httpresponse.ErrBadRequest.With(err.Error()))
	}
	response, err := mgr.Presign(r.Context(), req)
	if err != nil {
		return httpresponse.Error(w, err)
	}
	return httpresponse.JSON(w, http.StatusOK, httprequest.Indent(r), response)
}

func uploadCommit(w http.ResponseWriter, r *http.Request, mgr *manager.Manager) error {
	var req schema.CommitRequest
	if err := httprequest.Read(r, &req); err != nil {
		return httpresponse.Error(w, httpresponse.ErrBadRequest.With(err.Error()))
	}
	doc, err := mgr.Commit(r.Context(), req)
	if err != nil {
		return httpresponse.Error(w, err)
	}
	return httpresponse.JSON(w, http.StatusCreated, httprequest.Indent(r), doc)
}

func transferPut(w http.ResponseWriter, r *http.Request, mgr *manager.Manager) error {
	object, err := mgr.TransferWrite(r.Context(), r.URL, r.Body, r.Header.Get(types.ContentTypeHeader))
	if err != nil {
		return httpresponse.Error(w, err)
	}
	return httpresponse.JSON(w, http.StatusCreated, httprequest.Indent(r), object)
}

func transferGet(w http.ResponseWriter, r *http.Request, mgr *manager.Manager) error {
	reader, object, err := mgr.TransferRead(r.Context(), r.URL)
	if err != nil {
		return httpresponse.Error(w, err)
	}
	defer reader.Close()

	writeObjectHeaders(w, object)
	if checkPreconditions(w, r, object.ETag, object.ModTime) {
		return nil
	}
	w.WriteHeader(http.StatusOK)
	_, err = io.Copy(w, reader)
	return err
}
