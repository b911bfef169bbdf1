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

// Path: /tree
// GET returns the container hierarchy.
func TreeHandler(mgr *manager.Manager) (string, http.HandlerFunc, *openapi.PathItem) {
	return "/tree", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				_ = treeGet(w, r, mgr)
			default:
				_ = httpresponse.Error(w, httpresponse.Err(http.StatusMethodNotAllowed), r.Method)
			}
		}, types.Ptr(openapi.PathItem{
			Get: &openapi.Operation{
				Description: "Return departments, categories, subcategories and folders as a tree",
			},
		})
}

// Path: /node
// POST creates a department, category, subcategory or folder.
func NodeListHandler(mgr *manager.Manager) (string, http.HandlerFunc, *openapi.PathItem) {
	return "/node", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost:
				_ = nodeCreate(w, r, mgr)
			default:
				_ = httpresponse.Error(w, httpresponse.Err(http.StatusMethodNotAllowed), r.Method)
			}
		}, types.Ptr(openapi.PathItem{
			Post: &openapi.Operation{
				Description: "Create a node",
			},
		})
}

// Path: /node/{id}
// GET returns a node and its breadcrumb, PATCH renames it, DELETE removes an
// empty node.
func NodeHandler(mgr *manager.Manager) (string, http.HandlerFunc, *openapi.PathItem) {
	return "/node/{id}", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				_ = nodeGet(w, r, mgr)
			case http.MethodPatch:
				_ = nodeRename(w, r, mgr)
			case http.MethodDelete:
				_ = nodeDelete(w, r, mgr)
			default:
				_ = httpresponse.Error(w, httpresponse.Err(http.StatusMethodNotAllowed), r.Method)
			}
		}, types.Ptr(openapi.PathItem{
			Get: &openapi.Operation{
				Description: "Get a node with its breadcrumb. PATCH renames the node",
			},
			Delete: &openapi.Operation{
				Description: "Delete a node which has no children and no documents",
			},
		})
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func treeGet(w http.ResponseWriter, r *http.Request, mgr *manager.Manager) error {
	response, err := mgr.Tree(r.Context())
	if err != nil {
		return httpresponse.Error(w, err)
	}
	return httpresponse.JSON(w, http.StatusOK, httprequest.Indent(r), response)
}

func nodeCreate(w http.ResponseWriter, r *http.Request, mgr *manager.Manager) error {
	var meta schema.NodeMeta
	if err := httprequest.Read(r, &meta); err != nil {
		return httpresponse.Error(w, httpresponse.ErrBadRequest.With(err.Error()))
	}
	node, err := mgr.CreateNode(r.Context(), meta)
	if err != nil {
		return httpresponse.Error(w, err)
	}
	return httpresponse.JSON(w, http.StatusCreated, httprequest.Indent(r), node)
}

func nodeGet(w http.ResponseWriter, r *http.Request, mgr *manager.Manager) error {
	node, err := mgr.GetNode(r.Context(), r.PathValue("id"))
	if err != nil {
		return httpresponse.Error(w, err)
	}
	return httpresponse.JSON(w, http.StatusOK, httprequest.Indent(r), node)
}

func nodeRename(w http.ResponseWriter, r *http.Request, mgr *manager.Manager) error {
	var update schema.NodeUpdate
	if err := httprequest.Read(r, &update); err != nil {
		return httpresponse.Error(w, httpresponse.ErrBadRequest.With(err.Error()))
	}
	node, err := mgr.RenameNode(r.Context(), r.PathValue("id"), update)
	if err != nil {
		return httpresponse.Error(w, err)
	}
	return httpresponse.JSON(w, http.StatusOK, httprequest.Indent(r), node)
}

func nodeDelete(w http.ResponseWriter, r *http.Request, mgr *manager.Manager) error {
	node, err := mgr.DeleteNode(r.Context(), r.PathValue("id"))
	if err != nil {
		return httpresponse.Error(w, err)
	}
	return httpresponse.JSON(w, http.StatusOK, httprequest.Indent(r), node)
}
