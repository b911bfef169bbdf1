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

// Path: /activity
// GET returns activity entries, newest first. When the client accepts
// text/event-stream, the most recent entries matching the request (up to
// limit) are sent oldest first, followed by new entries as they happen.
func ActivityHandler(mgr *manager.Manager) (string, http.HandlerFunc, *openapi.PathItem) {
	return "/activity", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				if accept, _ := types.AcceptContentType(r); accept == types.ContentTypeTextStream {
					_ = activityStream(w, r, mgr)
				} else {
					_ = activityList(w, r, mgr)
				}
			default:
				_ = httpresponse.Error(w, httpresponse.Err(http.StatusMethodNotAllowed), r.Method)
			}
		}, types.Ptr(openapi.PathItem{
			Get: &openapi.Operation{
				Description: "List activity by document, node, user or action, or follow it as a server-sent event stream",
			},
		})
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func activityList(w http.ResponseWriter, r *http.Request, mgr *manager.Manager) error {
	var request schema.ActivityListRequest
	if err := httprequest.Query(r.URL.Query(), &request); err != nil {
		return httpresponse.Error(w, httpresponse.ErrBadRequest.With(err.Error()))
	}
	response, err := mgr.Activity(r.Context(), request)
	if err != nil {
		return httpresponse.Error(w, err)
	}
	return httpresponse.JSON(w, http.StatusOK, httprequest.Indent(r), response)
}

// activityStream sends activity as server-sent events until the client
// disconnects. Each event is named "activity" with a schema.Activity payload.
func activityStream(w http.ResponseWriter, r *http.Request, mgr *manager.Manager) error {
	var request schema.ActivityListRequest
	if err := httprequest.Query(r.URL.Query(), &request); err != nil {
		return httpresponse.Error(w, httpresponse.ErrBadRequest.With(err.Error()))
	}

	// Subscribe before reading the backlog so nothing is missed between them
	ch, err := mgr.Subscribe(r.Context())
	if err != nil {
		return httpresponse.Error(w, err)
	}
	backlog, err := mgr.Activity(r.Context(), request)
	if err != nil {
		return httpresponse.Error(w, err)
	}

	// Open the stream; no HTTP errors are possible after this point
	stream := httpresponse.NewTextStream(w)
	var last uint64
	for i := len(backlog.Body) - 1; i >= 0; i-- {
		stream.Write(schema.ActivityEvent, backlog.Body[i])
		last = backlog.Body[i].ID
	}
	for {
		select {
		case <-r.Context().Done():
			return stream.Close()
		case a, ok := <-ch:
			if !ok {
				return stream.Close()
			}
			if a.ID <= last || !matchActivity(request, a) {
				continue
			}
			stream.Write(schema.ActivityEvent, a)
		}
	}
}

func matchActivity(req schema.ActivityListRequest, a schema.Activity) bool {
	switch {
	case req.Document != "" && a.Document != req.Document:
		return false
	case req.Node != "" && a.Node != req.Node:
		return false
	case req.User != "" && a.User != req.User:
		return false
	case req.Action != "" && a.Action != req.Action:
		return false
	}
	return true
}
