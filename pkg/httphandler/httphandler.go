package httphandler

import (
	"errors"
	"net/http"

	// Packages
	auth "github.com/mutablelogic/go-dms/pkg/auth"
	manager "github.com/mutablelogic/go-dms/pkg/manager"
	httpresponse "github.com/mutablelogic/go-server/pkg/httpresponse"
	openapi "github.com/mutablelogic/go-server/pkg/openapi/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Router is the interface required to register HTTP handlers.
type Router interface {
	RegisterFunc(path string, handler http.HandlerFunc, middleware bool, spec *openapi.PathItem) error
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// RegisterHandlers registers all document management HTTP handlers on the
// provided router. Every handler except the transfer handler requires a
// bearer token issued by the authority.
func RegisterHandlers(mgr *manager.Manager, authority *auth.Authority, router Router) error {
	var result error
	register := func(path string, handler http.HandlerFunc, spec *openapi.PathItem) {
		result = errors.Join(result, router.RegisterFunc(path, Authenticate(authority, handler), true, spec))
	}
	register(TreeHandler(mgr))
	register(NodeListHandler(mgr))
	register(NodeHandler(mgr))
	register(DocumentListHandler(mgr))
	register(DocumentHandler(mgr))
	register(DocumentRestoreHandler(mgr))
	register(DocumentContentHandler(mgr))
	register(DocumentURLHandler(mgr))
	register(DocumentTagHandler(mgr))
	register(DocumentShareHandler(mgr))
	register(TagListHandler(mgr))
	register(ShareHandler(mgr))
	register(ActivityHandler(mgr))
	register(PresignHandler(mgr))
	register(CommitHandler(mgr))

	// Signed URLs carry their own authorisation
	path, handler, spec := TransferHandler(mgr)
	result = errors.Join(result, router.RegisterFunc(path, handler, true, spec))

	return result
}

// Authenticate wraps a handler so that requests without a valid bearer token
// are rejected, and the principal is available from the request context.
func Authenticate(authority *auth.Authority, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := authority.Request(r)
		if err != nil {
			w.Header().Set("WWW-Authenticate", `Bearer realm="dms"`)
			_ = httpresponse.Error(w, err)
			return
		}
		next(w, r.WithContext(auth.WithPrincipal(r.Context(), p)))
	}
}
