package httphandler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	// Packages
	auth "github.com/mutablelogic/go-dms/pkg/auth"
	backend "github.com/mutablelogic/go-dms/pkg/backend"
	config "github.com/mutablelogic/go-dms/pkg/config"
	httphandler "github.com/mutablelogic/go-dms/pkg/httphandler"
	manager "github.com/mutablelogic/go-dms/pkg/manager"
	schema "github.com/mutablelogic/go-dms/pkg/schema"
	openapi "github.com/mutablelogic/go-server/pkg/openapi/schema"
	assert "github.com/stretchr/testify/assert"
)

///////////////////////////////////////////////////////////////////////////////
// HELPERS

// muxRouter registers handlers on a ServeMux
type muxRouter struct {
	*http.ServeMux
}

func (m muxRouter) RegisterFunc(path string, handler http.HandlerFunc, _ bool, _ *openapi.PathItem) error {
	m.HandleFunc(path, handler)
	return nil
}

// mockRouter records registered paths
type mockRouter struct {
	paths  []string
	retErr error
}

func (m *mockRouter) RegisterFunc(path string, handler http.HandlerFunc, middleware bool, spec *openapi.PathItem) error {
	m.paths = append(m.paths, path)
	return m.retErr
}

type fixture struct {
	mux       *http.ServeMux
	mgr       *manager.Manager
	authority *auth.Authority
	inbox     string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mgr, err := manager.New(context.Background(), manager.WithBackend(context.Background(), "mem://test",
		backend.WithSigner("http://localhost/transfer", []byte("transfer-secret")),
	))
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	t.Cleanup(func() { mgr.Close() })
	if _, err := mgr.Seed(context.Background(), []config.SeedNode{
		{Kind: schema.NodeDepartment, Name: "Finance"},
		{Parent: "/Finance", Kind: schema.NodeCategory, Name: "Invoices"},
		{Parent: "/Finance/Invoices", Kind: schema.NodeFolder, Name: "Inbox"},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	authority, err := auth.New([]byte("token-secret"), "")
	if err != nil {
		t.Fatalf("new authority: %v", err)
	}
	mux := http.NewServeMux()
	if err := httphandler.RegisterHandlers(mgr, authority, muxRouter{mux}); err != nil {
		t.Fatalf("register: %v", err)
	}

	f := &fixture{mux: mux, mgr: mgr, authority: authority}
	var tree schema.TreeResponse
	f.decode(t, f.do(t, http.MethodGet, "/tree", f.token(t, "root", schema.RoleAdmin), nil), http.StatusOK, &tree)
	f.inbox = tree.Body[0].Children[0].Children[0].ID
	return f
}

func (f *fixture) token(t *testing.T, user string, role schema.Role) string {
	t.Helper()
	token, err := f.authority.NewToken(user, role, time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return token
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rw := httptest.NewRecorder()
	f.mux.ServeHTTP(rw, req)
	return rw
}

func (f *fixture) decode(t *testing.T, rw *httptest.ResponseRecorder, status int, v any) {
	t.Helper()
	if rw.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, rw.Code, rw.Body.String())
	}
	if v != nil {
		if err := json.NewDecoder(rw.Body).Decode(v); err != nil {
			t.Fatalf("decode: %v", err)
		}
	}
}

// upload runs presign, transfer and commit through the handlers
func (f *fixture) upload(t *testing.T, token, name, content string) schema.Document {
	t.Helper()
	var presign schema.PresignResponse
	f.decode(t, f.do(t, http.MethodPost, "/upload/presign", token, schema.PresignRequest{
		Folder:      f.inbox,
		Name:        name,
		Size:        int64(len(content)),
		ContentType: "text/plain",
	}), http.StatusOK, &presign)

	u, err := url.Parse(presign.URL)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	req := httptest.NewRequest(presign.Method, u.RequestURI(), bytes.NewReader([]byte(content)))
	req.ContentLength = int64(len(content))
	req.Header.Set("Content-Type", presign.Headers.Get("Content-Type"))
	rw := httptest.NewRecorder()
	f.mux.ServeHTTP(rw, req)
	f.decode(t, rw, http.StatusCreated, nil)

	var doc schema.Document
	f.decode(t, f.do(t, http.MethodPost, "/upload/commit", token, schema.CommitRequest{Key: presign.Key}), http.StatusCreated, &doc)
	return doc
}

///////////////////////////////////////////////////////////////////////////////
// TESTS

func Test_RegisterHandlers(t *testing.T) {
	f := newFixture(t)
	router := &mockRouter{}
	if err := httphandler.RegisterHandlers(f.mgr, f.authority, router); err != nil {
		t.Fatalf("RegisterHandlers: %v", err)
	}
	assert.Len(t, router.paths, 16)
	assert.Contains(t, router.paths, "/transfer")

	router = &mockRouter{retErr: fmt.Errorf("router error")}
	assert.Error(t, httphandler.RegisterHandlers(f.mgr, f.authority, router))
}

func Test_Unauthorized(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t)

	rw := f.do(t, http.MethodGet, "/tree", "", nil)
	assert.Equal(http.StatusUnauthorized, rw.Code)
	assert.NotEmpty(rw.Header().Get("WWW-Authenticate"))

	rw = f.do(t, http.MethodGet, "/tree", "not-a-token", nil)
	assert.Equal(http.StatusUnauthorized, rw.Code)

	// Signed transfer URLs do not accept bearer tokens instead of a signature
	rw = f.do(t, http.MethodPut, "/transfer?obj=x", f.token(t, "root", schema.RoleAdmin), nil)
	assert.Equal(http.StatusForbidden, rw.Code)

	rw = f.do(t, http.MethodPost, "/tree", f.token(t, "root", schema.RoleAdmin), nil)
	assert.Equal(http.StatusMethodNotAllowed, rw.Code)
}

func Test_Nodes(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t)
	admin := f.token(t, "root", schema.RoleAdmin)
	editor := f.token(t, "alice", schema.RoleEditor)

	rw := f.do(t, http.MethodPost, "/node", editor, schema.NodeMeta{Kind: schema.NodeFolder, Name: "Paid", Parent: f.inbox})
	assert.Equal(http.StatusForbidden, rw.Code)

	var node schema.Node
	f.decode(t, f.do(t, http.MethodPost, "/node", admin, schema.NodeMeta{Kind: schema.NodeFolder, Name: "Paid", Parent: f.inbox}), http.StatusCreated, &node)
	assert.Equal("Paid", node.Name)

	var response schema.NodeResponse
	f.decode(t, f.do(t, http.MethodGet, "/node/"+node.ID, editor, nil), http.StatusOK, &response)
	assert.Equal("/Finance/Invoices/Inbox/Paid", response.Breadcrumb.String())

	f.decode(t, f.do(t, http.MethodPatch, "/node/"+node.ID, admin, schema.NodeUpdate{Name: "Settled"}), http.StatusOK, &node)
	assert.Equal("Settled", node.Name)

	rw = f.do(t, http.MethodPost, "/node", admin, schema.NodeMeta{Kind: schema.NodeFolder, Name: "settled", Parent: f.inbox})
	assert.Equal(http.StatusConflict, rw.Code)

	f.decode(t, f.do(t, http.MethodDelete, "/node/"+node.ID, admin, nil), http.StatusOK, nil)
	rw = f.do(t, http.MethodGet, "/node/"+node.ID, admin, nil)
	assert.Equal(http.StatusNotFound, rw.Code)
}

func Test_Documents(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t)
	admin := f.token(t, "root", schema.RoleAdmin)
	editor := f.token(t, "alice", schema.RoleEditor)
	viewer := f.token(t, "bob", schema.RoleViewer)

	doc := f.upload(t, editor, "invoice.txt", "hello, world")
	assert.Equal("invoice.txt", doc.Name)
	assert.Equal(int64(12), doc.Size)

	t.Run("List", func(t *testing.T) {
		var list schema.DocumentListResponse
		f.decode(t, f.do(t, http.MethodGet, "/document?folder="+f.inbox+"&limit=10", viewer, nil), http.StatusOK, &list)
		assert.Equal(1, list.Count)
		if assert.Len(list.Body, 1) {
			assert.Equal(doc.ID, list.Body[0].ID)
		}
		rw := f.do(t, http.MethodGet, "/document?sort=colour", viewer, nil)
		assert.Equal(http.StatusBadRequest, rw.Code)
	})

	t.Run("Content", func(t *testing.T) {
		rw := f.do(t, http.MethodGet, "/document/"+doc.ID+"/content", viewer, nil)
		assert.Equal(http.StatusOK, rw.Code)
		assert.Equal("hello, world", rw.Body.String())
		assert.Equal("text/plain", rw.Header().Get("Content-Type"))
		assert.Contains(rw.Header().Get("Content-Disposition"), "invoice.txt")
		assert.NotEmpty(rw.Header().Get(schema.DocumentMetaHeader))

		req := httptest.NewRequest(http.MethodGet, "/document/"+doc.ID+"/content", nil)
		req.Header.Set("Authorization", "Bearer "+viewer)
		req.Header.Set("If-Modified-Since", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		rw = httptest.NewRecorder()
		f.mux.ServeHTTP(rw, req)
		assert.Equal(http.StatusNotModified, rw.Code)
	})

	t.Run("URL", func(t *testing.T) {
		var response schema.URLResponse
		f.decode(t, f.do(t, http.MethodGet, "/document/"+doc.ID+"/url", viewer, nil), http.StatusOK, &response)
		u, err := url.Parse(response.URL)
		if !assert.NoError(err) {
			t.FailNow()
		}
		rw := f.do(t, http.MethodGet, u.RequestURI(), "", nil)
		assert.Equal(http.StatusOK, rw.Code)
		assert.Equal("hello, world", rw.Body.String())
	})

	t.Run("Update", func(t *testing.T) {
		name := "invoice-001.txt"
		rw := f.do(t, http.MethodPatch, "/document/"+doc.ID, viewer, schema.DocumentUpdate{Name: &name})
		assert.Equal(http.StatusForbidden, rw.Code)

		var updated schema.Document
		f.decode(t, f.do(t, http.MethodPatch, "/document/"+doc.ID, editor, schema.DocumentUpdate{Name: &name}), http.StatusOK, &updated)
		assert.Equal(name, updated.Name)
	})

	t.Run("Tags", func(t *testing.T) {
		var tagged schema.Document
		f.decode(t, f.do(t, http.MethodPut, "/document/"+doc.ID+"/tag/Paid", editor, nil), http.StatusOK, &tagged)
		assert.Equal([]string{"paid"}, tagged.Tags)

		var tags schema.TagListResponse
		f.decode(t, f.do(t, http.MethodGet, "/tag", viewer, nil), http.StatusOK, &tags)
		assert.Equal([]schema.TagCount{{Tag: "paid", Count: 1}}, tags.Body)

		rw := f.do(t, http.MethodPut, "/document/"+doc.ID+"/tag/not%20ok", editor, nil)
		assert.Equal(http.StatusBadRequest, rw.Code)

		f.decode(t, f.do(t, http.MethodDelete, "/document/"+doc.ID+"/tag/paid", editor, nil), http.StatusOK, &tagged)
		assert.Empty(tagged.Tags)
	})

	t.Run("Shares", func(t *testing.T) {
		var share schema.Share
		f.decode(t, f.do(t, http.MethodPost, "/document/"+doc.ID+"/share", editor, schema.ShareRequest{User: "bob", Permission: schema.PermissionEdit}), http.StatusCreated, &share)
		assert.Equal("bob", share.User)

		var shares schema.ShareListResponse
		f.decode(t, f.do(t, http.MethodGet, "/document/"+doc.ID+"/share", viewer, nil), http.StatusOK, &shares)
		assert.Len(shares.Body, 1)

		var shared schema.DocumentListResponse
		f.decode(t, f.do(t, http.MethodGet, "/document?shared_with=bob", viewer, nil), http.StatusOK, &shared)
		assert.Equal(1, shared.Count)

		f.decode(t, f.do(t, http.MethodDelete, "/share/"+share.ID, editor, nil), http.StatusOK, nil)
		rw := f.do(t, http.MethodDelete, "/share/"+share.ID, editor, nil)
		assert.Equal(http.StatusNotFound, rw.Code)
	})

	t.Run("Trash", func(t *testing.T) {
		rw := f.do(t, http.MethodDelete, "/document/"+doc.ID+"?purge=true", editor, nil)
		assert.Equal(http.StatusForbidden, rw.Code)

		var trashed schema.Document
		f.decode(t, f.do(t, http.MethodDelete, "/document/"+doc.ID, editor, nil), http.StatusOK, &trashed)
		assert.NotNil(trashed.Deleted)

		var list schema.DocumentListResponse
		f.decode(t, f.do(t, http.MethodGet, "/document?deleted=true", viewer, nil), http.StatusOK, &list)
		assert.Equal(1, list.Count)

		f.decode(t, f.do(t, http.MethodPost, "/document/"+doc.ID+"/restore", editor, nil), http.StatusOK, &trashed)
		assert.Nil(trashed.Deleted)

		f.decode(t, f.do(t, http.MethodDelete, "/document/"+doc.ID, editor, nil), http.StatusOK, nil)
		f.decode(t, f.do(t, http.MethodDelete, "/document/"+doc.ID+"?purge=true", admin, nil), http.StatusOK, nil)
		rw = f.do(t, http.MethodGet, "/document/"+doc.ID, admin, nil)
		assert.Equal(http.StatusNotFound, rw.Code)
	})

	t.Run("Activity", func(t *testing.T) {
		var list schema.ActivityListResponse
		f.decode(t, f.do(t, http.MethodGet, "/activity?document="+doc.ID+"&limit=100", viewer, nil), http.StatusOK, &list)
		if assert.NotEmpty(list.Body) {
			assert.Equal(schema.ActionPurge, list.Body[0].Action)
			assert.Equal(schema.ActionUpload, list.Body[len(list.Body)-1].Action)
		}
	})
}
