package httpclient_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	// Packages
	auth "github.com/mutablelogic/go-dms/pkg/auth"
	backend "github.com/mutablelogic/go-dms/pkg/backend"
	config "github.com/mutablelogic/go-dms/pkg/config"
	httpclient "github.com/mutablelogic/go-dms/pkg/httpclient"
	httphandler "github.com/mutablelogic/go-dms/pkg/httphandler"
	manager "github.com/mutablelogic/go-dms/pkg/manager"
	schema "github.com/mutablelogic/go-dms/pkg/schema"
	openapi "github.com/mutablelogic/go-server/pkg/openapi/schema"
	assert "github.com/stretchr/testify/assert"
	require "github.com/stretchr/testify/require"
)

///////////////////////////////////////////////////////////////////////////////
// HELPERS

type muxRouter struct {
	*http.ServeMux
}

func (m muxRouter) RegisterFunc(path string, handler http.HandlerFunc, _ bool, _ *openapi.PathItem) error {
	m.HandleFunc(path, handler)
	return nil
}

type testServer struct {
	URL       string
	authority *auth.Authority
}

// newTestServer starts a server with a seeded Finance/Invoices/Inbox folder
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mgr, err := manager.New(context.Background(), manager.WithBackend(context.Background(), "mem://test",
		backend.WithSigner(srv.URL+"/transfer", []byte("transfer-secret")),
	))
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Close() })
	_, err = mgr.Seed(context.Background(), []config.SeedNode{
		{Kind: schema.NodeDepartment, Name: "Finance"},
		{Parent: "/Finance", Kind: schema.NodeCategory, Name: "Invoices"},
		{Parent: "/Finance/Invoices", Kind: schema.NodeFolder, Name: "Inbox"},
	})
	require.NoError(t, err)

	authority, err := auth.New([]byte("token-secret"), "")
	require.NoError(t, err)
	require.NoError(t, httphandler.RegisterHandlers(mgr, authority, muxRouter{mux}))
	return &testServer{URL: srv.URL, authority: authority}
}

func (s *testServer) client(t *testing.T, user string, role schema.Role) *httpclient.Client {
	t.Helper()
	token, err := s.authority.NewToken(user, role, time.Hour)
	require.NoError(t, err)
	c, err := httpclient.New(s.URL, httpclient.WithToken(token))
	require.NoError(t, err)
	return c
}

// inbox returns the seeded folder
func inbox(t *testing.T, c *httpclient.Client) string {
	t.Helper()
	tree, err := c.Tree(context.Background())
	require.NoError(t, err)
	require.Len(t, tree.Body, 1)
	return tree.Body[0].Children[0].Children[0].ID
}

func upload(t *testing.T, c *httpclient.Client, folder, name, content string) *schema.Document {
	t.Helper()
	ctx := context.Background()
	presign, err := c.Presign(ctx, schema.PresignRequest{Folder: folder, Name: name, Size: int64(len(content)), ContentType: "text/plain"})
	require.NoError(t, err)
	require.NoError(t, c.Transfer(ctx, presign, strings.NewReader(content), int64(len(content)), nil))
	doc, err := c.Commit(ctx, schema.CommitRequest{Key: presign.Key})
	require.NoError(t, err)
	return doc
}

///////////////////////////////////////////////////////////////////////////////
// TESTS

func Test_Client_New(t *testing.T) {
	assert := assert.New(t)
	_, err := httpclient.New("http://localhost/api/dms", httpclient.WithToken(" "))
	assert.Error(err)
	c, err := httpclient.New("http://localhost/api/dms")
	assert.NoError(err)
	assert.NotNil(c)
}

func Test_Client_Unauthorized(t *testing.T) {
	s := newTestServer(t)
	c, err := httpclient.New(s.URL)
	require.NoError(t, err)
	_, err = c.Tree(context.Background())
	assert.Error(t, err)
}

func Test_Client_Nodes(t *testing.T) {
	assert := assert.New(t)
	s := newTestServer(t)
	admin := s.client(t, "root", schema.RoleAdmin)
	ctx := context.Background()

	folder := inbox(t, admin)
	node, err := admin.CreateNode(ctx, schema.NodeMeta{Kind: schema.NodeFolder, Name: "2026", Parent: folder})
	require.NoError(t, err)

	response, err := admin.GetNode(ctx, node.ID)
	require.NoError(t, err)
	assert.Equal("/Finance/Invoices/Inbox/2026", response.Breadcrumb.String())

	node, err = admin.RenameNode(ctx, node.ID, "2027")
	require.NoError(t, err)
	assert.Equal("2027", node.Name)

	_, err = admin.DeleteNode(ctx, node.ID)
	assert.NoError(err)
	_, err = admin.GetNode(ctx, node.ID)
	assert.Error(err)

	viewer := s.client(t, "bob", schema.RoleViewer)
	_, err = viewer.CreateNode(ctx, schema.NodeMeta{Kind: schema.NodeDepartment, Name: "Legal"})
	assert.Error(err)
}

func Test_Client_Upload(t *testing.T) {
	assert := assert.New(t)
	s := newTestServer(t)
	editor := s.client(t, "alice", schema.RoleEditor)
	ctx := context.Background()
	folder := inbox(t, editor)

	t.Run("Progress", func(t *testing.T) {
		content := bytes.Repeat([]byte("x"), 200*1024)
		presign, err := editor.Presign(ctx, schema.PresignRequest{Folder: folder, Name: "large.bin", Size: int64(len(content))})
		require.NoError(t, err)
		assert.Equal(http.MethodPut, presign.Method)

		var calls []int64
		err = editor.Transfer(ctx, presign, bytes.NewReader(content), int64(len(content)), func(written, total int64) {
			assert.Equal(int64(len(content)), total)
			calls = append(calls, written)
		})
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(calls), 3)
		assert.Equal(int64(len(content)), calls[len(calls)-1])
		assert.IsIncreasing(calls)

		doc, err := editor.Commit(ctx, schema.CommitRequest{Key: presign.Key})
		require.NoError(t, err)
		assert.Equal(int64(len(content)), doc.Size)
		assert.Equal("alice", doc.Owner)
	})

	t.Run("Empty", func(t *testing.T) {
		presign, err := editor.Presign(ctx, schema.PresignRequest{Folder: folder, Name: "empty.txt"})
		require.NoError(t, err)
		var calls int
		require.NoError(t, editor.Transfer(ctx, presign, strings.NewReader(""), 0, func(written, total int64) {
			calls++
		}))
		assert.Equal(1, calls)
		_, err = editor.Commit(ctx, schema.CommitRequest{Key: presign.Key})
		assert.NoError(err)
	})

	t.Run("Tampered", func(t *testing.T) {
		presign, err := editor.Presign(ctx, schema.PresignRequest{Folder: folder, Name: "tampered.txt", Size: 2})
		require.NoError(t, err)
		presign.URL = strings.Replace(presign.URL, "signature=", "signature=x", 1)
		assert.Error(editor.Transfer(ctx, presign, strings.NewReader("ab"), 2, nil))
		_, err = editor.Commit(ctx, schema.CommitRequest{Key: presign.Key})
		assert.Error(err)
	})

	t.Run("Read", func(t *testing.T) {
		doc := upload(t, editor, folder, "hello.txt", "hello, world")
		var buf bytes.Buffer
		meta, err := editor.ReadDocument(ctx, doc.ID, &buf)
		require.NoError(t, err)
		assert.Equal("hello, world", buf.String())
		assert.Equal(doc.ID, meta.ID)

		meta, err = editor.ReadDocument(ctx, doc.ID, nil)
		require.NoError(t, err)
		assert.Equal("hello.txt", meta.Name)

		signed, err := editor.DocumentURL(ctx, doc.ID)
		require.NoError(t, err)
		resp, err := http.Get(signed.URL)
		require.NoError(t, err)
		defer resp.Body.Close()
		data, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal("hello, world", string(data))
	})
}

func Test_Client_Documents(t *testing.T) {
	assert := assert.New(t)
	s := newTestServer(t)
	admin := s.client(t, "root", schema.RoleAdmin)
	editor := s.client(t, "alice", schema.RoleEditor)
	viewer := s.client(t, "bob", schema.RoleViewer)
	ctx := context.Background()
	folder := inbox(t, editor)

	a := upload(t, editor, folder, "a.txt", "aaa")
	b := upload(t, editor, folder, "b.txt", "b")

	list, err := viewer.ListDocuments(ctx, schema.DocumentListRequest{Folder: folder, Sort: schema.SortSize, Limit: 10})
	require.NoError(t, err)
	assert.Equal(2, list.Count)
	if assert.Len(list.Body, 2) {
		assert.Equal(b.ID, list.Body[0].ID)
	}

	name := "c.txt"
	doc, err := editor.UpdateDocument(ctx, a.ID, schema.DocumentUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal("c.txt", doc.Name)

	doc, err = editor.AddTag(ctx, a.ID, "Urgent")
	require.NoError(t, err)
	assert.Equal([]string{"urgent"}, doc.Tags)
	tags, err := viewer.ListTags(ctx)
	require.NoError(t, err)
	assert.Equal([]schema.TagCount{{Tag: "urgent", Count: 1}}, tags.Body)
	doc, err = editor.RemoveTag(ctx, a.ID, "urgent")
	require.NoError(t, err)
	assert.Empty(doc.Tags)

	share, err := editor.Share(ctx, a.ID, schema.ShareRequest{User: "bob", Permission: schema.PermissionEdit})
	require.NoError(t, err)
	shares, err := viewer.ListShares(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(shares.Body, 1)

	// An edit share lets a viewer rename the document
	name = "d.txt"
	_, err = viewer.UpdateDocument(ctx, a.ID, schema.DocumentUpdate{Name: &name})
	assert.NoError(err)
	_, err = viewer.UpdateDocument(ctx, b.ID, schema.DocumentUpdate{Name: &name})
	assert.Error(err)

	_, err = editor.Unshare(ctx, share.ID)
	assert.NoError(err)

	doc, err = editor.DeleteDocument(ctx, a.ID)
	require.NoError(t, err)
	assert.NotNil(doc.Deleted)
	doc, err = editor.RestoreDocument(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(doc.Deleted)

	_, err = editor.DeleteDocument(ctx, a.ID)
	require.NoError(t, err)
	_, err = editor.PurgeDocument(ctx, a.ID)
	assert.Error(err)
	_, err = admin.PurgeDocument(ctx, a.ID)
	assert.NoError(err)
	_, err = admin.GetDocument(ctx, a.ID)
	assert.Error(err)

	activity, err := viewer.ListActivity(ctx, schema.ActivityListRequest{Document: a.ID, Limit: 100})
	require.NoError(t, err)
	if assert.NotEmpty(activity.Body) {
		assert.Equal(schema.ActionPurge, activity.Body[0].Action)
	}
	assert.Equal(activity.Count, len(activity.Body))
}

func Test_Client_FollowActivity(t *testing.T) {
	assert := assert.New(t)
	s := newTestServer(t)
	viewer := s.client(t, "bob", schema.RoleViewer)

	errStop := errors.New("stop")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var received []schema.Activity
	err := viewer.FollowActivity(ctx, schema.ActivityListRequest{Limit: 2}, func(a schema.Activity) error {
		received = append(received, a)
		if len(received) == 2 {
			return errStop
		}
		return nil
	})
	assert.ErrorIs(err, errStop)
	if assert.Len(received, 2) {
		assert.Equal("Invoices", received[0].Name)
		assert.Equal("Inbox", received[1].Name)
	}
}
