// Package httpclient provides a typed Go client for the document management
// REST API.
//
// Create a client with:
//
//	client, err := httpclient.New("http://localhost:8080/api/dms", httpclient.WithToken(token))
//	if err != nil {
//	   panic(err)
//	}
//
// Then use the client to browse the hierarchy and manage documents:
//
//	// Return the navigation tree
//	tree, err := client.Tree(ctx)
//
// Uploads are three steps: Presign returns a signed URL, Transfer sends the
// content directly to storage, and Commit registers the document.
package httpclient
