// Package upload implements the client side upload pipeline and the store
// which tracks the state of each upload for display.
//
// Each file is uploaded in three steps: a signed URL is requested, the
// content is sent directly to storage, and the document is committed. Files
// are independent: there are no retries and a failure never affects other
// files.
package upload
