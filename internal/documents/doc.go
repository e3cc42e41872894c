// Package documents uploads, lists and deletes the PDFs a chat session can
// cite, and resolves @mentions against the cached list.
package documents
