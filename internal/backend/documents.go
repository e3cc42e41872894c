package backend

import (
	"context"
	"fmt"
	"net/http"

	"weav/internal/api"
)

// ListDocuments returns the documents attached to a chat session.
func (c *Client) ListDocuments(ctx context.Context, sessionID int64) ([]api.DocumentItem, error) {
	var docs []api.DocumentItem
	if err := c.doJSON(ctx, http.MethodGet, sessionPath(sessionID, "documents/"), nil, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// DeleteDocument removes a document from a session.
func (c *Client) DeleteDocument(ctx context.Context, sessionID, documentID int64) error {
	return c.doJSON(ctx, http.MethodDelete, sessionPath(sessionID, fmt.Sprintf("documents/%d/", documentID)), nil, nil)
}

// UploadDocument uploads a file for retrieval in a chat session.
func (c *Client) UploadDocument(ctx context.Context, sessionID int64, file File) (api.UploadedDocument, error) {
	var res api.UploadedDocument
	err := c.upload(ctx, sessionPath(sessionID, "upload/"), "file", []File{file}, &res)
	return res, err
}
