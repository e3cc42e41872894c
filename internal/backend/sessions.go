package backend

import (
	"context"
	"net/http"

	"weav/internal/api"
)

// ListSessions returns session summaries, newest first as ordered by the server.
func (c *Client) ListSessions(ctx context.Context) ([]api.Session, error) {
	var sessions []api.Session
	if err := c.doJSON(ctx, http.MethodGet, "/sessions/", nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// GetSession returns the full session including messages and image records.
func (c *Client) GetSession(ctx context.Context, id int64) (*api.Session, error) {
	var session api.Session
	if err := c.doJSON(ctx, http.MethodGet, sessionPath(id, ""), nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// CreateSession creates a session of the given kind.
func (c *Client) CreateSession(ctx context.Context, kind api.SessionKind, title string) (*api.Session, error) {
	var session api.Session
	body := api.CreateSessionRequest{Kind: kind, Title: title}
	if err := c.doJSON(ctx, http.MethodPost, "/sessions/", body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// PatchSession renames a session.
func (c *Client) PatchSession(ctx context.Context, id int64, title string) (*api.Session, error) {
	var session api.Session
	body := api.PatchSessionRequest{Title: title}
	if err := c.doJSON(ctx, http.MethodPatch, sessionPath(id, ""), body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// DeleteSession removes a session. The server answers 204.
func (c *Client) DeleteSession(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, sessionPath(id, ""), nil, nil)
}
