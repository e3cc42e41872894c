package backend

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"weav/internal/api"
	"weav/internal/services"
)

const (
	defaultAspectRatio = "1:1"
	defaultNumImages   = 1
)

// CompleteChat submits a chat completion job.
func (c *Client) CompleteChat(ctx context.Context, req api.ChatCompleteRequest) (api.SubmitResponse, error) {
	var res api.SubmitResponse
	err := c.doJSON(ctx, http.MethodPost, "/chat/complete/", req, &res)
	return res, err
}

// RegenerateChat re-runs the last assistant turn.
func (c *Client) RegenerateChat(ctx context.Context, req api.ChatRegenerateRequest) (api.SubmitResponse, error) {
	var res api.SubmitResponse
	err := c.doJSON(ctx, http.MethodPost, "/chat/regenerate/", req, &res)
	return res, err
}

// GenerateImage submits an image generation job. Aspect ratio and image
// count default to 1:1 and 1.
func (c *Client) GenerateImage(ctx context.Context, req api.ImageRequest) (api.SubmitResponse, error) {
	if strings.TrimSpace(req.AspectRatio) == "" {
		req.AspectRatio = defaultAspectRatio
	}
	if req.NumImages <= 0 {
		req.NumImages = defaultNumImages
	}
	var res api.SubmitResponse
	err := c.doJSON(ctx, http.MethodPost, "/chat/image/", req, &res)
	return res, err
}

// RegenerateImage re-runs the last image turn.
func (c *Client) RegenerateImage(ctx context.Context, req api.ImageRegenerateRequest) (api.SubmitResponse, error) {
	req.Prompt = strings.TrimSpace(req.Prompt)
	var res api.SubmitResponse
	err := c.doJSON(ctx, http.MethodPost, "/chat/image/regenerate/", req, &res)
	return res, err
}

// JobStatus fetches the current state of a task.
func (c *Client) JobStatus(ctx context.Context, taskID string) (api.JobStatus, error) {
	var status api.JobStatus
	path, err := jobPath(taskID, "")
	if err != nil {
		return status, err
	}
	err = c.doJSON(ctx, http.MethodGet, path, nil, &status)
	return status, err
}

// CancelJob asks the backend to stop a task. The response body is ignored.
func (c *Client) CancelJob(ctx context.Context, taskID string) error {
	path, err := jobPath(taskID, "cancel/")
	if err != nil {
		return err
	}
	return c.doJSON(ctx, http.MethodPost, path, struct{}{}, nil)
}

func jobPath(taskID, rest string) (string, error) {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return "", services.Wrap(services.ErrValidation, "backend", "job", "task id required", nil)
	}
	return "/chat/job/" + url.PathEscape(taskID) + "/" + rest, nil
}
