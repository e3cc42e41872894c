package api

// ImageOptions are the generation settings that can be stored per session and
// overridden per call. Zero values mean "not set".
type ImageOptions struct {
	AspectRatio  string `json:"aspect_ratio,omitempty"`
	NumImages    int    `json:"num_images,omitempty"`
	Resolution   string `json:"resolution,omitempty"`
	OutputFormat string `json:"output_format,omitempty"`
	Seed         *int64 `json:"seed,omitempty"`
}

// Clone returns a copy that shares no pointers with o.
func (o ImageOptions) Clone() ImageOptions {
	if o.Seed != nil {
		seed := *o.Seed
		o.Seed = &seed
	}
	return o
}

// CreateSessionRequest is the body of POST /sessions/.
type CreateSessionRequest struct {
	Kind  SessionKind `json:"kind"`
	Title string      `json:"title,omitempty"`
}

// PatchSessionRequest is the body of PATCH /sessions/{id}/.
type PatchSessionRequest struct {
	Title string `json:"title"`
}

// ChatCompleteRequest is the body of POST /chat/complete/.
type ChatCompleteRequest struct {
	SessionID    int64  `json:"session_id"`
	Prompt       string `json:"prompt"`
	Model        string `json:"model"`
	SystemPrompt string `json:"system_prompt,omitempty"`
}

// ChatRegenerateRequest is the body of POST /chat/regenerate/.
type ChatRegenerateRequest struct {
	SessionID int64  `json:"session_id"`
	Model     string `json:"model,omitempty"`
	Prompt    string `json:"prompt,omitempty"`
}

// ImageRequest is the body of POST /chat/image/. Optional fields are omitted
// when empty.
type ImageRequest struct {
	SessionID          int64    `json:"session_id"`
	Prompt             string   `json:"prompt"`
	Model              string   `json:"model"`
	AspectRatio        string   `json:"aspect_ratio"`
	NumImages          int      `json:"num_images"`
	ReferenceImageID   *int64   `json:"reference_image_id,omitempty"`
	ReferenceImageURL  string   `json:"reference_image_url,omitempty"`
	ReferenceImageURLs []string `json:"reference_image_urls,omitempty"`
	ImageURLs          []string `json:"image_urls,omitempty"`
	Resolution         string   `json:"resolution,omitempty"`
	OutputFormat       string   `json:"output_format,omitempty"`
	Seed               *int64   `json:"seed,omitempty"`
}

// ImageRegenerateRequest is the body of POST /chat/image/regenerate/.
type ImageRegenerateRequest struct {
	SessionID    int64  `json:"session_id"`
	Prompt       string `json:"prompt,omitempty"`
	Model        string `json:"model,omitempty"`
	AspectRatio  string `json:"aspect_ratio,omitempty"`
	Resolution   string `json:"resolution,omitempty"`
	OutputFormat string `json:"output_format,omitempty"`
	Seed         *int64 `json:"seed,omitempty"`
}

// SubmitResponse is returned by every job submission endpoint.
type SubmitResponse struct {
	TaskID    string `json:"task_id"`
	JobID     int64  `json:"job_id"`
	MessageID int64  `json:"message_id,omitempty"`
}

// ReferenceUploadResponse is returned by POST /chat/image/upload-reference/.
type ReferenceUploadResponse struct {
	URL string `json:"url"`
}

// AttachmentUploadResponse is returned by POST /chat/image/upload-attachments/.
// URLs are positionally aligned with the submitted files.
type AttachmentUploadResponse struct {
	URLs []string `json:"urls"`
}
