package api

import (
	"strings"
	"time"
)

// SessionKind identifies what a session is used for.
type SessionKind string

const (
	KindChat   SessionKind = "chat"
	KindImage  SessionKind = "image"
	KindStudio SessionKind = "studio"
)

// ParseSessionKind normalizes user input into a known kind.
func ParseSessionKind(value string) (SessionKind, bool) {
	switch kind := SessionKind(strings.ToLower(strings.TrimSpace(value))); kind {
	case KindChat, KindImage, KindStudio:
		return kind, true
	default:
		return "", false
	}
}

// Role is the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Session is a persisted conversation or workspace. Clients never mutate a
// Session field by field; every update replaces the whole value with the one
// returned by the server.
type Session struct {
	ID                 int64         `json:"id"`
	Kind               SessionKind   `json:"kind"`
	Title              string        `json:"title"`
	CreatedAt          string        `json:"created_at"`
	UpdatedAt          string        `json:"updated_at"`
	Messages           []Message     `json:"messages,omitempty"`
	ImageRecords       []ImageRecord `json:"image_records,omitempty"`
	ReferenceImageURLs []string      `json:"reference_image_urls,omitempty"`
}

// LastMessage returns the newest message, if any.
func (s *Session) LastMessage() (Message, bool) {
	if s == nil || len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// CanRegenerateChat reports whether the final exchange is a user prompt
// followed by an assistant reply, which is what the backend requires before it
// re-runs the last turn.
func (s *Session) CanRegenerateChat() bool {
	if s == nil || s.Kind != KindChat || len(s.Messages) < 2 {
		return false
	}
	n := len(s.Messages)
	return s.Messages[n-2].Role == RoleUser && s.Messages[n-1].Role == RoleAssistant
}

// LastImageRecord returns the most recent generated image, if any.
func (s *Session) LastImageRecord() (ImageRecord, bool) {
	if s == nil || len(s.ImageRecords) == 0 {
		return ImageRecord{}, false
	}
	return s.ImageRecords[len(s.ImageRecords)-1], true
}

// Message is a single chat turn. Messages are immutable once created.
type Message struct {
	ID        int64      `json:"id"`
	Role      Role       `json:"role"`
	Content   string     `json:"content"`
	Citations []Citation `json:"citations,omitempty"`
	CreatedAt string     `json:"created_at"`
}

// Citation points at the part of an uploaded document an answer relied on.
type Citation struct {
	DocumentID   int64     `json:"document_id"`
	DocumentName string    `json:"document_name"`
	Page         int       `json:"page"`
	BBox         []float64 `json:"bbox,omitempty"`
	BBoxNorm     []float64 `json:"bbox_norm,omitempty"`
	PageWidth    float64   `json:"page_width,omitempty"`
	PageHeight   float64   `json:"page_height,omitempty"`
	Snippet      string    `json:"snippet,omitempty"`
}

// ImageRecord is one generated image.
type ImageRecord struct {
	ID        int64          `json:"id"`
	Prompt    string         `json:"prompt"`
	ImageURL  string         `json:"image_url"`
	Model     string         `json:"model"`
	Metadata  *ImageMetadata `json:"metadata,omitempty"`
	CreatedAt string         `json:"created_at"`
}

// ImageMetadata records which inputs produced an image.
type ImageMetadata struct {
	InputReferenceURLs  []string `json:"input_reference_urls,omitempty"`
	InputAttachmentURLs []string `json:"input_attachment_urls,omitempty"`
	InputImageURLs      []string `json:"input_image_urls,omitempty"`
}

// DocumentStatus tracks server-side document ingestion.
type DocumentStatus string

const (
	DocumentPending    DocumentStatus = "pending"
	DocumentProcessing DocumentStatus = "processing"
	DocumentCompleted  DocumentStatus = "completed"
	DocumentFailed     DocumentStatus = "failed"
)

// DocumentItem is a file uploaded to a chat session for retrieval.
type DocumentItem struct {
	ID           int64          `json:"id"`
	OriginalName string         `json:"original_name"`
	Status       DocumentStatus `json:"status"`
	FileURL      string         `json:"file_url"`
	ErrorMessage string         `json:"error_message,omitempty"`
	CreatedAt    string         `json:"created_at"`
	UpdatedAt    string         `json:"updated_at"`
}

// UploadedDocument is the immediate response to a document upload.
type UploadedDocument struct {
	DocumentID   int64          `json:"document_id"`
	OriginalName string         `json:"original_name"`
	Status       DocumentStatus `json:"status"`
	FileURL      string         `json:"file_url"`
}

// JobState is the lifecycle of a backend task.
type JobState string

const (
	JobPending JobState = "pending"
	JobRunning JobState = "running"
	JobSuccess JobState = "success"
	JobFailure JobState = "failure"
)

// Terminal reports whether the job will not change state again.
func (s JobState) Terminal() bool {
	return s == JobSuccess || s == JobFailure
}

// JobStatus is the payload returned when polling a task.
type JobStatus struct {
	TaskID  string       `json:"task_id"`
	JobID   int64        `json:"job_id"`
	Status  JobState     `json:"status"`
	Message *Message     `json:"message,omitempty"`
	Image   *ImageRecord `json:"image,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// ParseTime parses a server timestamp. Zero is returned for empty or
// malformed input.
func ParseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", time.DateTime} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts
		}
	}
	return time.Time{}
}
