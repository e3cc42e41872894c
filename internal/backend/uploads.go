package backend

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"weav/internal/api"
	"weav/internal/services"
)

// File is one upload part held in memory. Uploads are capped at a few
// megabytes so buffering is acceptable.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// UploadReference uploads a reference image and returns its remote URL.
func (c *Client) UploadReference(ctx context.Context, file File) (string, error) {
	var res api.ReferenceUploadResponse
	if err := c.upload(ctx, "/chat/image/upload-reference/", "image", []File{file}, &res); err != nil {
		return "", err
	}
	if strings.TrimSpace(res.URL) == "" {
		return "", services.Wrap(services.ErrTransient, "backend", "upload reference", "response missing url", nil)
	}
	return res.URL, nil
}

// UploadAttachments uploads files in a single batch. The returned URLs are
// positionally aligned with files.
func (c *Client) UploadAttachments(ctx context.Context, files []File) ([]string, error) {
	if len(files) == 0 {
		return nil, nil
	}
	var res api.AttachmentUploadResponse
	if err := c.upload(ctx, "/chat/image/upload-attachments/", "images", files, &res); err != nil {
		return nil, err
	}
	return res.URLs, nil
}

func (c *Client) upload(ctx context.Context, path, field string, files []File, out any) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, file := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, file.Name))
		contentType := file.ContentType
		if contentType == "" {
			contentType = http.DetectContentType(file.Data)
		}
		header.Set("Content-Type", contentType)
		part, err := writer.CreatePart(header)
		if err != nil {
			return services.Wrap(services.ErrValidation, "backend", "upload", "create part", err)
		}
		if _, err := part.Write(file.Data); err != nil {
			return services.Wrap(services.ErrValidation, "backend", "upload", "write part", err)
		}
	}
	if err := writer.Close(); err != nil {
		return services.Wrap(services.ErrValidation, "backend", "upload", "close multipart body", err)
	}
	return c.do(ctx, http.MethodPost, path, writer.FormDataContentType(), &buf, out)
}
