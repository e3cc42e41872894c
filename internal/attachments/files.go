package attachments

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"weav/internal/backend"
	"weav/internal/services"
)

// Limits are the client-side checks applied before a file is uploaded.
type Limits struct {
	MaxBytes     int64
	AllowedTypes []string
}

// DefaultLimits mirrors the backend's image upload rules.
func DefaultLimits() Limits {
	return Limits{
		MaxBytes:     10 * 1024 * 1024,
		AllowedTypes: []string{"image/jpeg", "image/png", "image/webp"},
	}
}

// LoadFile reads path and detects its content type from the extension,
// falling back to content sniffing.
func LoadFile(path string) (backend.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return backend.File{}, fmt.Errorf("read %s: %w", path, err)
	}
	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	if mediaType, _, parseErr := mime.ParseMediaType(contentType); parseErr == nil {
		contentType = mediaType
	}
	return backend.File{Name: filepath.Base(path), ContentType: contentType, Data: data}, nil
}

// Check validates one file against the limits.
func (l Limits) Check(file backend.File) error {
	if problem := l.problem(file); problem != "" {
		return services.Wrap(services.ErrValidation, "attachments", "validate", problem, nil)
	}
	return nil
}

func (l Limits) problem(file backend.File) string {
	if len(l.AllowedTypes) > 0 && !slices.Contains(l.AllowedTypes, strings.ToLower(file.ContentType)) {
		return fmt.Sprintf("%s: only JPEG, PNG or WEBP images can be uploaded", file.Name)
	}
	if l.MaxBytes > 0 && int64(len(file.Data)) > l.MaxBytes {
		return fmt.Sprintf("%s: images must be %d MB or smaller", file.Name, l.MaxBytes/(1024*1024))
	}
	return ""
}
