package backend

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"weav/internal/services"
)

const (
	serverErrorMessage = "server error: the backend could not handle the request, retry once it is healthy"
	maxErrorBody       = 64 * 1024
)

// APIError is returned for any non-2xx response. Message follows the backend
// convention: the "detail" field, else "error", else the HTTP status text.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Unwrap classifies the failure so callers can use errors.Is with the
// services markers.
func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusNotFound:
		return services.ErrNotFound
	case e.StatusCode >= 400 && e.StatusCode < 500:
		return services.ErrValidation
	default:
		return services.ErrTransient
	}
}

// Message extracts the user-facing text of err. API errors yield the server
// message, other errors their full text.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	return errors.Is(err, services.ErrNotFound)
}

func decodeAPIError(resp *http.Response) error {
	statusText := http.StatusText(resp.StatusCode)
	if statusText == "" {
		statusText = resp.Status
	}
	apiErr := &APIError{StatusCode: resp.StatusCode, Message: statusText}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(strings.TrimSpace(string(raw))) == 0 {
		if resp.StatusCode >= 500 {
			apiErr.Message = serverErrorMessage
		}
		return apiErr
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw, &body); err != nil {
		if resp.StatusCode >= 500 {
			apiErr.Message = serverErrorMessage
		}
		return apiErr
	}
	for _, key := range []string{"detail", "error"} {
		if msg := stringField(body, key); msg != "" {
			apiErr.Message = msg
			return apiErr
		}
	}
	return apiErr
}

func stringField(body map[string]json.RawMessage, key string) string {
	raw, ok := body[key]
	if !ok {
		return ""
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return ""
	}
	return strings.TrimSpace(value)
}
