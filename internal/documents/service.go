package documents

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"weav/internal/api"
	"weav/internal/backend"
	"weav/internal/logging"
	"weav/internal/prefs"
	"weav/internal/services"
	"weav/internal/toast"
)

// Backend is the document API of the backend client.
type Backend interface {
	ListDocuments(ctx context.Context, sessionID int64) ([]api.DocumentItem, error)
	UploadDocument(ctx context.Context, sessionID int64, file backend.File) (api.UploadedDocument, error)
	DeleteDocument(ctx context.Context, sessionID, documentID int64) error
}

// Limits are the client-side checks for document uploads.
type Limits struct {
	MaxBytes     int64
	AllowedTypes []string
}

// Service manages the documents attached to chat sessions and keeps the
// per-session cache in prefs current.
type Service struct {
	backend  Backend
	prefs    *prefs.Store
	notifier toast.Notifier
	limits   Limits
	logger   *slog.Logger
}

// NewService wires a document service.
func NewService(client Backend, store *prefs.Store, notifier toast.Notifier, limits Limits, logger *slog.Logger) *Service {
	if notifier == nil {
		notifier = toast.Noop{}
	}
	return &Service{
		backend:  client,
		prefs:    store,
		notifier: notifier,
		limits:   limits,
		logger:   logging.NewComponentLogger(logger, "documents"),
	}
}

// List fetches the documents of a session and refreshes the cache.
func (s *Service) List(ctx context.Context, sessionID int64) ([]api.DocumentItem, error) {
	docs, err := s.backend.ListDocuments(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	s.prefs.SetDocuments(sessionID, docs)
	return docs, nil
}

// Cached returns the last fetched list without a network call.
func (s *Service) Cached(sessionID int64) ([]api.DocumentItem, bool) {
	return s.prefs.Documents(sessionID)
}

// Upload sends a file for ingestion and refreshes the cache.
func (s *Service) Upload(ctx context.Context, sessionID int64, path string) (api.UploadedDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return api.UploadedDocument{}, services.Wrap(services.ErrValidation, "documents", "upload", "unreadable file", err)
	}
	file := backend.File{
		Name:        filepath.Base(path),
		ContentType: mime.TypeByExtension(strings.ToLower(filepath.Ext(path))),
		Data:        data,
	}
	if mediaType, _, parseErr := mime.ParseMediaType(file.ContentType); parseErr == nil {
		file.ContentType = mediaType
	}
	if len(s.limits.AllowedTypes) > 0 && !slices.Contains(s.limits.AllowedTypes, file.ContentType) {
		message := fmt.Sprintf("%s: only PDF documents can be uploaded", file.Name)
		s.notifier.Show(message)
		return api.UploadedDocument{}, services.Wrap(services.ErrValidation, "documents", "upload", message, nil)
	}
	if s.limits.MaxBytes > 0 && int64(len(data)) > s.limits.MaxBytes {
		message := fmt.Sprintf("%s: documents must be %d MB or smaller", file.Name, s.limits.MaxBytes/(1024*1024))
		s.notifier.Show(message)
		return api.UploadedDocument{}, services.Wrap(services.ErrValidation, "documents", "upload", message, nil)
	}

	uploaded, err := s.backend.UploadDocument(ctx, sessionID, file)
	if err != nil {
		s.notifier.Show("Document upload failed: " + backend.Message(err))
		return api.UploadedDocument{}, err
	}
	s.logger.Info("document uploaded",
		logging.Int64(logging.FieldSessionID, sessionID),
		logging.Int64("document_id", uploaded.DocumentID),
		logging.String("name", uploaded.OriginalName),
	)
	s.refresh(ctx, sessionID)
	return uploaded, nil
}

// Delete removes a document, evicts it from the cache and refreshes.
func (s *Service) Delete(ctx context.Context, sessionID, documentID int64) error {
	if err := s.backend.DeleteDocument(ctx, sessionID, documentID); err != nil {
		return err
	}
	s.prefs.ForgetDocument(sessionID, documentID)
	s.refresh(ctx, sessionID)
	return nil
}

func (s *Service) refresh(ctx context.Context, sessionID int64) {
	if _, err := s.List(ctx, sessionID); err != nil {
		logging.WarnWithContext(s.logger, "document list refresh failed", "documents_refresh_failed",
			logging.Int64(logging.FieldSessionID, sessionID),
			logging.Error(err),
		)
	}
}

// Mention returns cached documents whose name contains query, newest first.
func (s *Service) Mention(sessionID int64, query string) []api.DocumentItem {
	docs, _ := s.prefs.Documents(sessionID)
	return MatchDocuments(docs, query)
}
