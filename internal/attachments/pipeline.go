package attachments

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"weav/internal/api"
	"weav/internal/backend"
	"weav/internal/logging"
	"weav/internal/prefs"
	"weav/internal/services"
	"weav/internal/toast"
)

// Uploader is the part of the backend client the pipeline needs.
type Uploader interface {
	UploadReference(ctx context.Context, file backend.File) (string, error)
	UploadAttachments(ctx context.Context, files []backend.File) ([]string, error)
}

// Pipeline uploads reference images and attachments and keeps the
// per-session attachment list in prefs current.
type Pipeline struct {
	uploader Uploader
	prefs    *prefs.Store
	notifier toast.Notifier
	previews *Previews
	limits   Limits
	logger   *slog.Logger

	mu        sync.Mutex
	uploading map[int64]bool
}

// PipelineOption customizes a Pipeline.
type PipelineOption func(*Pipeline)

// WithLimits overrides the client-side file checks.
func WithLimits(limits Limits) PipelineOption {
	return func(p *Pipeline) { p.limits = limits }
}

// WithPreviews shares a preview registry with other components.
func WithPreviews(previews *Previews) PipelineOption {
	return func(p *Pipeline) {
		if previews != nil {
			p.previews = previews
		}
	}
}

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) { p.logger = logging.NewComponentLogger(logger, "attachments") }
}

// NewPipeline wires a pipeline. A nil notifier discards toasts.
func NewPipeline(uploader Uploader, store *prefs.Store, notifier toast.Notifier, opts ...PipelineOption) *Pipeline {
	if notifier == nil {
		notifier = toast.Noop{}
	}
	p := &Pipeline{
		uploader:  uploader,
		prefs:     store,
		notifier:  notifier,
		previews:  NewPreviews(),
		limits:    DefaultLimits(),
		logger:    logging.NewComponentLogger(nil, "attachments"),
		uploading: make(map[int64]bool),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Previews exposes the registry backing attachment preview handles.
func (p *Pipeline) Previews() *Previews {
	return p.previews
}

// Policy returns the attachment policy for session under its current image
// model and reference state.
func (p *Pipeline) Policy(session *api.Session, regenerate bool) Policy {
	return PolicyFor(session.Kind, p.prefs.ImageModel(session.ID), p.HasReference(session), regenerate)
}

// HasReference reports whether session has a stored or ad hoc reference.
func (p *Pipeline) HasReference(session *api.Session) bool {
	if len(session.ReferenceImageURLs) > 0 {
		return true
	}
	return !p.prefs.Reference(session.ID).IsZero()
}

// AddAttachments queues files for session. The selection is cut down to what
// the policy still allows, previews are inserted as uploading, and the files
// go up in one batch. It returns how many files were accepted.
func (p *Pipeline) AddAttachments(ctx context.Context, session *api.Session, paths []string) (int, error) {
	if session == nil || len(paths) == 0 {
		return 0, nil
	}
	policy := p.Policy(session, false)
	remaining := policy.MaxCount - len(p.prefs.Attachments(session.ID))
	if remaining <= 0 {
		message := blockMessage(policy)
		p.notifier.Show(message)
		return 0, services.Wrap(services.ErrValidation, "attachments", "add", message, nil)
	}
	if len(paths) > remaining {
		if policy.BlockMessage != "" {
			p.notifier.Show(policy.BlockMessage)
		} else {
			p.notifier.Show(fmt.Sprintf("Only %d more image attachment(s) can be added.", remaining))
		}
		paths = paths[:remaining]
	}

	files := make([]backend.File, 0, len(paths))
	for _, path := range paths {
		file, err := LoadFile(path)
		if err != nil {
			p.notifier.Show(err.Error())
			return 0, services.Wrap(services.ErrValidation, "attachments", "add", "unreadable file", err)
		}
		if problem := p.limits.problem(file); problem != "" {
			p.notifier.Show(problem)
			return 0, services.Wrap(services.ErrValidation, "attachments", "add", problem, nil)
		}
		files = append(files, file)
	}

	handles := make([]string, len(paths))
	items := make([]prefs.Attachment, len(paths))
	for i, path := range paths {
		handles[i] = p.previews.Register(path)
		items[i] = prefs.Attachment{PreviewURL: handles[i], Status: prefs.AttachmentUploading}
	}
	p.prefs.AppendAttachments(session.ID, items...)

	logger := logging.WithContext(services.WithSessionID(ctx, session.ID), p.logger)
	logger.Debug("uploading attachments", logging.Int("count", len(files)))

	urls, err := p.uploader.UploadAttachments(ctx, files)
	if err != nil {
		// The batch endpoint reports one outcome for every file.
		batch := make(map[string]bool, len(handles))
		for _, h := range handles {
			batch[h] = true
		}
		p.prefs.UpdateAttachments(session.ID, func(item *prefs.Attachment) {
			if batch[item.PreviewURL] {
				item.Status = prefs.AttachmentError
			}
		})
		logging.WarnWithContext(logger, "attachment upload failed", "attachment_upload_failed", logging.Error(err))
		p.notifier.Show("Attachment upload failed: " + backend.Message(err))
		return len(files), err
	}

	remote := make(map[string]string, len(handles))
	for i, h := range handles {
		if i < len(urls) && urls[i] != "" {
			remote[h] = urls[i]
		}
	}
	p.prefs.UpdateAttachments(session.ID, func(item *prefs.Attachment) {
		if url, ok := remote[item.PreviewURL]; ok {
			item.RemoteURL = url
			item.Status = prefs.AttachmentReady
		}
	})
	logger.Info("attachments ready", logging.Int("count", len(remote)))
	return len(files), nil
}

// RemoveAttachment drops one queued attachment and releases its preview.
func (p *Pipeline) RemoveAttachment(sessionID int64, previewURL string) bool {
	item, ok := p.prefs.RemoveAttachment(sessionID, previewURL)
	if ok {
		p.previews.Revoke(item.PreviewURL)
	}
	return ok
}

// ClearAttachments drops every queued attachment for a session.
func (p *Pipeline) ClearAttachments(sessionID int64) {
	p.revokeAll(p.prefs.ClearAttachments(sessionID))
}

// ForgetSession releases everything held for a deleted session.
func (p *Pipeline) ForgetSession(ctx context.Context, sessionID int64) {
	p.revokeAll(p.prefs.Forget(ctx, sessionID))
}

func (p *Pipeline) revokeAll(items []prefs.Attachment) {
	for _, item := range items {
		p.previews.Revoke(item.PreviewURL)
	}
}

// UploadReference uploads a reference image and makes it the session's ad
// hoc reference. Failures leave the reference unchanged.
func (p *Pipeline) UploadReference(ctx context.Context, sessionID int64, path string) (string, error) {
	file, err := LoadFile(path)
	if err != nil {
		p.notifier.Show(err.Error())
		return "", services.Wrap(services.ErrValidation, "attachments", "reference", "unreadable file", err)
	}
	if problem := p.limits.problem(file); problem != "" {
		p.notifier.Show(problem)
		return "", services.Wrap(services.ErrValidation, "attachments", "reference", problem, nil)
	}

	p.setUploading(sessionID, true)
	defer p.setUploading(sessionID, false)

	url, err := p.uploader.UploadReference(ctx, file)
	if err != nil {
		logging.WarnWithContext(
			logging.WithContext(services.WithSessionID(ctx, sessionID), p.logger),
			"reference upload failed", "reference_upload_failed", logging.Error(err),
		)
		p.notifier.Show("Reference upload failed: " + backend.Message(err))
		return "", err
	}
	p.prefs.SetReferenceURL(sessionID, url)
	p.notifier.Show("Reference image uploaded")
	return url, nil
}

// ReferenceUploading reports whether a reference upload is in flight.
func (p *Pipeline) ReferenceUploading(sessionID int64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.uploading[sessionID]
}

func (p *Pipeline) setUploading(sessionID int64, busy bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if busy {
		p.uploading[sessionID] = true
		return
	}
	delete(p.uploading, sessionID)
}
