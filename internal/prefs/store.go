package prefs

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"dario.cat/mergo"

	"weav/internal/api"
	"weav/internal/catalog"
	"weav/internal/localstate"
	"weav/internal/logging"
)

// InputMode selects what a chat session's composer submits.
type InputMode string

const (
	InputText  InputMode = "text"
	InputImage InputMode = "image"
)

// AttachmentStatus tracks one optimistic attachment upload.
type AttachmentStatus string

const (
	AttachmentUploading AttachmentStatus = "uploading"
	AttachmentReady     AttachmentStatus = "ready"
	AttachmentError     AttachmentStatus = "error"
)

// Attachment is an image queued for the next generation. PreviewURL is the
// local handle; RemoteURL is set once the upload is confirmed.
type Attachment struct {
	PreviewURL string
	RemoteURL  string
	Status     AttachmentStatus
}

// Reference is an ad hoc reference image. URL and ID are mutually exclusive.
type Reference struct {
	URL string
	ID  *int64
}

// IsZero reports whether no reference is set.
func (r Reference) IsZero() bool {
	return r.URL == "" && r.ID == nil
}

// ModelStore persists per-session model selections.
type ModelStore interface {
	SessionModels(ctx context.Context) (map[int64]localstate.SessionModels, error)
	SaveSessionModels(ctx context.Context, models map[int64]localstate.SessionModels) error
}

type entry struct {
	chatModel    string
	imageModel   string
	imageOptions api.ImageOptions
	inputMode    InputMode
	reference    Reference
	attachments  []Attachment
	documents    []api.DocumentItem
	docsLoaded   bool
}

// Option configures a Store.
type Option func(*Store)

// WithDefaults overrides the models returned for sessions without a stored
// selection. Blank values keep the built-in defaults.
func WithDefaults(chatModel, imageModel string) Option {
	return func(s *Store) {
		if v := strings.TrimSpace(chatModel); v != "" {
			s.defaultChat = v
		}
		if v := strings.TrimSpace(imageModel); v != "" {
			s.defaultImage = v
		}
	}
}

// WithModelStore enables write-through persistence of model selections.
func WithModelStore(models ModelStore) Option {
	return func(s *Store) {
		s.models = models
	}
}

// WithLogger sets the logger used for persistence warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logging.NewComponentLogger(logger, "prefs")
	}
}

// Store holds client-only preferences keyed by session id. Entries are
// created on first write and removed only by Forget.
type Store struct {
	mu           sync.RWMutex
	entries      map[int64]*entry
	defaultChat  string
	defaultImage string
	models       ModelStore
	logger       *slog.Logger
}

// New constructs an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		entries:      make(map[int64]*entry),
		defaultChat:  catalog.DefaultChatModel,
		defaultImage: catalog.DefaultImageModel,
		logger:       logging.NewComponentLogger(nil, "prefs"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load restores persisted model selections. Failures are logged and leave
// the store empty.
func (s *Store) Load(ctx context.Context) {
	if s.models == nil {
		return
	}
	saved, err := s.models.SessionModels(ctx)
	if err != nil {
		logging.WarnWithContext(s.logger, "session models unavailable", "prefs_load_failed", logging.Error(err))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, selection := range saved {
		e := s.entryLocked(id)
		e.chatModel = selection.Chat
		e.imageModel = selection.Image
	}
}

func (s *Store) entryLocked(sessionID int64) *entry {
	e, ok := s.entries[sessionID]
	if !ok {
		e = &entry{}
		s.entries[sessionID] = e
	}
	return e
}

func (s *Store) read(sessionID int64, fn func(e *entry)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[sessionID]
	if !ok {
		e = &entry{}
	}
	fn(e)
}

func (s *Store) write(sessionID int64, fn func(e *entry)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.entryLocked(sessionID))
}

// ChatModel returns the selected chat model for a session.
func (s *Store) ChatModel(sessionID int64) string {
	var model string
	s.read(sessionID, func(e *entry) { model = e.chatModel })
	if model == "" {
		return s.defaultChat
	}
	return model
}

// SetChatModel records the chat model and persists the selection.
func (s *Store) SetChatModel(ctx context.Context, sessionID int64, model string) {
	s.write(sessionID, func(e *entry) { e.chatModel = strings.TrimSpace(model) })
	s.persist(ctx)
}

// ImageModel returns the selected image model for a session.
func (s *Store) ImageModel(sessionID int64) string {
	var model string
	s.read(sessionID, func(e *entry) { model = e.imageModel })
	if model == "" {
		return s.defaultImage
	}
	return model
}

// SetImageModel records the image model and persists the selection.
func (s *Store) SetImageModel(ctx context.Context, sessionID int64, model string) {
	s.write(sessionID, func(e *entry) { e.imageModel = strings.TrimSpace(model) })
	s.persist(ctx)
}

// ImageOptions returns the session's settings layered over the defaults of
// its selected image model.
func (s *Store) ImageOptions(sessionID int64) api.ImageOptions {
	return s.MergedImageOptions(sessionID, api.ImageOptions{})
}

// MergedImageOptions layers model defaults, then session settings, then the
// per-call overrides for the session's selected image model.
func (s *Store) MergedImageOptions(sessionID int64, call api.ImageOptions) api.ImageOptions {
	return s.ImageOptionsFor(sessionID, s.ImageModel(sessionID), call)
}

// ImageOptionsFor merges like MergedImageOptions but for modelID. Stored
// settings the model does not accept are skipped; call overrides are taken
// as given.
func (s *Store) ImageOptionsFor(sessionID int64, modelID string, call api.ImageOptions) api.ImageOptions {
	var session api.ImageOptions
	s.read(sessionID, func(e *entry) { session = e.imageOptions.Clone() })
	merged := catalog.DefaultImageOptions(modelID)
	overlay(&merged, catalog.SupportedImageOptions(modelID, session))
	overlay(&merged, call.Clone())
	return merged
}

// SetImageOptions merges the set fields of partial into the stored settings.
func (s *Store) SetImageOptions(sessionID int64, partial api.ImageOptions) {
	s.write(sessionID, func(e *entry) { overlay(&e.imageOptions, partial.Clone()) })
}

// ResetImageOptions drops the session's settings so model defaults apply.
func (s *Store) ResetImageOptions(sessionID int64) {
	s.write(sessionID, func(e *entry) { e.imageOptions = api.ImageOptions{} })
}

func overlay(dst *api.ImageOptions, src api.ImageOptions) {
	// Both operands are the same struct type, so Merge cannot fail.
	_ = mergo.Merge(dst, src, mergo.WithOverride, mergo.WithoutDereference)
}

// InputMode returns how a chat session's composer submits.
func (s *Store) InputMode(sessionID int64) InputMode {
	mode := InputText
	s.read(sessionID, func(e *entry) {
		if e.inputMode != "" {
			mode = e.inputMode
		}
	})
	return mode
}

// SetInputMode switches a chat session between text and image prompts.
func (s *Store) SetInputMode(sessionID int64, mode InputMode) {
	s.write(sessionID, func(e *entry) { e.inputMode = mode })
}

// Reference returns the ad hoc reference for a session.
func (s *Store) Reference(sessionID int64) Reference {
	var ref Reference
	s.read(sessionID, func(e *entry) { ref = cloneReference(e.reference) })
	return ref
}

// SetReferenceURL sets a reference by URL, clearing any reference id.
func (s *Store) SetReferenceURL(sessionID int64, url string) {
	s.write(sessionID, func(e *entry) {
		e.reference = Reference{URL: strings.TrimSpace(url)}
	})
}

// SetReferenceID points at a previously generated image, clearing any
// reference URL.
func (s *Store) SetReferenceID(sessionID int64, imageID int64) {
	s.write(sessionID, func(e *entry) {
		e.reference = Reference{ID: &imageID}
	})
}

// ClearReference removes the ad hoc reference.
func (s *Store) ClearReference(sessionID int64) {
	s.write(sessionID, func(e *entry) { e.reference = Reference{} })
}

func cloneReference(ref Reference) Reference {
	if ref.ID != nil {
		id := *ref.ID
		ref.ID = &id
	}
	return ref
}

// Attachments returns a copy of the session's attachment list.
func (s *Store) Attachments(sessionID int64) []Attachment {
	var out []Attachment
	s.read(sessionID, func(e *entry) { out = slices.Clone(e.attachments) })
	return out
}

// AppendAttachments adds items to the end of the list.
func (s *Store) AppendAttachments(sessionID int64, items ...Attachment) {
	s.write(sessionID, func(e *entry) { e.attachments = append(e.attachments, items...) })
}

// UpdateAttachments applies fn to each item in place.
func (s *Store) UpdateAttachments(sessionID int64, fn func(item *Attachment)) {
	s.write(sessionID, func(e *entry) {
		for i := range e.attachments {
			fn(&e.attachments[i])
		}
	})
}

// RemoveAttachment drops the item with the given preview handle.
func (s *Store) RemoveAttachment(sessionID int64, previewURL string) (Attachment, bool) {
	var removed Attachment
	var found bool
	s.write(sessionID, func(e *entry) {
		idx := slices.IndexFunc(e.attachments, func(a Attachment) bool { return a.PreviewURL == previewURL })
		if idx < 0 {
			return
		}
		removed, found = e.attachments[idx], true
		e.attachments = slices.Delete(e.attachments, idx, idx+1)
	})
	return removed, found
}

// ClearAttachments empties the list and returns what was removed.
func (s *Store) ClearAttachments(sessionID int64) []Attachment {
	var removed []Attachment
	s.write(sessionID, func(e *entry) {
		removed = e.attachments
		e.attachments = nil
	})
	return removed
}

// Documents returns the cached document list. ok is false until the cache
// has been filled once.
func (s *Store) Documents(sessionID int64) ([]api.DocumentItem, bool) {
	var docs []api.DocumentItem
	var ok bool
	s.read(sessionID, func(e *entry) {
		docs, ok = slices.Clone(e.documents), e.docsLoaded
	})
	return docs, ok
}

// SetDocuments replaces the cached document list.
func (s *Store) SetDocuments(sessionID int64, docs []api.DocumentItem) {
	s.write(sessionID, func(e *entry) {
		e.documents = slices.Clone(docs)
		e.docsLoaded = true
	})
}

// ForgetDocument evicts one document from the cache.
func (s *Store) ForgetDocument(sessionID, documentID int64) {
	s.write(sessionID, func(e *entry) {
		e.documents = slices.DeleteFunc(e.documents, func(d api.DocumentItem) bool { return d.ID == documentID })
	})
}

// Forget drops every preference for a deleted session and returns the
// attachments that were queued so their previews can be released.
func (s *Store) Forget(ctx context.Context, sessionID int64) []Attachment {
	s.mu.Lock()
	e, ok := s.entries[sessionID]
	delete(s.entries, sessionID)
	s.mu.Unlock()
	if !ok {
		return nil
	}
	if e.chatModel != "" || e.imageModel != "" {
		s.persist(ctx)
	}
	return e.attachments
}

func (s *Store) persist(ctx context.Context) {
	if s.models == nil {
		return
	}
	s.mu.RLock()
	snapshot := make(map[int64]localstate.SessionModels, len(s.entries))
	for id, e := range s.entries {
		if e.chatModel == "" && e.imageModel == "" {
			continue
		}
		snapshot[id] = localstate.SessionModels{Chat: e.chatModel, Image: e.imageModel}
	}
	s.mu.RUnlock()

	if err := s.models.SaveSessionModels(ctx, snapshot); err != nil {
		logging.WarnWithContext(s.logger, "session models not saved", "prefs_save_failed", logging.Error(err))
	}
}
