package sessions

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"weav/internal/api"
	"weav/internal/logging"
	"weav/internal/services"
)

// Backend is the session API the store drives.
type Backend interface {
	ListSessions(ctx context.Context) ([]api.Session, error)
	GetSession(ctx context.Context, id int64) (*api.Session, error)
	CreateSession(ctx context.Context, kind api.SessionKind, title string) (*api.Session, error)
	PatchSession(ctx context.Context, id int64, title string) (*api.Session, error)
	DeleteSession(ctx context.Context, id int64) error
}

// Marker persists which session to restore on the next run.
type Marker interface {
	LastSessionID(ctx context.Context) (int64, bool, error)
	SetLastSessionID(ctx context.Context, id int64) error
	ClearLastSessionID(ctx context.Context) error
}

// Option configures a Store.
type Option func(*Store)

// WithMarker enables last-session persistence.
func WithMarker(marker Marker) Option {
	return func(s *Store) { s.marker = marker }
}

// WithLogger sets the store logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logging.NewComponentLogger(logger, "sessions") }
}

// OnDelete registers a hook run after a session is deleted on the server,
// used to release per-session client state.
func OnDelete(fn func(ctx context.Context, id int64)) Option {
	return func(s *Store) { s.onDelete = fn }
}

// Store holds the session list and the current session. Both are only ever
// replaced with values returned by the server; the most recent completed
// fetch wins.
type Store struct {
	backend  Backend
	marker   Marker
	logger   *slog.Logger
	onDelete func(ctx context.Context, id int64)

	mu       sync.RWMutex
	sessions []api.Session
	current  *api.Session

	restore sync.Once
}

// New constructs a Store.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		logger:  logging.NewComponentLogger(nil, "sessions"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init loads the session list and, once per store, restores the last
// selected session. A marker that no longer resolves is cleared silently.
func (s *Store) Init(ctx context.Context) error {
	_, err := s.List(ctx)
	s.restore.Do(func() { s.restoreLast(ctx) })
	return err
}

func (s *Store) restoreLast(ctx context.Context) {
	if s.marker == nil {
		return
	}
	id, ok, err := s.marker.LastSessionID(ctx)
	if err != nil {
		logging.WarnWithContext(s.logger, "last session marker unreadable", "marker_read_failed", logging.Error(err))
		return
	}
	if !ok {
		return
	}
	session, err := s.backend.GetSession(ctx, id)
	if err != nil {
		s.logger.Debug("last session not restored", logging.Int64(logging.FieldSessionID, id), logging.Error(err))
		s.clearMarker(ctx)
		return
	}
	s.mu.Lock()
	s.current = session
	s.replaceLocked(session)
	s.mu.Unlock()
	s.logger.Info("restored session", logging.Int64(logging.FieldSessionID, id))
}

// Sessions returns the cached session list.
func (s *Store) Sessions() []api.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.sessions)
}

// Current returns a copy of the current session, or nil.
func (s *Store) Current() *api.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	session := *s.current
	return &session
}

// CurrentID returns the id of the current session.
func (s *Store) CurrentID() (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return 0, false
	}
	return s.current.ID, true
}

// List fetches the session summaries and replaces the cached list.
func (s *Store) List(ctx context.Context) ([]api.Session, error) {
	list, err := s.backend.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.sessions = slices.Clone(list)
	s.mu.Unlock()
	return list, nil
}

// Get fetches one full session without touching the store.
func (s *Store) Get(ctx context.Context, id int64) (*api.Session, error) {
	return s.backend.GetSession(ctx, id)
}

// Create makes a new session, prepends it to the list and selects it.
func (s *Store) Create(ctx context.Context, kind api.SessionKind, title string) (*api.Session, error) {
	session, err := s.backend.CreateSession(ctx, kind, strings.TrimSpace(title))
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.sessions = append([]api.Session{*session}, s.sessions...)
	s.current = session
	s.mu.Unlock()
	s.setMarker(ctx, session.ID)
	s.logger.Info("session created",
		logging.Int64(logging.FieldSessionID, session.ID),
		logging.String("kind", string(session.Kind)),
	)
	return s.Current(), nil
}

// Select makes the session with the given id current. A nil id clears the
// selection and forgets the restoration marker.
func (s *Store) Select(ctx context.Context, id *int64) (*api.Session, error) {
	if id == nil {
		s.mu.Lock()
		s.current = nil
		s.mu.Unlock()
		s.clearMarker(ctx)
		return nil, nil
	}
	session, err := s.backend.GetSession(ctx, *id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.current = session
	s.replaceLocked(session)
	s.mu.Unlock()
	s.setMarker(ctx, session.ID)
	return s.Current(), nil
}

// Patch renames a session and updates the list and current slot.
func (s *Store) Patch(ctx context.Context, id int64, title string) (*api.Session, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, services.Wrap(services.ErrValidation, "sessions", "rename", "title is required", nil)
	}
	session, err := s.backend.PatchSession(ctx, id, title)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.replaceLocked(session)
	if s.current != nil && s.current.ID == id {
		// PATCH may return a summary; keep the loaded history.
		updated := *s.current
		updated.Title = session.Title
		updated.UpdatedAt = session.UpdatedAt
		s.current = &updated
	}
	s.mu.Unlock()
	return session, nil
}

// Delete removes a session on the server, then from the list, the current
// slot and the restoration marker.
func (s *Store) Delete(ctx context.Context, id int64) error {
	if err := s.backend.DeleteSession(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	s.sessions = slices.DeleteFunc(s.sessions, func(item api.Session) bool { return item.ID == id })
	if s.current != nil && s.current.ID == id {
		s.current = nil
	}
	s.mu.Unlock()

	if s.marker != nil {
		if last, ok, err := s.marker.LastSessionID(ctx); err == nil && ok && last == id {
			s.clearMarker(ctx)
		}
	}
	if s.onDelete != nil {
		s.onDelete(ctx, id)
	}
	s.logger.Info("session deleted", logging.Int64(logging.FieldSessionID, id))
	return nil
}

// RefreshCurrent re-fetches the current session.
func (s *Store) RefreshCurrent(ctx context.Context) bool {
	id, ok := s.CurrentID()
	if !ok {
		return false
	}
	return s.RefreshSession(ctx, id)
}

// RefreshSession re-fetches a session and merges it into the list. It
// returns true when id is the current session at the moment the fetch
// completes, in which case the current slot is replaced too. Fetch errors
// are logged and reported as false.
func (s *Store) RefreshSession(ctx context.Context, id int64) bool {
	session, err := s.backend.GetSession(ctx, id)
	if err != nil {
		logging.WarnWithContext(
			logging.WithContext(services.WithSessionID(ctx, id), s.logger),
			"session refresh failed", "session_refresh_failed",
			logging.Error(err),
		)
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceLocked(session)
	if s.current == nil || s.current.ID != id {
		return false
	}
	s.current = session
	return true
}

func (s *Store) replaceLocked(session *api.Session) {
	for i := range s.sessions {
		if s.sessions[i].ID == session.ID {
			s.sessions[i] = *session
			return
		}
	}
}

func (s *Store) setMarker(ctx context.Context, id int64) {
	if s.marker == nil {
		return
	}
	if err := s.marker.SetLastSessionID(ctx, id); err != nil {
		logging.WarnWithContext(s.logger, "last session marker not saved", "marker_write_failed", logging.Error(err))
	}
}

func (s *Store) clearMarker(ctx context.Context) {
	if s.marker == nil {
		return
	}
	if err := s.marker.ClearLastSessionID(ctx); err != nil {
		logging.WarnWithContext(s.logger, "last session marker not cleared", "marker_write_failed", logging.Error(err))
	}
}
