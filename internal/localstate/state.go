package localstate

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"weav/internal/logging"
)

const (
	lastSessionKey   = "weav:lastSessionId"
	sessionModelsKey = "weav-session-models"
)

// SessionModels is the persisted model selection for one session. Empty
// fields mean "use the default".
type SessionModels struct {
	Chat  string `json:"chat,omitempty"`
	Image string `json:"image,omitempty"`
}

// LastSessionID returns the id of the session selected most recently. A
// missing or corrupt value reports ok=false.
func (s *Store) LastSessionID(ctx context.Context) (int64, bool, error) {
	raw, ok, err := s.get(ctx, lastSessionKey)
	if err != nil || !ok {
		return 0, false, err
	}
	id, parseErr := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if parseErr != nil || id <= 0 {
		logging.WarnWithContext(s.logger, "ignoring corrupt last session marker", "state_corrupt",
			logging.String("key", lastSessionKey),
			logging.String("value", raw),
		)
		return 0, false, nil
	}
	return id, true, nil
}

// SetLastSessionID records id as the session to restore on the next run.
func (s *Store) SetLastSessionID(ctx context.Context, id int64) error {
	return s.put(ctx, lastSessionKey, strconv.FormatInt(id, 10))
}

// ClearLastSessionID forgets the restoration marker.
func (s *Store) ClearLastSessionID(ctx context.Context) error {
	return s.remove(ctx, lastSessionKey)
}

// SessionModels loads every persisted per-session model selection. A
// corrupt blob is treated as empty.
func (s *Store) SessionModels(ctx context.Context) (map[int64]SessionModels, error) {
	out := make(map[int64]SessionModels)
	raw, ok, err := s.get(ctx, sessionModelsKey)
	if err != nil || !ok {
		return out, err
	}
	var decoded map[string]SessionModels
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		logging.WarnWithContext(s.logger, "ignoring corrupt session model map", "state_corrupt",
			logging.String("key", sessionModelsKey),
			logging.Error(err),
		)
		return out, nil
	}
	for key, models := range decoded {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		out[id] = models
	}
	return out, nil
}

// SaveSessionModels replaces the persisted model selections.
func (s *Store) SaveSessionModels(ctx context.Context, models map[int64]SessionModels) error {
	encoded := make(map[string]SessionModels, len(models))
	for id, selection := range models {
		if selection.Chat == "" && selection.Image == "" {
			continue
		}
		encoded[strconv.FormatInt(id, 10)] = selection
	}
	data, err := json.Marshal(encoded)
	if err != nil {
		return err
	}
	return s.put(ctx, sessionModelsKey, string(data))
}
