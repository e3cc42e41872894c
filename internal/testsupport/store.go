package testsupport

import (
	"testing"

	"weav/internal/config"
	"weav/internal/localstate"
)

// MustOpenState opens the local state database for tests and registers
// cleanup.
func MustOpenState(t testing.TB, cfg *config.Config) *localstate.Store {
	t.Helper()

	store, err := localstate.Open(cfg.StatePath(), nil)
	if err != nil {
		t.Fatalf("localstate.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
