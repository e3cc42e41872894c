package attachments

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

const previewScheme = "preview://"

// Previews hands out opaque preview handles for local files. A handle stays
// resolvable until it is revoked.
type Previews struct {
	mu      sync.Mutex
	handles map[string]string
}

// NewPreviews returns an empty registry.
func NewPreviews() *Previews {
	return &Previews{handles: make(map[string]string)}
}

// Register returns a new handle for path.
func (p *Previews) Register(path string) string {
	handle := previewScheme + uuid.NewString()
	p.mu.Lock()
	p.handles[handle] = path
	p.mu.Unlock()
	return handle
}

// Resolve returns the local path behind a handle.
func (p *Previews) Resolve(handle string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	path, ok := p.handles[handle]
	return path, ok
}

// Revoke releases a handle. Unknown handles are ignored.
func (p *Previews) Revoke(handle string) {
	if !strings.HasPrefix(handle, previewScheme) {
		return
	}
	p.mu.Lock()
	delete(p.handles, handle)
	p.mu.Unlock()
}

// Len reports how many handles are live.
func (p *Previews) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.handles)
}
