package localstate

import (
	"fmt"

	"github.com/gofrs/flock"

	"weav/internal/services"
)

// SendLock serializes generation requests across weav processes sharing one
// state directory.
type SendLock struct {
	lock *flock.Flock
}

// NewSendLock prepares a lock backed by the file at path.
func NewSendLock(path string) *SendLock {
	return &SendLock{lock: flock.New(path)}
}

// Acquire takes the lock without blocking. ErrBusy is returned when another
// process holds it.
func (l *SendLock) Acquire() (func(), error) {
	ok, err := l.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire send lock: %w", err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrBusy, "localstate", "send lock", "another weav send is in progress", nil)
	}
	return func() {
		_ = l.lock.Unlock()
	}, nil
}

// Path returns the lock file location.
func (l *SendLock) Path() string {
	return l.lock.Path()
}
