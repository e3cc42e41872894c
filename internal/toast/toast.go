package toast

import (
	"strings"
	"sync"
	"time"
)

// DefaultDuration is how long a toast stays visible when no duration is
// configured.
const DefaultDuration = 2500 * time.Millisecond

// Notifier is the surface other components use to report transient messages.
type Notifier interface {
	Show(message string)
}

// Timer is the subset of *time.Timer the toast needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. It matches time.AfterFunc.
type AfterFunc func(d time.Duration, f func()) Timer

// Option customizes a Toast.
type Option func(*Toast)

// WithDuration sets the visible lifetime. Non-positive values keep the default.
func WithDuration(d time.Duration) Option {
	return func(t *Toast) {
		if d > 0 {
			t.duration = d
		}
	}
}

// WithAfterFunc replaces the scheduler, letting tests fire expiry by hand.
func WithAfterFunc(fn AfterFunc) Option {
	return func(t *Toast) {
		if fn != nil {
			t.afterFunc = fn
		}
	}
}

// WithListener registers a callback invoked with every shown message.
func WithListener(fn func(string)) Option {
	return func(t *Toast) {
		t.listener = fn
	}
}

// Toast is a single-slot notification. Showing a new message replaces the
// previous one and restarts the expiry timer.
type Toast struct {
	mu        sync.Mutex
	message   string
	seq       uint64
	timer     Timer
	duration  time.Duration
	afterFunc AfterFunc
	listener  func(string)
}

// New constructs a Toast.
func New(opts ...Option) *Toast {
	t := &Toast{
		duration: DefaultDuration,
		afterFunc: func(d time.Duration, f func()) Timer {
			return time.AfterFunc(d, f)
		},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Show replaces the visible message. Blank messages are ignored.
func (t *Toast) Show(message string) {
	message = strings.TrimSpace(message)
	if message == "" {
		return
	}

	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
	}
	t.seq++
	seq := t.seq
	t.message = message
	t.timer = t.afterFunc(t.duration, func() { t.expire(seq) })
	listener := t.listener
	t.mu.Unlock()

	if listener != nil {
		listener(message)
	}
}

// Current returns the visible message, if any.
func (t *Toast) Current() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.message, t.message != ""
}

// Dismiss clears the slot immediately.
func (t *Toast) Dismiss() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.seq++
	t.message = ""
}

// expire clears the slot unless a newer message replaced the one that armed
// this timer.
func (t *Toast) expire(seq uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if seq != t.seq {
		return
	}
	t.message = ""
	t.timer = nil
}

// Noop discards every message.
type Noop struct{}

func (Noop) Show(string) {}
