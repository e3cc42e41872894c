package generation

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"weav/internal/api"
	"weav/internal/backend"
	"weav/internal/logging"
	"weav/internal/prefs"
	"weav/internal/services"
	"weav/internal/toast"
)

const (
	DefaultPollInterval    = 800 * time.Millisecond
	DefaultMaxPollAttempts = 60
	DefaultCancelTimeout   = 5 * time.Second

	// TimeoutMessage is surfaced when polling runs out of attempts.
	TimeoutMessage = "Generation is taking longer than expected. Check the session again shortly."
	// FailureMessage is used when a failed job carries no error text.
	FailureMessage = "Generation failed."
)

// ErrPollTimeout marks results whose job never reached a terminal state.
var ErrPollTimeout = services.Wrap(services.ErrTimeout, "generation", "poll", TimeoutMessage, nil)

// Backend is the job API the engine drives.
type Backend interface {
	CompleteChat(ctx context.Context, req api.ChatCompleteRequest) (api.SubmitResponse, error)
	RegenerateChat(ctx context.Context, req api.ChatRegenerateRequest) (api.SubmitResponse, error)
	GenerateImage(ctx context.Context, req api.ImageRequest) (api.SubmitResponse, error)
	RegenerateImage(ctx context.Context, req api.ImageRegenerateRequest) (api.SubmitResponse, error)
	JobStatus(ctx context.Context, taskID string) (api.JobStatus, error)
	CancelJob(ctx context.Context, taskID string) error
}

// SessionStore is the part of the session store the engine reads and
// refreshes.
type SessionStore interface {
	Current() *api.Session
	RefreshSession(ctx context.Context, id int64) bool
}

// Sleeper waits d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Options tune polling and cancellation. Zero values use the defaults.
type Options struct {
	PollInterval    time.Duration
	MaxPollAttempts int
	CancelTimeout   time.Duration
	Sleep           Sleeper
	PromptLimits    PromptLimits
	Notifier        toast.Notifier
	Logger          *slog.Logger
}

// PendingImageRequest is the placeholder shown while an image job runs.
type PendingImageRequest struct {
	SessionID           int64
	Prompt              string
	ReferenceImageURLs  []string
	AttachmentImageURLs []string
}

// Snapshot is a consistent view of the engine state.
type Snapshot struct {
	Sending bool
	Error   string
	TaskID  string
	Pending *PendingImageRequest
}

// operation is the slot for one send or regenerate. It holds at most one
// task handle and the abort flag raised by StopGeneration.
type operation struct {
	taskID  string
	aborted bool
}

// Engine submits generation jobs and polls them to completion. One
// operation runs at a time; Sending gates new submissions.
type Engine struct {
	backend  Backend
	sessions SessionStore
	prefs    *prefs.Store
	notifier toast.Notifier
	logger   *slog.Logger

	interval      time.Duration
	maxAttempts   int
	cancelTimeout time.Duration
	sleep         Sleeper
	limits        PromptLimits

	mu           sync.Mutex
	sending      bool
	errMsg       string
	current      *operation
	pending      *PendingImageRequest
	pendingOwner *operation

	background sync.WaitGroup
}

// New wires an engine.
func New(client Backend, store SessionStore, preferences *prefs.Store, opts Options) *Engine {
	e := &Engine{
		backend:       client,
		sessions:      store,
		prefs:         preferences,
		notifier:      opts.Notifier,
		logger:        logging.NewComponentLogger(opts.Logger, "generation"),
		interval:      opts.PollInterval,
		maxAttempts:   opts.MaxPollAttempts,
		cancelTimeout: opts.CancelTimeout,
		sleep:         opts.Sleep,
		limits:        opts.PromptLimits,
	}
	if e.notifier == nil {
		e.notifier = toast.Noop{}
	}
	if e.interval <= 0 {
		e.interval = DefaultPollInterval
	}
	if e.maxAttempts <= 0 {
		e.maxAttempts = DefaultMaxPollAttempts
	}
	if e.cancelTimeout <= 0 {
		e.cancelTimeout = DefaultCancelTimeout
	}
	if e.sleep == nil {
		e.sleep = sleepContext
	}
	return e
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Sending reports whether an operation is in flight.
func (e *Engine) Sending() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sending
}

// Error returns the inline error, if any.
func (e *Engine) Error() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.errMsg, e.errMsg != ""
}

// DismissError clears the inline error.
func (e *Engine) DismissError() {
	e.mu.Lock()
	e.errMsg = ""
	e.mu.Unlock()
}

// PendingImageRequest returns the placeholder for the running image job.
func (e *Engine) PendingImageRequest() *PendingImageRequest {
	e.mu.Lock()
	defer e.mu.Unlock()
	return clonePending(e.pending)
}

// Snapshot returns every observable field at once.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	snap := Snapshot{Sending: e.sending, Error: e.errMsg, Pending: clonePending(e.pending)}
	if e.current != nil {
		snap.TaskID = e.current.taskID
	}
	return snap
}

func clonePending(p *PendingImageRequest) *PendingImageRequest {
	if p == nil {
		return nil
	}
	out := *p
	out.ReferenceImageURLs = append([]string(nil), p.ReferenceImageURLs...)
	out.AttachmentImageURLs = append([]string(nil), p.AttachmentImageURLs...)
	return &out
}

// StopGeneration abandons the running operation. Sending clears at once; the
// poll loop notices the abort on its next iteration and exits quietly. The
// backend is asked to cancel the task in the background and any failure of
// that request is only logged.
func (e *Engine) StopGeneration() {
	e.mu.Lock()
	e.sending = false
	op := e.current
	if op == nil {
		e.mu.Unlock()
		return
	}
	op.aborted = true
	taskID := op.taskID
	e.mu.Unlock()

	e.logger.Info("generation stopped", logging.String(logging.FieldTaskID, taskID))
	e.cancelTask(taskID)
}

// Wait blocks until background cancel requests have finished.
func (e *Engine) Wait() {
	e.background.Wait()
}

func (e *Engine) cancelTask(taskID string) {
	if taskID == "" {
		return
	}
	e.background.Add(1)
	go func() {
		defer e.background.Done()
		ctx, cancel := context.WithTimeout(context.Background(), e.cancelTimeout)
		defer cancel()
		if err := e.backend.CancelJob(ctx, taskID); err != nil {
			e.logger.Debug("cancel request not delivered",
				logging.String(logging.FieldTaskID, taskID),
				logging.Error(err),
			)
		}
	}()
}

// begin claims the sending gate and opens a new operation slot.
func (e *Engine) begin() (*operation, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sending {
		return nil, services.Wrap(services.ErrBusy, "generation", "submit", "a generation is already in progress", nil)
	}
	op := &operation{}
	e.sending = true
	e.errMsg = ""
	e.current = op
	return op, nil
}

// finish releases the gate unless a newer operation already owns it.
func (e *Engine) finish(op *operation) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == op {
		e.current = nil
		e.sending = false
	}
	if e.pendingOwner == op {
		e.pending = nil
		e.pendingOwner = nil
	}
}

// attachTask records the submitted task. A stop that arrived while the
// submission was in flight is forwarded to the backend now that the task id
// is known.
func (e *Engine) attachTask(op *operation, taskID string) {
	e.mu.Lock()
	op.taskID = taskID
	aborted := op.aborted
	e.mu.Unlock()
	if aborted {
		e.cancelTask(taskID)
	}
}

func (e *Engine) clearTask(op *operation) {
	e.mu.Lock()
	op.taskID = ""
	e.mu.Unlock()
}

func (e *Engine) isAborted(op *operation) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return op.aborted
}

// fail records message in the error slot unless op was abandoned.
func (e *Engine) fail(op *operation, message string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if op.aborted {
		return
	}
	e.errMsg = message
}

func (e *Engine) setPending(op *operation, pending PendingImageRequest) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending = &pending
	e.pendingOwner = op
}

func (e *Engine) reject(operation, message string) error {
	e.notifier.Show(message)
	return services.Wrap(services.ErrValidation, "generation", operation, message, nil)
}

func errorMessage(err error) string {
	if msg := backend.Message(err); msg != "" {
		return msg
	}
	return FailureMessage
}
