package generation

import (
	"context"
	"log/slog"
	"strings"

	"weav/internal/api"
	"weav/internal/logging"
	"weav/internal/services"
)

// Outcome is how an operation ended.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	OutcomeTimedOut  Outcome = "timed_out"
	OutcomeCancelled Outcome = "cancelled"
)

// Result describes a settled operation. Current reports whether the session
// was still in view when the final refresh completed; errors for sessions
// out of view are not written to the error slot.
type Result struct {
	TaskID  string
	JobID   int64
	Outcome Outcome
	Message string
	Current bool
}

// Succeeded reports whether the job finished with a success status.
func (r Result) Succeeded() bool {
	return r.Outcome == OutcomeSucceeded
}

// submitFunc posts a job and returns its handle.
type submitFunc func(ctx context.Context) (api.SubmitResponse, error)

// run executes the shared submit, refresh, poll sequence for op.
func (e *Engine) run(ctx context.Context, op *operation, sessionID int64, kind string, submit submitFunc) (Result, error) {
	defer e.finish(op)

	ctx = services.EnsureRequestID(services.WithSessionID(ctx, sessionID))
	logger := logging.WithContext(ctx, e.logger).With(logging.String("operation", kind))

	res, err := submit(ctx)
	if err != nil {
		message := errorMessage(err)
		e.fail(op, message)
		logging.WarnWithContext(logger, "submission failed", "submit_failed", logging.Error(err))
		return Result{Outcome: OutcomeFailed, Message: message}, err
	}
	if strings.TrimSpace(res.TaskID) == "" {
		err := services.Wrap(services.ErrTransient, "generation", "submit", "backend returned no task id", nil)
		e.fail(op, FailureMessage)
		logging.ErrorWithContext(logger, "submission returned no task", "submit_missing_task",
			logging.Int64("job_id", res.JobID),
			logging.String(logging.FieldErrorHint, "check the backend job queue"),
		)
		return Result{Outcome: OutcomeFailed, Message: FailureMessage}, err
	}
	e.attachTask(op, res.TaskID)

	ctx = services.WithTaskID(ctx, res.TaskID)
	logger = logger.With(logging.String(logging.FieldTaskID, res.TaskID))
	logger.Info("job submitted", logging.Int64("job_id", res.JobID))

	e.sessions.RefreshSession(ctx, sessionID)

	result, err := e.poll(ctx, op, sessionID, res.TaskID, logger)
	result.TaskID = res.TaskID
	result.JobID = res.JobID
	return result, err
}

// poll checks the job until it settles, the attempt budget runs out, or the
// operation is abandoned.
func (e *Engine) poll(ctx context.Context, op *operation, sessionID int64, taskID string, logger *slog.Logger) (Result, error) {
	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		if e.isAborted(op) || ctx.Err() != nil {
			e.clearTask(op)
			logger.Info("polling abandoned", logging.Int("attempt", attempt))
			return Result{Outcome: OutcomeCancelled}, nil
		}

		status, err := e.backend.JobStatus(ctx, taskID)
		if err != nil {
			e.clearTask(op)
			if e.isAborted(op) || ctx.Err() != nil {
				return Result{Outcome: OutcomeCancelled}, nil
			}
			message := errorMessage(err)
			e.fail(op, message)
			logging.WarnWithContext(logger, "job status unavailable", "poll_failed", logging.Error(err))
			return Result{Outcome: OutcomeFailed, Message: message}, err
		}

		if status.Status.Terminal() {
			e.clearTask(op)
			current := e.sessions.RefreshSession(ctx, sessionID)
			if status.Status == api.JobFailure {
				message := strings.TrimSpace(status.Error)
				if message == "" {
					message = FailureMessage
				}
				if current {
					e.fail(op, message)
				}
				logger.Info("job failed",
					logging.String("error", message),
					logging.Bool("current", current),
				)
				return Result{Outcome: OutcomeFailed, Message: message, Current: current}, nil
			}
			logger.Info("job succeeded", logging.Int("attempts", attempt))
			return Result{Outcome: OutcomeSucceeded, Current: current}, nil
		}

		logger.Debug("job still running",
			logging.String("status", string(status.Status)),
			logging.Int("attempt", attempt),
		)
		if attempt < e.maxAttempts {
			if err := e.sleep(ctx, e.interval); err != nil {
				e.clearTask(op)
				return Result{Outcome: OutcomeCancelled}, nil
			}
		}
	}

	e.clearTask(op)
	current := e.sessions.RefreshSession(ctx, sessionID)
	if current {
		e.fail(op, TimeoutMessage)
	}
	logging.WarnWithContext(logger, "job did not finish in time", "poll_timeout",
		logging.Int("attempts", e.maxAttempts),
		logging.Bool("current", current),
	)
	return Result{Outcome: OutcomeTimedOut, Message: TimeoutMessage, Current: current}, ErrPollTimeout
}
