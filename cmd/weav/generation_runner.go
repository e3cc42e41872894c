package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"weav/internal/generation"
)

type generationFunc func(ctx context.Context) (generation.Result, error)

type generationView struct {
	Outcome generation.Outcome `json:"outcome"`
	TaskID  string             `json:"task_id,omitempty"`
	JobID   int64              `json:"job_id,omitempty"`
	Message string             `json:"message,omitempty"`
}

// runGeneration holds the cross-process send lock while fn runs, shows a
// spinner, and turns Ctrl-C into StopGeneration.
func runGeneration(cmd *cobra.Command, a *app, label string, fn generationFunc) (generation.Result, error) {
	release, err := a.lock.Acquire()
	if err != nil {
		return generation.Result{}, err
	}
	defer release()
	defer a.engine.Wait()

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	interrupted, stopSignals := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	done := make(chan struct{})
	go func() {
		select {
		case <-interrupted.Done():
			a.engine.StopGeneration()
			cancel()
		case <-done:
		}
	}()

	stopSpinner := startSpinner(cmd.ErrOrStderr(), label+"…")
	result, err := fn(ctx)
	stopSpinner()
	close(done)
	return result, err
}

// reportGeneration prints the outcome of a settled operation. Cancelled runs
// return context.Canceled so main exits non-zero without repeating the
// message.
func reportGeneration(ctx *commandContext, cmd *cobra.Command, a *app, label string, result generation.Result, err error) error {
	view := generationView{
		Outcome: result.Outcome,
		TaskID:  result.TaskID,
		JobID:   result.JobID,
		Message: result.Message,
	}
	if ctx.jsonOutput() && result.Outcome != "" {
		if encodeErr := writeJSON(cmd, view); encodeErr != nil {
			return encodeErr
		}
	} else if result.Outcome != "" {
		message := result.Message
		if message == "" && result.TaskID != "" {
			message = "task " + result.TaskID
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderStatusLine(titleLabel(label), outcomeStatus(result.Outcome), message, shouldColorize(cmd.OutOrStdout())))
	}

	switch {
	case err != nil:
		return err
	case result.Outcome == generation.OutcomeCancelled:
		return context.Canceled
	case result.Outcome == generation.OutcomeFailed:
		if msg, ok := a.engine.Error(); ok {
			return errors.New(msg)
		}
		return errors.New(result.Message)
	}
	return nil
}
