package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"weav/internal/api"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect or cancel backend generation tasks",
	}

	jobsCmd.AddCommand(&cobra.Command{
		Use:   "status <task-id>",
		Short: "Show the status of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(a *app) error {
				status, err := a.client.JobStatus(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return emit(ctx, cmd, status, func() string { return renderJobStatus(status, shouldColorize(cmd.OutOrStdout())) })
			})
		},
	})

	jobsCmd.AddCommand(&cobra.Command{
		Use:   "cancel <task-id>",
		Short: "Ask the backend to cancel a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(a *app) error {
				if err := a.client.CancelJob(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cancel requested for task %s\n", args[0])
				return nil
			})
		},
	})

	return jobsCmd
}

func renderJobStatus(status api.JobStatus, colorize bool) string {
	message := fmt.Sprintf("job %d", status.JobID)
	if status.Error != "" {
		message = status.Error
	}
	line := renderStatusLine(titleLabel(string(status.Status)), jobStateStatus(status.Status), message, colorize)
	switch {
	case status.Image != nil:
		line += "\n" + statusIndent + status.Image.ImageURL
	case status.Message != nil:
		line += "\n" + statusIndent + status.Message.Content
	}
	return line
}
