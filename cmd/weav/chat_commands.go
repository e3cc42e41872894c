package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"weav/internal/api"
	"weav/internal/generation"
)

func newChatCommand(ctx *commandContext) *cobra.Command {
	chatCmd := &cobra.Command{
		Use:   "chat",
		Short: "Send chat messages to the current session",
	}
	chatCmd.AddCommand(newChatSendCommand(ctx))
	chatCmd.AddCommand(newChatRegenerateCommand(ctx))
	return chatCmd
}

func newChatSendCommand(ctx *commandContext) *cobra.Command {
	var model string
	var systemPrompt string

	cmd := &cobra.Command{
		Use:   "send <message...>",
		Short: "Send a message and wait for the reply",
		Long: "Send a message to the current chat session and wait for the assistant reply.\n" +
			"Mention an uploaded document with @name or @\"name with spaces\".",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.Join(args, " ")
			return ctx.withSession(cmd, func(a *app, session *api.Session) error {
				result, err := runGeneration(cmd, a, "chat", func(runCtx context.Context) (generation.Result, error) {
					return a.engine.SendChatMessage(runCtx, prompt, generation.ChatOptions{
						Model:        model,
						SystemPrompt: systemPrompt,
					})
				})
				if reportErr := reportGeneration(ctx, cmd, a, "chat", result, err); reportErr != nil {
					return reportErr
				}
				printLastReply(ctx, cmd, a)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", "", "Chat model for this message (defaults to the session's model)")
	cmd.Flags().StringVar(&systemPrompt, "system", "", "System prompt for this message")
	return cmd
}

func newChatRegenerateCommand(ctx *commandContext) *cobra.Command {
	var model string
	var prompt string

	cmd := &cobra.Command{
		Use:   "regenerate",
		Short: "Regenerate the last assistant reply",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(a *app, session *api.Session) error {
				result, err := runGeneration(cmd, a, "regenerate", func(runCtx context.Context) (generation.Result, error) {
					return a.engine.RegenerateChat(runCtx, session.ID, generation.RegenerateChatOptions{
						Model:  model,
						Prompt: prompt,
					})
				})
				if reportErr := reportGeneration(ctx, cmd, a, "regenerate", result, err); reportErr != nil {
					return reportErr
				}
				printLastReply(ctx, cmd, a)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", "", "Chat model to regenerate with")
	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "Replacement prompt for the last user turn")
	return cmd
}

// printLastReply shows the assistant message the refreshed session ends with.
func printLastReply(ctx *commandContext, cmd *cobra.Command, a *app) {
	if ctx.jsonOutput() {
		return
	}
	session := a.sessions.Current()
	msg, ok := session.LastMessage()
	if !ok || msg.Role != api.RoleAssistant {
		return
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintln(out, msg.Content)
	if sources := formatCitations(msg.Citations); sources != "" {
		fmt.Fprintf(out, "\nSources: %s\n", sources)
	}
}
