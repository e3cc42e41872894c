package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"weav/internal/api"
	"weav/internal/services"
)

func newSessionsCommand(ctx *commandContext) *cobra.Command {
	sessionsCmd := &cobra.Command{
		Use:     "sessions",
		Aliases: []string{"session"},
		Short:   "List, create and select sessions",
	}

	sessionsCmd.AddCommand(newSessionsListCommand(ctx))
	sessionsCmd.AddCommand(newSessionsShowCommand(ctx))
	sessionsCmd.AddCommand(newSessionsCreateCommand(ctx))
	sessionsCmd.AddCommand(newSessionsRenameCommand(ctx))
	sessionsCmd.AddCommand(newSessionsDeleteCommand(ctx))
	sessionsCmd.AddCommand(newSessionsSelectCommand(ctx))
	sessionsCmd.AddCommand(newSessionsCurrentCommand(ctx))

	return sessionsCmd
}

func newSessionsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sessions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(a *app) error {
				if err := a.sessions.Init(cmd.Context()); err != nil {
					return err
				}
				list := a.sessions.Sessions()
				currentID, _ := a.sessions.CurrentID()
				return emit(ctx, cmd, list, func() string {
					if len(list) == 0 {
						return "No sessions. Create one with `weav sessions create chat`."
					}
					return renderSessionList(list, currentID)
				})
			})
		},
	}
}

func newSessionsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show a session's messages or images",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return ctx.withSession(cmd, func(a *app, session *api.Session) error {
					return emit(ctx, cmd, session, func() string { return renderSession(session) })
				})
			}
			id, err := parseSessionID(args[0])
			if err != nil {
				return err
			}
			return ctx.withApp(cmd, func(a *app) error {
				session, err := a.sessions.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				return emit(ctx, cmd, session, func() string { return renderSession(session) })
			})
		},
	}
}

func newSessionsCreateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "create <chat|image|studio> [title]",
		Short: "Create a session and make it current",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, ok := api.ParseSessionKind(args[0])
			if !ok {
				return services.Wrap(services.ErrValidation, "cli", "create session",
					fmt.Sprintf("unknown session kind %q (want chat, image or studio)", args[0]), nil)
			}
			title := ""
			if len(args) > 1 {
				title = args[1]
			}
			return ctx.withApp(cmd, func(a *app) error {
				if err := a.sessions.Init(cmd.Context()); err != nil {
					return err
				}
				session, err := a.sessions.Create(cmd.Context(), kind, title)
				if err != nil {
					return err
				}
				return emit(ctx, cmd, session, func() string {
					return fmt.Sprintf("Created %s session #%d %q", session.Kind, session.ID, session.Title)
				})
			})
		},
	}
}

func newSessionsRenameCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <title>",
		Short: "Rename a session",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseSessionID(args[0])
			if err != nil {
				return err
			}
			title := strings.Join(args[1:], " ")
			return ctx.withApp(cmd, func(a *app) error {
				if err := a.sessions.Init(cmd.Context()); err != nil {
					return err
				}
				session, err := a.sessions.Patch(cmd.Context(), id, title)
				if err != nil {
					return err
				}
				return emit(ctx, cmd, session, func() string {
					return fmt.Sprintf("Renamed session #%d to %q", session.ID, session.Title)
				})
			})
		},
	}
}

func newSessionsDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a session and its local preferences",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseSessionID(args[0])
			if err != nil {
				return err
			}
			return ctx.withApp(cmd, func(a *app) error {
				if err := a.sessions.Init(cmd.Context()); err != nil {
					return err
				}
				if err := a.sessions.Delete(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted session #%d\n", id)
				return nil
			})
		},
	}
}

func newSessionsSelectCommand(ctx *commandContext) *cobra.Command {
	var clearFlag bool
	cmd := &cobra.Command{
		Use:   "select <id>",
		Short: "Make a session current for later commands",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var target *int64
			if !clearFlag {
				if len(args) != 1 {
					return services.Wrap(services.ErrValidation, "cli", "select session", "session id is required (or pass --clear)", nil)
				}
				id, err := parseSessionID(args[0])
				if err != nil {
					return err
				}
				target = &id
			}
			return ctx.withApp(cmd, func(a *app) error {
				if err := a.sessions.Init(cmd.Context()); err != nil {
					return err
				}
				session, err := a.sessions.Select(cmd.Context(), target)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if session == nil {
					fmt.Fprintln(out, "Cleared the current session")
					return nil
				}
				fmt.Fprintf(out, "Current session: #%d %s (%s)\n", session.ID, session.Title, session.Kind)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&clearFlag, "clear", false, "Clear the current session instead")
	return cmd
}

func newSessionsCurrentCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the current session and its local settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(a *app, session *api.Session) error {
				view := currentView{
					Session:    session,
					ChatModel:  a.prefs.ChatModel(session.ID),
					ImageModel: a.prefs.ImageModel(session.ID),
					Options:    a.prefs.ImageOptions(session.ID),
				}
				return emit(ctx, cmd, view, func() string { return renderCurrent(view) })
			})
		},
	}
}

func parseSessionID(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(value), "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, services.Wrap(services.ErrValidation, "cli", "session id", fmt.Sprintf("invalid session id %q", value), nil)
	}
	return id, nil
}
