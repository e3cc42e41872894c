package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"weav/internal/api"
	"weav/internal/documents"
	"weav/internal/services"
)

func newDocsCommand(ctx *commandContext) *cobra.Command {
	docsCmd := &cobra.Command{
		Use:     "docs",
		Aliases: []string{"documents"},
		Short:   "Manage PDFs attached to the current chat session",
	}
	docsCmd.AddCommand(newDocsListCommand(ctx))
	docsCmd.AddCommand(newDocsUploadCommand(ctx))
	docsCmd.AddCommand(newDocsDeleteCommand(ctx))
	docsCmd.AddCommand(newDocsMentionCommand(ctx))
	return docsCmd
}

func newDocsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List documents, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(a *app, session *api.Session) error {
				docs, err := a.documents.List(cmd.Context(), session.ID)
				if err != nil {
					return err
				}
				docs = documents.MatchDocuments(docs, "")
				return emit(ctx, cmd, docs, func() string {
					return renderDocuments(docs, shouldColorize(cmd.OutOrStdout()))
				})
			})
		},
	}
}

func newDocsUploadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file.pdf>",
		Short: "Upload a PDF for the session to cite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(a *app, session *api.Session) error {
				uploaded, err := a.documents.Upload(cmd.Context(), session.ID, args[0])
				if err != nil {
					return err
				}
				return emit(ctx, cmd, uploaded, func() string {
					return fmt.Sprintf("Uploaded %s as document #%d (%s); mention it with %s",
						uploaded.OriginalName, uploaded.DocumentID, uploaded.Status, documents.MentionToken(uploaded.OriginalName))
				})
			})
		},
	}
}

func newDocsDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <document-id>",
		Short: "Delete a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || docID <= 0 {
				return services.Wrap(services.ErrValidation, "cli", "delete document", fmt.Sprintf("invalid document id %q", args[0]), nil)
			}
			return ctx.withSession(cmd, func(a *app, session *api.Session) error {
				if err := a.documents.Delete(cmd.Context(), session.ID, docID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted document #%d\n", docID)
				return nil
			})
		},
	}
}

func newDocsMentionCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "mention [text]",
		Short: "Suggest @mentions for the partial name typed at the end of text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				if active, ok := documents.ActiveMention(args[0]); ok {
					query = active
				} else {
					query = args[0]
				}
			}
			return ctx.withSession(cmd, func(a *app, session *api.Session) error {
				if _, err := a.documents.List(cmd.Context(), session.ID); err != nil {
					return err
				}
				matches := a.documents.Mention(session.ID, query)
				tokens := make([]string, 0, len(matches))
				for _, doc := range matches {
					tokens = append(tokens, documents.MentionToken(doc.OriginalName))
				}
				return emit(ctx, cmd, tokens, func() string {
					if len(tokens) == 0 {
						return "No matching documents."
					}
					return strings.Join(tokens, "\n")
				})
			})
		},
	}
}

func renderDocuments(docs []api.DocumentItem, colorize bool) string {
	if len(docs) == 0 {
		return "No documents."
	}
	rows := make([][]string, 0, len(docs))
	for _, doc := range docs {
		status := titleLabel(string(doc.Status))
		if colorize {
			if color := statusKindColor(documentStatus(doc.Status)); color != "" {
				status = color + status + ansiReset
			}
		}
		rows = append(rows, []string{
			strconv.FormatInt(doc.ID, 10),
			doc.OriginalName,
			status,
			formatTimestamp(doc.CreatedAt),
			doc.ErrorMessage,
		})
	}
	return renderTable([]string{"ID", "Name", "Status", "Uploaded", "Error"}, rows, []columnAlignment{alignRight})
}
