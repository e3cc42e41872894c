package main

import (
	"fmt"
	"strings"
	"time"

	"weav/internal/api"
	"weav/internal/catalog"
)

type currentView struct {
	Session    *api.Session     `json:"session"`
	ChatModel  string           `json:"chat_model"`
	ImageModel string           `json:"image_model"`
	Options    api.ImageOptions `json:"image_options"`
}

func renderSessionList(list []api.Session, currentID int64) string {
	rows := make([][]string, 0, len(list))
	for _, session := range list {
		marker := ""
		if session.ID == currentID {
			marker = "*"
		}
		rows = append(rows, []string{
			marker,
			fmt.Sprintf("%d", session.ID),
			titleLabel(string(session.Kind)),
			session.Title,
			formatTimestamp(session.UpdatedAt),
		})
	}
	return renderTable(
		[]string{"", "ID", "Kind", "Title", "Updated"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft, alignLeft},
	)
}

func renderSession(session *api.Session) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d %s (%s)\n", session.ID, session.Title, titleLabel(string(session.Kind)))
	if len(session.ReferenceImageURLs) > 0 {
		fmt.Fprintf(&b, "Reference images: %s\n", strings.Join(session.ReferenceImageURLs, ", "))
	}
	if len(session.Messages) > 0 {
		rows := make([][]string, 0, len(session.Messages))
		for _, msg := range session.Messages {
			rows = append(rows, []string{titleLabel(string(msg.Role)), msg.Content, formatCitations(msg.Citations)})
		}
		b.WriteString(renderTable([]string{"Role", "Message", "Sources"}, rows, nil))
		b.WriteByte('\n')
	}
	if len(session.ImageRecords) > 0 {
		rows := make([][]string, 0, len(session.ImageRecords))
		for _, record := range session.ImageRecords {
			rows = append(rows, []string{
				fmt.Sprintf("%d", record.ID),
				catalog.ImageModelName(record.Model),
				record.Prompt,
				record.ImageURL,
			})
		}
		b.WriteString(renderTable([]string{"ID", "Model", "Prompt", "URL"}, rows, []columnAlignment{alignRight}))
		b.WriteByte('\n')
	}
	if len(session.Messages) == 0 && len(session.ImageRecords) == 0 {
		b.WriteString("(empty)\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderCurrent(view currentView) string {
	session := view.Session
	pairs := [][2]string{
		{"Session", fmt.Sprintf("#%d %s", session.ID, session.Title)},
		{"Kind", titleLabel(string(session.Kind))},
	}
	if session.Kind == api.KindChat {
		pairs = append(pairs, [2]string{"Chat model", view.ChatModel})
	}
	pairs = append(pairs,
		[2]string{"Image model", catalog.ImageModelName(view.ImageModel) + " (" + view.ImageModel + ")"},
		[2]string{"Image options", formatImageOptions(view.Options)},
	)
	return renderKeyValues(pairs)
}

func formatImageOptions(opts api.ImageOptions) string {
	parts := make([]string, 0, 5)
	if opts.AspectRatio != "" {
		parts = append(parts, "aspect "+opts.AspectRatio)
	}
	if opts.NumImages > 0 {
		parts = append(parts, fmt.Sprintf("%d image(s)", opts.NumImages))
	}
	if opts.Resolution != "" {
		parts = append(parts, opts.Resolution)
	}
	if opts.OutputFormat != "" {
		parts = append(parts, opts.OutputFormat)
	}
	if opts.Seed != nil {
		parts = append(parts, fmt.Sprintf("seed %d", *opts.Seed))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}

func formatCitations(citations []api.Citation) string {
	if len(citations) == 0 {
		return ""
	}
	parts := make([]string, 0, len(citations))
	for _, c := range citations {
		parts = append(parts, fmt.Sprintf("%s p.%d", c.DocumentName, c.Page))
	}
	return strings.Join(parts, "; ")
}

func formatTimestamp(value string) string {
	ts := api.ParseTime(value)
	if ts.IsZero() {
		return "-"
	}
	return ts.Local().Format(time.DateTime)
}
