package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"weav/internal/api"
	"weav/internal/generation"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 12
	statusIndent     = "  "
)

var titleCaser = cases.Title(language.Und)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := statusKindLabel(kind)
	if message != "" {
		statusText = fmt.Sprintf("[%s] %s", statusText, message)
	} else {
		statusText = fmt.Sprintf("[%s]", statusText)
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

// renderNotice formats a toast for the terminal.
func renderNotice(message string, colorize bool) string {
	line := "› " + strings.TrimSpace(message)
	if colorize {
		return ansiYellow + line + ansiReset
	}
	return line
}

func outcomeStatus(outcome generation.Outcome) statusKind {
	switch outcome {
	case generation.OutcomeSucceeded:
		return statusOK
	case generation.OutcomeCancelled, generation.OutcomeTimedOut:
		return statusWarn
	default:
		return statusError
	}
}

func jobStateStatus(state api.JobState) statusKind {
	switch state {
	case api.JobSuccess:
		return statusOK
	case api.JobFailure:
		return statusError
	default:
		return statusInfo
	}
}

func documentStatus(status api.DocumentStatus) statusKind {
	switch status {
	case api.DocumentCompleted:
		return statusOK
	case api.DocumentFailed:
		return statusError
	default:
		return statusInfo
	}
}

// titleLabel turns identifiers such as "timed_out" into "Timed Out".
func titleLabel(value string) string {
	value = strings.ReplaceAll(strings.TrimSpace(value), "_", " ")
	if value == "" {
		return "-"
	}
	return titleCaser.String(value)
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// startSpinner shows a progress indicator on terminals while a job runs. The
// returned func stops it; on other writers both are no-ops.
func startSpinner(writer io.Writer, suffix string) func() {
	if !shouldColorize(writer) {
		return func() {}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(writer))
	s.Suffix = " " + suffix
	s.Start()
	return s.Stop
}
