package main

import (
	"strings"
	"testing"

	"weav/internal/api"
	"weav/internal/generation"
)

func TestRenderStatusLinePlain(t *testing.T) {
	line := renderStatusLine("Image", statusOK, "task task-0001", false)
	if strings.Contains(line, "\x1b[") {
		t.Fatalf("expected no color codes, got %q", line)
	}
	if !strings.Contains(line, "Image:") || !strings.Contains(line, "[OK] task task-0001") {
		t.Fatalf("unexpected line %q", line)
	}
}

func TestRenderStatusLineColorized(t *testing.T) {
	line := renderStatusLine("Chat", statusError, "boom", true)
	if !strings.HasPrefix(line, ansiRed) || !strings.HasSuffix(line, ansiReset) {
		t.Fatalf("expected red line, got %q", line)
	}
}

func TestOutcomeStatus(t *testing.T) {
	cases := map[generation.Outcome]statusKind{
		generation.OutcomeSucceeded: statusOK,
		generation.OutcomeCancelled: statusWarn,
		generation.OutcomeTimedOut:  statusWarn,
		generation.OutcomeFailed:    statusError,
	}
	for outcome, want := range cases {
		if got := outcomeStatus(outcome); got != want {
			t.Fatalf("%s: got %v want %v", outcome, got, want)
		}
	}
}

func TestTitleLabel(t *testing.T) {
	if got := titleLabel("timed_out"); got != "Timed Out" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := titleLabel(string(api.KindStudio)); got != "Studio" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := titleLabel(" "); got != "-" {
		t.Fatalf("unexpected blank label %q", got)
	}
}

func TestRenderJobStatus(t *testing.T) {
	out := renderJobStatus(api.JobStatus{TaskID: "t", JobID: 3, Status: api.JobFailure, Error: "model overloaded"}, false)
	if !strings.Contains(out, "[ERROR] model overloaded") {
		t.Fatalf("unexpected output %q", out)
	}
}
