package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"weav/internal/api"
)

func TestSessionLifecycle(t *testing.T) {
	env := setupCLITestEnv(t)

	out := env.mustRun(t, "sessions", "create", "chat", "Trip planning")
	requireContains(t, out, `Created chat session #1 "Trip planning"`)

	// The new session stays current for the next invocation.
	out = env.mustRun(t, "sessions", "current")
	requireContains(t, out, "#1 Trip planning")
	requireContains(t, out, "google/gemini-2.5-flash")

	env.mustRun(t, "sessions", "create", "image", "Logos")
	out = env.mustRun(t, "sessions", "list")
	requireContains(t, out, "Trip planning")
	requireContains(t, out, "Logos")

	out = env.mustRun(t, "sessions", "select", "1")
	requireContains(t, out, "Current session: #1 Trip planning (chat)")

	out = env.mustRun(t, "sessions", "rename", "1", "Summer", "trip")
	requireContains(t, out, `Renamed session #1 to "Summer trip"`)

	out = env.mustRun(t, "sessions", "delete", "1")
	requireContains(t, out, "Deleted session #1")
	if _, ok := env.backend.Session(1); ok {
		t.Fatal("expected session removed from backend")
	}

	if _, _, err := env.run(t, "sessions", "current"); err == nil || !strings.Contains(err.Error(), "no session selected") {
		t.Fatalf("expected no current session after delete, got %v", err)
	}
}

func TestSessionsListJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	env.backend.SeedSession(api.Session{Kind: api.KindChat, Title: "First"})
	env.backend.SeedSession(api.Session{Kind: api.KindImage, Title: "Second"})

	out := env.mustRun(t, "--json", "sessions", "list")
	var list []api.Session
	if err := json.Unmarshal([]byte(out), &list); err != nil {
		t.Fatalf("decode json: %v (%s)", err, out)
	}
	if len(list) != 2 || list[0].Title != "Second" {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestStaleSessionMarkerIsCleared(t *testing.T) {
	env := setupCLITestEnv(t)
	env.mustRun(t, "sessions", "create", "chat")

	// Deleted elsewhere: the restore fails quietly and the marker is dropped.
	env.backend.Fail("GET /api/v1/sessions/:id/", 404, `{"detail":"Not found."}`)
	if _, _, err := env.run(t, "sessions", "current"); err == nil {
		t.Fatal("expected no current session")
	}
	env.backend.Recover("GET /api/v1/sessions/:id/")
	if _, _, err := env.run(t, "sessions", "current"); err == nil {
		t.Fatal("expected marker to stay cleared")
	}
}

func TestSessionFlagSelects(t *testing.T) {
	env := setupCLITestEnv(t)
	chat := env.backend.SeedSession(api.Session{Kind: api.KindChat, Title: "Notes"})

	out := env.mustRun(t, "--session", fmt.Sprint(chat.ID), "sessions", "current")
	requireContains(t, out, fmt.Sprintf("#%d Notes", chat.ID))

	// The flag also moves the restore marker.
	out = env.mustRun(t, "sessions", "current")
	requireContains(t, out, "Notes")

	if _, _, err := env.run(t, "sessions", "select", "abc"); err == nil {
		t.Fatal("expected invalid id error")
	}
}
