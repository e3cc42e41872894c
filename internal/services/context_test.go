package services_test

import (
	"context"
	"testing"

	"weav/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithSessionID(ctx, 42)
	ctx = services.WithTaskID(ctx, "task-1")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.SessionIDFromContext(ctx); !ok || id != 42 {
		t.Fatalf("unexpected session id: %v %v", id, ok)
	}
	if task, ok := services.TaskIDFromContext(ctx); !ok || task != "task-1" {
		t.Fatalf("unexpected task id: %v %v", task, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestBlankTaskPreservesContext(t *testing.T) {
	ctx := services.WithTaskID(context.Background(), "")
	if _, ok := services.TaskIDFromContext(ctx); ok {
		t.Fatal("expected no task value")
	}
}

func TestEnsureRequestIDKeepsExisting(t *testing.T) {
	ctx := services.WithRequestID(context.Background(), "fixed")
	ctx = services.EnsureRequestID(ctx)
	if rid, _ := services.RequestIDFromContext(ctx); rid != "fixed" {
		t.Fatalf("expected existing id preserved, got %q", rid)
	}
	fresh := services.EnsureRequestID(context.Background())
	if rid, ok := services.RequestIDFromContext(fresh); !ok || len(rid) != 36 {
		t.Fatalf("expected generated uuid, got %q", rid)
	}
}
