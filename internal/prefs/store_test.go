package prefs_test

import (
	"context"
	"errors"
	"testing"

	"weav/internal/api"
	"weav/internal/catalog"
	"weav/internal/localstate"
	"weav/internal/prefs"
)

type memoryModels struct {
	saved   map[int64]localstate.SessionModels
	saves   int
	loadErr error
	saveErr error
}

func (m *memoryModels) SessionModels(context.Context) (map[int64]localstate.SessionModels, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.saved, nil
}

func (m *memoryModels) SaveSessionModels(_ context.Context, models map[int64]localstate.SessionModels) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = models
	return nil
}

func TestModelDefaultsAndRoundTrip(t *testing.T) {
	store := prefs.New()
	if got := store.ChatModel(1); got != catalog.DefaultChatModel {
		t.Fatalf("unexpected default chat model %q", got)
	}
	if got := store.ImageModel(1); got != catalog.DefaultImageModel {
		t.Fatalf("unexpected default image model %q", got)
	}

	ctx := context.Background()
	store.SetChatModel(ctx, 1, "openai/gpt-4o-mini")
	store.SetImageModel(ctx, 1, catalog.ImageModelKling)
	if got := store.ChatModel(1); got != "openai/gpt-4o-mini" {
		t.Fatalf("chat model round trip failed: %q", got)
	}
	if got := store.ImageModel(1); got != catalog.ImageModelKling {
		t.Fatalf("image model round trip failed: %q", got)
	}
	if got := store.ChatModel(2); got != catalog.DefaultChatModel {
		t.Fatalf("other session affected: %q", got)
	}
	if store.InputMode(1) != prefs.InputText {
		t.Fatal("expected text input mode by default")
	}
}

func TestConfiguredDefaults(t *testing.T) {
	store := prefs.New(prefs.WithDefaults("m1", " "))
	if store.ChatModel(5) != "m1" {
		t.Fatalf("expected configured chat default, got %q", store.ChatModel(5))
	}
	if store.ImageModel(5) != catalog.DefaultImageModel {
		t.Fatalf("blank image default should keep built-in, got %q", store.ImageModel(5))
	}
}

func TestModelSelectionsPersist(t *testing.T) {
	ctx := context.Background()
	models := &memoryModels{saved: map[int64]localstate.SessionModels{4: {Image: catalog.ImageModelNanoBanana}}}
	store := prefs.New(prefs.WithModelStore(models))
	store.Load(ctx)
	if got := store.ImageModel(4); got != catalog.ImageModelNanoBanana {
		t.Fatalf("expected restored image model, got %q", got)
	}

	store.SetChatModel(ctx, 7, "m2")
	if models.saved[7].Chat != "m2" || models.saved[4].Image != catalog.ImageModelNanoBanana {
		t.Fatalf("unexpected persisted map %+v", models.saved)
	}

	store.Forget(ctx, 7)
	if _, ok := models.saved[7]; ok {
		t.Fatal("expected forgotten session removed from persisted map")
	}
}

func TestPersistenceFailuresAreNotFatal(t *testing.T) {
	ctx := context.Background()
	models := &memoryModels{loadErr: errors.New("corrupt"), saveErr: errors.New("disk full")}
	store := prefs.New(prefs.WithModelStore(models))
	store.Load(ctx)
	store.SetChatModel(ctx, 1, "m1")
	if store.ChatModel(1) != "m1" {
		t.Fatal("in-memory selection should survive a failed save")
	}
	if models.saves != 1 {
		t.Fatalf("expected one save attempt, got %d", models.saves)
	}
}

func TestImageOptionsLayering(t *testing.T) {
	store := prefs.New()
	ctx := context.Background()
	store.SetImageModel(ctx, 1, catalog.ImageModelFluxUltra)

	defaults := store.ImageOptions(1)
	if defaults.AspectRatio != "16:9" || defaults.OutputFormat != "jpeg" || defaults.NumImages != 1 {
		t.Fatalf("expected FLUX defaults, got %+v", defaults)
	}

	store.SetImageOptions(1, api.ImageOptions{NumImages: 3})
	store.SetImageOptions(1, api.ImageOptions{AspectRatio: "1:1"})
	session := store.ImageOptions(1)
	if session.NumImages != 3 || session.AspectRatio != "1:1" || session.OutputFormat != "jpeg" {
		t.Fatalf("expected partial merges to accumulate, got %+v", session)
	}

	seed := int64(42)
	merged := store.MergedImageOptions(1, api.ImageOptions{AspectRatio: "9:16", Seed: &seed})
	if merged.AspectRatio != "9:16" || merged.NumImages != 3 || merged.Seed == nil || *merged.Seed != 42 {
		t.Fatalf("expected call overrides to win, got %+v", merged)
	}
	seed = 7
	if *merged.Seed != 42 {
		t.Fatal("merged options must not alias the caller's seed")
	}

	store.ResetImageOptions(1)
	if got := store.ImageOptions(1); got.NumImages != 1 || got.AspectRatio != "16:9" {
		t.Fatalf("expected defaults after reset, got %+v", got)
	}
}

func TestImageOptionsSurviveModelSwitch(t *testing.T) {
	store := prefs.New()
	ctx := context.Background()
	store.SetImageModel(ctx, 1, catalog.ImageModelNanoBanana)
	store.SetImageOptions(1, api.ImageOptions{Resolution: "4K", AspectRatio: "16:9"})

	store.SetImageModel(ctx, 1, catalog.ImageModelKling)
	kling := store.ImageOptions(1)
	if kling.Resolution != "" || kling.AspectRatio != "16:9" {
		t.Fatalf("expected resolution dropped for kling, got %+v", kling)
	}

	store.SetImageModel(ctx, 1, catalog.ImageModelNanoBanana)
	if got := store.ImageOptions(1); got.Resolution != "4K" {
		t.Fatalf("expected stored resolution back for nano, got %+v", got)
	}
	if got := store.ImageOptionsFor(1, catalog.ImageModelKling, api.ImageOptions{}); got.Resolution != "" {
		t.Fatalf("expected per-model merge to skip resolution, got %+v", got)
	}
}

func TestReferenceURLAndIDAreMutuallyExclusive(t *testing.T) {
	store := prefs.New()
	store.SetReferenceID(1, 99)
	store.SetReferenceURL(1, "https://cdn/ref.png")
	ref := store.Reference(1)
	if ref.URL != "https://cdn/ref.png" || ref.ID != nil {
		t.Fatalf("url should clear id, got %+v", ref)
	}

	store.SetReferenceID(1, 12)
	ref = store.Reference(1)
	if ref.URL != "" || ref.ID == nil || *ref.ID != 12 {
		t.Fatalf("id should clear url, got %+v", ref)
	}

	store.ClearReference(1)
	if !store.Reference(1).IsZero() {
		t.Fatal("expected cleared reference")
	}
}

func TestAttachmentListOperations(t *testing.T) {
	store := prefs.New()
	store.AppendAttachments(1,
		prefs.Attachment{PreviewURL: "preview://a", Status: prefs.AttachmentUploading},
		prefs.Attachment{PreviewURL: "preview://b", Status: prefs.AttachmentUploading},
	)
	store.UpdateAttachments(1, func(item *prefs.Attachment) {
		if item.PreviewURL == "preview://a" {
			item.RemoteURL = "https://cdn/a.png"
			item.Status = prefs.AttachmentReady
		}
	})

	items := store.Attachments(1)
	if len(items) != 2 || items[0].Status != prefs.AttachmentReady || items[1].Status != prefs.AttachmentUploading {
		t.Fatalf("unexpected items %+v", items)
	}
	items[0].Status = prefs.AttachmentError
	if store.Attachments(1)[0].Status != prefs.AttachmentReady {
		t.Fatal("Attachments must return a copy")
	}

	if _, ok := store.RemoveAttachment(1, "preview://missing"); ok {
		t.Fatal("expected missing preview not removed")
	}
	removed, ok := store.RemoveAttachment(1, "preview://a")
	if !ok || removed.RemoteURL != "https://cdn/a.png" {
		t.Fatalf("unexpected removal %+v %v", removed, ok)
	}
	if cleared := store.ClearAttachments(1); len(cleared) != 1 {
		t.Fatalf("expected one cleared attachment, got %d", len(cleared))
	}
	if len(store.Attachments(1)) != 0 {
		t.Fatal("expected empty list")
	}
}

func TestDocumentCache(t *testing.T) {
	store := prefs.New()
	if _, ok := store.Documents(3); ok {
		t.Fatal("expected empty cache to report not loaded")
	}
	store.SetDocuments(3, []api.DocumentItem{{ID: 1, OriginalName: "a.pdf"}, {ID: 2, OriginalName: "b.pdf"}})
	store.ForgetDocument(3, 1)
	docs, ok := store.Documents(3)
	if !ok || len(docs) != 1 || docs[0].ID != 2 {
		t.Fatalf("unexpected cache %+v %v", docs, ok)
	}
}

func TestForgetReturnsQueuedAttachments(t *testing.T) {
	store := prefs.New()
	store.AppendAttachments(8, prefs.Attachment{PreviewURL: "preview://x"})
	store.SetInputMode(8, prefs.InputImage)

	leftover := store.Forget(context.Background(), 8)
	if len(leftover) != 1 {
		t.Fatalf("expected leftover attachment, got %v", leftover)
	}
	if store.InputMode(8) != prefs.InputText {
		t.Fatal("expected defaults after forget")
	}
}
