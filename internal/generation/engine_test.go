package generation_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"weav/internal/api"
	"weav/internal/catalog"
	"weav/internal/generation"
	"weav/internal/prefs"
	"weav/internal/services"
	"weav/internal/sessions"
	"weav/internal/testsupport"
)

type recorder struct {
	mu       sync.Mutex
	messages []string
}

func (r *recorder) Show(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}

// sleeps records every wait and optionally runs a hook on each one.
type sleeps struct {
	mu        sync.Mutex
	durations []time.Duration
	hook      func(call int)
}

func (s *sleeps) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.durations = append(s.durations, d)
	call := len(s.durations)
	hook := s.hook
	s.mu.Unlock()
	if hook != nil {
		hook(call)
	}
	return ctx.Err()
}

func (s *sleeps) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.durations)
}

type harness struct {
	fake   *testsupport.FakeBackend
	store  *sessions.Store
	prefs  *prefs.Store
	engine *generation.Engine
	toasts *recorder
	sleeps *sleeps
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	fake := testsupport.NewFakeBackend(t)
	client := fake.Client()
	h := &harness{
		fake:   fake,
		store:  sessions.New(client),
		prefs:  prefs.New(),
		toasts: &recorder{},
		sleeps: &sleeps{},
	}
	h.engine = generation.New(client, h.store, h.prefs, generation.Options{
		Sleep:    h.sleeps.sleep,
		Notifier: h.toasts,
	})
	return h
}

// open seeds a session on the fake and makes it current.
func (h *harness) open(t *testing.T, session api.Session) api.Session {
	t.Helper()
	seeded := h.fake.SeedSession(session)
	if err := h.store.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if _, err := h.store.Select(context.Background(), &seeded.ID); err != nil {
		t.Fatalf("Select: %v", err)
	}
	return seeded
}

func TestScenarioChatRoundTrip(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	session, err := h.store.Create(ctx, api.KindChat, "Notes")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	h.fake.ScriptJobs(api.JobPending, api.JobRunning, api.JobSuccess)

	result, err := h.engine.SendChatMessage(ctx, "Hello", generation.ChatOptions{Model: "m1"})
	if err != nil {
		t.Fatalf("SendChatMessage: %v", err)
	}
	if !result.Succeeded() || !result.Current || result.TaskID == "" {
		t.Fatalf("unexpected result %+v", result)
	}

	current := h.store.Current()
	if current == nil || current.ID != session.ID {
		t.Fatal("expected session still current")
	}
	var users, assistants int
	for _, msg := range current.Messages {
		switch msg.Role {
		case api.RoleUser:
			users++
			if msg.Content != "Hello" {
				t.Fatalf("unexpected user message %q", msg.Content)
			}
		case api.RoleAssistant:
			assistants++
		}
	}
	if users != 1 || assistants != 1 || current.Messages[len(current.Messages)-1].Role != api.RoleAssistant {
		t.Fatalf("unexpected messages %+v", current.Messages)
	}
	if h.engine.Sending() {
		t.Fatal("expected sending false")
	}
	if msg, ok := h.engine.Error(); ok {
		t.Fatalf("expected no error, got %q", msg)
	}
	if reqs := h.fake.ChatRequests(); len(reqs) != 1 || reqs[0].Model != "m1" {
		t.Fatalf("unexpected chat requests %+v", reqs)
	}
	if h.sleeps.count() != 2 {
		t.Fatalf("expected 2 waits between 3 polls, got %d", h.sleeps.count())
	}
}

func TestChatUsesStoredModelAndSystemPrompt(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	session, _ := h.store.Create(ctx, api.KindChat, "")
	h.prefs.SetChatModel(ctx, session.ID, "openai/gpt-4o-mini")

	if _, err := h.engine.SendChatMessage(ctx, "  Hi  ", generation.ChatOptions{SystemPrompt: "Be brief."}); err != nil {
		t.Fatalf("SendChatMessage: %v", err)
	}
	req := h.fake.ChatRequests()[0]
	if req.Model != "openai/gpt-4o-mini" || req.Prompt != "Hi" || req.SystemPrompt != "Be brief." {
		t.Fatalf("unexpected request %+v", req)
	}
}

func TestBlankPromptNeverReachesBackend(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if _, err := h.store.Create(ctx, api.KindChat, ""); err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err := h.engine.SendChatMessage(ctx, " \t ", generation.ChatOptions{})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if h.fake.Calls("POST /api/v1/chat/complete/") != 0 {
		t.Fatal("expected no submission")
	}
	if snap := h.engine.Snapshot(); snap.Sending || snap.TaskID != "" {
		t.Fatalf("unexpected state %+v", snap)
	}
	if toasts := h.toasts.all(); len(toasts) != 1 {
		t.Fatalf("expected a toast, got %v", toasts)
	}
}

func TestPromptLimits(t *testing.T) {
	fake := testsupport.NewFakeBackend(t)
	client := fake.Client()
	store := sessions.New(client)
	preferences := prefs.New()
	toasts := &recorder{}
	engine := generation.New(client, store, preferences, generation.Options{
		Sleep:    (&sleeps{}).sleep,
		Notifier: toasts,
		PromptLimits: generation.PromptLimits{
			Chat:   10,
			Image:  20,
			Models: map[string]int{catalog.ImageModelKling: 5},
		},
	})
	ctx := context.Background()
	chat, _ := store.Create(ctx, api.KindChat, "")

	if _, err := engine.SendChatMessage(ctx, "this prompt is too long", generation.ChatOptions{}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected long chat prompt rejected, got %v", err)
	}
	if _, err := engine.SendChatMessage(ctx, "안녕하세요 세계", generation.ChatOptions{}); err != nil {
		t.Fatalf("limit counts characters, not bytes: %v", err)
	}

	preferences.SetInputMode(chat.ID, prefs.InputImage)
	preferences.SetImageModel(ctx, chat.ID, catalog.ImageModelKling)
	if _, err := engine.SendImageRequest(ctx, "a small cat", generation.ImageOptions{}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected per-model limit applied, got %v", err)
	}
	if _, err := engine.SendImageRequest(ctx, "a small cat", generation.ImageOptions{Model: catalog.ImageModelNanoBanana}); err != nil {
		t.Fatalf("expected image limit of 20 to pass: %v", err)
	}

	if got := len(fake.ChatRequests()); got != 1 {
		t.Fatalf("expected 1 chat submission, got %d", got)
	}
	if got := len(fake.ImageRequests()); got != 1 {
		t.Fatalf("expected 1 image submission, got %d", got)
	}
	toastsSeen := toasts.all()
	if len(toastsSeen) != 2 || !strings.Contains(toastsSeen[1], "Kling") {
		t.Fatalf("unexpected toasts %v", toastsSeen)
	}
}

func TestChatRequiresChatSession(t *testing.T) {
	h := newHarness(t)
	h.open(t, api.Session{Kind: api.KindImage, Title: "Art"})
	if _, err := h.engine.SendChatMessage(context.Background(), "Hello", generation.ChatOptions{}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestJobFailureSurfacedForCurrentSession(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, _ = h.store.Create(ctx, api.KindChat, "")
	h.fake.ScriptJobs(api.JobRunning, api.JobFailure)
	h.fake.FailJobsWith("model overloaded")

	result, err := h.engine.SendChatMessage(ctx, "Hello", generation.ChatOptions{})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if result.Outcome != generation.OutcomeFailed || !result.Current {
		t.Fatalf("unexpected result %+v", result)
	}
	if msg, ok := h.engine.Error(); !ok || msg != "model overloaded" {
		t.Fatalf("expected server message in error slot, got %q", msg)
	}
	if h.engine.Sending() {
		t.Fatal("expected sending false")
	}

	h.engine.DismissError()
	if _, ok := h.engine.Error(); ok {
		t.Fatal("expected dismissed error")
	}
}

func TestJobFailureSuppressedAfterNavigation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	other := h.fake.SeedSession(api.Session{Kind: api.KindChat, Title: "Other"})
	first, _ := h.store.Create(ctx, api.KindChat, "First")
	h.fake.ScriptJobs(api.JobRunning, api.JobFailure)
	h.fake.FailJobsWith("model overloaded")
	h.sleeps.hook = func(call int) {
		if call == 1 {
			if _, err := h.store.Select(ctx, &other.ID); err != nil {
				t.Errorf("Select: %v", err)
			}
		}
	}

	result, err := h.engine.SendChatMessage(ctx, "Hello", generation.ChatOptions{})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if result.Outcome != generation.OutcomeFailed || result.Current {
		t.Fatalf("unexpected result %+v", result)
	}
	if msg, ok := h.engine.Error(); ok {
		t.Fatalf("error for a session out of view must not surface, got %q", msg)
	}
	// The final server state is still committed for when the user returns.
	for _, item := range h.store.Sessions() {
		if item.ID == first.ID && len(item.Messages) != 1 {
			t.Fatalf("expected refreshed list entry, got %+v", item)
		}
	}
}

func TestPollingTimesOutAfterBudget(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, _ = h.store.Create(ctx, api.KindChat, "")
	h.fake.ScriptJobs(api.JobRunning)

	result, err := h.engine.SendChatMessage(ctx, "Hello", generation.ChatOptions{})
	if !errors.Is(err, generation.ErrPollTimeout) || !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected poll timeout, got %v", err)
	}
	if result.Outcome != generation.OutcomeTimedOut {
		t.Fatalf("unexpected outcome %s", result.Outcome)
	}
	if calls := h.fake.Calls("GET /api/v1/chat/job/:task/"); calls != generation.DefaultMaxPollAttempts {
		t.Fatalf("expected %d status checks, got %d", generation.DefaultMaxPollAttempts, calls)
	}
	if h.sleeps.count() != generation.DefaultMaxPollAttempts-1 {
		t.Fatalf("unexpected wait count %d", h.sleeps.count())
	}
	for _, d := range h.sleeps.durations {
		if d != generation.DefaultPollInterval {
			t.Fatalf("unexpected interval %v", d)
		}
	}
	if msg, _ := h.engine.Error(); msg != generation.TimeoutMessage {
		t.Fatalf("expected timeout message, got %q", msg)
	}
}

func TestPollingTimeoutSuppressedAfterNavigation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, _ = h.store.Create(ctx, api.KindChat, "")
	h.fake.ScriptJobs(api.JobRunning)
	h.sleeps.hook = func(call int) {
		if call == 3 {
			_, _ = h.store.Select(ctx, nil)
		}
	}

	result, _ := h.engine.SendChatMessage(ctx, "Hello", generation.ChatOptions{})
	if result.Outcome != generation.OutcomeTimedOut || result.Current {
		t.Fatalf("unexpected result %+v", result)
	}
	if _, ok := h.engine.Error(); ok {
		t.Fatal("timeout must not surface for a session out of view")
	}
}

func TestSubmissionErrorFillsErrorSlot(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, _ = h.store.Create(ctx, api.KindChat, "")
	h.fake.Fail("POST /api/v1/chat/complete/", 400, `{"detail":"prompt rejected"}`)

	if _, err := h.engine.SendChatMessage(ctx, "Hello", generation.ChatOptions{}); err == nil {
		t.Fatal("expected submission error")
	}
	if msg, _ := h.engine.Error(); msg != "prompt rejected" {
		t.Fatalf("unexpected error slot %q", msg)
	}
	if h.fake.Calls("GET /api/v1/chat/job/:task/") != 0 {
		t.Fatal("nothing should be polled without a task")
	}
	if h.engine.Sending() {
		t.Fatal("expected sending false")
	}
}

// taskless answers chat submissions without a task id.
type taskless struct {
	generation.Backend
}

func (taskless) CompleteChat(context.Context, api.ChatCompleteRequest) (api.SubmitResponse, error) {
	return api.SubmitResponse{JobID: 3}, nil
}

func TestSubmissionWithoutTaskFails(t *testing.T) {
	fake := testsupport.NewFakeBackend(t)
	client := fake.Client()
	store := sessions.New(client)
	engine := generation.New(taskless{client}, store, prefs.New(), generation.Options{Sleep: (&sleeps{}).sleep})
	ctx := context.Background()
	if _, err := store.Create(ctx, api.KindChat, ""); err != nil {
		t.Fatalf("Create: %v", err)
	}

	result, err := engine.SendChatMessage(ctx, "hello", generation.ChatOptions{})
	if !errors.Is(err, services.ErrTransient) || result.Outcome != generation.OutcomeFailed {
		t.Fatalf("unexpected result %+v %v", result, err)
	}
	if msg, ok := engine.Error(); !ok || msg != generation.FailureMessage {
		t.Fatalf("expected failure in error slot, got %q", msg)
	}
	if engine.Sending() || fake.Calls("GET /api/v1/chat/job/:task/") != 0 {
		t.Fatal("expected no polling after a taskless submit")
	}
}

func TestNewOperationResetsErrorSlot(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, _ = h.store.Create(ctx, api.KindChat, "")
	h.fake.Fail("POST /api/v1/chat/complete/", 500, ``)
	_, _ = h.engine.SendChatMessage(ctx, "Hello", generation.ChatOptions{})
	if _, ok := h.engine.Error(); !ok {
		t.Fatal("expected error")
	}

	h.fake.Recover("POST /api/v1/chat/complete/")
	if _, err := h.engine.SendChatMessage(ctx, "Again", generation.ChatOptions{}); err != nil {
		t.Fatalf("SendChatMessage: %v", err)
	}
	if _, ok := h.engine.Error(); ok {
		t.Fatal("expected error reset by the new operation")
	}
}

func TestSendImageRequestSettingsAndAttachments(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	session := h.open(t, api.Session{Kind: api.KindImage, Title: "Art"})
	h.prefs.SetImageModel(ctx, session.ID, catalog.ImageModelNanoBanana)
	h.prefs.SetImageOptions(session.ID, api.ImageOptions{NumImages: 2})
	h.prefs.SetReferenceURL(session.ID, "https://cdn/ref.png")
	h.prefs.AppendAttachments(session.ID, prefs.Attachment{
		PreviewURL: "preview://a", RemoteURL: "https://cdn/a.png", Status: prefs.AttachmentReady,
	})

	var pending *generation.PendingImageRequest
	h.fake.ScriptJobs(api.JobRunning, api.JobSuccess)
	h.sleeps.hook = func(int) { pending = h.engine.PendingImageRequest() }

	result, err := h.engine.SendImageRequest(ctx, "a red fox", generation.ImageOptions{
		Settings: api.ImageOptions{AspectRatio: "16:9"},
	})
	if err != nil || !result.Succeeded() {
		t.Fatalf("unexpected result %+v %v", result, err)
	}

	req := h.fake.ImageRequests()[0]
	if req.Model != catalog.ImageModelNanoBanana || req.AspectRatio != "16:9" || req.NumImages != 2 || req.Resolution != "1K" {
		t.Fatalf("unexpected settings %+v", req)
	}
	if req.ReferenceImageURL != "https://cdn/ref.png" || len(req.ImageURLs) != 1 || req.ImageURLs[0] != "https://cdn/a.png" {
		t.Fatalf("unexpected inputs %+v", req)
	}
	if pending == nil || pending.Prompt != "a red fox" || len(pending.ReferenceImageURLs) != 1 || len(pending.AttachmentImageURLs) != 1 {
		t.Fatalf("unexpected pending placeholder %+v", pending)
	}
	if h.engine.PendingImageRequest() != nil {
		t.Fatal("expected placeholder cleared after settle")
	}
	if images := h.store.Current().ImageRecords; len(images) != 2 {
		t.Fatalf("expected 2 images recorded, got %d", len(images))
	}
}

func TestSessionReferencesOverrideLocalReference(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	session := h.open(t, api.Session{
		Kind:               api.KindImage,
		ReferenceImageURLs: []string{"https://cdn/s1.png", "https://cdn/s2.png", "https://cdn/s3.png"},
	})
	h.prefs.SetImageModel(ctx, session.ID, catalog.ImageModelNanoBanana)
	h.prefs.SetReferenceID(session.ID, 7)

	if _, err := h.engine.SendImageRequest(ctx, "poster", generation.ImageOptions{
		Reference: prefs.Reference{URL: "https://cdn/call.png"},
	}); err != nil {
		t.Fatalf("SendImageRequest: %v", err)
	}
	req := h.fake.ImageRequests()[0]
	if len(req.ReferenceImageURLs) != 2 || req.ReferenceImageURLs[1] != "https://cdn/s2.png" {
		t.Fatalf("expected two session references, got %v", req.ReferenceImageURLs)
	}
	if req.ReferenceImageURL != "" || req.ReferenceImageID != nil {
		t.Fatalf("local references must be ignored, got %+v", req)
	}
}

func TestImageRequestRejectsIncompleteAttachments(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	session := h.open(t, api.Session{Kind: api.KindImage})
	h.prefs.SetImageModel(ctx, session.ID, catalog.ImageModelNanoBanana)
	h.prefs.AppendAttachments(session.ID, prefs.Attachment{PreviewURL: "preview://a", Status: prefs.AttachmentUploading})

	if _, err := h.engine.SendImageRequest(ctx, "poster", generation.ImageOptions{}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if h.fake.Calls("POST /api/v1/chat/image/") != 0 || h.engine.Sending() {
		t.Fatal("expected nothing submitted")
	}
}

func TestImageRequestRejectsUnsupportedSettings(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	session := h.open(t, api.Session{Kind: api.KindImage})
	h.prefs.SetImageModel(ctx, session.ID, catalog.ImageModelKling)

	_, err := h.engine.SendImageRequest(ctx, "poster", generation.ImageOptions{Settings: api.ImageOptions{NumImages: 3}})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestStoredSettingsFollowModelSwitch(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	session := h.open(t, api.Session{
		Kind:         api.KindImage,
		ImageRecords: []api.ImageRecord{{ID: 1, Prompt: "fox", Model: catalog.ImageModelNanoBanana}},
	})
	h.prefs.SetImageModel(ctx, session.ID, catalog.ImageModelNanoBanana)
	h.prefs.SetImageOptions(session.ID, api.ImageOptions{Resolution: "4K"})
	h.prefs.SetImageModel(ctx, session.ID, catalog.ImageModelKling)

	if _, err := h.engine.SendImageRequest(ctx, "a cat", generation.ImageOptions{}); err != nil {
		t.Fatalf("SendImageRequest: %v", err)
	}
	if req := h.fake.ImageRequests()[0]; req.Model != catalog.ImageModelKling || req.Resolution != "" {
		t.Fatalf("unexpected request %+v", req)
	}
	if _, err := h.engine.RegenerateImage(ctx, session.ID, generation.RegenerateImageOptions{}); err != nil {
		t.Fatalf("RegenerateImage: %v", err)
	}
	if req := h.fake.ImageRegenerateRequests()[0]; req.Resolution != "" {
		t.Fatalf("unexpected regenerate body %+v", req)
	}
	if toasts := h.toasts.all(); len(toasts) != 0 {
		t.Fatalf("expected no toasts, got %v", toasts)
	}

	if _, err := h.engine.SendImageRequest(ctx, "a cat", generation.ImageOptions{
		Settings: api.ImageOptions{Resolution: "4K"},
	}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("explicit unsupported setting must be rejected, got %v", err)
	}
}

func TestChatSessionInImageMode(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	session, _ := h.store.Create(ctx, api.KindChat, "")

	if _, err := h.engine.SendImageRequest(ctx, "a cat", generation.ImageOptions{}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("text mode chat must reject image requests, got %v", err)
	}
	h.prefs.SetInputMode(session.ID, prefs.InputImage)
	if _, err := h.engine.SendImageRequest(ctx, "a cat", generation.ImageOptions{}); err != nil {
		t.Fatalf("SendImageRequest: %v", err)
	}
	if req := h.fake.ImageRequests()[0]; req.Model != catalog.DefaultImageModel || req.AspectRatio != "1:1" {
		t.Fatalf("unexpected request %+v", req)
	}
}

func TestRegenerateChat(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	session, _ := h.store.Create(ctx, api.KindChat, "")

	if _, err := h.engine.RegenerateChat(ctx, session.ID, generation.RegenerateChatOptions{}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected nothing to regenerate, got %v", err)
	}
	if _, err := h.engine.SendChatMessage(ctx, "Hello", generation.ChatOptions{}); err != nil {
		t.Fatalf("SendChatMessage: %v", err)
	}
	if _, err := h.engine.RegenerateChat(ctx, session.ID+100, generation.RegenerateChatOptions{}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected non-current session rejected, got %v", err)
	}

	result, err := h.engine.RegenerateChat(ctx, session.ID, generation.RegenerateChatOptions{Model: "m2"})
	if err != nil || !result.Succeeded() {
		t.Fatalf("RegenerateChat: %+v %v", result, err)
	}
	last, _ := h.store.Current().LastMessage()
	if last.Content != "[m2] regenerated" {
		t.Fatalf("expected regenerated reply, got %q", last.Content)
	}
}

func TestRegenerateImagePlaceholderOnlyWithPrompt(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	session := h.open(t, api.Session{
		Kind:         api.KindImage,
		ImageRecords: []api.ImageRecord{{ID: 1, Prompt: "fox", Model: catalog.ImageModelImagen4}},
	})

	h.fake.ScriptJobs(api.JobRunning, api.JobSuccess)
	var seen []*generation.PendingImageRequest
	h.sleeps.hook = func(int) { seen = append(seen, h.engine.PendingImageRequest()) }

	if _, err := h.engine.RegenerateImage(ctx, session.ID, generation.RegenerateImageOptions{}); err != nil {
		t.Fatalf("RegenerateImage: %v", err)
	}
	if _, err := h.engine.RegenerateImage(ctx, session.ID, generation.RegenerateImageOptions{Prompt: "wolf"}); err != nil {
		t.Fatalf("RegenerateImage: %v", err)
	}
	if len(seen) != 2 || seen[0] != nil || seen[1] == nil || seen[1].Prompt != "wolf" {
		t.Fatalf("unexpected placeholders %+v", seen)
	}
	reqs := h.fake.ImageRegenerateRequests()
	if reqs[0].Prompt != "" || reqs[0].Model != catalog.DefaultImageModel || reqs[1].Prompt != "wolf" {
		t.Fatalf("unexpected regenerate bodies %+v", reqs)
	}
	if len(h.store.Current().ImageRecords) != 3 {
		t.Fatal("expected two regenerated images")
	}
}
