package generation

import (
	"context"
	"strings"

	"weav/internal/api"
	"weav/internal/attachments"
	"weav/internal/catalog"
	"weav/internal/prefs"
)

// ChatOptions are per-call settings for SendChatMessage.
type ChatOptions struct {
	Model        string
	SystemPrompt string
}

// SendChatMessage posts prompt to the current chat session and waits for the
// assistant reply.
func (e *Engine) SendChatMessage(ctx context.Context, prompt string, opts ChatOptions) (Result, error) {
	session := e.sessions.Current()
	if session == nil || session.Kind != api.KindChat {
		return Result{}, e.reject("chat", "Select a chat session first.")
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return Result{}, e.reject("chat", "Enter a message.")
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = e.prefs.ChatModel(session.ID)
	}
	if err := e.checkPrompt("chat", prompt, model, false); err != nil {
		return Result{}, err
	}

	op, err := e.begin()
	if err != nil {
		return Result{}, err
	}
	return e.run(ctx, op, session.ID, "chat", func(ctx context.Context) (api.SubmitResponse, error) {
		return e.backend.CompleteChat(ctx, api.ChatCompleteRequest{
			SessionID:    session.ID,
			Prompt:       prompt,
			Model:        model,
			SystemPrompt: strings.TrimSpace(opts.SystemPrompt),
		})
	})
}

// ImageOptions are per-call settings for SendImageRequest. Set fields
// override the session's stored settings.
type ImageOptions struct {
	Model     string
	Settings  api.ImageOptions
	Reference prefs.Reference
	// ImageURLs replaces the session's queued attachments when non-nil.
	ImageURLs []string
}

// SendImageRequest generates an image in the current image session, or in a
// chat session whose composer is in image mode.
func (e *Engine) SendImageRequest(ctx context.Context, prompt string, opts ImageOptions) (Result, error) {
	session := e.sessions.Current()
	if !acceptsImages(session, e.prefs) {
		return Result{}, e.reject("image", "Select an image session or switch the chat to image mode.")
	}
	prompt = strings.TrimSpace(prompt)
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = e.prefs.ImageModel(session.ID)
	}
	if err := e.checkPrompt("image", prompt, model, true); err != nil {
		return Result{}, err
	}

	items := e.prefs.Attachments(session.ID)
	if opts.ImageURLs != nil {
		items = make([]prefs.Attachment, 0, len(opts.ImageURLs))
		for _, url := range opts.ImageURLs {
			items = append(items, prefs.Attachment{RemoteURL: url, Status: prefs.AttachmentReady})
		}
	}
	reference := prefs.ResolveReference(session, e.prefs.Reference(session.ID), opts.Reference)
	hasReference := len(reference.ImageURLs) > 0 || reference.URL != "" || reference.ID != nil
	policy := attachments.PolicyFor(session.Kind, model, hasReference, false)
	if err := attachments.ValidateSubmit(prompt, items, policy); err != nil {
		e.notifier.Show(userMessage(err))
		return Result{}, err
	}
	attachmentURLs := attachments.ReadyURLs(items)

	if err := catalog.ValidateImageOptions(model, opts.Settings); err != nil {
		e.notifier.Show(userMessage(err))
		return Result{}, err
	}
	settings := e.prefs.ImageOptionsFor(session.ID, model, opts.Settings)

	op, err := e.begin()
	if err != nil {
		return Result{}, err
	}
	e.setPending(op, PendingImageRequest{
		SessionID:           session.ID,
		Prompt:              prompt,
		ReferenceImageURLs:  reference.DisplayURLs(),
		AttachmentImageURLs: attachmentURLs,
	})
	return e.run(ctx, op, session.ID, "image", func(ctx context.Context) (api.SubmitResponse, error) {
		return e.backend.GenerateImage(ctx, api.ImageRequest{
			SessionID:          session.ID,
			Prompt:             prompt,
			Model:              model,
			AspectRatio:        settings.AspectRatio,
			NumImages:          settings.NumImages,
			ReferenceImageID:   reference.ID,
			ReferenceImageURL:  reference.URL,
			ReferenceImageURLs: reference.ImageURLs,
			ImageURLs:          attachmentURLs,
			Resolution:         settings.Resolution,
			OutputFormat:       settings.OutputFormat,
			Seed:               settings.Seed,
		})
	})
}

// RegenerateChatOptions are optional overrides for RegenerateChat.
type RegenerateChatOptions struct {
	Model  string
	Prompt string
}

// RegenerateChat re-runs the last assistant turn of sessionID, which must be
// the current chat session.
func (e *Engine) RegenerateChat(ctx context.Context, sessionID int64, opts RegenerateChatOptions) (Result, error) {
	session := e.sessions.Current()
	if session == nil || session.ID != sessionID || session.Kind != api.KindChat {
		return Result{}, e.reject("regenerate chat", "Open the chat session to regenerate.")
	}
	if !session.CanRegenerateChat() {
		return Result{}, e.reject("regenerate chat", "Nothing to regenerate.")
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = e.prefs.ChatModel(sessionID)
	}
	if err := e.checkPrompt("regenerate chat", strings.TrimSpace(opts.Prompt), model, false); err != nil {
		return Result{}, err
	}

	op, err := e.begin()
	if err != nil {
		return Result{}, err
	}
	return e.run(ctx, op, sessionID, "regenerate chat", func(ctx context.Context) (api.SubmitResponse, error) {
		return e.backend.RegenerateChat(ctx, api.ChatRegenerateRequest{
			SessionID: sessionID,
			Model:     model,
			Prompt:    strings.TrimSpace(opts.Prompt),
		})
	})
}

// RegenerateImageOptions are optional overrides for RegenerateImage.
type RegenerateImageOptions struct {
	Prompt   string
	Model    string
	Settings api.ImageOptions
}

// RegenerateImage re-runs the last image turn of sessionID. A placeholder is
// shown only when a new prompt is given.
func (e *Engine) RegenerateImage(ctx context.Context, sessionID int64, opts RegenerateImageOptions) (Result, error) {
	session := e.sessions.Current()
	if session == nil || session.ID != sessionID || !acceptsImages(session, e.prefs) {
		return Result{}, e.reject("regenerate image", "Open the image session to regenerate.")
	}
	if _, ok := session.LastImageRecord(); !ok {
		return Result{}, e.reject("regenerate image", "Nothing to regenerate.")
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = e.prefs.ImageModel(sessionID)
	}
	if err := catalog.ValidateImageOptions(model, opts.Settings); err != nil {
		e.notifier.Show(userMessage(err))
		return Result{}, err
	}
	settings := e.prefs.ImageOptionsFor(sessionID, model, opts.Settings)
	prompt := strings.TrimSpace(opts.Prompt)
	if err := e.checkPrompt("regenerate image", prompt, model, true); err != nil {
		return Result{}, err
	}

	op, err := e.begin()
	if err != nil {
		return Result{}, err
	}
	if prompt != "" {
		e.setPending(op, PendingImageRequest{SessionID: sessionID, Prompt: prompt})
	}
	return e.run(ctx, op, sessionID, "regenerate image", func(ctx context.Context) (api.SubmitResponse, error) {
		return e.backend.RegenerateImage(ctx, api.ImageRegenerateRequest{
			SessionID:    sessionID,
			Prompt:       prompt,
			Model:        model,
			AspectRatio:  settings.AspectRatio,
			Resolution:   settings.Resolution,
			OutputFormat: settings.OutputFormat,
			Seed:         settings.Seed,
		})
	})
}

func acceptsImages(session *api.Session, store *prefs.Store) bool {
	if session == nil {
		return false
	}
	switch session.Kind {
	case api.KindImage:
		return true
	case api.KindChat:
		return store.InputMode(session.ID) == prefs.InputImage
	default:
		return false
	}
}

// userMessage strips the classification prefix from a validation error.
func userMessage(err error) string {
	msg := err.Error()
	if idx := strings.LastIndex(msg, ": "); idx >= 0 {
		return msg[idx+2:]
	}
	return msg
}
