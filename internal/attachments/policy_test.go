package attachments_test

import (
	"errors"
	"testing"

	"weav/internal/api"
	"weav/internal/attachments"
	"weav/internal/catalog"
	"weav/internal/prefs"
	"weav/internal/services"
)

func TestPolicyFor(t *testing.T) {
	cases := []struct {
		name       string
		kind       api.SessionKind
		model      string
		reference  bool
		regenerate bool
		max        int
		message    string
	}{
		{name: "chat", kind: api.KindChat, model: catalog.ImageModelNanoBanana, max: 0},
		{name: "nano", kind: api.KindImage, model: catalog.ImageModelNanoBanana, max: 2},
		{name: "nano with reference", kind: api.KindImage, model: catalog.ImageModelNanoBanana, reference: true, max: 1},
		{name: "nano regenerate", kind: api.KindImage, model: catalog.ImageModelNanoBanana, regenerate: true, max: 1},
		{name: "kling with reference", kind: api.KindImage, model: catalog.ImageModelKling, reference: true, max: 0, message: attachments.MessageKlingWithReference},
		{name: "kling", kind: api.KindImage, model: catalog.ImageModelKling, max: 1, message: attachments.MessageKlingSingle},
		{name: "kling regenerate", kind: api.KindImage, model: catalog.ImageModelKling, regenerate: true, max: 1, message: attachments.MessageKlingSingle},
		{name: "imagen", kind: api.KindImage, model: catalog.ImageModelImagen4, max: 0, message: attachments.MessageUseNanoOrKling},
		{name: "flux", kind: api.KindStudio, model: catalog.ImageModelFluxUltra, max: 0, message: attachments.MessageUseNanoOrKling},
		{name: "gemini", kind: api.KindImage, model: catalog.ImageModelGemini, max: 0, message: attachments.MessageUseNanoOrKling},
		{name: "unknown", kind: api.KindImage, model: "acme/painter", max: 0, message: attachments.MessageUnsupported},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := attachments.PolicyFor(tc.kind, tc.model, tc.reference, tc.regenerate)
			if got.MaxCount != tc.max || got.BlockMessage != tc.message {
				t.Fatalf("unexpected policy %+v", got)
			}
		})
	}
}

func TestValidateSubmit(t *testing.T) {
	ready := prefs.Attachment{PreviewURL: "preview://a", RemoteURL: "https://cdn/a.png", Status: prefs.AttachmentReady}
	uploading := prefs.Attachment{PreviewURL: "preview://b", Status: prefs.AttachmentUploading}
	nano := attachments.PolicyFor(api.KindImage, catalog.ImageModelNanoBanana, false, false)
	imagen := attachments.PolicyFor(api.KindImage, catalog.ImageModelImagen4, false, false)

	cases := []struct {
		name   string
		prompt string
		items  []prefs.Attachment
		policy attachments.Policy
		ok     bool
	}{
		{name: "ok", prompt: "a fox", items: []prefs.Attachment{ready}, policy: nano, ok: true},
		{name: "blank prompt", prompt: "  \n", policy: nano},
		{name: "too many", prompt: "a fox", items: []prefs.Attachment{ready, ready, ready}, policy: nano},
		{name: "zero allowed", prompt: "a fox", items: []prefs.Attachment{ready}, policy: imagen},
		{name: "still uploading", prompt: "a fox", items: []prefs.Attachment{ready, uploading}, policy: nano},
		{name: "no attachments on imagen", prompt: "a fox", policy: imagen, ok: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := attachments.ValidateSubmit(tc.prompt, tc.items, tc.policy)
			if tc.ok && err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if !tc.ok && !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestReadyURLsSkipsIncompleteItems(t *testing.T) {
	urls := attachments.ReadyURLs([]prefs.Attachment{
		{RemoteURL: "https://cdn/1.png", Status: prefs.AttachmentReady},
		{Status: prefs.AttachmentUploading},
		{RemoteURL: "https://cdn/3.png", Status: prefs.AttachmentError},
	})
	if len(urls) != 1 || urls[0] != "https://cdn/1.png" {
		t.Fatalf("unexpected urls %v", urls)
	}
}
