package attachments

import (
	"fmt"
	"strings"

	"weav/internal/api"
	"weav/internal/catalog"
	"weav/internal/prefs"
	"weav/internal/services"
)

// Block messages shown when a model's attachment limit stops an action.
const (
	MessageKlingWithReference = "Kling does not support additional attachments while a reference image is in use. Use Nano Banana."
	MessageKlingSingle        = "Kling supports only 1 image attachment. Use Nano Banana to attach 2."
	MessageUseNanoOrKling     = "This model does not support image attachments. Use Nano Banana or Kling."
	MessageUnsupported        = "This model does not support image attachments."
)

// Policy is how many attachments the active model accepts and what to tell
// the user when that limit blocks them.
type Policy struct {
	MaxCount     int
	BlockMessage string
}

// PolicyFor derives the attachment policy. Regenerate requests accept at
// most one attachment even on models that allow more.
func PolicyFor(kind api.SessionKind, imageModel string, hasReference, regenerate bool) Policy {
	if kind == api.KindChat {
		return Policy{}
	}

	var policy Policy
	switch imageModel {
	case catalog.ImageModelNanoBanana:
		policy.MaxCount = 2
		if hasReference {
			policy.MaxCount = 1
		}
	case catalog.ImageModelKling:
		if hasReference {
			return Policy{BlockMessage: MessageKlingWithReference}
		}
		policy = Policy{MaxCount: 1, BlockMessage: MessageKlingSingle}
	case catalog.ImageModelImagen4, catalog.ImageModelFluxUltra, catalog.ImageModelGemini:
		return Policy{BlockMessage: MessageUseNanoOrKling}
	default:
		return Policy{BlockMessage: MessageUnsupported}
	}

	if regenerate {
		policy.MaxCount = min(1, policy.MaxCount)
	}
	return policy
}

// ReadyURLs returns the remote URLs of fully uploaded items in list order.
func ReadyURLs(items []prefs.Attachment) []string {
	urls := make([]string, 0, len(items))
	for _, item := range items {
		if item.Status == prefs.AttachmentReady && item.RemoteURL != "" {
			urls = append(urls, item.RemoteURL)
		}
	}
	return urls
}

// ValidateSubmit rejects a generation before any network call is made.
func ValidateSubmit(prompt string, items []prefs.Attachment, policy Policy) error {
	invalid := func(message string) error {
		return services.Wrap(services.ErrValidation, "attachments", "submit", message, nil)
	}
	if strings.TrimSpace(prompt) == "" {
		return invalid("Enter a prompt.")
	}
	count := len(items)
	if policy.MaxCount == 0 && count > 0 {
		return invalid(blockMessage(policy))
	}
	if count > policy.MaxCount {
		if policy.BlockMessage != "" {
			return invalid(policy.BlockMessage)
		}
		return invalid(fmt.Sprintf("This model accepts at most %d image attachments.", policy.MaxCount))
	}
	for _, item := range items {
		if item.RemoteURL == "" {
			return invalid("Wait for image attachments to finish uploading.")
		}
	}
	return nil
}

func blockMessage(policy Policy) string {
	if policy.BlockMessage != "" {
		return policy.BlockMessage
	}
	return "This session does not accept image attachments."
}
