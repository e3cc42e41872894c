package generation

import (
	"fmt"
	"unicode/utf8"

	"weav/internal/catalog"
)

// PromptLimits caps prompt length in characters. Models entries win over
// the per-kind values; zero means unlimited.
type PromptLimits struct {
	Chat   int
	Image  int
	Models map[string]int
}

func (l PromptLimits) limit(model string, image bool) int {
	if n, ok := l.Models[model]; ok {
		return n
	}
	if image {
		return l.Image
	}
	return l.Chat
}

// checkPrompt rejects prompts longer than the model allows.
func (e *Engine) checkPrompt(operation, prompt, model string, image bool) error {
	maxChars := e.limits.limit(model, image)
	if maxChars <= 0 {
		return nil
	}
	if n := utf8.RuneCountInString(prompt); n > maxChars {
		name := model
		if image {
			name = catalog.ImageModelName(model)
		}
		return e.reject(operation, fmt.Sprintf("Prompt is too long for %s (%d of %d characters).", name, n, maxChars))
	}
	return nil
}
