package catalog

import "fmt"

// Guide is the short explanation shown when a user switches image model.
type Guide struct {
	ModelName    string
	Capabilities []string
	Limitations  []string
	Tips         []string
	Toast        string
}

// GuideFor describes what modelID can do. hasReference changes the attachment
// limits quoted for models that support references.
func GuideFor(modelID string, hasReference bool) Guide {
	name := ImageModelName(modelID)

	switch modelID {
	case ImageModelNanoBanana:
		maxAttach := 2
		if hasReference {
			maxAttach = 1
		}
		return Guide{
			ModelName: name,
			Capabilities: []string{
				"Reference-image editing",
				fmt.Sprintf("Up to %d image attachments", maxAttach),
				"Text-only prompts use the Gemini 3 Pro text-to-image path",
			},
			Limitations: []string{
				"Reference plus attachments is capped at 2 images in total",
				"Detailed edits need an explicit prompt to stay stable",
			},
			Tips: []string{
				"Good for compositing people or products and for style-preserving edits",
				"Set a reference image first to lock the composition",
			},
			Toast: "Nano Banana: reference editing supported, up to 2 attachments (1 while a reference is set).",
		}
	case ImageModelKling:
		capability := "One image attachment plus text instructions"
		limitation := "At most 1 image attachment"
		if hasReference {
			capability = "Reference image plus text instructions"
			limitation = "No extra attachments while a reference image is in use"
		}
		return Guide{
			ModelName:    name,
			Capabilities: []string{"Reference-based generation", capability},
			Limitations:  []string{limitation, "Two or more attachments are not supported"},
			Tips: []string{
				"Suited to variations and extensions of a single image",
				"Use Nano Banana to combine two or more images",
			},
			Toast: "Kling: at most 1 attachment, none while a reference image is in use.",
		}
	case ImageModelImagen4, ImageModelFluxUltra:
		return Guide{
			ModelName:    name,
			Capabilities: []string{"Text-to-image only"},
			Limitations:  []string{"No reference images", "No image attachments"},
			Tips:         []string{"Switch to Nano Banana or Kling for work that needs image input"},
			Toast:        name + ": text-only model. Image attachments and references are not supported.",
		}
	case ImageModelGemini:
		return Guide{
			ModelName:    name,
			Capabilities: []string{"Text-only or single-reference generation"},
			Limitations:  []string{"No image attachments"},
			Tips:         []string{"Use Nano Banana when you need attachments"},
			Toast:        name + ": attachments are not supported.",
		}
	}

	return Guide{
		ModelName:    name,
		Capabilities: []string{"Basic image generation"},
		Limitations:  []string{"No detailed limits are registered for this model"},
		Tips:         []string{"Switch models to compare their limits"},
		Toast:        "Switched to " + name + ".",
	}
}
