package catalog

import (
	"fmt"
	"slices"

	"weav/internal/api"
	"weav/internal/services"
)

// Image model identifiers understood by the backend.
const (
	ImageModelImagen4    = "fal-ai/imagen4/preview"
	ImageModelFluxUltra  = "fal-ai/flux-pro/v1.1-ultra"
	ImageModelKling      = "kling-ai/kling-v1"
	ImageModelNanoBanana = "fal-ai/nano-banana-pro"
	ImageModelGemini     = "fal-ai/gemini-3-pro-image-preview"

	DefaultChatModel  = "google/gemini-2.5-flash"
	DefaultImageModel = ImageModelImagen4
)

// ImageModel describes one selectable image model and the settings it accepts.
type ImageModel struct {
	ID            string
	Name          string
	AspectRatios  []string
	NumImagesMax  int
	Resolutions   []string
	OutputFormats []string
	SupportsSeed  bool
	Defaults      api.ImageOptions
}

var imageModels = []ImageModel{
	{
		ID:            ImageModelImagen4,
		Name:          "Imagen 4",
		AspectRatios:  []string{"1:1", "16:9", "9:16", "3:4", "4:3"},
		NumImagesMax:  4,
		Resolutions:   []string{"1K", "2K"},
		OutputFormats: []string{"png", "jpeg"},
		SupportsSeed:  true,
		Defaults:      api.ImageOptions{AspectRatio: "1:1", NumImages: 1, Resolution: "1K", OutputFormat: "png"},
	},
	{
		ID:            ImageModelFluxUltra,
		Name:          "FLUX 1.1 Ultra",
		AspectRatios:  []string{"1:1", "16:9", "9:16", "21:9", "9:21", "3:4", "4:3"},
		NumImagesMax:  4,
		OutputFormats: []string{"jpeg", "png"},
		SupportsSeed:  true,
		Defaults:      api.ImageOptions{AspectRatio: "16:9", NumImages: 1, OutputFormat: "jpeg"},
	},
	{
		ID:           ImageModelKling,
		Name:         "Kling",
		AspectRatios: []string{"1:1", "16:9", "9:16"},
		NumImagesMax: 1,
		SupportsSeed: true,
		Defaults:     api.ImageOptions{AspectRatio: "1:1", NumImages: 1},
	},
	{
		ID:            ImageModelNanoBanana,
		Name:          "Nano Banana Pro",
		AspectRatios:  []string{"1:1", "16:9", "9:16", "3:4", "4:3"},
		NumImagesMax:  4,
		Resolutions:   []string{"1K", "2K", "4K"},
		OutputFormats: []string{"png", "jpeg", "webp"},
		Defaults:      api.ImageOptions{AspectRatio: "1:1", NumImages: 1, Resolution: "1K", OutputFormat: "png"},
	},
	{
		ID:            ImageModelGemini,
		Name:          "Gemini 3 Pro Image",
		AspectRatios:  []string{"1:1", "16:9", "9:16", "3:4", "4:3"},
		NumImagesMax:  4,
		Resolutions:   []string{"1K", "2K", "4K"},
		OutputFormats: []string{"png", "jpeg", "webp"},
		Defaults:      api.ImageOptions{AspectRatio: "1:1", NumImages: 1, Resolution: "1K", OutputFormat: "png"},
	},
}

// ImageModels returns the selectable image models in menu order.
func ImageModels() []ImageModel {
	out := make([]ImageModel, len(imageModels))
	copy(out, imageModels)
	return out
}

// LookupImageModel finds a model by id.
func LookupImageModel(id string) (ImageModel, bool) {
	for _, model := range imageModels {
		if model.ID == id {
			return model, true
		}
	}
	return ImageModel{}, false
}

// ImageModelName returns the display name of a model, or a generic label for
// unknown ids.
func ImageModelName(id string) string {
	if model, ok := LookupImageModel(id); ok {
		return model.Name
	}
	return "Image model"
}

// DefaultImageOptions returns the per-model starting settings. Unknown models
// get a 1:1 single image.
func DefaultImageOptions(modelID string) api.ImageOptions {
	if model, ok := LookupImageModel(modelID); ok {
		return model.Defaults.Clone()
	}
	return api.ImageOptions{AspectRatio: "1:1", NumImages: 1}
}

// ValidateImageOptions checks opts against what the model accepts. Unset
// fields are always valid, and unknown models accept anything.
func ValidateImageOptions(modelID string, opts api.ImageOptions) error {
	model, ok := LookupImageModel(modelID)
	if !ok {
		return nil
	}
	invalid := func(field, value string) error {
		return services.Wrap(services.ErrValidation, "catalog", "image options",
			fmt.Sprintf("%s does not support %s %q", model.Name, field, value), nil)
	}
	if opts.AspectRatio != "" && !slices.Contains(model.AspectRatios, opts.AspectRatio) {
		return invalid("aspect ratio", opts.AspectRatio)
	}
	if opts.NumImages < 0 || opts.NumImages > model.NumImagesMax {
		return invalid("image count", fmt.Sprint(opts.NumImages))
	}
	if opts.Resolution != "" && !slices.Contains(model.Resolutions, opts.Resolution) {
		return invalid("resolution", opts.Resolution)
	}
	if opts.OutputFormat != "" && !slices.Contains(model.OutputFormats, opts.OutputFormat) {
		return invalid("output format", opts.OutputFormat)
	}
	if opts.Seed != nil && !model.SupportsSeed {
		return invalid("seed", fmt.Sprint(*opts.Seed))
	}
	return nil
}

// SupportedImageOptions returns opts with every field the model does not
// accept cleared, so the model defaults show through. Unknown models keep
// everything.
func SupportedImageOptions(modelID string, opts api.ImageOptions) api.ImageOptions {
	model, ok := LookupImageModel(modelID)
	out := opts.Clone()
	if !ok {
		return out
	}
	if out.AspectRatio != "" && !slices.Contains(model.AspectRatios, out.AspectRatio) {
		out.AspectRatio = ""
	}
	if out.NumImages < 0 || out.NumImages > model.NumImagesMax {
		out.NumImages = 0
	}
	if out.Resolution != "" && !slices.Contains(model.Resolutions, out.Resolution) {
		out.Resolution = ""
	}
	if out.OutputFormat != "" && !slices.Contains(model.OutputFormats, out.OutputFormat) {
		out.OutputFormat = ""
	}
	if !model.SupportsSeed {
		out.Seed = nil
	}
	return out
}
