package catalog_test

import (
	"errors"
	"strings"
	"testing"

	"weav/internal/api"
	"weav/internal/catalog"
	"weav/internal/services"
)

func TestDefaultImageOptionsPerModel(t *testing.T) {
	flux := catalog.DefaultImageOptions(catalog.ImageModelFluxUltra)
	if flux.AspectRatio != "16:9" || flux.OutputFormat != "jpeg" {
		t.Fatalf("unexpected flux defaults %+v", flux)
	}
	unknown := catalog.DefaultImageOptions("someone/else")
	if unknown.AspectRatio != "1:1" || unknown.NumImages != 1 {
		t.Fatalf("unexpected fallback defaults %+v", unknown)
	}
}

func TestValidateImageOptions(t *testing.T) {
	if err := catalog.ValidateImageOptions(catalog.ImageModelImagen4, api.ImageOptions{AspectRatio: "16:9", NumImages: 2}); err != nil {
		t.Fatalf("expected valid options, got %v", err)
	}
	err := catalog.ValidateImageOptions(catalog.ImageModelKling, api.ImageOptions{NumImages: 3})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	seed := int64(1)
	if err := catalog.ValidateImageOptions(catalog.ImageModelNanoBanana, api.ImageOptions{Seed: &seed}); err == nil {
		t.Fatal("expected seed to be rejected for nano banana")
	}
	if err := catalog.ValidateImageOptions("custom/model", api.ImageOptions{AspectRatio: "7:3"}); err != nil {
		t.Fatalf("unknown models accept anything, got %v", err)
	}
}

func TestSupportedImageOptionsDropsWhatTheModelRejects(t *testing.T) {
	seed := int64(3)
	stored := api.ImageOptions{AspectRatio: "21:9", NumImages: 4, Resolution: "4K", OutputFormat: "webp", Seed: &seed}

	kling := catalog.SupportedImageOptions(catalog.ImageModelKling, stored)
	if kling.AspectRatio != "" || kling.NumImages != 0 || kling.Resolution != "" || kling.OutputFormat != "" {
		t.Fatalf("expected unsupported fields cleared, got %+v", kling)
	}
	if kling.Seed == nil || *kling.Seed != 3 {
		t.Fatalf("expected seed kept for kling, got %+v", kling.Seed)
	}
	if err := catalog.ValidateImageOptions(catalog.ImageModelKling, kling); err != nil {
		t.Fatalf("filtered options must validate: %v", err)
	}

	nano := catalog.SupportedImageOptions(catalog.ImageModelNanoBanana, stored)
	if nano.Resolution != "4K" || nano.OutputFormat != "webp" || nano.NumImages != 4 || nano.Seed != nil {
		t.Fatalf("unexpected nano options %+v", nano)
	}

	if got := catalog.SupportedImageOptions("someone/else", stored); got.AspectRatio != "21:9" {
		t.Fatalf("unknown models keep settings, got %+v", got)
	}
}

func TestGuideReflectsReference(t *testing.T) {
	withRef := catalog.GuideFor(catalog.ImageModelNanoBanana, true)
	if !strings.Contains(strings.Join(withRef.Capabilities, "|"), "Up to 1 image") {
		t.Fatalf("expected 1 attachment with reference, got %v", withRef.Capabilities)
	}
	kling := catalog.GuideFor(catalog.ImageModelKling, true)
	if !strings.Contains(kling.Limitations[0], "No extra attachments") {
		t.Fatalf("unexpected kling limitation %q", kling.Limitations[0])
	}
	other := catalog.GuideFor("custom/model", false)
	if other.ModelName != "Image model" {
		t.Fatalf("unexpected generic name %q", other.ModelName)
	}
}
