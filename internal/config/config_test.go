package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"weav/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "weav")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.StatePath() != filepath.Join(wantState, "state.db") {
		t.Fatalf("unexpected state path: %q", cfg.StatePath())
	}
	if cfg.Generation.PollMaxAttempts != 60 {
		t.Fatalf("expected 60 poll attempts, got %d", cfg.Generation.PollMaxAttempts)
	}
	if cfg.PollInterval().Milliseconds() != 800 {
		t.Fatalf("expected 800ms poll interval, got %s", cfg.PollInterval())
	}
	if cfg.ToastDuration().Milliseconds() != 2500 {
		t.Fatalf("expected 2.5s toast duration, got %s", cfg.ToastDuration())
	}
	if cfg.Models.DefaultChat != "google/gemini-2.5-flash" {
		t.Fatalf("unexpected default chat model %q", cfg.Models.DefaultChat)
	}
	if cfg.Models.DefaultImage != "fal-ai/imagen4/preview" {
		t.Fatalf("unexpected default image model %q", cfg.Models.DefaultImage)
	}
	if cfg.Uploads.MaxBytes != 10*1024*1024 {
		t.Fatalf("unexpected upload limit %d", cfg.Uploads.MaxBytes)
	}
}

func TestLoadCustomPathAndEnvOverride(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("WEAV_API_TOKEN", "env-token")
	t.Setenv("WEAV_LOG_LEVEL", "DEBUG")

	cfg := config.Default()
	cfg.API.BaseURL = "https://weav.example.com/"
	cfg.API.Token = "file-token"
	cfg.Paths.StateDir = filepath.Join(tempHome, "state")
	cfg.Models.Chat = []string{"openai/gpt-4o-mini"}

	configPath := filepath.Join(tempHome, "custom.toml")
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	loaded, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if loaded.API.BaseURL != "https://weav.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %q", loaded.API.BaseURL)
	}
	if loaded.API.Token != "env-token" {
		t.Fatalf("expected env token to win, got %q", loaded.API.Token)
	}
	if loaded.Logging.Level != "debug" {
		t.Fatalf("expected level lowercased from env, got %q", loaded.Logging.Level)
	}
	if len(loaded.Models.Chat) != 2 || loaded.Models.Chat[0] != loaded.Models.DefaultChat {
		t.Fatalf("expected default chat model prepended, got %v", loaded.Models.Chat)
	}
}

func TestLoadPromptLimits(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	configPath := filepath.Join(t.TempDir(), "limits.toml")
	content := `[generation]
max_chat_prompt_chars = 0
max_image_prompt_chars = -5

[generation.prompt_limits]
"kling-ai/kling-v1" = 500
" " = 10
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	loaded, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded.Generation.MaxChatPromptChars != 0 {
		t.Fatalf("expected chat limit disabled, got %d", loaded.Generation.MaxChatPromptChars)
	}
	if loaded.Generation.MaxImagePromptChars != 2000 {
		t.Fatalf("expected negative image limit reset to default, got %d", loaded.Generation.MaxImagePromptChars)
	}
	if len(loaded.Generation.PromptLimits) != 1 || loaded.Generation.PromptLimits["kling-ai/kling-v1"] != 500 {
		t.Fatalf("unexpected per-model limits %v", loaded.Generation.PromptLimits)
	}
}

func TestValidateRejectsBadBaseURL(t *testing.T) {
	cfg := config.Default()
	cfg.API.BaseURL = "ftp://weav.example.com"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "http or https") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestValidateRejectsUnknownLogFormat(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for log format")
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	target := filepath.Join(tempHome, "nested", "config.toml")
	if err := config.CreateSample(target); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(target)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.API.BaseURL != "http://localhost:8000" {
		t.Fatalf("unexpected sample base url %q", cfg.API.BaseURL)
	}
}
