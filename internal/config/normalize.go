package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAPI()
	c.normalizeGeneration()
	c.normalizeUploads()
	c.normalizeModels()
	c.normalizeLogging()
	if c.Toast.DurationMillis <= 0 {
		c.Toast.DurationMillis = defaultToastDurationMillis
	}
	return nil
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	var err error
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeAPI() {
	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	c.API.Token = strings.TrimSpace(c.API.Token)
	if c.API.TimeoutSeconds <= 0 {
		c.API.TimeoutSeconds = defaultAPITimeoutSeconds
	}
}

func (c *Config) normalizeGeneration() {
	if c.Generation.PollIntervalMillis <= 0 {
		c.Generation.PollIntervalMillis = defaultPollIntervalMillis
	}
	if c.Generation.PollMaxAttempts <= 0 {
		c.Generation.PollMaxAttempts = defaultPollMaxAttempts
	}
	if c.Generation.CancelTimeoutSeconds <= 0 {
		c.Generation.CancelTimeoutSeconds = defaultCancelTimeoutSeconds
	}
	// Zero disables a prompt limit.
	if c.Generation.MaxChatPromptChars < 0 {
		c.Generation.MaxChatPromptChars = defaultMaxChatPromptChars
	}
	if c.Generation.MaxImagePromptChars < 0 {
		c.Generation.MaxImagePromptChars = defaultMaxImagePromptChars
	}
	for model, limit := range c.Generation.PromptLimits {
		if strings.TrimSpace(model) == "" || limit < 0 {
			delete(c.Generation.PromptLimits, model)
		}
	}
}

func (c *Config) normalizeUploads() {
	if c.Uploads.MaxBytes <= 0 {
		c.Uploads.MaxBytes = defaultUploadMaxBytes
	}
	if c.Uploads.MaxDocumentBytes <= 0 {
		c.Uploads.MaxDocumentBytes = defaultDocumentMaxBytes
	}
	c.Uploads.AllowedTypes = normalizeList(c.Uploads.AllowedTypes, defaultAllowedTypes)
	c.Uploads.DocumentTypes = normalizeList(c.Uploads.DocumentTypes, defaultDocumentTypes)
}

func (c *Config) normalizeModels() {
	c.Models.DefaultChat = strings.TrimSpace(c.Models.DefaultChat)
	if c.Models.DefaultChat == "" {
		c.Models.DefaultChat = defaultChatModel
	}
	c.Models.DefaultImage = strings.TrimSpace(c.Models.DefaultImage)
	if c.Models.DefaultImage == "" {
		c.Models.DefaultImage = defaultImageModel
	}
	c.Models.Chat = normalizeList(c.Models.Chat, []string{c.Models.DefaultChat})
	for _, model := range c.Models.Chat {
		if model == c.Models.DefaultChat {
			return
		}
	}
	c.Models.Chat = append([]string{c.Models.DefaultChat}, c.Models.Chat...)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func normalizeList(values, fallback []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		value = strings.ToLower(strings.TrimSpace(value))
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	if len(out) == 0 {
		return append([]string(nil), fallback...)
	}
	return out
}
