package config

const (
	defaultConfigPath           = "~/.config/weav/config.toml"
	defaultAPIBaseURL           = "http://localhost:8000"
	defaultAPITimeoutSeconds    = 30
	defaultStateDir             = "~/.local/share/weav"
	defaultLogDir               = "~/.local/share/weav/logs"
	defaultPollIntervalMillis   = 800
	defaultPollMaxAttempts      = 60
	defaultCancelTimeoutSeconds = 5
	defaultMaxChatPromptChars   = 8000
	defaultMaxImagePromptChars  = 2000
	defaultUploadMaxBytes       = 10 * 1024 * 1024
	defaultDocumentMaxBytes     = 50 * 1024 * 1024
	defaultChatModel            = "google/gemini-2.5-flash"
	defaultImageModel           = "fal-ai/imagen4/preview"
	defaultToastDurationMillis  = 2500
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

var (
	defaultAllowedTypes  = []string{"image/jpeg", "image/png", "image/webp"}
	defaultDocumentTypes = []string{"application/pdf"}
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		API: API{
			BaseURL:        defaultAPIBaseURL,
			TimeoutSeconds: defaultAPITimeoutSeconds,
		},
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Generation: Generation{
			PollIntervalMillis:   defaultPollIntervalMillis,
			PollMaxAttempts:      defaultPollMaxAttempts,
			CancelTimeoutSeconds: defaultCancelTimeoutSeconds,
			MaxChatPromptChars:   defaultMaxChatPromptChars,
			MaxImagePromptChars:  defaultMaxImagePromptChars,
		},
		Uploads: Uploads{
			MaxBytes:         defaultUploadMaxBytes,
			AllowedTypes:     append([]string(nil), defaultAllowedTypes...),
			DocumentTypes:    append([]string(nil), defaultDocumentTypes...),
			MaxDocumentBytes: defaultDocumentMaxBytes,
		},
		Models: Models{
			DefaultChat:  defaultChatModel,
			DefaultImage: defaultImageModel,
			Chat:         []string{defaultChatModel},
		},
		Toast: Toast{
			DurationMillis: defaultToastDurationMillis,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
