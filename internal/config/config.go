package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// API contains connection settings for the WEAV backend.
type API struct {
	BaseURL        string `toml:"base_url" env:"WEAV_API_BASE_URL"`
	Token          string `toml:"token" env:"WEAV_API_TOKEN"`
	TimeoutSeconds int    `toml:"timeout_seconds" env:"WEAV_API_TIMEOUT_SECONDS"`
}

// Paths contains local directories used by the client.
type Paths struct {
	StateDir string `toml:"state_dir" env:"WEAV_STATE_DIR"`
	LogDir   string `toml:"log_dir" env:"WEAV_LOG_DIR"`
}

// Generation contains job polling, cancellation, and prompt length settings.
type Generation struct {
	PollIntervalMillis   int            `toml:"poll_interval_ms"`
	PollMaxAttempts      int            `toml:"poll_max_attempts"`
	CancelTimeoutSeconds int            `toml:"cancel_timeout_seconds"`
	MaxChatPromptChars   int            `toml:"max_chat_prompt_chars"`
	MaxImagePromptChars  int            `toml:"max_image_prompt_chars"`
	PromptLimits         map[string]int `toml:"prompt_limits"`
}

// Uploads contains client-side checks applied before files leave the machine.
type Uploads struct {
	MaxBytes         int64    `toml:"max_bytes"`
	AllowedTypes     []string `toml:"allowed_types"`
	DocumentTypes    []string `toml:"document_types"`
	MaxDocumentBytes int64    `toml:"max_document_bytes"`
}

// Models contains model selection defaults.
type Models struct {
	DefaultChat  string   `toml:"default_chat" env:"WEAV_DEFAULT_CHAT_MODEL"`
	DefaultImage string   `toml:"default_image" env:"WEAV_DEFAULT_IMAGE_MODEL"`
	Chat         []string `toml:"chat"`
}

// Toast contains transient notification settings.
type Toast struct {
	DurationMillis int `toml:"duration_ms"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format" env:"WEAV_LOG_FORMAT"`
	Level  string `toml:"level" env:"WEAV_LOG_LEVEL"`
}

// Config encapsulates all configuration values for weav.
//
// Configuration sections by subsystem:
//   - API: backend base URL, optional bearer token, request timeout
//   - Paths: local state database and log directory
//   - Generation: polling cadence, attempt budget, cancel timeout, prompt limits
//   - Uploads: client-side file type and size checks
//   - Models: default chat/image models and the chat model menu
//   - Toast: how long transient notices stay visible
//   - Logging: log format and level
type Config struct {
	API        API        `toml:"api"`
	Paths      Paths      `toml:"paths"`
	Generation Generation `toml:"generation"`
	Uploads    Uploads    `toml:"uploads"`
	Models     Models     `toml:"models"`
	Toast      Toast      `toml:"toast"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. Environment
// variables override file values. The returned config has all path fields
// expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, "", false, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("weav.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// StatePath returns the location of the local state database.
func (c *Config) StatePath() string {
	return filepath.Join(c.Paths.StateDir, "state.db")
}

// LockPath returns the location of the send lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "weav.lock")
}

// APITimeout returns the per-request timeout for backend calls.
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// PollInterval returns the delay between job status checks.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Generation.PollIntervalMillis) * time.Millisecond
}

// CancelTimeout bounds the best-effort cancel notification.
func (c *Config) CancelTimeout() time.Duration {
	return time.Duration(c.Generation.CancelTimeoutSeconds) * time.Second
}

// ToastDuration returns how long a toast stays visible.
func (c *Config) ToastDuration() time.Duration {
	return time.Duration(c.Toast.DurationMillis) * time.Millisecond
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
