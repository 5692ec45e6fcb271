// Package config handles configuration for chatbot.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultAdviceURL is the public Advice Slip endpoint used for unmatched input
const DefaultAdviceURL = "https://api.adviceslip.com/advice"

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Style       string `json:"style"`        // "dark", "light", "notty" or path to JSON theme
	EnableEmoji bool   `json:"enable_emoji"` // Convert :emoji: to unicode
}

// Config represents the user configuration
type Config struct {
	BotName string `json:"bot_name"`
	// AdviceURL is queried when no local intent matches the input.
	AdviceURL string `json:"advice_url"`
	// AdviceTimeoutSeconds bounds the whole advice request.
	AdviceTimeoutSeconds int `json:"advice_timeout_seconds"`
	// DisableRemote skips the advice endpoint and always answers from the
	// default replies.
	DisableRemote bool `json:"disable_remote"`
	// TypingDelayMs is the pause between the user's entry and the
	// "Typing..." placeholder.
	TypingDelayMs int `json:"typing_delay_ms"`
	// ThinkingDelayMs is the pause before a reply is resolved.
	ThinkingDelayMs int `json:"thinking_delay_ms"`
	// WideWidth is the terminal width from which Enter sends the message.
	// Narrower terminals insert a newline instead and send with Ctrl+S.
	WideWidth       int            `json:"wide_width"`
	Verbose         bool           `json:"verbose"`
	LogFile         string         `json:"log_file,omitempty"`
	CopyToClipboard bool           `json:"copy_to_clipboard"`
	Markdown        MarkdownConfig `json:"markdown,omitempty"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:       "dark",
		EnableEmoji: true,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		BotName:              "ChatBot",
		AdviceURL:            DefaultAdviceURL,
		AdviceTimeoutSeconds: 10,
		TypingDelayMs:        300,
		ThinkingDelayMs:      800,
		WideWidth:            80,
		Markdown:             DefaultMarkdownConfig(),
	}
}

// TypingDelay returns the typing delay as a duration
func (c Config) TypingDelay() time.Duration {
	return time.Duration(c.TypingDelayMs) * time.Millisecond
}

// ThinkingDelay returns the thinking delay as a duration
func (c Config) ThinkingDelay() time.Duration {
	return time.Duration(c.ThinkingDelayMs) * time.Millisecond
}

// AdviceTimeout returns the advice request timeout as a duration
func (c Config) AdviceTimeout() time.Duration {
	return time.Duration(c.AdviceTimeoutSeconds) * time.Second
}

// Validate checks that numeric settings are usable
func (c Config) Validate() error {
	if c.AdviceURL == "" && !c.DisableRemote {
		return fmt.Errorf("advice_url must be set unless disable_remote is true")
	}
	if c.AdviceTimeoutSeconds <= 0 {
		return fmt.Errorf("advice_timeout_seconds must be positive, got %d", c.AdviceTimeoutSeconds)
	}
	if c.TypingDelayMs < 0 || c.ThinkingDelayMs < 0 {
		return fmt.Errorf("delays must not be negative")
	}
	if c.WideWidth < 0 {
		return fmt.Errorf("wide_width must not be negative, got %d", c.WideWidth)
	}
	return nil
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".chatbot"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// LoadConfig loads the configuration from the default location
func LoadConfig() (Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return DefaultConfig(), err
	}
	return LoadConfigFrom(configPath)
}

// LoadConfigFrom loads the configuration from path. A missing file yields
// the defaults; fields absent from the file keep their default values.
func LoadConfigFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return DefaultConfig(), fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to the default location
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}
	return SaveConfigTo(filepath.Join(configDir, "config.json"), cfg)
}

// SaveConfigTo writes cfg as indented JSON to path
func SaveConfigTo(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
