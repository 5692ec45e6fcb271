package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "ChatBot", cfg.BotName)
	assert.Equal(t, DefaultAdviceURL, cfg.AdviceURL)
	assert.Equal(t, 300*time.Millisecond, cfg.TypingDelay())
	assert.Equal(t, 800*time.Millisecond, cfg.ThinkingDelay())
	assert.Equal(t, 10*time.Second, cfg.AdviceTimeout())
	assert.Equal(t, 80, cfg.WideWidth)
	assert.False(t, cfg.DisableRemote)
	assert.NoError(t, cfg.Validate())
}

func TestGetConfigPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path, err := GetConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".chatbot", "config.json"), path)
}

func TestLoadConfig_FileNotExists(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigFrom_PartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"bot_name":"Helper","typing_delay_ms":0}`), 0o600))

	cfg, err := LoadConfigFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "Helper", cfg.BotName)
	assert.Equal(t, time.Duration(0), cfg.TypingDelay())
	// Untouched fields keep their defaults
	assert.Equal(t, DefaultAdviceURL, cfg.AdviceURL)
	assert.Equal(t, 800, cfg.ThinkingDelayMs)
}

func TestLoadConfigFrom_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed json", `{"bot_name":`},
		{"zero timeout", `{"advice_timeout_seconds":0}`},
		{"negative delay", `{"thinking_delay_ms":-5}`},
		{"empty url", `{"advice_url":""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			cfg, err := LoadConfigFrom(path)
			assert.Error(t, err)
			assert.Equal(t, DefaultConfig(), cfg)
		})
	}
}

func TestValidate_DisableRemoteAllowsEmptyURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AdviceURL = ""
	cfg.DisableRemote = true
	assert.NoError(t, cfg.Validate())
}

func TestSaveAndLoadConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := DefaultConfig()
	cfg.BotName = "Saved"
	cfg.CopyToClipboard = true
	require.NoError(t, SaveConfig(cfg))

	info, err := os.Stat(filepath.Join(home, ".chatbot", "config.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
