package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load looks at so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	for _, key := range []string{
		"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "ADMIN_ID", "LOG_LEVEL", "BOT_MODE",
		"PORT", "WEBHOOK_URL", "WEBHOOK_SECRET", "COOKIES_PATH", "GROQ_API_KEY", "DATABASE_URL",
		"REDIS_URL", "HEADLESS", "CONFIG_PATH",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_YAMLOverDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
telegram_token: yaml-token
admin_id: 42
scraper:
  request_delay: 3s
  max_links: 5
ai:
  language: English
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "yaml-token", cfg.TelegramToken)
	assert.Equal(t, int64(42), cfg.AdminID)
	assert.Equal(t, 3*time.Second, cfg.Scraper.RequestDelay)
	assert.Equal(t, 5, cfg.Scraper.MaxLinks)
	assert.Equal(t, "English", cfg.AI.Language)
	// untouched keys keep their defaults
	assert.Equal(t, 45*time.Second, cfg.Scraper.SearchTimeout)
	assert.Equal(t, 4000, cfg.AI.MaxChars)
	assert.True(t, cfg.Browser.Headless)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "telegram_token: yaml-token\n")
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("ADMIN_ID", "777")
	t.Setenv("GROQ_API_KEY", "gsk_test")
	t.Setenv("HEADLESS", "false")
	t.Setenv("DATABASE_URL", "postgres://localhost/vacancies")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.TelegramToken)
	assert.Equal(t, int64(777), cfg.AdminID)
	assert.Equal(t, "gsk_test", cfg.AI.APIKey)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, "postgres://localhost/vacancies", cfg.Storage.DatabaseURL)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Scraper, cfg.Scraper)
	assert.Equal(t, ModePolling, cfg.Mode)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		env  map[string]string
		want string
	}{
		{name: "missing token", yaml: "log_level: debug\n", want: "TELEGRAM_BOT_TOKEN is required"},
		{name: "bad admin id", yaml: "telegram_token: t\n", env: map[string]string{"ADMIN_ID": "abc"}, want: "invalid ADMIN_ID"},
		{name: "webhook without url", yaml: "telegram_token: t\nmode: webhook\n", want: "WEBHOOK_URL is required"},
		{name: "unknown mode", yaml: "telegram_token: t\nmode: carrier-pigeon\n", want: "unknown mode"},
		{name: "bad yaml", yaml: "scraper: [\n", want: "error parsing"},
		{name: "max links above ceiling", yaml: "telegram_token: t\nscraper:\n  max_links: 25\n", want: "scraper.max_links must be between 1 and 10"},
		{name: "zero max links", yaml: "telegram_token: t\nscraper:\n  max_links: 0\n", want: "scraper.max_links must be between 1 and 10"},
		{name: "bad duration", yaml: "telegram_token: t\nscraper:\n  request_delay: soon\n", want: "error parsing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(writeConfig(t, tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
