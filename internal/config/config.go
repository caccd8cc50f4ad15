// Load envs from .env
// Load YAML config over the defaults
// Override with env vars
// Validate config

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"go-vacancy-swipe/internal/filter"
)

const (
	ModePolling = "polling"
	ModeWebhook = "webhook"

	DefaultPath = "configs/config.yaml"
)

type Config struct {
	TelegramToken string `yaml:"telegram_token" env:"TELEGRAM_BOT_TOKEN"`
	AdminID       int64  `yaml:"admin_id" env:"ADMIN_ID"`
	LogLevel      string `yaml:"log_level" env:"LOG_LEVEL"`
	Mode          string `yaml:"mode"`

	Server  ServerConfig  `yaml:"server"`
	Browser BrowserConfig `yaml:"browser"`
	Scraper ScraperConfig `yaml:"scraper"`
	AI      AIConfig      `yaml:"ai"`
	Storage StorageConfig `yaml:"storage"`
	Redis   RedisConfig   `yaml:"redis"`
	Janitor JanitorConfig `yaml:"janitor"`
}

type ServerConfig struct {
	Port          string `yaml:"port" env:"PORT"`
	WebhookURL    string `yaml:"webhook_url" env:"WEBHOOK_URL"`
	WebhookSecret string `yaml:"webhook_secret" env:"WEBHOOK_SECRET"`
}

type BrowserConfig struct {
	Headless    bool   `yaml:"headless" env:"HEADLESS"`
	CookiesPath string `yaml:"cookies_path" env:"COOKIES_PATH"`
	Locale      string `yaml:"locale"`
	UserAgent   string `yaml:"user_agent"`
}

type ScraperConfig struct {
	SearchTimeout time.Duration `yaml:"search_timeout"`
	SearchSettle  time.Duration `yaml:"search_settle"`
	DetailTimeout time.Duration `yaml:"detail_timeout"`
	DetailSettle  time.Duration `yaml:"detail_settle"`
	RequestDelay  time.Duration `yaml:"request_delay"`
	MaxLinks      int           `yaml:"max_links"`
	ProgressEvery int           `yaml:"progress_every"`
}

type AIConfig struct {
	APIKey   string        `yaml:"api_key" env:"GROQ_API_KEY"`
	BaseURL  string        `yaml:"base_url"`
	Model    string        `yaml:"model"`
	Language string        `yaml:"language"`
	MinChars int           `yaml:"min_chars"`
	MaxChars int           `yaml:"max_chars"`
	Timeout  time.Duration `yaml:"timeout"`
}

type StorageConfig struct {
	// DatabaseURL selects Postgres; without it users live in DataDir/users.json.
	DatabaseURL string `yaml:"database_url" env:"DATABASE_URL"`
	DataDir     string `yaml:"data_dir"`
}

type RedisConfig struct {
	URL          string        `yaml:"url" env:"REDIS_URL"`
	SessionTTL   time.Duration `yaml:"session_ttl"`
	SearchLimit  int           `yaml:"search_limit"`
	SearchWindow time.Duration `yaml:"search_window"`
}

type JanitorConfig struct {
	Schedule         string        `yaml:"schedule"`
	SessionMaxIdle   time.Duration `yaml:"session_max_idle"`
	ScreenshotDir    string        `yaml:"screenshot_dir"`
	ScreenshotMaxAge time.Duration `yaml:"screenshot_max_age"`
}

// Default returns a config with every tunable set.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Mode:     ModePolling,
		Server: ServerConfig{
			Port: "8080",
		},
		Browser: BrowserConfig{
			Headless:    true,
			CookiesPath: "",
			Locale:      "uk-UA",
		},
		Scraper: ScraperConfig{
			SearchTimeout: 45 * time.Second,
			SearchSettle:  5 * time.Second,
			DetailTimeout: 20 * time.Second,
			DetailSettle:  time.Second,
			RequestDelay:  2 * time.Second,
			MaxLinks:      10,
			ProgressEvery: 2,
		},
		AI: AIConfig{
			BaseURL:  "https://api.groq.com/openai/v1",
			Model:    "llama-3.3-70b-versatile",
			Language: "Ukrainian",
			MinChars: 200,
			MaxChars: 4000,
			Timeout:  30 * time.Second,
		},
		Storage: StorageConfig{
			DataDir: "data",
		},
		Redis: RedisConfig{
			SessionTTL:   24 * time.Hour,
			SearchLimit:  5,
			SearchWindow: time.Hour,
		},
		Janitor: JanitorConfig{
			Schedule:         "@every 30m",
			SessionMaxIdle:   24 * time.Hour,
			ScreenshotDir:    "logs/screenshots",
			ScreenshotMaxAge: 7 * 24 * time.Hour,
		},
	}
}

// Load reads .env, then the YAML file at path (CONFIG_PATH or DefaultPath
// when empty), then environment overrides, and validates the result.
// A missing YAML file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = DefaultPath
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("error parsing %s: %w", path, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.TelegramToken, "TELEGRAM_BOT_TOKEN")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.Mode, "BOT_MODE")
	setString(&c.Server.Port, "PORT")
	setString(&c.Server.WebhookURL, "WEBHOOK_URL")
	setString(&c.Server.WebhookSecret, "WEBHOOK_SECRET")
	setString(&c.Browser.CookiesPath, "COOKIES_PATH")
	setString(&c.AI.APIKey, "GROQ_API_KEY")
	setString(&c.Storage.DatabaseURL, "DATABASE_URL")
	setString(&c.Redis.URL, "REDIS_URL")

	// TELEGRAM_CHAT_ID is the older name for the admin chat.
	for _, key := range []string{"TELEGRAM_CHAT_ID", "ADMIN_ID"} {
		if v := os.Getenv(key); v != "" {
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			c.AdminID = id
		}
	}

	if v := os.Getenv("HEADLESS"); v != "" {
		headless, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid HEADLESS: %w", err)
		}
		c.Browser.Headless = headless
	}
	return nil
}

func (c *Config) Validate() error {
	var problems []string
	if c.TelegramToken == "" {
		problems = append(problems, "TELEGRAM_BOT_TOKEN is required")
	}
	switch c.Mode {
	case ModePolling:
	case ModeWebhook:
		if c.Server.WebhookURL == "" {
			problems = append(problems, "WEBHOOK_URL is required in webhook mode")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown mode %q", c.Mode))
	}
	if c.Scraper.MaxLinks <= 0 || c.Scraper.MaxLinks > filter.DefaultMaxLinks {
		problems = append(problems, fmt.Sprintf("scraper.max_links must be between 1 and %d", filter.DefaultMaxLinks))
	}
	if c.AI.MaxChars < c.AI.MinChars {
		problems = append(problems, "ai.max_chars must not be below ai.min_chars")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
