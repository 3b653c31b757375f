package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// TelegramConfig holds the bot identity and update delivery settings.
type TelegramConfig struct {
	Token    string `yaml:"token" envconfig:"BOT_TOKEN"`
	Username string `yaml:"username" envconfig:"BOT_USERNAME"`
	RunMode  string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// WebhookConfig specifies webhook settings. A non-empty URL selects webhook mode
// unless RunMode says otherwise.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"PORT"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LOG_LEVEL"`
	Format      string `yaml:"format" envconfig:"LOG_FORMAT"`
	KeysOrder   string `yaml:"keys_order"`
	DebugSample string `yaml:"debug_sample"`
	Dir         string `yaml:"dir" envconfig:"LOG_DIR"`
	BotFile     string `yaml:"bot_file"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile" envconfig:"LOG_PROFILE"`
}

// RateLimitConfig sizes the fixed window shared by gated commands.
type RateLimitConfig struct {
	WindowSeconds int `yaml:"window_seconds" envconfig:"RATE_LIMIT_WINDOW_SECONDS"`
	Threshold     int `yaml:"threshold" envconfig:"RATE_LIMIT_THRESHOLD"`
}

// ModerationConfig overrides the built-in banned terms and whois triggers.
// Empty lists keep the defaults.
type ModerationConfig struct {
	BannedTerms   []string `yaml:"banned_terms" envconfig:"BANNED_TERMS"`
	WhoisTriggers []string `yaml:"whois_triggers" envconfig:"WHOIS_TRIGGERS"`
}

// LinksConfig holds the URL buttons of the main menu.
type LinksConfig struct {
	ChannelURL   string `yaml:"channel_url" envconfig:"CHANNEL_URL"`
	DeveloperURL string `yaml:"developer_url" envconfig:"DEVELOPER_URL"`
}

// SenderConfig tunes the outbound Telegram queue.
type SenderConfig struct {
	Workers       int     `yaml:"workers" envconfig:"SENDER_WORKERS"`
	QueueSize     int     `yaml:"queue_size" envconfig:"SENDER_QUEUE_SIZE"`
	RatePerSecond float64 `yaml:"rate_per_second" envconfig:"SENDER_RATE_PER_SECOND"`
	Burst         int     `yaml:"burst" envconfig:"SENDER_BURST"`
}

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"
)

const (
	defaultPort          = 8080
	defaultListen        = "0.0.0.0"
	defaultWindowSeconds = 60
	defaultThreshold     = 5
	defaultWorkers       = 4
	defaultQueueSize     = 256
	defaultRatePerSecond = 25
	defaultBurst         = 5
)

// Config aggregates all bot configuration.
type Config struct {
	Telegram   TelegramConfig   `yaml:"telegram"`
	Webhook    WebhookConfig    `yaml:"webhook"`
	Logging    LoggingConfig    `yaml:"logging"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Moderation ModerationConfig `yaml:"moderation"`
	Links      LinksConfig      `yaml:"links"`
	Sender     SenderConfig     `yaml:"sender"`
}

// Load reads the optional YAML file at path, then a .env file in the working
// directory if present, then environment variables. Later sources win.
func Load(path string) (*Config, error) {
	var cfg Config

	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates required fields and fills defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	cfg.Telegram.Token = strings.TrimSpace(cfg.Telegram.Token)
	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram token is required")
	}
	cfg.Telegram.Username = strings.TrimPrefix(strings.TrimSpace(cfg.Telegram.Username), "@")

	cfg.Webhook.URL = strings.TrimSpace(cfg.Webhook.URL)
	rm := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	if rm == "" {
		rm = RunModeLongpoll
		if cfg.Webhook.URL != "" {
			rm = RunModeWebhook
		}
	}
	if rm == "polling" { // accept alias
		rm = RunModeLongpoll
	}
	switch rm {
	case RunModeWebhook:
		if cfg.Webhook.URL == "" {
			return fmt.Errorf("webhook.url is required when telegram.run_mode is 'webhook'")
		}
		if strings.TrimSpace(cfg.Webhook.Listen) == "" {
			cfg.Webhook.Listen = defaultListen
		}
		if cfg.Webhook.Port == 0 {
			cfg.Webhook.Port = defaultPort
		}
		if cfg.Webhook.Port < 0 || cfg.Webhook.Port > 65535 {
			return fmt.Errorf("webhook.port must be within 1..65535, got %d", cfg.Webhook.Port)
		}
	case RunModeLongpoll:
		if cfg.Telegram.LongPollTimeoutSeconds < 0 {
			return fmt.Errorf("telegram.longpoll_timeout_seconds must be >= 0")
		}
	default:
		return fmt.Errorf("invalid telegram.run_mode %q; allowed: webhook, longpoll", cfg.Telegram.RunMode)
	}
	cfg.Telegram.RunMode = rm

	if cfg.RateLimit.WindowSeconds < 0 || cfg.RateLimit.Threshold < 0 {
		return fmt.Errorf("rate_limit values must be >= 0")
	}
	if cfg.RateLimit.WindowSeconds == 0 {
		cfg.RateLimit.WindowSeconds = defaultWindowSeconds
	}
	if cfg.RateLimit.Threshold == 0 {
		cfg.RateLimit.Threshold = defaultThreshold
	}

	cfg.Moderation.BannedTerms = compact(cfg.Moderation.BannedTerms)
	cfg.Moderation.WhoisTriggers = compact(cfg.Moderation.WhoisTriggers)

	if cfg.Sender.Workers <= 0 {
		cfg.Sender.Workers = defaultWorkers
	}
	if cfg.Sender.QueueSize <= 0 {
		cfg.Sender.QueueSize = defaultQueueSize
	}
	if cfg.Sender.RatePerSecond <= 0 {
		cfg.Sender.RatePerSecond = defaultRatePerSecond
	}
	if cfg.Sender.Burst <= 0 {
		cfg.Sender.Burst = defaultBurst
	}
	return nil
}

func compact(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
