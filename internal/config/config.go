package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Webhook   WebhookConfig   `mapstructure:"webhook"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Logs      LogsConfig      `mapstructure:"logs"`
	Git       GitConfig       `mapstructure:"git"`
	Sync      SyncConfig      `mapstructure:"sync"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type ServerConfig struct {
	TradePort    int           `mapstructure:"trade_port"`
	TelegramPort int           `mapstructure:"telegram_port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type WebhookConfig struct {
	// Secret is the shared HMAC secret. Empty disables signature
	// enforcement entirely.
	Secret string `mapstructure:"secret"`
}

type TelegramConfig struct {
	// ChatID is the only chat whose messages are logged. Compared as a
	// string so numeric and quoted ids both match.
	ChatID string `mapstructure:"chat_id"`
}

type LogsConfig struct {
	Dir string `mapstructure:"dir"`
}

type GitConfig struct {
	// Dir is the repository working tree holding the log directory.
	Dir string `mapstructure:"dir"`
	// RemoteToken selects a non-interactive credential strategy for
	// push. It is never passed on the command line.
	RemoteToken string        `mapstructure:"remote_token"`
	Branch      string        `mapstructure:"branch"`
	PushTimeout time.Duration `mapstructure:"push_timeout"`
	// OpTimeout bounds stage, commit, and status calls so a hung git
	// process cannot hold the sync lock forever.
	OpTimeout time.Duration `mapstructure:"op_timeout"`
}

type SyncConfig struct {
	LockFile string `mapstructure:"lock_file"`
}

type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	RedisURL string        `mapstructure:"redis_url"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load builds the process-wide configuration: defaults, then an
// optional yaml config file, then environment variables (TRADELOG_
// prefix). A local .env key=value file, when present, is loaded into
// the environment first so it participates in the override chain.
// The result is constructed once at startup and passed by reference;
// no component reads the environment directly.
func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := gotenv.OverLoad(".env"); err != nil {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	v := viper.New()

	// Set defaults
	v.SetDefault("server.trade_port", 8080)
	v.SetDefault("server.telegram_port", 8081)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("webhook.secret", "")
	v.SetDefault("telegram.chat_id", "")
	v.SetDefault("logs.dir", "logs")
	v.SetDefault("git.dir", ".")
	v.SetDefault("git.remote_token", "")
	v.SetDefault("git.branch", "main")
	v.SetDefault("git.push_timeout", "30s")
	v.SetDefault("git.op_timeout", "10s")
	v.SetDefault("sync.lock_file", ".git_push.lock")
	v.SetDefault("ratelimit.enabled", false)
	v.SetDefault("ratelimit.redis_url", "redis://localhost:6379")
	v.SetDefault("ratelimit.requests", 600)
	v.SetDefault("ratelimit.window", "1m")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Read config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/tradelog")
	}

	// Environment variables override. Nested keys map through the
	// replacer: webhook.secret becomes TRADELOG_WEBHOOK_SECRET.
	v.SetEnvPrefix("TRADELOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found; use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
