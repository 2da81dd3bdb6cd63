package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.TradePort)
	assert.Equal(t, 8081, cfg.Server.TelegramPort)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Empty(t, cfg.Webhook.Secret, "signature enforcement is off unless a secret is configured")
	assert.Equal(t, "logs", cfg.Logs.Dir)
	assert.Equal(t, ".", cfg.Git.Dir)
	assert.Equal(t, "main", cfg.Git.Branch)
	assert.Equal(t, 30*time.Second, cfg.Git.PushTimeout)
	assert.Equal(t, 10*time.Second, cfg.Git.OpTimeout)
	assert.Equal(t, ".git_push.lock", cfg.Sync.LockFile)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  trade_port: 9090
webhook:
  secret: topsecret
telegram:
  chat_id: "-1001234"
logs:
  dir: /var/lib/tradelog/logs
git:
  push_timeout: 45s
logging:
  level: debug
  format: text
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.TradePort)
	assert.Equal(t, "topsecret", cfg.Webhook.Secret)
	assert.Equal(t, "-1001234", cfg.Telegram.ChatID)
	assert.Equal(t, "/var/lib/tradelog/logs", cfg.Logs.Dir)
	assert.Equal(t, 45*time.Second, cfg.Git.PushTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)

	// Unspecified keys keep their defaults.
	assert.Equal(t, 8081, cfg.Server.TelegramPort)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("TRADELOG_SERVER_TRADE_PORT", "7070")
	t.Setenv("TRADELOG_WEBHOOK_SECRET", "envsecret")
	t.Setenv("TRADELOG_TELEGRAM_CHAT_ID", "-1001234")
	t.Setenv("TRADELOG_LOGS_DIR", "/tmp/envlogs")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.TradePort)
	assert.Equal(t, "envsecret", cfg.Webhook.Secret)
	assert.Equal(t, "-1001234", cfg.Telegram.ChatID)
	assert.Equal(t, "/tmp/envlogs", cfg.Logs.Dir)

	// Untouched keys keep their defaults.
	assert.Equal(t, 8081, cfg.Server.TelegramPort)
}

func TestLoad_EnvOverridesConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("webhook:\n  secret: filesecret\n"), 0o644))

	t.Setenv("TRADELOG_WEBHOOK_SECRET", "envsecret")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "envsecret", cfg.Webhook.Secret)
}

func TestLoad_DotEnvOverlay(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("TRADELOG_TELEGRAM_CHAT_ID=-1009999\n"), 0o644))

	// Register restoration; the overlay overwrites this value.
	t.Setenv("TRADELOG_TELEGRAM_CHAT_ID", "placeholder")
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "-1009999", cfg.Telegram.ChatID)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not: valid"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
