package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123"

func TestLoadFromEnvDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("TELEGRAM_TOKEN", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "plansey.db", cfg.DatabaseURL)
	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 720*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, "09:00", cfg.Telegram.ReminderTime)
	assert.True(t, cfg.SeedCatalog)
	assert.False(t, cfg.BotEnabled())
}

func TestLoadMissingFileFallsBackToEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("HTTP_ADDRESS", ":9090")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTP.Address)
}

func TestLoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
log_level: debug
database_url: data/plansey.db
http:
  address: ":7070"
auth:
  jwt_secret: "` + testSecret + `"
  bcrypt_cost: 10
telegram:
  token: "123:abc"
  reminder_time: "07:30"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "data/plansey.db", cfg.DatabaseURL)
	assert.Equal(t, ":7070", cfg.HTTP.Address)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, "07:30", cfg.Telegram.ReminderTime)
	assert.True(t, cfg.BotEnabled())
}

func TestLoadRejectsShortSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "short")
	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadRejectsBadReminderTime(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("REMINDER_TIME", "25:00")
	_, err := Load("")
	assert.Error(t, err)
}

func TestValidClock(t *testing.T) {
	assert.True(t, validClock("00:00"))
	assert.True(t, validClock("23:59"))
	assert.False(t, validClock("24:00"))
	assert.False(t, validClock("12:60"))
	assert.False(t, validClock("noon"))
}
