package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"BOT_TOKEN", "TELEGRAM_BOT_TOKEN",
		"ADMIN_ID", "TELEGRAM_ADMIN_ID",
		"PAYMENT_PROVIDER_TOKEN", "TELEGRAM_PAYMENT_PROVIDER_TOKEN",
		"DATABASE_URL", "DATABASE_DATABASE_URL",
		"REDIS_ADDR", "REDIS_REDIS_ADDR",
		"SESSION_TTL", "SESSION_SESSION_TTL",
		"KAFKA_BROKERS", "KAFKA_KAFKA_BROKERS",
		"KAFKA_BOOKINGS_TOPIC", "KAFKA_KAFKA_BOOKINGS_TOPIC",
	} {
		if _, ok := os.LookupEnv(key); ok {
			t.Setenv(key, "")
			require.NoError(t, os.Unsetenv(key))
		}
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("ADMIN_ID", "777")
	t.Setenv("PAYMENT_PROVIDER_TOKEN", "provider")
	t.Setenv("DATABASE_URL", "postgres://localhost/hotel")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.Telegram.BotToken)
	assert.Equal(t, int64(777), cfg.Telegram.AdminID)
	assert.Equal(t, "provider", cfg.Telegram.PaymentProviderToken)
	assert.True(t, cfg.Database.Enabled())
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled())
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOT_TOKEN", "123:abc")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, int64(0), cfg.Telegram.AdminID)
	assert.Equal(t, 8, cfg.Telegram.Workers)
	assert.False(t, cfg.Database.Enabled())
	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_MissingBotToken(t *testing.T) {
	clearEnv(t)

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BotToken")
}

func TestLoad_FileThenEnvironment(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
telegram:
  bot_token: from-file
  admin_id: 5
http:
  address: ":9090"
session:
  ttl: 30m
`), 0o600))
	t.Setenv("ADMIN_ID", "6")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.Telegram.BotToken)
	assert.Equal(t, int64(6), cfg.Telegram.AdminID)
	assert.Equal(t, ":9090", cfg.HTTP.Address)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
}

func TestLoad_BrokenFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("telegram: [unterminated"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestLoadWorker_NoBotToken(t *testing.T) {
	clearEnv(t)
	t.Setenv("KAFKA_BROKERS", "k1:9092")

	cfg, err := LoadWorker("")
	require.NoError(t, err)

	assert.Empty(t, cfg.Telegram.BotToken)
	assert.Equal(t, "hotel.bookings", cfg.Kafka.BookingsTopic)
	assert.Equal(t, "hotelbot-audit", cfg.Kafka.GroupID)
}

func TestLoadWorker_RequiresKafka(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOT_TOKEN", "123:abc")

	_, err := LoadWorker("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kafka")
}
