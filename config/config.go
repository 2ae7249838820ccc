package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Config is read from an optional YAML file first; environment variables
// override whatever the file set.
type Config struct {
	Telegram TelegramConfig `yaml:"telegram" envconfig:"TELEGRAM"`
	Database DatabaseConfig `yaml:"database" envconfig:"DATABASE"`
	Redis    RedisConfig    `yaml:"redis" envconfig:"REDIS"`
	Kafka    KafkaConfig    `yaml:"kafka" envconfig:"KAFKA"`
	HTTP     HTTPConfig     `yaml:"http" envconfig:"HTTP"`
	Session  SessionConfig  `yaml:"session" envconfig:"SESSION"`
	LogLevel string         `yaml:"log_level" envconfig:"LOG_LEVEL"`
}

type TelegramConfig struct {
	BotToken             string `yaml:"bot_token" envconfig:"BOT_TOKEN" validate:"required"`
	PaymentProviderToken string `yaml:"payment_provider_token" envconfig:"PAYMENT_PROVIDER_TOKEN"`
	// AdminID is the operator chat notified about paid bookings; 0 means nobody.
	AdminID        int64 `yaml:"admin_id" envconfig:"ADMIN_ID"`
	Workers        int   `yaml:"workers" envconfig:"WORKERS" validate:"gte=1"`
	PollingTimeout int   `yaml:"polling_timeout_seconds" envconfig:"POLLING_TIMEOUT" validate:"gte=0"`
}

type DatabaseConfig struct {
	URL string `yaml:"url" envconfig:"DATABASE_URL"`
}

func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

type RedisConfig struct {
	Addr     string `yaml:"addr" envconfig:"REDIS_ADDR"`
	Password string `yaml:"password" envconfig:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" envconfig:"REDIS_DB"`
}

func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

type KafkaConfig struct {
	Brokers       []string `yaml:"brokers" envconfig:"KAFKA_BROKERS"`
	BookingsTopic string   `yaml:"bookings_topic" envconfig:"KAFKA_BOOKINGS_TOPIC"`
	GroupID       string   `yaml:"group_id" envconfig:"KAFKA_GROUP_ID"`
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0 && k.BookingsTopic != ""
}

type HTTPConfig struct {
	Address string `yaml:"address" envconfig:"HTTP_ADDRESS"`
}

type SessionConfig struct {
	TTL           time.Duration `yaml:"ttl" envconfig:"SESSION_TTL" validate:"gte=0"`
	SweepInterval time.Duration `yaml:"sweep_interval" envconfig:"SESSION_SWEEP_INTERVAL" validate:"gte=0"`
}

func defaults() Config {
	return Config{
		Telegram: TelegramConfig{Workers: 8, PollingTimeout: 60},
		Kafka:    KafkaConfig{BookingsTopic: "hotel.bookings", GroupID: "hotelbot-audit"},
		HTTP:     HTTPConfig{Address: ":8080"},
		Session:  SessionConfig{TTL: 24 * time.Hour, SweepInterval: 10 * time.Minute},
		LogLevel: "info",
	}
}

// Load builds the bot configuration. A missing file at path is not an error.
func Load(path string) (*Config, error) {
	cfg, err := read(path)
	if err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadWorker builds the audit worker configuration. The worker never talks
// to Telegram, so the bot token is not required, but the event stream is.
func LoadWorker(path string) (*Config, error) {
	cfg, err := read(path)
	if err != nil {
		return nil, err
	}

	if err := validator.New().StructExcept(cfg, "Telegram.BotToken"); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if !cfg.Kafka.Enabled() {
		return nil, errors.New("invalid config: kafka brokers and bookings topic are required")
	}

	return cfg, nil
}

func read(path string) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded, using process environment")
	}

	cfg := defaults()
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debug().Str("path", path).Msg("config file not found, skipping")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}
