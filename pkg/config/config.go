package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

// ErrMissingBotToken is returned by Load when no bot token is configured
var ErrMissingBotToken = errors.New("BOT_TOKEN is not set")

// Config holds the bot configuration
type Config struct {
	BotToken      string `yaml:"bot_token"`
	Port          string `yaml:"port"`
	Env           string `yaml:"env"`
	StoreDriver   string `yaml:"store_driver"`
	MongoURI      string `yaml:"mongo_uri"`
	MongoDatabase string `yaml:"mongo_database"`
	PostgresURL   string `yaml:"postgres_url"`

	PublicURL     string `yaml:"public_url"` // empty: long polling
	WebhookPath   string `yaml:"webhook_path"`
	WebhookSecret string `yaml:"webhook_secret"`

	WizardTimeout  time.Duration `yaml:"wizard_timeout"`
	StatsCacheTTL  time.Duration `yaml:"stats_cache_ttl"`
	HandlerTimeout time.Duration `yaml:"handler_timeout"`
	ActionRate     float64       `yaml:"action_rate"` // button presses per second per user
	ActionBurst    int           `yaml:"action_burst"`
}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	return &Config{
		Port:           "8080",
		Env:            "development",
		StoreDriver:    DriverMongo,
		MongoURI:       "mongodb://localhost:27017",
		MongoDatabase:  "telegram_mini_blog",
		WebhookPath:    "/webhook",
		WizardTimeout:  10 * time.Minute,
		StatsCacheTTL:  30 * time.Second,
		HandlerTimeout: 15 * time.Second,
		ActionRate:     3,
		ActionBurst:    5,
	}
}

// Load builds the configuration from defaults, the optional CONFIG_FILE and the environment.
// Values from .env are loaded into the environment first.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[CONFIG] No .env file found, assuming environment variables are set.")
	}

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Printf("[CONFIG] - Env: %s", cfg.Env)
	log.Printf("[CONFIG] - Port: %s", cfg.Port)
	log.Printf("[CONFIG] - Store driver: %s", cfg.StoreDriver)
	if cfg.UseWebhook() {
		log.Printf("[CONFIG] - Webhook: %s", cfg.WebhookURL())
	} else {
		log.Printf("[CONFIG] - Updates: long polling")
	}
	log.Printf("[CONFIG] - Wizard timeout: %s", cfg.WizardTimeout)
	return cfg, nil
}

// LoadFile merges a YAML file into cfg
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	log.Printf("[CONFIG] Loaded configuration from %s", path)
	return nil
}

// ApplyEnv overrides cfg with every environment variable that is set
func (c *Config) ApplyEnv() error {
	setString(&c.BotToken, "BOT_TOKEN")
	setString(&c.Port, "PORT")
	setString(&c.Env, "ENV")
	setString(&c.StoreDriver, "STORE_DRIVER")
	setString(&c.MongoURI, "MONGO_URI")
	setString(&c.MongoDatabase, "MONGO_DATABASE")
	setString(&c.PostgresURL, "POSTGRES_URL")
	setString(&c.PublicURL, "PUBLIC_URL")
	setString(&c.WebhookPath, "WEBHOOK_PATH")
	setString(&c.WebhookSecret, "WEBHOOK_SECRET")

	if err := setDuration(&c.WizardTimeout, "WIZARD_TIMEOUT"); err != nil {
		return err
	}
	if err := setDuration(&c.StatsCacheTTL, "STATS_CACHE_TTL"); err != nil {
		return err
	}
	if err := setDuration(&c.HandlerTimeout, "HANDLER_TIMEOUT"); err != nil {
		return err
	}

	if value := os.Getenv("ACTION_RATE"); value != "" {
		rate, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid ACTION_RATE %q: %w", value, err)
		}
		c.ActionRate = rate
	}
	if value := os.Getenv("ACTION_BURST"); value != "" {
		burst, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid ACTION_BURST %q: %w", value, err)
		}
		c.ActionBurst = burst
	}
	return nil
}

// Validate checks that the configuration can start the bot
func (c *Config) Validate() error {
	if c.BotToken == "" {
		return ErrMissingBotToken
	}
	switch c.StoreDriver {
	case DriverMongo:
		if c.MongoURI == "" {
			return errors.New("MONGO_URI is required for the mongo store")
		}
	case DriverPostgres:
		if c.PostgresURL == "" {
			return errors.New("POSTGRES_URL is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if !strings.HasPrefix(c.WebhookPath, "/") {
		c.WebhookPath = "/" + c.WebhookPath
	}
	return nil
}

// UseWebhook reports whether updates arrive by webhook instead of long polling
func (c *Config) UseWebhook() bool {
	return c.PublicURL != ""
}

// WebhookURL is the address Telegram posts updates to
func (c *Config) WebhookURL() string {
	return strings.TrimRight(c.PublicURL, "/") + c.WebhookPath
}

func setString(dst *string, key string) {
	if value := os.Getenv(key); value != "" {
		*dst = value
	}
}

func setDuration(dst *time.Duration, key string) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	*dst = d
	return nil
}
