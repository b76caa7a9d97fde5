package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string `yaml:"port"`

	LogLevel string `yaml:"log_level"`
	Env      string `yaml:"env"`

	// DatabaseURL empty means the in-memory store.
	DatabaseURL string `yaml:"database_url"`
	// RedisURL empty means the in-process mutation lock.
	RedisURL string `yaml:"redis_url"`

	// Timezone is the IANA zone that decides which calendar day is "today".
	Timezone string `yaml:"timezone"`

	WebhookTimeout  string  `yaml:"webhook_timeout"`
	WebhookRPS      float64 `yaml:"webhook_rps"`
	MutationLockTTL string  `yaml:"mutation_lock_ttl"`
	SeedOnStart     bool    `yaml:"seed_on_start"`

	location        *time.Location
	webhookTimeout  time.Duration
	mutationLockTTL time.Duration
}

func defaults() *Config {
	return &Config{
		Port:            "8080",
		LogLevel:        "info",
		Env:             "development",
		Timezone:        "Local",
		WebhookTimeout:  "10s",
		WebhookRPS:      2,
		MutationLockTTL: "10s",
	}
}

// LoadConfig builds the config from defaults, then the YAML file named by
// CONFIG_FILE (if any), then environment variables.
func LoadConfig() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.Port = GetEnv("PORT", cfg.Port)
	cfg.LogLevel = GetEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.Env = GetEnv("ENV", cfg.Env)
	cfg.DatabaseURL = GetEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.RedisURL = GetEnv("REDIS_URL", cfg.RedisURL)
	cfg.Timezone = GetEnv("TIMEZONE", cfg.Timezone)
	cfg.WebhookTimeout = GetEnv("WEBHOOK_TIMEOUT", cfg.WebhookTimeout)
	cfg.MutationLockTTL = GetEnv("MUTATION_LOCK_TTL", cfg.MutationLockTTL)

	var err error
	if raw, ok := os.LookupEnv("WEBHOOK_RPS"); ok {
		if cfg.WebhookRPS, err = strconv.ParseFloat(raw, 64); err != nil {
			return nil, fmt.Errorf("parse WEBHOOK_RPS: %w", err)
		}
	}
	if raw, ok := os.LookupEnv("SEED_ON_START"); ok {
		if cfg.SeedOnStart, err = strconv.ParseBool(raw); err != nil {
			return nil, fmt.Errorf("parse SEED_ON_START: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var err error
	if c.location, err = time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	if c.webhookTimeout, err = time.ParseDuration(c.WebhookTimeout); err != nil || c.webhookTimeout <= 0 {
		return fmt.Errorf("invalid WEBHOOK_TIMEOUT %q", c.WebhookTimeout)
	}
	if c.mutationLockTTL, err = time.ParseDuration(c.MutationLockTTL); err != nil || c.mutationLockTTL <= 0 {
		return fmt.Errorf("invalid MUTATION_LOCK_TTL %q", c.MutationLockTTL)
	}
	if c.WebhookRPS <= 0 {
		return fmt.Errorf("invalid WEBHOOK_RPS %v", c.WebhookRPS)
	}
	return nil
}

func (c *Config) Location() *time.Location {
	return c.location
}

func (c *Config) WebhookTimeoutDuration() time.Duration {
	return c.webhookTimeout
}

func (c *Config) MutationLockTTLDuration() time.Duration {
	return c.mutationLockTTL
}

func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
