package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const minSecretKeyLength = 32

var (
	ErrSecretKeyMissing     = errors.New("SECRET_KEY is required")
	ErrSecretKeyPlaceholder = errors.New("SECRET_KEY uses an insecure placeholder value")
	ErrSecretKeyTooShort    = errors.New("SECRET_KEY must be at least 32 characters")
)

var insecureSecretPlaceholders = map[string]struct{}{
	"change_me_in_production":                    {},
	"replace_with_at_least_32_random_characters": {},
	"secret":    {},
	"changeme":  {},
	"change_me": {},
}

type Config struct {
	Port                   string        `mapstructure:"port"`
	DBPath                 string        `mapstructure:"db_path"`
	TZ                     string        `mapstructure:"tz"`
	SecretKey              string        `mapstructure:"secret_key"`
	CookieSecure           bool          `mapstructure:"cookie_secure"`
	LogLevel               string        `mapstructure:"log_level"`
	LogFormat              string        `mapstructure:"log_format"`
	RedisURL               string        `mapstructure:"redis_url"`
	SiteURL                string        `mapstructure:"site_url"`
	LinkWebhookURL         string        `mapstructure:"link_webhook_url"`
	MagicLinkTTL           time.Duration `mapstructure:"magic_link_ttl"`
	MagicLinkRatePerMinute int           `mapstructure:"magic_link_rate_per_minute"`
	MetricsEnabled         bool          `mapstructure:"metrics_enabled"`

	Location *time.Location `mapstructure:"-"`
}

// Load reads .env (when present) and the process environment on top of defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("db_path", "data/miffy.db")
	v.SetDefault("tz", "UTC")
	v.SetDefault("secret_key", "")
	v.SetDefault("cookie_secure", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("redis_url", "")
	v.SetDefault("site_url", "http://localhost:8080")
	v.SetDefault("link_webhook_url", "")
	v.SetDefault("magic_link_ttl", "15m")
	v.SetDefault("magic_link_rate_per_minute", 5)
	v.SetDefault("metrics_enabled", true)
}

func validateConfig(cfg *Config) error {
	cfg.Port = strings.TrimSpace(cfg.Port)
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if _, err := parsePort(cfg.Port); err != nil {
		return err
	}

	secret, err := ValidateSecretKey(cfg.SecretKey)
	if err != nil {
		return err
	}
	cfg.SecretKey = secret

	location, err := time.LoadLocation(strings.TrimSpace(cfg.TZ))
	if err != nil {
		return fmt.Errorf("invalid TZ %q: %w", cfg.TZ, err)
	}
	cfg.Location = location

	switch cfg.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", cfg.LogFormat)
	}

	cfg.SiteURL = strings.TrimRight(strings.TrimSpace(cfg.SiteURL), "/")
	if cfg.SiteURL == "" {
		return errors.New("SITE_URL is required")
	}
	if cfg.MagicLinkTTL <= 0 {
		return errors.New("MAGIC_LINK_TTL must be positive")
	}
	if cfg.MagicLinkRatePerMinute <= 0 {
		return errors.New("MAGIC_LINK_RATE_PER_MINUTE must be positive")
	}
	return nil
}

func ValidateSecretKey(raw string) (string, error) {
	secret := strings.TrimSpace(raw)
	if secret == "" {
		return "", ErrSecretKeyMissing
	}
	if _, insecure := insecureSecretPlaceholders[strings.ToLower(secret)]; insecure {
		return "", ErrSecretKeyPlaceholder
	}
	if len(secret) < minSecretKeyLength {
		return "", ErrSecretKeyTooShort
	}
	return secret, nil
}

func parsePort(raw string) (int, error) {
	port, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid PORT %q", raw)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("PORT out of range: %d", port)
	}
	return port, nil
}
