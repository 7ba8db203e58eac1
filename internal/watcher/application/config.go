package application

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultCheckInterval = 12 * time.Hour
	defaultFetchTimeout  = 30 * time.Second
)

// MailConfig configures the SMTP notifier. An empty host disables mail.
type MailConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	From     string `yaml:"from"`
	To       string `yaml:"to"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Config defines watcher configuration. It is loaded once at process start;
// collaborators receive the resulting immutable value.
type Config struct {
	DatabaseURL   string     `yaml:"database_url"`
	HTTPAddr      string     `yaml:"http_addr"`
	CheckInterval string     `yaml:"check_interval"`
	FetchTimeout  string     `yaml:"fetch_timeout"`
	SnapshotRoot  string     `yaml:"snapshot_root"`
	WebhookURL    string     `yaml:"webhook_url"`
	JWTSecret     string     `yaml:"jwt_secret"`
	Mail          MailConfig `yaml:"mail"`
}

// LoadConfig loads config from yaml (CHARGEWATCH_CONFIG) with env fallbacks.
func LoadConfig() (Config, error) {
	cfg := Config{
		DatabaseURL:   getenvDefault("DATABASE_URL", os.Getenv("PG_DSN")),
		HTTPAddr:      getenvDefault("HTTP_ADDR", ":8080"),
		CheckInterval: os.Getenv("CHECK_INTERVAL"),
		FetchTimeout:  os.Getenv("FETCH_TIMEOUT"),
		SnapshotRoot:  getenvDefault("SNAPSHOT_ROOT", filepath.FromSlash("var/stations")),
		WebhookURL:    os.Getenv("WEBHOOK_URL"),
		JWTSecret:     getenvDefault("AUTH_JWT_SECRET", os.Getenv("JWT_SECRET")),
		Mail: MailConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getenvIntDefault("SMTP_PORT", 25),
			From:     os.Getenv("SMTP_FROM"),
			To:       os.Getenv("SMTP_TO"),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
		},
	}

	if path := os.Getenv("CHARGEWATCH_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if cfg.SnapshotRoot == "" {
		return cfg, errors.New("watcher: snapshot root required")
	}
	if _, err := parseDurationDefault(cfg.CheckInterval, defaultCheckInterval); err != nil {
		return cfg, err
	}
	if _, err := parseDurationDefault(cfg.FetchTimeout, defaultFetchTimeout); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Interval returns the parsed check interval.
func (c Config) Interval() time.Duration {
	d, err := parseDurationDefault(c.CheckInterval, defaultCheckInterval)
	if err != nil {
		return defaultCheckInterval
	}
	return d
}

// Timeout returns the parsed upstream fetch timeout.
func (c Config) Timeout() time.Duration {
	d, err := parseDurationDefault(c.FetchTimeout, defaultFetchTimeout)
	if err != nil {
		return defaultFetchTimeout
	}
	return d
}

func parseDurationDefault(value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	return time.ParseDuration(value)
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
