package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// ClientConfig configures the remote signup client.
type ClientConfig struct {
	BaseURL    string `env:"SIGNUP_API_URL" env-default:"http://localhost:8000"`
	SignupPath string `env:"SIGNUP_PATH" env-default:"/api/auth/signup"`
	UserAgent  string `env:"SIGNUP_USER_AGENT" env-default:"simple-signup"`
}

type LogConfig struct {
	Level string `env:"LOG_LEVEL" env-default:"info"`
}

type Config struct {
	ClientConfig ClientConfig
	LogConfig    LogConfig
}

// Load reads the configuration from the environment and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values that cannot be checked by tags.
func (c Config) Validate() error {
	u, err := url.Parse(c.ClientConfig.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid SIGNUP_API_URL %q: %w", c.ClientConfig.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid SIGNUP_API_URL %q: scheme must be http or https", c.ClientConfig.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid SIGNUP_API_URL %q: missing host", c.ClientConfig.BaseURL)
	}
	if !strings.HasPrefix(c.ClientConfig.SignupPath, "/") {
		return fmt.Errorf("invalid SIGNUP_PATH %q: must start with /", c.ClientConfig.SignupPath)
	}
	if _, err := ParseLevel(c.LogConfig.Level); err != nil {
		return err
	}
	return nil
}

// ParseLevel converts a LOG_LEVEL value to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q: %w", s, err)
	}
	return level, nil
}
