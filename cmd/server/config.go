package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	ServerPort             string
	LogLevel               slog.Level
	CookieName             string
	CookieMaxAge           int
	CookieSecure           bool
	CookieSecret           string
	CookieIssuer           string
	DetectUserAgent        bool
	AllowExternalRedirects bool

	// Source is the TOML file that was overlaid, or "environment".
	Source string
}

// fileConfig mirrors Config for the optional TOML file. Pointers tell an
// absent key from a zero value.
type fileConfig struct {
	ServerPort             *string `toml:"server_port"`
	LogLevel               *string `toml:"log_level"`
	CookieName             *string `toml:"cookie_name"`
	CookieMaxAge           *int    `toml:"cookie_max_age"`
	CookieSecure           *bool   `toml:"cookie_secure"`
	CookieSecret           *string `toml:"cookie_secret"`
	CookieIssuer           *string `toml:"cookie_issuer"`
	DetectUserAgent        *bool   `toml:"detect_user_agent"`
	AllowExternalRedirects *bool   `toml:"allow_external_redirects"`
}

func defaultConfig() Config {
	return Config{
		ServerPort: "8080",
		LogLevel:   slog.LevelInfo,
		CookieName: "ViewSwitcher",
		Source:     "environment",
	}
}

// LoadConfig builds the config from defaults, then CONFIG_FILE, then the
// environment. Later sources win.
func LoadConfig() (Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
		cfg.Source = path
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if cfg.CookieMaxAge < 0 {
		return Config{}, fmt.Errorf("cookie max age must not be negative, got %d", cfg.CookieMaxAge)
	}

	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	if fc.ServerPort != nil {
		cfg.ServerPort = *fc.ServerPort
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = parseLogLevel(*fc.LogLevel)
	}
	if fc.CookieName != nil {
		cfg.CookieName = *fc.CookieName
	}
	if fc.CookieMaxAge != nil {
		cfg.CookieMaxAge = *fc.CookieMaxAge
	}
	if fc.CookieSecure != nil {
		cfg.CookieSecure = *fc.CookieSecure
	}
	if fc.CookieSecret != nil {
		cfg.CookieSecret = *fc.CookieSecret
	}
	if fc.CookieIssuer != nil {
		cfg.CookieIssuer = *fc.CookieIssuer
	}
	if fc.DetectUserAgent != nil {
		cfg.DetectUserAgent = *fc.DetectUserAgent
	}
	if fc.AllowExternalRedirects != nil {
		cfg.AllowExternalRedirects = *fc.AllowExternalRedirects
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.ServerPort = envOrDefault("SERVER_PORT", cfg.ServerPort)
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = parseLogLevel(v)
	}
	cfg.CookieName = envOrDefault("COOKIE_NAME", cfg.CookieName)
	cfg.CookieSecret = envOrDefault("COOKIE_SECRET", cfg.CookieSecret)
	cfg.CookieIssuer = envOrDefault("COOKIE_ISSUER", cfg.CookieIssuer)

	if v := os.Getenv("COOKIE_MAX_AGE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("COOKIE_MAX_AGE: %w", err)
		}
		cfg.CookieMaxAge = n
	}

	cfg.CookieSecure = envBool("COOKIE_SECURE", cfg.CookieSecure)
	cfg.DetectUserAgent = envBool("DETECT_USER_AGENT", cfg.DetectUserAgent)
	cfg.AllowExternalRedirects = envBool("ALLOW_EXTERNAL_REDIRECTS", cfg.AllowExternalRedirects)
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return strings.EqualFold(v, "true")
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
