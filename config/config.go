package config

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/goodsign/monday"
)

// Environment variables that override the file, typically set through .env.
const (
	EnvDatabase = "SCUTILS_DATABASE"
	EnvRedisURL = "SCUTILS_REDIS_URL"
	EnvListen   = "SCUTILS_LISTEN"
)

// DatabaseConfig locates the flat page database.
type DatabaseConfig struct {
	Path string `json:"path"`
}

// RedisConfig enables the optional page cache.
type RedisConfig struct {
	URL    string `json:"url"`
	TTLSec int    `json:"ttlSec"`
	Prefix string `json:"prefix"`

	ttl time.Duration
}

// TTL returns the effective cache lifetime.
func (r RedisConfig) TTL() time.Duration {
	return r.ttl
}

// Enabled reports whether a Redis URL is configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != ""
}

// Config encapsulates runtime and build-time options.
type Config struct {
	Listen       string         `json:"listen"`
	LogLevel     string         `json:"logLevel"`
	TemplateDir  string         `json:"templateDir"`
	OutputDir    string         `json:"outputDir"`
	ImportDir    string         `json:"importDir"`
	SiteName     string         `json:"siteName"`
	SiteID       int            `json:"siteId"`
	TimeZone     string         `json:"timeZone"`
	DateFormat   string         `json:"dateFormat"`
	Locale       string         `json:"locale"`
	ServerFooter string         `json:"serverFooter"`
	EnableTLS    bool           `json:"enableTLS"`
	TLSCert      string         `json:"tlsCert"`
	TLSKey       string         `json:"tlsKey"`
	Database     DatabaseConfig `json:"database"`
	Redis        RedisConfig    `json:"redis"`

	location *time.Location
}

// Load reads configuration from disk, applies environment overrides and
// sane defaults, and validates the result.
func Load(path string) (*Config, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(bytes, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnv()
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	if err := cfg.applyDefaults(); err != nil {
		panic(err)
	}
	return cfg
}

// Location is the time zone dates are displayed in.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// MondayLocale is the locale used for month and day names.
func (c *Config) MondayLocale() monday.Locale {
	return monday.Locale(c.Locale)
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvDatabase)); v != "" {
		c.Database.Path = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvRedisURL)); v != "" {
		c.Redis.URL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvListen)); v != "" {
		c.Listen = v
	}
}

func (c *Config) applyDefaults() error {
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.OutputDir == "" {
		c.OutputDir = "./dist"
	}
	if c.TemplateDir == "" {
		c.TemplateDir = "./template"
	}
	c.ImportDir = strings.TrimSpace(c.ImportDir)

	c.SiteName = strings.TrimSpace(c.SiteName)
	if c.SiteName == "" {
		c.SiteName = "scutils"
	}
	if c.SiteID == 0 {
		c.SiteID = 1
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	c.TimeZone = strings.TrimSpace(c.TimeZone)
	if c.TimeZone == "" {
		c.TimeZone = "UTC"
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return fmt.Errorf("time zone %q: %w", c.TimeZone, err)
	}
	c.location = loc

	if strings.TrimSpace(c.DateFormat) == "" {
		c.DateFormat = "Jan 2, 2006"
	}
	c.Locale = strings.TrimSpace(c.Locale)
	if c.Locale == "" {
		c.Locale = string(monday.LocaleEnUS)
	}

	c.Database.Path = strings.TrimSpace(c.Database.Path)
	if c.Database.Path == "" {
		c.Database.Path = "./flatpages.db"
	}

	c.Redis.URL = strings.TrimSpace(c.Redis.URL)
	if c.Redis.TTLSec <= 0 {
		c.Redis.TTLSec = 300
	}
	c.Redis.ttl = time.Duration(c.Redis.TTLSec) * time.Second
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = "scutils:flatpage:"
	}
	return nil
}

func (c *Config) validate() error {
	if c.SiteID < 0 {
		return fmt.Errorf("siteId must be positive")
	}
	if c.EnableTLS {
		if c.TLSCert == "" || c.TLSKey == "" {
			return fmt.Errorf("tls enabled but certificates missing")
		}
	}
	if !isSupportedLocale(c.Locale) {
		return fmt.Errorf("unsupported locale %q", c.Locale)
	}
	if c.Redis.URL != "" {
		parsed, err := url.Parse(c.Redis.URL)
		if err != nil {
			return fmt.Errorf("invalid redis url: %w", err)
		}
		if parsed.Scheme != "redis" && parsed.Scheme != "rediss" {
			return fmt.Errorf("invalid redis url scheme %q", parsed.Scheme)
		}
	}
	return nil
}

func isSupportedLocale(locale string) bool {
	for _, supported := range monday.ListLocales() {
		if string(supported) == locale {
			return true
		}
	}
	return false
}
