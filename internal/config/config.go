// Package config assembles runtime settings from defaults, an optional YAML
// file and environment variables. The defaults alone reproduce the stock
// digest behavior, so running with no config at all is fully supported.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// HTTP settings
	Port int

	// Feed settings
	FeedURL        string // endpoint template, %s receives the encoded query
	Query          string
	MaxItems       int
	RequestTimeout time.Duration

	// Static asset locations
	TemplatesDir string
	StaticDir    string

	// App settings
	Debug bool
}

// fileConfig is the YAML shape of configs/digest.yaml. Every field is
// optional; absent fields keep their defaults.
type fileConfig struct {
	Port           int    `yaml:"port"`
	FeedURL        string `yaml:"feed_url"`
	Query          string `yaml:"query"`
	MaxItems       int    `yaml:"max_items"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	TemplatesDir   string `yaml:"templates_dir"`
	StaticDir      string `yaml:"static_dir"`
}

const defaultConfigPath = "configs/digest.yaml"

func Load() (*Config, error) {
	cfg := &Config{
		// Default values
		Port:           8000,
		FeedURL:        "https://news.google.com/rss/search?q=%s&hl=en-US&gl=US&ceid=US:en",
		Query:          "AI OR artificial intelligence when:1d",
		MaxItems:       10,
		RequestTimeout: 12 * time.Second,
		TemplatesDir:   "templates",
		StaticDir:      "static",
	}

	path := getEnvOrDefault("CONFIG_PATH", defaultConfigPath)
	if err := cfg.applyFile(path); err != nil {
		return nil, err
	}

	// Environment overrides
	cfg.Port = getEnvIntOrDefault("PORT", cfg.Port)
	cfg.MaxItems = getEnvIntOrDefault("MAX_NEWS_LIMIT", cfg.MaxItems)
	if v := os.Getenv("NEWS_QUERY"); v != "" {
		cfg.Query = v
	}
	if v := os.Getenv("FEED_URL"); v != "" {
		cfg.FeedURL = v
	}
	if v := os.Getenv("REQUEST_TIMEOUT_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.RequestTimeout = time.Duration(val) * time.Second
		}
	}
	if os.Getenv("DEBUG") == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

// applyFile overlays settings from a YAML file. A missing file at the
// default path is fine; an explicitly configured path must exist.
func (c *Config) applyFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) && path == defaultConfigPath {
			return nil
		}
		return fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()

	var fc fileConfig
	if err := yaml.NewDecoder(f).Decode(&fc); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}

	if fc.Port > 0 {
		c.Port = fc.Port
	}
	if fc.FeedURL != "" {
		c.FeedURL = fc.FeedURL
	}
	if fc.Query != "" {
		c.Query = fc.Query
	}
	if fc.MaxItems > 0 {
		c.MaxItems = fc.MaxItems
	}
	if fc.TimeoutSeconds > 0 {
		c.RequestTimeout = time.Duration(fc.TimeoutSeconds) * time.Second
	}
	if fc.TemplatesDir != "" {
		c.TemplatesDir = fc.TemplatesDir
	}
	if fc.StaticDir != "" {
		c.StaticDir = fc.StaticDir
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil && intValue > 0 {
			return intValue
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if !strings.Contains(c.FeedURL, "%s") {
		return fmt.Errorf("feed_url must contain a %%s query placeholder")
	}
	if c.MaxItems <= 0 {
		return fmt.Errorf("max_items must be positive")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	return nil
}
