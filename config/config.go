// Package config loads receita settings from defaults, an optional YAML
// file and RECEITA_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const envPrefix = "RECEITA_"

type Config struct {
	Port string `yaml:"port"`

	// Where exported artifacts are written before they are opened.
	OutputDir string `yaml:"output_dir"`
	// Opener replaces the platform file opener, e.g. ["evince"].
	Opener []string `yaml:"opener"`

	// Chrome
	ChromeBin string `yaml:"chrome_bin"`
	ChromeURL string `yaml:"chrome_url"`
	Headless  bool   `yaml:"headless"`

	// Export
	Scale         float64       `yaml:"scale"`
	TextFontSize  float64       `yaml:"text_font_size"`
	ExportTimeout time.Duration `yaml:"export_timeout"`

	// HTTP
	APIKey       string `yaml:"api_key"`
	MaxBodyBytes int64  `yaml:"max_body_bytes"`

	CatalogPath string `yaml:"catalog_path"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Port:          "8090",
		Headless:      true,
		Scale:         5,
		TextFontSize:  16,
		ExportTimeout: 60 * time.Second,
		MaxBodyBytes:  4 << 20, // 4MB
	}
}

// Load builds the configuration. path may be empty; a named file that does
// not exist is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Port = envOr("PORT", c.Port)
	c.OutputDir = envOr("OUTPUT_DIR", c.OutputDir)
	if v := os.Getenv(envPrefix + "OPENER"); v != "" {
		c.Opener = strings.Fields(v)
	}

	c.ChromeBin = envOr("CHROME_BIN", c.ChromeBin)
	c.ChromeURL = envOr("CHROME_URL", c.ChromeURL)
	c.Headless = envBool("HEADLESS", c.Headless)

	c.Scale = envFloat("SCALE", c.Scale)
	c.TextFontSize = envFloat("TEXT_FONT_SIZE", c.TextFontSize)
	c.ExportTimeout = envDuration("EXPORT_TIMEOUT", c.ExportTimeout)

	c.APIKey = envOr("API_KEY", c.APIKey)
	c.MaxBodyBytes = envInt64("MAX_BODY_BYTES", c.MaxBodyBytes)

	c.CatalogPath = envOr("CATALOG_PATH", c.CatalogPath)
}

func (c Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("port is required"))
	} else if n, err := strconv.Atoi(c.Port); err != nil || n < 0 || n > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %q", c.Port))
	}
	if c.Scale <= 0 {
		errs = append(errs, fmt.Errorf("scale must be positive, got %v", c.Scale))
	}
	if c.TextFontSize <= 0 {
		errs = append(errs, fmt.Errorf("text_font_size must be positive, got %v", c.TextFontSize))
	}
	if c.ExportTimeout <= 0 {
		errs = append(errs, fmt.Errorf("export_timeout must be positive, got %v", c.ExportTimeout))
	}
	if c.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("max_body_bytes must be positive, got %d", c.MaxBodyBytes))
	}
	return errors.Join(errs...)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(envPrefix + key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(envPrefix + key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(envPrefix + key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(envPrefix + key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(envPrefix + key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
