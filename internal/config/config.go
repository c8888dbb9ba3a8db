// Package config loads tubeview configuration from the environment.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAPIURL  = "http://localhost:8000/api/v1"
	defaultTimeout = 30 * time.Second
)

// Config holds runtime settings for the CLI.
type Config struct {
	APIBaseURL  string
	ConfigDir   string
	HTTPTimeout time.Duration
	LogLevel    string
	RateLimit   float64
}

// Load reads configuration from an optional .env file and the environment.
// A missing .env file is not an error.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		APIBaseURL:  defaultAPIURL,
		ConfigDir:   defaultConfigDir(),
		HTTPTimeout: defaultTimeout,
		LogLevel:    os.Getenv("TUBEVIEW_LOG"),
	}

	if url := os.Getenv("TUBEVIEW_API_URL"); url != "" {
		cfg.APIBaseURL = url
	}
	if dir := os.Getenv("TUBEVIEW_CONFIG_DIR"); dir != "" {
		cfg.ConfigDir = dir
	}
	if raw := os.Getenv("TUBEVIEW_HTTP_TIMEOUT"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			cfg.HTTPTimeout = time.Duration(secs) * time.Second
		}
	}
	if raw := os.Getenv("TUBEVIEW_RATE_LIMIT"); raw != "" {
		if rps, err := strconv.ParseFloat(raw, 64); err == nil && rps > 0 {
			cfg.RateLimit = rps
		}
	}

	return cfg
}

// defaultConfigDir returns the directory where tokens are stored.
func defaultConfigDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "tubeview")
}
