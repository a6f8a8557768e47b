// Package config loads client configuration from environment variables.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Config holds everything the client needs to reach the backend.
type Config struct {
	// ServerURL is the root URL of the backend API.
	ServerURL string
	// AppID identifies this application to the backend.
	AppID string
	// SessionFile is where the CLI persists its session between runs.
	SessionFile string
}

// Load reads configuration from the environment. Every setting has a
// default suitable for a locally running dev server, so Load always
// yields a usable configuration.
func Load() *Config {
	return &Config{
		ServerURL:   strings.TrimRight(getEnv("SNAPFEED_SERVER_URL", "http://localhost:1337"), "/"),
		AppID:       getEnv("SNAPFEED_APP_ID", "snapfeed-dev"),
		SessionFile: getEnv("SNAPFEED_SESSION_FILE", defaultSessionFile()),
	}
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".snapfeed-session.json"
	}
	return filepath.Join(home, ".snapfeed", "session.json")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
