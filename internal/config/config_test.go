package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SNAPFEED_SERVER_URL", "")
	t.Setenv("SNAPFEED_APP_ID", "")
	t.Setenv("SNAPFEED_SESSION_FILE", "")

	cfg := Load()
	assert.Equal(t, "http://localhost:1337", cfg.ServerURL)
	assert.Equal(t, "snapfeed-dev", cfg.AppID)
	assert.NotEmpty(t, cfg.SessionFile)
}

func TestLoadTrimsTrailingSlash(t *testing.T) {
	t.Setenv("SNAPFEED_SERVER_URL", "https://api.example.com/")

	cfg := Load()
	assert.Equal(t, "https://api.example.com", cfg.ServerURL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SNAPFEED_SERVER_URL", "https://api.example.com")
	t.Setenv("SNAPFEED_APP_ID", "my-app")
	t.Setenv("SNAPFEED_SESSION_FILE", "/tmp/session.json")

	cfg := Load()
	assert.Equal(t, "my-app", cfg.AppID)
	assert.Equal(t, "/tmp/session.json", cfg.SessionFile)
}
