package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseJSON_Overlay(t *testing.T) {
	origArgs := os.Args
	defer func() { os.Args = origArgs }()

	path := writeConfigFile(t, `{
		"target_domain": "alt.example.org",
		"poll_interval_sec": 5,
		"login_timeout_sec": 120
	}`)
	os.Args = []string{"app", "-c", path}

	cfg := &Config{}
	cfg.LoadDefaults()
	require.NoError(t, parseJSON(cfg))

	assert.Equal(t, "alt.example.org", cfg.TargetDomain)
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
	assert.Equal(t, 120*time.Second, cfg.LoginTimeout)
	// Zero-valued JSON fields keep defaults.
	assert.Equal(t, "shipping_manager_session", cfg.CookieName)
	assert.Equal(t, 10*time.Second, cfg.ValidateTimeout)
}

func TestParseJSON_NoFlagIsNoop(t *testing.T) {
	origArgs := os.Args
	defer func() { os.Args = origArgs }()
	os.Args = []string{"app"}

	cfg := &Config{}
	cfg.LoadDefaults()
	require.NoError(t, parseJSON(cfg))
	assert.Equal(t, "shippingmanager.cc", cfg.TargetDomain)
}

func TestParseJSON_BadFile(t *testing.T) {
	origArgs := os.Args
	defer func() { os.Args = origArgs }()

	path := writeConfigFile(t, `{not json`)
	os.Args = []string{"app", "-c", path}

	cfg := &Config{}
	cfg.LoadDefaults()
	assert.Error(t, parseJSON(cfg))
}
