package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/justonlyforyou/shippingmanager-copilot/internal/flagx"
)

// JSONConfig is a DTO used exclusively for JSON unmarshalling. Timeouts are
// given in seconds. Zero values mean "keep the current setting".
type JSONConfig struct {
	TargetDomain       string `json:"target_domain"`
	CookieName         string `json:"cookie_name"`
	DataDir            string `json:"data_dir"`
	HelperDir          string `json:"helper_dir"`
	KeyringService     string `json:"keyring_service"`
	PollIntervalSec    int    `json:"poll_interval_sec"`
	LoginTimeoutSec    int    `json:"login_timeout_sec"`
	PromptTimeoutSec   int    `json:"prompt_timeout_sec"`
	ValidateTimeoutSec int    `json:"validate_timeout_sec"`
}

// parseJSON overlays Config with values loaded from a JSON file selected
// via -c or -config. Absent flag means no JSON is loaded. Read or parse
// failures are returned, not swallowed: a config file the operator pointed
// at explicitly must not be half-applied.
func parseJSON(cfg *Config) error {
	path := flagx.JSONConfigFlags()
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JSONConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if jc.TargetDomain != "" {
		cfg.TargetDomain = jc.TargetDomain
	}
	if jc.CookieName != "" {
		cfg.CookieName = jc.CookieName
	}
	if jc.DataDir != "" {
		cfg.DataDir = jc.DataDir
	}
	if jc.HelperDir != "" {
		cfg.HelperDir = jc.HelperDir
	}
	if jc.KeyringService != "" {
		cfg.KeyringService = jc.KeyringService
	}
	if jc.PollIntervalSec > 0 {
		cfg.PollInterval = time.Duration(jc.PollIntervalSec) * time.Second
	}
	if jc.LoginTimeoutSec > 0 {
		cfg.LoginTimeout = time.Duration(jc.LoginTimeoutSec) * time.Second
	}
	if jc.PromptTimeoutSec > 0 {
		cfg.PromptTimeout = time.Duration(jc.PromptTimeoutSec) * time.Second
	}
	if jc.ValidateTimeoutSec > 0 {
		cfg.ValidateTimeout = time.Duration(jc.ValidateTimeoutSec) * time.Second
	}
	return nil
}
