package config

import (
	"fmt"
	"time"

	"github.com/justonlyforyou/shippingmanager-copilot/internal/common"
	"github.com/justonlyforyou/shippingmanager-copilot/internal/filex"
)

// Config holds runtime settings for the session manager.
//
// One value is constructed at startup and passed by reference into every
// component, so tests can substitute endpoint, storage path and timings.
type Config struct {
	// TargetDomain is the host of the remote service, without scheme.
	TargetDomain string
	// CookieName is the session cookie the browser login waits for.
	CookieName string
	// UserAgent is sent on every validation request.
	UserAgent string

	// DataDir is the userdata directory; SessionsFile lives in
	// DataDir/settings. HelperDir is where collaborator dialog
	// executables are looked up.
	DataDir   string
	HelperDir string

	// KeyringService is the OS credential-store service name.
	KeyringService string

	// PollInterval is the cookie-jar polling period during browser login.
	PollInterval time.Duration
	// LoginTimeout bounds a whole browser login attempt.
	LoginTimeout time.Duration
	// PromptTimeout bounds one collaborator dialog.
	PromptTimeout time.Duration
	// ValidateTimeout bounds one remote validation call.
	ValidateTimeout time.Duration
}

// SettingsURL is the fixed remote endpoint used for liveness validation.
func (c *Config) SettingsURL() string {
	return fmt.Sprintf("https://%s/api/user/get-user-settings", c.TargetDomain)
}

// LoginURL is the origin the browser is pointed at for interactive login.
func (c *Config) LoginURL() string {
	return fmt.Sprintf("https://%s", c.TargetDomain)
}

// LoadDefaults populates c with the fixed production values.
func (c *Config) LoadDefaults() {
	c.TargetDomain = "shippingmanager.cc"
	c.CookieName = "shipping_manager_session"
	c.UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"
	c.KeyringService = common.ServiceName
	c.PollInterval = 2 * time.Second
	c.LoginTimeout = 300 * time.Second
	c.PromptTimeout = 300 * time.Second
	c.ValidateTimeout = 10 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later sources
// take precedence over earlier ones. The data directory is resolved last so
// an explicit -data flag wins over the platform default.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg); err != nil {
		return nil, err
	}
	parseFlags(cfg)

	if cfg.DataDir == "" {
		dir, err := filex.DataDir(common.ServiceName)
		if err != nil {
			return nil, fmt.Errorf("resolve data dir: %w", err)
		}
		cfg.DataDir = dir
	}
	return cfg, nil
}
