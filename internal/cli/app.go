package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/justonlyforyou/shippingmanager-copilot/internal/api"
	"github.com/justonlyforyou/shippingmanager-copilot/internal/authflow"
	"github.com/justonlyforyou/shippingmanager-copilot/internal/browser"
	"github.com/justonlyforyou/shippingmanager-copilot/internal/config"
	"github.com/justonlyforyou/shippingmanager-copilot/internal/logging"
	"github.com/justonlyforyou/shippingmanager-copilot/internal/prompt"
	"github.com/justonlyforyou/shippingmanager-copilot/internal/session"
	"github.com/justonlyforyou/shippingmanager-copilot/internal/vault"
)

// App wires the configuration, the encrypted store and the login flow
// together. One App is built per invocation.
type App struct {
	Config *config.Config
	Log    logging.Logger
	Store  *session.Store
	Flow   *authflow.Flow
}

func NewApp() (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	// Everything diagnostic goes to stderr; stdout is reserved for the
	// selected account id.
	log := logging.NewStderr(os.Stderr, slog.LevelInfo)

	vlt := vault.New(cfg.KeyringService, vault.NewSystemKeyring(), log)
	st, err := session.NewStore(cfg.DataDir, vlt, log)
	if err != nil {
		return nil, err
	}

	validator := api.NewValidator(cfg, log)
	auth := browser.NewAuthenticator(browser.NewProviders(), validator, cfg, log)
	flow := authflow.New(st, validator, auth, newPrompter(cfg, log), log)

	return &App{Config: cfg, Log: log, Store: st, Flow: flow}, nil
}

// newPrompter prefers the dialog helper executables; when they are not
// installed and we are on a terminal, fall back to console prompts.
func newPrompter(cfg *config.Config, log logging.Logger) prompt.Prompter {
	ep := prompt.NewExecPrompter(cfg.HelperDir, cfg.PromptTimeout, log)
	if ep.Available() {
		return ep
	}
	if prompt.InteractiveTerminal() {
		log.Debug(context.Background(), "dialog helper not found, using console prompts")
		return prompt.NewConsolePrompter(log)
	}
	return ep
}
