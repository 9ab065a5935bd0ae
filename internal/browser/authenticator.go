package browser

import (
	"context"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/justonlyforyou/shippingmanager-copilot/internal/api"
	"github.com/justonlyforyou/shippingmanager-copilot/internal/common"
	"github.com/justonlyforyou/shippingmanager-copilot/internal/config"
	"github.com/justonlyforyou/shippingmanager-copilot/internal/logging"
	"github.com/justonlyforyou/shippingmanager-copilot/internal/session"
)

// state of a login attempt. Transitions:
//
//	LAUNCHING → AWAITING_COOKIE → VALIDATING → SUCCESS
//	                     ↑              |
//	                     +--------------+  (cookie seen, not yet valid)
//	AWAITING_COOKIE → ABORTED  (window closed)
//	AWAITING_COOKIE → TIMEOUT  (deadline elapsed)
type state int

const (
	stateLaunching state = iota
	stateAwaitingCookie
	stateValidating
	stateSuccess
	stateTimeout
	stateAborted
)

// Validator confirms that an observed cookie actually authenticates.
type Validator interface {
	Validate(ctx context.Context, b session.Bundle, accountID string) *api.Profile
}

// Result is a completed browser login: the extracted credential bundle and
// the profile the validator fetched for it.
type Result struct {
	Bundle  session.Bundle
	Profile *api.Profile
}

// Authenticator runs interactive browser logins.
type Authenticator struct {
	providers []Provider
	validator Validator
	cfg       *config.Config
	clock     Clock
	log       logging.Logger
}

func NewAuthenticator(providers []Provider, v Validator, cfg *config.Config, log logging.Logger) *Authenticator {
	return &Authenticator{
		providers: providers,
		validator: v,
		cfg:       cfg,
		clock:     realClock{},
		log:       log,
	}
}

// SetClock replaces the time source. Tests use it to simulate elapsed time.
func (a *Authenticator) SetClock(c Clock) { a.clock = c }

// Login drives one full browser login attempt and blocks until it settles.
//
// Errors: common.ErrBrowserUnavailable when no provider starts (fatal for
// the process), common.ErrLoginTimeout when the deadline passes without a
// validated cookie, common.ErrLoginAborted when the operator closes the
// window. The overall deadline is absolute from entering the polling state
// and is never reset, including across failed validations of an
// early-appearing cookie.
func (a *Authenticator) Login(ctx context.Context) (*Result, error) {
	log := a.log.With("attempt_id", uuid.NewString())

	sess, err := a.launch(ctx, log)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	log.Info(ctx, "navigating to login origin", "url", a.cfg.LoginURL())
	if err := sess.Navigate(ctx, a.cfg.LoginURL()); err != nil {
		log.Error(ctx, "navigation failed", "error", err)
		return nil, common.ErrBrowserUnavailable
	}
	log.Info(ctx, "waiting for operator to complete login in the browser window")

	st := stateAwaitingCookie
	deadline := a.clock.Now().Add(a.cfg.LoginTimeout)
	lastStatus := ""

	for {
		if a.clock.Now().After(deadline) {
			st = stateTimeout
			break
		}

		if !sess.Alive(ctx) {
			st = stateAborted
			break
		}

		token, found := a.findTargetCookie(ctx, sess, log)
		if found {
			st = stateValidating
			profile := a.validator.Validate(ctx, session.Bundle{SessionToken: token}, "")
			if profile != nil {
				log.Info(ctx, "login validated",
					"company", profile.CompanyName, "account_id", profile.ID.String())
				st = stateSuccess
				return a.finish(ctx, sess, token, profile, log)
			}
			// Cookie can appear before the account is provisioned
			// server-side. Keep polling on the same deadline.
			st = stateAwaitingCookie
			if lastStatus != "cookie_not_valid_yet" {
				log.Info(ctx, "cookie found but not valid yet, still waiting")
				lastStatus = "cookie_not_valid_yet"
			}
		} else if lastStatus != "no_cookie" {
			log.Info(ctx, "waiting for session cookie")
			lastStatus = "no_cookie"
		}

		if err := a.clock.Sleep(ctx, a.cfg.PollInterval); err != nil {
			st = stateAborted
			break
		}
	}

	switch st {
	case stateAborted:
		log.Warn(ctx, "browser window closed before login completed")
		return nil, common.ErrLoginAborted
	default:
		log.Error(ctx, "login not completed before deadline")
		return nil, common.ErrLoginTimeout
	}
}

// launch tries every provider in order and returns the first session.
func (a *Authenticator) launch(ctx context.Context, log logging.Logger) (Session, error) {
	for _, p := range a.providers {
		log.Info(ctx, "trying browser", "provider", p.Name())
		sess, err := p.Open(ctx)
		if err != nil {
			log.Warn(ctx, "browser not available", "provider", p.Name(), "error", err)
			continue
		}
		log.Info(ctx, "using browser", "provider", p.Name())
		return sess, nil
	}
	return nil, common.ErrBrowserUnavailable
}

// findTargetCookie scans the jar for the session cookie and normalizes its
// value. Jar read errors are polling noise, not failures.
func (a *Authenticator) findTargetCookie(ctx context.Context, sess Session, log logging.Logger) (string, bool) {
	cookies, err := sess.Cookies(ctx)
	if err != nil {
		log.Debug(ctx, "cookie jar read failed", "error", err)
		return "", false
	}
	for _, c := range cookies {
		if c.Name == a.cfg.CookieName {
			value := normalizeCookie(c.Value)
			if value != "" {
				return value, true
			}
		}
	}
	return "", false
}

// finish re-reads the jar to pick up auxiliary cookies, shows the success
// overlay and assembles the result. Everything here degrades gracefully:
// the validated session token alone is a complete result.
func (a *Authenticator) finish(ctx context.Context, sess Session, token string, profile *api.Profile, log logging.Logger) (*Result, error) {
	bundle := session.Bundle{SessionToken: token}

	cookies, err := sess.Cookies(ctx)
	if err != nil {
		log.Warn(ctx, "could not re-read cookie jar, using session cookie only", "error", err)
	} else {
		for _, c := range cookies {
			switch c.Name {
			case a.cfg.CookieName:
				bundle.SessionToken = normalizeCookie(c.Value)
			case "app_platform":
				bundle.AppPlatform = normalizeCookie(c.Value)
			case "app_version":
				bundle.AppVersion = normalizeCookie(c.Value)
			}
		}
	}
	if bundle.SessionToken == "" {
		bundle.SessionToken = token
	}

	// Cosmetic only; the operator just sees "you can close the browser".
	if err := sess.Eval(ctx, successOverlayJS); err != nil {
		log.Debug(ctx, "could not display success message in browser", "error", err)
	}

	return &Result{Bundle: bundle, Profile: profile}, nil
}

// normalizeCookie URL-decodes and trims a raw jar value. Values the jar
// hands over percent-encoded (e.g. %3D) must round back to their wire
// form. PathUnescape, not QueryUnescape: '+' inside a cookie value is a
// literal plus.
func normalizeCookie(raw string) string {
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		decoded = raw
	}
	return strings.TrimSpace(decoded)
}
