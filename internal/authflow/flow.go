// Package authflow composes the session store, the validator, the browser
// authenticator and the operator dialogs into the selection/login/refresh
// loop.
package authflow

import (
	"context"
	"errors"

	"github.com/justonlyforyou/shippingmanager-copilot/internal/api"
	"github.com/justonlyforyou/shippingmanager-copilot/internal/browser"
	"github.com/justonlyforyou/shippingmanager-copilot/internal/common"
	"github.com/justonlyforyou/shippingmanager-copilot/internal/logging"
	"github.com/justonlyforyou/shippingmanager-copilot/internal/prompt"
	"github.com/justonlyforyou/shippingmanager-copilot/internal/session"
)

// Validator partitions the stored sessions into live and dead.
type Validator interface {
	ValidateAll(ctx context.Context, st *session.Store) ([]api.ValidSession, []api.ExpiredSession)
}

// Authenticator runs one interactive browser login.
type Authenticator interface {
	Login(ctx context.Context) (*browser.Result, error)
}

// Flow drives the whole account-selection loop.
type Flow struct {
	store     *session.Store
	validator Validator
	browser   Authenticator
	prompter  prompt.Prompter
	log       logging.Logger
}

func New(st *session.Store, v Validator, b Authenticator, p prompt.Prompter, log logging.Logger) *Flow {
	return &Flow{store: st, validator: v, browser: b, prompter: p, log: log}
}

// Run returns the chosen account id, or "" when the operator cancelled.
//
// Only common.ErrBrowserUnavailable escapes as a hard error; every other
// component failure is absorbed into the cancellation outcome, so the
// caller only ever sees an identity, a cancellation, or "no browser".
func (f *Flow) Run(ctx context.Context) (string, error) {
	f.log.Info(ctx, "checking for saved sessions")
	valid, expired := f.validator.ValidateAll(ctx, f.store)

	for len(valid) > 0 || len(expired) > 0 {
		choice, err := f.prompter.SelectSession(ctx, summaries(valid), expiredSummaries(expired), true)
		if err != nil || choice == nil {
			f.log.Info(ctx, "session selection cancelled")
			return "", nil
		}

		switch choice.Action {
		case prompt.ActionUseSession:
			for _, s := range valid {
				if s.AccountID == choice.AccountID {
					f.log.Info(ctx, "using saved session",
						"account_id", s.AccountID, "company", s.CompanyName)
					return s.AccountID, nil
				}
			}
			f.log.Warn(ctx, "selected session not found", "account_id", choice.AccountID)
			return "", nil

		case prompt.ActionRefreshSessions:
			valid, expired = f.refresh(ctx, valid, expired)

		case prompt.ActionNewSession:
			f.log.Info(ctx, "operator chose to add a new session")
			return f.newLogin(ctx)

		default:
			f.log.Warn(ctx, "unknown selector action", "action", choice.Action)
			return "", nil
		}
	}

	// Empty store: straight to a fresh login.
	return f.newLogin(ctx)
}

// refresh lets the operator pick any known account and re-authenticate it.
// The new identity must match the picked account; otherwise the store is
// left untouched. Always returns a re-validated view of the store.
func (f *Flow) refresh(ctx context.Context, valid []api.ValidSession, expired []api.ExpiredSession) ([]api.ValidSession, []api.ExpiredSession) {
	all := append(summaries(valid), expiredSummaries(expired)...)
	if len(all) == 0 {
		f.log.Warn(ctx, "no sessions available to refresh")
		return valid, expired
	}

	choice, err := f.prompter.SelectSession(ctx, all, nil, false)
	if err != nil || choice == nil || choice.Action != prompt.ActionUseSession {
		return valid, expired
	}
	selected := choice.AccountID

	var company string
	for _, a := range all {
		if a.AccountID == selected {
			company = a.CompanyName
			break
		}
	}
	f.log.Info(ctx, "refreshing session", "account_id", selected, "company", company)

	res, err := f.browser.Login(ctx)
	if err != nil {
		f.log.Warn(ctx, "refresh login failed", "account_id", selected, "error", err)
		return f.validator.ValidateAll(ctx, f.store)
	}

	if res.Profile.ID.String() != selected {
		f.log.Error(ctx, "refresh authenticated a different account, store left unchanged",
			"selected", selected, "authenticated", res.Profile.ID.String(),
			"error", common.ErrAccountMismatch)
		return f.validator.ValidateAll(ctx, f.store)
	}

	if err := f.persist(ctx, res); err != nil {
		f.log.Error(ctx, "failed to persist refreshed session", "error", err)
	} else {
		f.log.Info(ctx, "session refreshed", "account_id", selected, "company", res.Profile.CompanyName)
	}
	return f.validator.ValidateAll(ctx, f.store)
}

// newLogin runs an unconditional fresh browser login and persists it.
func (f *Flow) newLogin(ctx context.Context) (string, error) {
	f.log.Info(ctx, "starting browser login")

	res, err := f.browser.Login(ctx)
	if err != nil {
		if errors.Is(err, common.ErrBrowserUnavailable) {
			return "", err
		}
		// Timeout, abort, anything else: the operator walked away.
		f.log.Warn(ctx, "login failed, no cookie obtained", "error", err)
		return "", nil
	}

	if err := f.persist(ctx, res); err != nil {
		// The session is valid even if caching it failed.
		f.log.Error(ctx, "failed to save session", "error", err)
	}

	accountID := res.Profile.ID.String()
	f.log.Info(ctx, "login complete", "account_id", accountID, "company", res.Profile.CompanyName)
	return accountID, nil
}

func (f *Flow) persist(ctx context.Context, res *browser.Result) error {
	return f.store.Save(ctx, res.Profile.ID.String(), res.Bundle,
		res.Profile.CompanyName, common.LoginMethodBrowser)
}

func summaries(valid []api.ValidSession) []prompt.Account {
	out := make([]prompt.Account, 0, len(valid))
	for _, s := range valid {
		out = append(out, prompt.Account{
			AccountID:   s.AccountID,
			CompanyName: s.CompanyName,
			LoginMethod: s.LoginMethod,
		})
	}
	return out
}

func expiredSummaries(expired []api.ExpiredSession) []prompt.Account {
	out := make([]prompt.Account, 0, len(expired))
	for _, s := range expired {
		out = append(out, prompt.Account{
			AccountID:   s.AccountID,
			CompanyName: s.CompanyName,
			LoginMethod: s.LoginMethod,
		})
	}
	return out
}
