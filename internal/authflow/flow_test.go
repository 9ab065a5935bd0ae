package authflow

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justonlyforyou/shippingmanager-copilot/internal/api"
	"github.com/justonlyforyou/shippingmanager-copilot/internal/browser"
	"github.com/justonlyforyou/shippingmanager-copilot/internal/common"
	"github.com/justonlyforyou/shippingmanager-copilot/internal/logging"
	"github.com/justonlyforyou/shippingmanager-copilot/internal/prompt"
	"github.com/justonlyforyou/shippingmanager-copilot/internal/session"
	"github.com/justonlyforyou/shippingmanager-copilot/internal/vault"
)

// ---- fakes ----

// fakeValidator serves canned partitions; each ValidateAll call consumes
// the next one (the last is sticky).
type fakeValidator struct {
	calls   int
	results []partition
}

type partition struct {
	valid   []api.ValidSession
	expired []api.ExpiredSession
}

func (v *fakeValidator) ValidateAll(ctx context.Context, st *session.Store) ([]api.ValidSession, []api.ExpiredSession) {
	v.calls++
	if len(v.results) == 0 {
		return nil, nil
	}
	idx := v.calls - 1
	if idx >= len(v.results) {
		idx = len(v.results) - 1
	}
	return v.results[idx].valid, v.results[idx].expired
}

type fakeBrowser struct {
	calls int
	res   *browser.Result
	err   error
}

func (b *fakeBrowser) Login(ctx context.Context) (*browser.Result, error) {
	b.calls++
	return b.res, b.err
}

// fakePrompter replays a scripted list of choices; nil means cancellation.
type fakePrompter struct {
	calls   []promptCall
	choices []*prompt.Choice
}

type promptCall struct {
	valid       []prompt.Account
	expired     []prompt.Account
	showActions bool
}

func (p *fakePrompter) SelectSession(ctx context.Context, valid, expired []prompt.Account, showActions bool) (*prompt.Choice, error) {
	p.calls = append(p.calls, promptCall{valid: valid, expired: expired, showActions: showActions})
	if len(p.choices) == 0 {
		return nil, nil
	}
	choice := p.choices[0]
	p.choices = p.choices[1:]
	return choice, nil
}

// ---- helpers ----

func testLogger() logging.Logger {
	return logging.NewStderr(io.Discard, slog.LevelError)
}

func newTestStore(t *testing.T) *session.Store {
	t.Helper()
	vlt := vault.New("TestService", nil, testLogger())
	st, err := session.NewStore(t.TempDir(), vlt, testLogger())
	require.NoError(t, err)
	return st
}

func loginResult(id, company, token string) *browser.Result {
	return &browser.Result{
		Bundle:  session.Bundle{SessionToken: token},
		Profile: &api.Profile{ID: api.ID(id), CompanyName: company},
	}
}

func validFor(id, company string, ts int64) api.ValidSession {
	return api.ValidSession{AccountID: id, CompanyName: company, LoginMethod: "browser", Timestamp: ts}
}

// ---- tests ----

func TestRun_EmptyStoreGoesStraightToLogin(t *testing.T) {
	st := newTestStore(t)
	b := &fakeBrowser{res: loginResult("42", "Acme Co", "tok123")}
	p := &fakePrompter{}

	start := time.Now().Unix()
	flow := New(st, &fakeValidator{}, b, p, testLogger())
	got, err := flow.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "42", got)
	assert.Equal(t, 1, b.calls)
	assert.Empty(t, p.calls, "no dialog for an empty store")

	sessions := st.Load(context.Background())
	require.Len(t, sessions, 1)
	rec := sessions["42"]
	assert.Equal(t, "Acme Co", rec.CompanyName)
	assert.Equal(t, "browser", rec.LoginMethod)
	assert.True(t, vault.IsEncrypted(rec.Cookie))
	assert.GreaterOrEqual(t, rec.Timestamp, start)
	assert.LessOrEqual(t, rec.Timestamp, time.Now().Unix())
}

func TestRun_UseSession(t *testing.T) {
	st := newTestStore(t)
	v := &fakeValidator{results: []partition{{
		valid: []api.ValidSession{validFor("42", "Acme Co", 100), validFor("7", "Beta", 50)},
	}}}
	b := &fakeBrowser{}
	p := &fakePrompter{choices: []*prompt.Choice{
		{Action: prompt.ActionUseSession, AccountID: "7"},
	}}

	flow := New(st, v, b, p, testLogger())
	got, err := flow.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "7", got)
	assert.Zero(t, b.calls, "no re-validation or login for a chosen valid session")

	require.Len(t, p.calls, 1)
	assert.True(t, p.calls[0].showActions)
	assert.Len(t, p.calls[0].valid, 2)
}

func TestRun_SelectionCancelledIsNotAnError(t *testing.T) {
	st := newTestStore(t)
	v := &fakeValidator{results: []partition{{valid: []api.ValidSession{validFor("42", "Acme", 1)}}}}
	b := &fakeBrowser{}
	p := &fakePrompter{} // immediately cancels

	flow := New(st, v, b, p, testLogger())
	got, err := flow.Run(context.Background())

	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, b.calls)
}

func TestRun_NewSessionFromSelector(t *testing.T) {
	st := newTestStore(t)
	v := &fakeValidator{results: []partition{{valid: []api.ValidSession{validFor("42", "Acme", 1)}}}}
	b := &fakeBrowser{res: loginResult("99", "New Co", "tok-new")}
	p := &fakePrompter{choices: []*prompt.Choice{{Action: prompt.ActionNewSession}}}

	flow := New(st, v, b, p, testLogger())
	got, err := flow.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "99", got)
	assert.Equal(t, 1, b.calls)
	assert.Contains(t, st.Load(context.Background()), "99")
}

func TestRun_BrowserUnavailableIsFatal(t *testing.T) {
	st := newTestStore(t)
	b := &fakeBrowser{err: common.ErrBrowserUnavailable}

	flow := New(st, &fakeValidator{}, b, &fakePrompter{}, testLogger())
	_, err := flow.Run(context.Background())

	assert.ErrorIs(t, err, common.ErrBrowserUnavailable)
}

func TestRun_LoginTimeoutIsAbsorbed(t *testing.T) {
	st := newTestStore(t)
	b := &fakeBrowser{err: common.ErrLoginTimeout}

	flow := New(st, &fakeValidator{}, b, &fakePrompter{}, testLogger())
	got, err := flow.Run(context.Background())

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRefresh_AccountMismatchLeavesStoreUntouched(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	// Account "A" exists on disk before the refresh attempt.
	require.NoError(t, st.Save(ctx, "A", session.Bundle{SessionToken: "old-tok"}, "A Co", "browser"))
	before, err := os.ReadFile(st.Path())
	require.NoError(t, err)

	v := &fakeValidator{results: []partition{
		{expired: []api.ExpiredSession{{AccountID: "A", CompanyName: "A Co", LoginMethod: "browser"}}},
	}}
	// The browser flow authenticates as account "B".
	b := &fakeBrowser{res: loginResult("B", "B Co", "b-tok")}
	p := &fakePrompter{choices: []*prompt.Choice{
		{Action: prompt.ActionRefreshSessions},
		{Action: prompt.ActionUseSession, AccountID: "A"},
		nil, // cancel the re-displayed selector
	}}

	flow := New(st, v, b, p, testLogger())
	got, err := flow.Run(ctx)

	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 1, b.calls)

	after, err := os.ReadFile(st.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after, "store must be byte-identical after a mismatched refresh")

	// Secondary selector is button-less and lists all known accounts.
	require.Len(t, p.calls, 3)
	assert.False(t, p.calls[1].showActions)
	require.Len(t, p.calls[1].valid, 1)
	assert.Equal(t, "A", p.calls[1].valid[0].AccountID)
}

func TestRefresh_MatchPersistsAndReloops(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	v := &fakeValidator{results: []partition{
		{expired: []api.ExpiredSession{{AccountID: "A", CompanyName: "A Co", LoginMethod: "browser"}}},
		{valid: []api.ValidSession{validFor("A", "A Co", 200)}},
	}}
	b := &fakeBrowser{res: loginResult("A", "A Co", "fresh-tok")}
	p := &fakePrompter{choices: []*prompt.Choice{
		{Action: prompt.ActionRefreshSessions},
		{Action: prompt.ActionUseSession, AccountID: "A"},
		{Action: prompt.ActionUseSession, AccountID: "A"},
	}}

	flow := New(st, v, b, p, testLogger())
	got, err := flow.Run(ctx)

	require.NoError(t, err)
	assert.Equal(t, "A", got)
	assert.Equal(t, 1, b.calls)
	assert.Equal(t, 2, v.calls, "store re-validated after the refresh")

	rec := st.Load(ctx)["A"]
	assert.Equal(t, "A Co", rec.CompanyName)
	assert.True(t, vault.IsEncrypted(rec.Cookie))
}

func TestRefresh_CancelledSecondarySelectorReloops(t *testing.T) {
	st := newTestStore(t)

	v := &fakeValidator{results: []partition{
		{valid: []api.ValidSession{validFor("42", "Acme", 1)}},
	}}
	b := &fakeBrowser{}
	p := &fakePrompter{choices: []*prompt.Choice{
		{Action: prompt.ActionRefreshSessions},
		nil, // cancel the pick
		{Action: prompt.ActionUseSession, AccountID: "42"},
	}}

	flow := New(st, v, b, p, testLogger())
	got, err := flow.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "42", got)
	assert.Zero(t, b.calls)
}
