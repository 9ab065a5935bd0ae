package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justonlyforyou/shippingmanager-copilot/internal/common"
	"github.com/justonlyforyou/shippingmanager-copilot/internal/filex"
	"github.com/justonlyforyou/shippingmanager-copilot/internal/logging"
	"github.com/justonlyforyou/shippingmanager-copilot/internal/session"
	"github.com/justonlyforyou/shippingmanager-copilot/internal/vault"
)

// setupDataDir points the app at a throwaway data directory. The override
// only takes effect through XDG_DATA_HOME, so these tests are linux-only.
func setupDataDir(t *testing.T) {
	t.Helper()
	if runtime.GOOS != "linux" {
		t.Skip("data dir override relies on XDG_DATA_HOME")
	}
	t.Setenv("XDG_DATA_HOME", t.TempDir())
}

func seedSession(t *testing.T, accountID, company string) {
	t.Helper()
	log := logging.NewStderr(io.Discard, slog.LevelError)
	dir, err := filex.DataDir(common.ServiceName)
	require.NoError(t, err)
	st, err := session.NewStore(dir, vault.New(common.ServiceName, nil, log), log)
	require.NoError(t, err)
	err = st.Save(context.Background(), accountID, session.Bundle{SessionToken: "tok"}, company, "browser")
	require.NoError(t, err)
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestExecute_ConfigFlagBeforeSubcommand(t *testing.T) {
	// A config flag ahead of the command words must not eat the
	// subcommand: "sessions list" still dispatches, and -data is picked
	// up by the config layer from os.Args.
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })
	os.Args = []string{"session-manager", "-data", t.TempDir(), "sessions", "list"}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)

	require.NoError(t, Execute())
	assert.Contains(t, out.String(), "no saved sessions")
}

func TestSessionsList_Empty(t *testing.T) {
	setupDataDir(t)

	out, err := runCommand(t, "sessions", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "no saved sessions")
}

func TestSessionsList_ShowsRecords(t *testing.T) {
	setupDataDir(t)
	seedSession(t, "42", "Acme Co")

	out, err := runCommand(t, "sessions", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "42")
	assert.Contains(t, out, "Acme Co")
	assert.Contains(t, out, "browser")
}

func TestSessionsRemove(t *testing.T) {
	setupDataDir(t)
	seedSession(t, "42", "Acme Co")

	out, err := runCommand(t, "sessions", "remove", "42")
	require.NoError(t, err)
	assert.Contains(t, out, "removed session for account 42")

	out, err = runCommand(t, "sessions", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "no saved sessions")
}

func TestSessionsRemove_UnknownAccount(t *testing.T) {
	setupDataDir(t)

	_, err := runCommand(t, "sessions", "remove", "nope")
	assert.ErrorContains(t, err, "no saved session")
}

func TestSessionsRemove_MissingArgument(t *testing.T) {
	setupDataDir(t)

	_, err := runCommand(t, "sessions", "remove")
	assert.ErrorContains(t, err, "usage")
}
