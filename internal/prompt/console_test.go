package prompt

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConsole(input string) (*ConsolePrompter, *bytes.Buffer) {
	var out bytes.Buffer
	return &ConsolePrompter{in: strings.NewReader(input), out: &out, log: testLogger()}, &out
}

func sampleAccounts() ([]Account, []Account) {
	valid := []Account{
		{AccountID: "42", CompanyName: "Acme Co", LoginMethod: "browser"},
		{AccountID: "7", CompanyName: "Beta Inc", LoginMethod: "browser"},
	}
	expired := []Account{
		{AccountID: "9", CompanyName: "Gone Ltd", LoginMethod: "browser"},
	}
	return valid, expired
}

func TestConsolePrompter_PickValid(t *testing.T) {
	p, out := newConsole("1\n")
	valid, expired := sampleAccounts()

	choice, err := p.SelectSession(context.Background(), valid, expired, true)
	require.NoError(t, err)
	require.NotNil(t, choice)
	assert.Equal(t, ActionUseSession, choice.Action)
	assert.Equal(t, "42", choice.AccountID)
	assert.Contains(t, out.String(), "Acme Co")
	assert.Contains(t, out.String(), "expired")
}

func TestConsolePrompter_PickExpiredEntry(t *testing.T) {
	p, _ := newConsole("3\n")
	valid, expired := sampleAccounts()

	choice, err := p.SelectSession(context.Background(), valid, expired, false)
	require.NoError(t, err)
	require.NotNil(t, choice)
	assert.Equal(t, "9", choice.AccountID)
}

func TestConsolePrompter_Actions(t *testing.T) {
	valid, expired := sampleAccounts()

	p, _ := newConsole("n\n")
	choice, err := p.SelectSession(context.Background(), valid, expired, true)
	require.NoError(t, err)
	require.NotNil(t, choice)
	assert.Equal(t, ActionNewSession, choice.Action)

	p, _ = newConsole("r\n")
	choice, err = p.SelectSession(context.Background(), valid, expired, true)
	require.NoError(t, err)
	require.NotNil(t, choice)
	assert.Equal(t, ActionRefreshSessions, choice.Action)
}

func TestConsolePrompter_ActionsDisabledWithoutButtons(t *testing.T) {
	valid, expired := sampleAccounts()

	p, _ := newConsole("n\n")
	choice, err := p.SelectSession(context.Background(), valid, expired, false)
	require.NoError(t, err)
	assert.Nil(t, choice)
}

func TestConsolePrompter_Cancellations(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty line", "\n"},
		{"eof", ""},
		{"garbage", "xyz\n"},
		{"out of range", "99\n"},
		{"zero", "0\n"},
	}

	valid, expired := sampleAccounts()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newConsole(tt.input)
			choice, err := p.SelectSession(context.Background(), valid, expired, true)
			require.NoError(t, err)
			assert.Nil(t, choice)
		})
	}
}
