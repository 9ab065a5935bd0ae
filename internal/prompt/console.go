package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/justonlyforyou/shippingmanager-copilot/internal/logging"
)

// ConsolePrompter is the in-process fallback when no selector helper is
// installed: a plain numbered menu on the terminal.
type ConsolePrompter struct {
	in  io.Reader
	out io.Writer
	log logging.Logger
}

func NewConsolePrompter(log logging.Logger) *ConsolePrompter {
	return &ConsolePrompter{in: os.Stdin, out: os.Stderr, log: log}
}

// InteractiveTerminal reports whether stdin is a terminal an operator can
// answer on.
func InteractiveTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func (p *ConsolePrompter) SelectSession(ctx context.Context, valid, expired []Account, showActions bool) (*Choice, error) {
	type entry struct {
		account Account
		live    bool
	}

	var entries []entry
	for _, a := range valid {
		entries = append(entries, entry{account: a, live: true})
	}
	for _, a := range expired {
		entries = append(entries, entry{account: a})
	}

	fmt.Fprintln(p.out)
	for i, e := range entries {
		status := "valid"
		if !e.live {
			status = "expired"
		}
		fmt.Fprintf(p.out, "  [%d] %s (ID: %s, %s, %s)\n",
			i+1, e.account.CompanyName, e.account.AccountID, e.account.LoginMethod, status)
	}
	if showActions {
		fmt.Fprintln(p.out, "  [n] new session")
		fmt.Fprintln(p.out, "  [r] refresh a session")
	}
	fmt.Fprint(p.out, "Select (empty to cancel): ")

	line, err := p.readLine(ctx)
	if err != nil {
		return nil, nil
	}

	switch line = strings.TrimSpace(strings.ToLower(line)); {
	case line == "":
		return nil, nil
	case showActions && line == "n":
		return &Choice{Action: ActionNewSession}, nil
	case showActions && line == "r":
		return &Choice{Action: ActionRefreshSessions}, nil
	}

	idx, err := strconv.Atoi(line)
	if err != nil || idx < 1 || idx > len(entries) {
		p.log.Warn(ctx, "invalid selection, treating as cancellation", "input", line)
		return nil, nil
	}
	return &Choice{Action: ActionUseSession, AccountID: entries[idx-1].account.AccountID}, nil
}

// readLine reads one line, honoring context cancellation. Stdin reads are
// not interruptible, so the read runs in a goroutine that is abandoned on
// cancel; the process is about to exit anyway in that case.
func (p *ConsolePrompter) readLine(ctx context.Context) (string, error) {
	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		r := bufio.NewReader(p.in)
		line, err := r.ReadString('\n')
		ch <- result{line: line, err: err}
	}()

	select {
	case res := <-ch:
		if res.err != nil && res.line == "" {
			return "", res.err
		}
		return res.line, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
