package prompt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/justonlyforyou/shippingmanager-copilot/internal/logging"
)

const selectorExecutable = "session-selector"

// ExecPrompter drives dialog helper executables. Each helper receives its
// inputs as JSON argv values and answers with one JSON object on stdout;
// a non-zero exit, unparseable output or a timeout all mean the operator
// cancelled.
type ExecPrompter struct {
	helperDir string
	timeout   time.Duration
	log       logging.Logger
}

func NewExecPrompter(helperDir string, timeout time.Duration, log logging.Logger) *ExecPrompter {
	return &ExecPrompter{helperDir: helperDir, timeout: timeout, log: log}
}

// Available reports whether the selector helper exists at all, so the CLI
// can fall back to the console prompter.
func (p *ExecPrompter) Available() bool {
	_, err := exec.LookPath(p.executablePath())
	return err == nil
}

func (p *ExecPrompter) SelectSession(ctx context.Context, valid, expired []Account, showActions bool) (*Choice, error) {
	validJSON, err := json.Marshal(nonNil(valid))
	if err != nil {
		return nil, fmt.Errorf("marshal valid sessions: %w", err)
	}
	expiredJSON, err := json.Marshal(nonNil(expired))
	if err != nil {
		return nil, fmt.Errorf("marshal expired sessions: %w", err)
	}

	out, ok := p.run(ctx, string(validJSON), string(expiredJSON), strconv.FormatBool(showActions))
	if !ok {
		return nil, nil
	}

	var choice Choice
	if err := json.Unmarshal(out, &choice); err != nil {
		p.log.Warn(ctx, "selector output unparseable, treating as cancellation", "error", err)
		return nil, nil
	}
	if choice.Action == "" {
		return nil, nil
	}
	return &choice, nil
}

// run executes the selector helper and returns its stdout. Any failure mode
// collapses to "not ok": the operator walked away, closed the dialog or the
// helper crashed, all the same outcome for the flow.
func (p *ExecPrompter) run(ctx context.Context, args ...string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.executablePath(), args...)
	// Killing the helper on deadline does not reap its children; one that
	// inherited the stdout pipe would keep Wait blocked long after the
	// timeout. WaitDelay forces Wait to give up on the pipes.
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		p.log.Info(ctx, "selector dialog cancelled or failed",
			"error", err, "stderr", stderr.String())
		return nil, false
	}

	out := bytes.TrimSpace(stdout.Bytes())
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

func (p *ExecPrompter) executablePath() string {
	name := selectorExecutable
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	if p.helperDir == "" {
		return name
	}
	return filepath.Join(p.helperDir, name)
}

// nonNil keeps the helper contract stable: an empty list marshals as [],
// never null.
func nonNil(accounts []Account) []Account {
	if accounts == nil {
		return []Account{}
	}
	return accounts
}
