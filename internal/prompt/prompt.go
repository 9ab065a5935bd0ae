// Package prompt models the operator-facing dialog collaborators. The core
// flow only depends on the Prompter capability; concrete adapters (helper
// subprocesses, an in-process console) live alongside it.
package prompt

import "context"

// Dialog actions a selector can return.
const (
	ActionUseSession      = "use_session"
	ActionNewSession      = "new_session"
	ActionRefreshSessions = "refresh_sessions"
)

// Account is the subset of a session shown to the operator.
type Account struct {
	AccountID   string `json:"user_id"`
	CompanyName string `json:"company_name"`
	LoginMethod string `json:"login_method"`
}

// Choice is one decision made by the operator.
type Choice struct {
	Action    string `json:"action"`
	AccountID string `json:"user_id,omitempty"`
}

// Prompter presents choices to the operator.
//
// A nil Choice with a nil error means the operator cancelled (closed the
// dialog, timed out, or the collaborator failed); cancellation is an
// outcome, not an error. Errors are reserved for the adapter being unable
// to run at all.
type Prompter interface {
	// SelectSession shows valid and expired accounts. With showActions
	// the dialog also offers "new session" and "refresh sessions"
	// buttons; without, it is a bare account picker.
	SelectSession(ctx context.Context, valid, expired []Account, showActions bool) (*Choice, error)
}
