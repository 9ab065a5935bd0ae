// Package common defines shared constants and sentinel errors used across
// the session manager. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Browser login errors.
	ErrBrowserUnavailable = errors.New("no compatible browser available")
	ErrLoginTimeout       = errors.New("login not completed before deadline")
	ErrLoginAborted       = errors.New("browser window closed by operator")

	// Refresh flow errors.
	ErrAccountMismatch = errors.New("authenticated account does not match the selected one")

	// Operator cancelled a dialog or the whole flow. Not a fault.
	ErrCancelled = errors.New("cancelled by operator")
)
