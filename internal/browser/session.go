// Package browser obtains a fresh session credential by driving an
// interactive browser window through a polling state machine.
package browser

import "context"

// Cookie is one name/value pair from the automation handle's cookie jar.
type Cookie struct {
	Name  string
	Value string
}

// Session is the abstract browser-automation capability the state machine
// drives. The automation surface exposes no cookie-change notification,
// which is why the caller polls Cookies.
type Session interface {
	// Navigate points the window at url.
	Navigate(ctx context.Context, url string) error

	// Cookies returns the full cookie jar, raw (URL-encoded) values.
	Cookies(ctx context.Context) ([]Cookie, error)

	// Alive reports whether the window still exists. A window closed by
	// the operator is a cancellation signal.
	Alive(ctx context.Context) bool

	// Eval runs a script inside the current page. Used only for the
	// cosmetic success overlay.
	Eval(ctx context.Context, js string) error

	// Close tears the window down.
	Close() error
}

// Provider knows how to start one kind of browser engine.
type Provider interface {
	// Name identifies the provider in diagnostics.
	Name() string

	// Open launches the browser and returns a live Session.
	Open(ctx context.Context) (Session, error)
}
