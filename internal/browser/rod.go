package browser

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// NewProviders returns the default provider order: a browser already
// installed on the system first, rod's managed download as the fallback.
// Logins are interactive, so every provider opens a visible window.
func NewProviders() []Provider {
	return []Provider{
		&rodProvider{name: "system-browser", systemOnly: true},
		&rodProvider{name: "managed-chromium"},
	}
}

// rodProvider launches a Chromium-family browser through go-rod.
type rodProvider struct {
	name string
	// systemOnly restricts the provider to a locally installed browser
	// binary; it fails instead of downloading one.
	systemOnly bool
}

func (p *rodProvider) Name() string { return p.name }

func (p *rodProvider) Open(ctx context.Context) (Session, error) {
	l := launcher.New().Headless(false).Leakless(true)

	if p.systemOnly {
		bin, ok := launcher.LookPath()
		if !ok {
			return nil, fmt.Errorf("no installed chromium-family browser found")
		}
		l = l.Bin(bin)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	b := rod.New().ControlURL(u).Context(ctx)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	page, err := b.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = b.Close()
		l.Kill()
		return nil, fmt.Errorf("open page: %w", err)
	}

	return &rodSession{launcher: l, browser: b, page: page}, nil
}

type rodSession struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
}

func (s *rodSession) Navigate(ctx context.Context, url string) error {
	return s.page.Context(ctx).Navigate(url)
}

func (s *rodSession) Cookies(ctx context.Context) ([]Cookie, error) {
	raw, err := s.browser.Context(ctx).GetCookies()
	if err != nil {
		return nil, err
	}
	cookies := make([]Cookie, 0, len(raw))
	for _, c := range raw {
		cookies = append(cookies, Cookie{Name: c.Name, Value: c.Value})
	}
	return cookies, nil
}

func (s *rodSession) Alive(ctx context.Context) bool {
	_, err := s.page.Context(ctx).Info()
	return err == nil
}

func (s *rodSession) Eval(ctx context.Context, js string) error {
	_, err := s.page.Context(ctx).Eval(js)
	return err
}

func (s *rodSession) Close() error {
	err := s.browser.Close()
	s.launcher.Kill()
	return err
}
