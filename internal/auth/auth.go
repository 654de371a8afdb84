// Package auth keeps the LinkedIn session usable across runs: cookie
// persistence first, credential login as fallback.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/example/outreachbot/internal/browser"
	"github.com/example/outreachbot/internal/config"
	"github.com/example/outreachbot/internal/logging"
)

type Auth struct {
	br  *browser.Browser
	cfg *config.Config
	log *logging.Logger
}

func New(br *browser.Browser, cfg *config.Config) *Auth {
	return &Auth{br: br, cfg: cfg, log: logging.New(cfg.Logging.Level).With("module", "auth")}
}

// EnsureLoggedIn leaves the browser with a valid LinkedIn session or returns
// an error. Order: existing session (profile dir), saved cookies, env
// credentials.
func (a *Auth) EnsureLoggedIn(ctx context.Context) error {
	p, err := a.br.NewPage(ctx)
	if err != nil {
		return err
	}
	defer p.Close()

	if a.sessionValid(p) {
		a.log.Info("existing session is valid")
		return nil
	}
	if err := a.loadCookies(p); err == nil && a.sessionValid(p) {
		a.log.Info("session restored from saved cookies")
		return nil
	}
	if err := a.login(ctx, p); err != nil {
		return err
	}
	if err := a.saveCookies(p); err != nil {
		a.log.Warn("saving cookies failed", "err", err)
	}
	return nil
}

func (a *Auth) sessionValid(p *rod.Page) bool {
	if err := p.Navigate(a.cfg.LinkedIn.BaseURL + "feed/"); err != nil {
		return false
	}
	if err := p.WaitLoad(); err != nil {
		return false
	}
	_, err := p.Timeout(5 * time.Second).Element("a[href*='/feed/']")
	return err == nil
}

func (a *Auth) login(ctx context.Context, p *rod.Page) error {
	email := os.Getenv("LINKEDIN_EMAIL")
	pass := os.Getenv("LINKEDIN_PASSWORD")
	if email == "" || pass == "" {
		return errors.New("not logged in and LINKEDIN_EMAIL/LINKEDIN_PASSWORD are unset; log in once in the configured browser profile or provide credentials")
	}

	a.log.Info("logging in with credentials", "email", email)
	if err := p.Navigate(a.cfg.LinkedIn.BaseURL + "login"); err != nil {
		return fmt.Errorf("open login page: %w", err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("load login page: %w", err)
	}

	user, err := p.Timeout(10 * time.Second).Element("input#username")
	if err != nil {
		return browser.ScreenshotOnError(p, "login_page_fail", fmt.Errorf("username input not found: %w", err))
	}
	if err := user.Input(email); err != nil {
		return fmt.Errorf("enter email: %w", err)
	}
	pw, err := p.Timeout(5 * time.Second).Element("input#password")
	if err != nil {
		return fmt.Errorf("password input not found: %w", err)
	}
	if err := pw.Input(pass); err != nil {
		return fmt.Errorf("enter password: %w", err)
	}
	submit, err := p.Timeout(5 * time.Second).Element("button[type='submit']")
	if err != nil {
		return fmt.Errorf("submit button not found: %w", err)
	}
	if err := submit.Click("left", 1); err != nil {
		return fmt.Errorf("click submit: %w", err)
	}

	time.Sleep(3 * time.Second)
	if !a.sessionValid(p) {
		return browser.ScreenshotOnError(p, "login_verify_fail", errors.New("login did not reach the feed; a checkpoint or captcha may be blocking it"))
	}
	a.log.Info("login successful")
	return nil
}

func cookiesPath() string {
	return filepath.Join(".cache", "cookies.json")
}

func (a *Auth) loadCookies(p *rod.Page) error {
	b, err := os.ReadFile(cookiesPath())
	if err != nil {
		return err
	}
	var cookies []*proto.NetworkCookie
	if err := json.Unmarshal(b, &cookies); err != nil {
		return err
	}
	for _, c := range cookies {
		_, _ = proto.NetworkSetCookie{Domain: c.Domain, Name: c.Name, Value: c.Value, Path: c.Path, Expires: c.Expires, HTTPOnly: c.HTTPOnly, Secure: c.Secure}.Call(p)
	}
	return nil
}

func (a *Auth) saveCookies(p *rod.Page) error {
	cookies, err := proto.StorageGetCookies{}.Call(p.Timeout(20 * time.Second))
	if err != nil {
		return err
	}
	b, _ := json.MarshalIndent(cookies.Cookies, "", "  ")
	_ = os.MkdirAll(filepath.Dir(cookiesPath()), 0o755)
	return os.WriteFile(cookiesPath(), b, 0644)
}
