package browser

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/example/outreachbot/internal/config"
	"github.com/example/outreachbot/internal/logging"
)

type Browser struct {
	Rod *rod.Browser
	Cfg *config.Config
	log *logging.Logger
}

func New(ctx context.Context, cfg *config.Config) (*Browser, error) {
	log := logging.New(cfg.Logging.Level).With("module", "browser")
	// Leakless disabled to avoid AV false positives on Windows.
	l := launcher.New().Leakless(false).Headless(cfg.Browser.Headless)
	if cfg.Browser.UserDataDir != "" {
		// Reusing a profile directory keeps the LinkedIn session alive
		// between runs.
		l = l.UserDataDir(cfg.Browser.UserDataDir)
	}
	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	rb := rod.New().ControlURL(url)
	if err := rb.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	br := &Browser{Rod: rb.MustIgnoreCertErrors(true), Cfg: cfg, log: log}
	log.Info("browser started", "headless", cfg.Browser.Headless)
	return br, nil
}

func (b *Browser) NewPage(ctx context.Context) (*rod.Page, error) {
	p, err := b.Rod.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, err
	}
	p = p.Context(ctx).Timeout(300 * time.Second)

	ua := b.Cfg.Browser.UserAgent
	if ua == "" {
		ua = defaultUserAgents[rand.Intn(len(defaultUserAgents))]
	}
	_ = proto.EmulationSetUserAgentOverride{UserAgent: ua}.Call(p)
	p.EvalOnNewDocument(stealthScript)
	return p, nil
}

func (b *Browser) Close() {
	if b.Rod != nil {
		_ = b.Rod.Close()
	}
}

var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36",
}

// Minimal fingerprint masking applied to every page.
const stealthScript = `() => {
	Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
	window.chrome = window.chrome || { runtime: {} };
	Object.defineProperty(navigator, 'languages', { get: () => ['en-US', 'en'] });
	Object.defineProperty(navigator, 'plugins', {
		get: () => [{ name: 'PDF Viewer', filename: 'internal-pdf-viewer' }]
	});
}`

// ScreenshotOnError saves a screenshot for post-mortem when an element
// lookup fails unexpectedly. Returns err unchanged for inline use.
func ScreenshotOnError(p *rod.Page, prefix string, err error) error {
	if p == nil || err == nil {
		return err
	}
	path := fmt.Sprintf("%s-%d.png", prefix, time.Now().Unix())
	bts, _ := p.Screenshot(true, &proto.PageCaptureScreenshot{})
	_ = os.WriteFile(path, bts, 0644)
	return err
}
