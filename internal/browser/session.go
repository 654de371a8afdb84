package browser

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/go-rod/rod"

	"github.com/example/outreachbot/internal/outreach"
	"github.com/example/outreachbot/internal/stealth"
)

// Session adapts a rod page to the capability surface the outreach protocol
// consumes. Lookups use short timeouts and swallow misses: an element that
// is not there is an empty result, not an error.
type Session struct {
	page *rod.Page
}

var _ outreach.Session = (*Session)(nil)

const probeTimeout = 2 * time.Second

func (b *Browser) NewSession(ctx context.Context) (*Session, error) {
	p, err := b.NewPage(ctx)
	if err != nil {
		return nil, err
	}
	return &Session{page: p}, nil
}

func (s *Session) Close() { _ = s.page.Close() }

// Page exposes the underlying rod page for callers that need raw access
// (scrolling, HTML capture).
func (s *Session) Page() *rod.Page { return s.page }

func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := s.page.Context(ctx).Navigate(url); err != nil {
		return err
	}
	return s.page.Context(ctx).WaitLoad()
}

func (s *Session) Find(selector string) []outreach.Element {
	els, err := s.page.Timeout(probeTimeout).Elements(selector)
	if err != nil {
		return nil
	}
	return wrapAll(els)
}

func (s *Session) FindByText(selector, pattern string) []outreach.Element {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil
	}
	els, err := s.page.Timeout(probeTimeout).Elements(selector)
	if err != nil {
		return nil
	}
	var out []outreach.Element
	for _, el := range els {
		t, err := el.Text()
		if err != nil {
			continue
		}
		if re.MatchString(strings.TrimSpace(t)) {
			out = append(out, &element{el: el})
		}
	}
	return out
}

func wrapAll(els rod.Elements) []outreach.Element {
	out := make([]outreach.Element, 0, len(els))
	for _, el := range els {
		out = append(out, &element{el: el})
	}
	return out
}

type element struct{ el *rod.Element }

func (e *element) Visible() bool {
	v, err := e.el.Visible()
	return err == nil && v
}

func (e *element) Enabled() bool {
	if d, err := e.el.Attribute("disabled"); err == nil && d != nil {
		return false
	}
	if a, err := e.el.Attribute("aria-disabled"); err == nil && a != nil && *a == "true" {
		return false
	}
	return true
}

func (e *element) Text() string {
	t, err := e.el.Text()
	if err != nil {
		return ""
	}
	return t
}

func (e *element) Click() error {
	return stealth.ClickHumanLike(e.el)
}

func (e *element) TypeText(text string) error {
	return stealth.TypeHumanLike(e.el, text)
}
