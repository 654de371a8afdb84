package outreach

import (
	"context"
	"strings"
	"time"
)

// Generic sheet placeholders that stand in for an unknown recruiter. Strict
// identity verification is pointless for these.
var genericNames = map[string]bool{
	"hiring team":     true,
	"talent team":     true,
	"recruiting team": true,
}

// NormalizeName lowercases a display name and collapses runs of whitespace,
// so substring comparison is layout-independent.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// IsGenericName reports whether the name is a known generic placeholder
// rather than a real person's name.
func IsGenericName(name string) bool {
	return genericNames[NormalizeName(name)]
}

// Selectors for the visible name on a profile page.
var profileHeaderSelectors = []string{"h1"}

// Selectors for the recipient name in an open message thread or modal.
var threadHeaderSelectors = []string{
	"h2.msg-overlay-bubble-header__title",
	"h2.artdeco-modal__header",
	"h3.msg-entity-lockup__entity-name",
	"div.msg-thread__link span",
}

// verifyProfile polls the loaded page until the normalized expected name
// appears as a substring of a visible header, or the timeout expires.
// Verification failure is usually transient rendering delay, so callers
// treat a false result as a safety-skip rather than a terminal state.
func verifyProfile(ctx context.Context, s Session, expected string, timeout, poll time.Duration) bool {
	want := NormalizeName(expected)
	if want == "" {
		return true
	}
	deadline := time.Now().Add(timeout)
	for {
		for _, sel := range profileHeaderSelectors {
			for _, el := range s.Find(sel) {
				if !el.Visible() {
					continue
				}
				if strings.Contains(NormalizeName(el.Text()), want) {
					return true
				}
			}
		}
		// Fallback: scan the whole body text, less strict but catches
		// profiles whose header markup changed.
		for _, el := range s.Find("body") {
			if strings.Contains(NormalizeName(el.Text()), want) {
				return true
			}
		}
		if time.Now().After(deadline) {
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(poll):
		}
	}
}

// verifyThreadRecipient checks that an open message thread belongs to the
// expected recipient. Used for the direct-message channel only; connect-note
// modals rarely show the name, so the check would be noise there.
func verifyThreadRecipient(s Session, expected string) bool {
	want := NormalizeName(expected)
	if want == "" {
		return true
	}
	for _, sel := range threadHeaderSelectors {
		for _, el := range s.Find(sel) {
			if !el.Visible() {
				continue
			}
			if strings.Contains(NormalizeName(el.Text()), want) {
				return true
			}
		}
	}
	return false
}
