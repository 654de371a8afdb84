// Package outreach decides whether and how each recruiter record gets
// messaged: stage eligibility, daily quotas, recipient verification, channel
// discovery, and the state transitions written back to the store.
package outreach

import "context"

// Element is a handle to one on-page control. Implementations never panic;
// a handle that has gone stale simply reports not-visible or fails the
// action.
type Element interface {
	Visible() bool
	Enabled() bool
	Text() string
	Click() error
	TypeText(text string) error
}

// Session is the browser capability the messaging protocol runs against.
// Every query may legitimately return zero elements; the protocol treats an
// empty result as "capability absent", never as an error.
type Session interface {
	Navigate(ctx context.Context, url string) error
	// Find returns all elements matching a CSS selector.
	Find(selector string) []Element
	// FindByText returns elements matching the selector whose visible text
	// matches the regular expression pattern.
	FindByText(selector, pattern string) []Element
}
