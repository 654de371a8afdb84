package outreach

import (
	"context"
	"log/slog"
	"time"

	"github.com/example/outreachbot/internal/config"
	"github.com/example/outreachbot/internal/models"
)

// Candidate submit controls, in preference order. First visible and enabled
// match wins.
var submitSelectors = []query{
	{selector: `button.msg-form__send-button`},
	{selector: `button[aria-label="Send"]`},
	{selector: `button[aria-label="Send invitation"]`},
	{text: `^Send`, selector: "button"},
}

// Attempt is one recipient handed to the messaging protocol. FullText is the
// direct-message body; ShortText is the variant the note channel truncates.
type Attempt struct {
	ProfileURL   string
	ExpectedName string
	FullText     string
	ShortText    string
}

// Result is the protocol's classification of an attempt. Content is the text
// that was actually submitted (empty unless the outcome is sent).
type Result struct {
	Outcome models.Outcome
	Channel models.Channel
	Content string
}

// Messenger runs the per-recipient messaging state machine: navigate, verify
// identity, discover a channel, compose, submit. Element-lookup misses are
// capability-absent and degrade through the fallback chain; only environment
// failures (navigation) surface as errors.
type Messenger struct {
	s   Session
	log *slog.Logger

	noteLimit     int
	verifyTimeout time.Duration
	settleWait    time.Duration
	noteWait      time.Duration
	editorWait    time.Duration
	poll          time.Duration
}

func NewMessenger(s Session, cfg *config.Config, log *slog.Logger) *Messenger {
	return &Messenger{
		s:             s,
		log:           log.With("module", "messenger"),
		noteLimit:     cfg.Outreach.NoteCharLimit,
		verifyTimeout: time.Duration(cfg.Outreach.VerifyTimeoutSecs) * time.Second,
		settleWait:    4 * time.Second,
		noteWait:      4 * time.Second,
		editorWait:    4 * time.Second,
		poll:          500 * time.Millisecond,
	}
}

func (m *Messenger) Deliver(ctx context.Context, a Attempt) (Result, error) {
	log := m.log.With("recipient", a.ExpectedName, "url", a.ProfileURL)

	if a.ProfileURL == "" {
		log.Warn("no profile url, recipient unreachable")
		return Result{Outcome: models.OutcomeUnreachable, Channel: models.ChannelNone}, nil
	}

	if err := m.s.Navigate(ctx, a.ProfileURL); err != nil {
		return Result{Outcome: models.OutcomeFailed, Channel: models.ChannelNone}, err
	}
	if !sleepCtx(ctx, m.settleWait) {
		return Result{Outcome: models.OutcomeFailed, Channel: models.ChannelNone}, ctx.Err()
	}

	// Identity gate. Generic placeholders skip the strict check; there is
	// no real name to match against.
	if IsGenericName(a.ExpectedName) {
		log.Info("generic recruiter name, skipping strict verification")
	} else if !verifyProfile(ctx, m.s, a.ExpectedName, m.verifyTimeout, m.poll) {
		log.Warn("safety-blocked: could not verify profile identity")
		return Result{Outcome: models.OutcomeSafetySkip, Channel: models.ChannelNone}, nil
	}

	ch, err := m.discoverChannel(ctx, log)
	if err != nil {
		return Result{Outcome: models.OutcomeFailed, Channel: models.ChannelNone}, err
	}
	switch ch {
	case models.ChannelNote:
		text := ShortenForNote(a.ShortText, m.noteLimit)
		log.Info("using note channel", "chars", len([]rune(text)))
		// Connect-note modals rarely show the recipient name, so the thread
		// re-check is skipped; identity was already verified above.
		out := m.submit(ctx, text, a.ExpectedName, false, log)
		return resultFor(out, ch, text), nil
	case models.ChannelMessage:
		log.Info("using direct message channel")
		out := m.submit(ctx, a.FullText, a.ExpectedName, true, log)
		return resultFor(out, ch, a.FullText), nil
	default:
		log.Info("no messaging channel available, recipient unreachable")
		return Result{Outcome: models.OutcomeUnreachable, Channel: ch}, nil
	}
}

// submit locates the composer, injects text, and presses the first usable
// send control. checkRecipient re-verifies the thread header before typing;
// it is enabled for the message channel only.
func (m *Messenger) submit(ctx context.Context, text, expected string, checkRecipient bool, log *slog.Logger) models.Outcome {
	if checkRecipient && !verifyThreadRecipient(m.s, expected) {
		log.Warn("safety-blocked: thread recipient does not match expected name")
		return models.OutcomeSafetySkip
	}

	var editor Element
	deadline := time.Now().Add(m.editorWait)
	for {
		if editor = findVisible(m.s, editorSelectors); editor != nil {
			break
		}
		if time.Now().After(deadline) {
			log.Warn("no editor surface found")
			return models.OutcomeFailed
		}
		if !sleepCtx(ctx, m.poll) {
			return models.OutcomeFailed
		}
	}

	_ = editor.Click()
	if err := editor.TypeText(text); err != nil {
		log.Warn("typing failed", "err", err)
		return models.OutcomeFailed
	}
	if !sleepCtx(ctx, m.poll) {
		return models.OutcomeFailed
	}

	deadline = time.Now().Add(m.editorWait)
	for {
		for _, q := range submitSelectors {
			var els []Element
			if q.text != "" {
				els = m.s.FindByText(q.selector, q.text)
			} else {
				els = m.s.Find(q.selector)
			}
			for _, el := range els {
				if !el.Visible() || !el.Enabled() {
					continue
				}
				if err := el.Click(); err != nil {
					log.Warn("send click failed", "err", err)
					return models.OutcomeFailed
				}
				log.Info("message submitted")
				return models.OutcomeSent
			}
		}
		if time.Now().After(deadline) {
			log.Warn("no enabled send control found")
			return models.OutcomeFailed
		}
		if !sleepCtx(ctx, m.poll) {
			return models.OutcomeFailed
		}
	}
}

func resultFor(out models.Outcome, ch models.Channel, content string) Result {
	r := Result{Outcome: out, Channel: ch}
	if out == models.OutcomeSent {
		r.Content = content
	}
	return r
}

// sleepCtx waits d or until ctx is done; reports whether the full wait
// elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
