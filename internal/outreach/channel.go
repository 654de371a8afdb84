package outreach

import (
	"context"
	"log/slog"
	"time"

	"github.com/example/outreachbot/internal/models"
)

// Selector sets for channel discovery. Ordered so the cheapest lookup runs
// first; the first visible match wins.
var (
	connectSelectors = []query{
		{text: `^Connect$`, selector: "button"},
		{selector: `button[aria-label*="Invite"]`},
		{selector: `button[aria-label*="connect"]`},
	}
	addNoteSelectors = []query{
		{selector: `button[aria-label="Add a note"]`},
		{text: `Add a note`, selector: "button"},
	}
	editorSelectors = []query{
		{selector: "textarea"},
		{selector: `div[role="textbox"]`},
		{selector: `div.msg-form__contenteditable`},
		{selector: `div[contenteditable="true"]`},
	}
	messageSelectors = []query{
		{selector: `button[aria-label*="Message"]`},
		{text: `^Message$`, selector: "button"},
	}
	followSelectors = []query{
		{text: `^Follow$`, selector: "button"},
		{selector: `button[aria-label*="Follow"]`},
	}
)

type query struct {
	selector string
	text     string // optional regexp over element text
}

func findVisible(s Session, queries []query) Element {
	for _, q := range queries {
		var els []Element
		if q.text != "" {
			els = s.FindByText(q.selector, q.text)
		} else {
			els = s.Find(q.selector)
		}
		for _, el := range els {
			if el.Visible() {
				return el
			}
		}
	}
	return nil
}

// discoverChannel runs the channel-discovery chain on a loaded profile page.
// Priority: connect-with-note beats direct message (a note is free outreach
// and works for strangers), direct message beats follow, and a bare follow
// is not a communication channel at all. A cancelled context returns an
// error, never a channel verdict: an interrupted poll says nothing about what
// the profile offers.
func (m *Messenger) discoverChannel(ctx context.Context, log *slog.Logger) (models.Channel, error) {
	// Connect first.
	if btn := findVisible(m.s, connectSelectors); btn != nil {
		if err := btn.Click(); err != nil {
			log.Warn("connect click failed", "err", err)
		} else {
			deadline := time.Now().Add(m.noteWait)
			for {
				if note := findVisible(m.s, addNoteSelectors); note != nil {
					if err := note.Click(); err == nil {
						log.Info("opened connect note composer")
						return models.ChannelNote, nil
					}
				}
				// Some connect dialogs open the editor directly.
				if ed := findVisible(m.s, editorSelectors); ed != nil {
					log.Info("connect note editor already open")
					return models.ChannelNote, nil
				}
				if time.Now().After(deadline) {
					break
				}
				select {
				case <-ctx.Done():
					return models.ChannelNone, ctx.Err()
				case <-time.After(m.poll):
				}
			}
			// Connect accepted the click but never offered a note; the
			// invite may have gone out bare, but there is no outreach text
			// attached, so it does not count as a message channel.
			log.Info("connect clicked but no note affordance appeared")
			return models.ChannelFollowOnly, nil
		}
	}

	// Direct message, available for first-degree connections.
	if btn := findVisible(m.s, messageSelectors); btn != nil {
		if err := btn.Click(); err == nil {
			log.Info("opened message thread")
			return models.ChannelMessage, nil
		}
		log.Warn("message click failed")
	}

	// Follow-only profiles get a best-effort follow; no text can be sent.
	if btn := findVisible(m.s, followSelectors); btn != nil {
		_ = btn.Click()
		log.Info("follow-only profile")
		return models.ChannelFollowOnly, nil
	}

	log.Info("no connect, message, or follow control found")
	return models.ChannelNone, nil
}
