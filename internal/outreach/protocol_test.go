package outreach

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/outreachbot/internal/models"
)

func TestDeliverNoteChannel(t *testing.T) {
	connect := &fakeElement{visible: true}
	addNote := &fakeElement{visible: true}
	editor := &fakeElement{visible: true}
	send := &fakeElement{visible: true}
	s := &fakeSession{elements: map[string][]Element{
		"button|^Connect$":                {connect},
		`button[aria-label="Add a note"]`: {addNote},
		"textarea":                        {editor},
		"button.msg-form__send-button":    {send},
	}}
	m := newFastMessenger(s)

	res, err := m.Deliver(context.Background(), Attempt{
		ProfileURL:   "https://www.linkedin.com/in/hiring",
		ExpectedName: "Hiring Team",
		FullText:     "full message body",
		ShortText:    "short note body",
	})
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeSent, res.Outcome)
	assert.Equal(t, models.ChannelNote, res.Channel)
	assert.Equal(t, "short note body", res.Content)
	assert.Equal(t, 1, connect.clicks)
	assert.Equal(t, 1, addNote.clicks)
	assert.Equal(t, []string{"short note body"}, editor.typed)
	assert.Equal(t, 1, send.clicks)
}

func TestDeliverNoteTruncatesToCeiling(t *testing.T) {
	s := &fakeSession{elements: map[string][]Element{
		"button|^Connect$":             {&fakeElement{visible: true}},
		"textarea":                     {&fakeElement{visible: true}},
		"button.msg-form__send-button": {&fakeElement{visible: true}},
	}}
	m := newFastMessenger(s)

	res, err := m.Deliver(context.Background(), Attempt{
		ProfileURL:   "https://www.linkedin.com/in/hiring",
		ExpectedName: "Hiring Team",
		ShortText:    strings.Repeat("x", 500),
	})
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeSent, res.Outcome)
	assert.Len(t, []rune(res.Content), 300)
	assert.True(t, strings.HasSuffix(res.Content, "..."))
}

func TestDeliverMessageChannel(t *testing.T) {
	editor := &fakeElement{visible: true}
	s := &fakeSession{elements: map[string][]Element{
		"h1":                                  {&fakeElement{visible: true, text: "Jane Doe"}},
		`button[aria-label*="Message"]`:       {&fakeElement{visible: true}},
		"h2.msg-overlay-bubble-header__title": {&fakeElement{visible: true, text: "Jane Doe"}},
		`div.msg-form__contenteditable`:       {editor},
		"button.msg-form__send-button":        {&fakeElement{visible: true}},
	}}
	m := newFastMessenger(s)

	res, err := m.Deliver(context.Background(), Attempt{
		ProfileURL:   "https://www.linkedin.com/in/janedoe",
		ExpectedName: "Jane Doe",
		FullText:     "full message body",
		ShortText:    "short",
	})
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeSent, res.Outcome)
	assert.Equal(t, models.ChannelMessage, res.Channel)
	assert.Equal(t, "full message body", res.Content)
	assert.Equal(t, []string{"full message body"}, editor.typed)
}

func TestDeliverMessageThreadMismatchIsSafetySkip(t *testing.T) {
	s := &fakeSession{elements: map[string][]Element{
		"h1":                                  {&fakeElement{visible: true, text: "Jane Doe"}},
		`button[aria-label*="Message"]`:       {&fakeElement{visible: true}},
		"h2.msg-overlay-bubble-header__title": {&fakeElement{visible: true, text: "Bob Smith"}},
		"textarea":                            {&fakeElement{visible: true}},
	}}
	m := newFastMessenger(s)

	res, err := m.Deliver(context.Background(), Attempt{
		ProfileURL:   "https://www.linkedin.com/in/janedoe",
		ExpectedName: "Jane Doe",
		FullText:     "body",
	})
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeSafetySkip, res.Outcome)
	assert.Empty(t, res.Content)
}

func TestDeliverVerificationFailureIsSafetySkip(t *testing.T) {
	s := &fakeSession{elements: map[string][]Element{
		"h1":               {&fakeElement{visible: true, text: "Somebody Else"}},
		"button|^Connect$": {&fakeElement{visible: true}},
	}}
	m := newFastMessenger(s)

	res, err := m.Deliver(context.Background(), Attempt{
		ProfileURL:   "https://www.linkedin.com/in/janedoe",
		ExpectedName: "Jane Doe",
	})
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeSafetySkip, res.Outcome)
}

func TestDeliverFollowOnlyIsUnreachable(t *testing.T) {
	follow := &fakeElement{visible: true}
	s := &fakeSession{elements: map[string][]Element{
		"button|^Follow$": {follow},
	}}
	m := newFastMessenger(s)

	res, err := m.Deliver(context.Background(), Attempt{
		ProfileURL:   "https://www.linkedin.com/in/hiring",
		ExpectedName: "Hiring Team",
	})
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeUnreachable, res.Outcome)
	assert.Equal(t, models.ChannelFollowOnly, res.Channel)
	assert.Equal(t, 1, follow.clicks)
}

func TestDeliverNoControlsIsUnreachable(t *testing.T) {
	m := newFastMessenger(&fakeSession{elements: map[string][]Element{}})

	res, err := m.Deliver(context.Background(), Attempt{
		ProfileURL:   "https://www.linkedin.com/in/hiring",
		ExpectedName: "Hiring Team",
	})
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeUnreachable, res.Outcome)
	assert.Equal(t, models.ChannelNone, res.Channel)
}

func TestDeliverCancelledDuringDiscoveryIsNotUnreachable(t *testing.T) {
	connect := &fakeElement{visible: true}
	s := &fakeSession{elements: map[string][]Element{
		"button|^Connect$": {connect},
	}}
	m := newFastMessenger(s)
	m.noteWait = 500 * time.Millisecond
	m.poll = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	res, err := m.Deliver(ctx, Attempt{
		ProfileURL:   "https://www.linkedin.com/in/hiring",
		ExpectedName: "Hiring Team",
		FullText:     "full message body",
		ShortText:    "short note body",
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, models.OutcomeFailed, res.Outcome)
	assert.Equal(t, models.ChannelNone, res.Channel)
}

func TestDeliverMissingURLIsUnreachable(t *testing.T) {
	s := &fakeSession{}
	m := newFastMessenger(s)

	res, err := m.Deliver(context.Background(), Attempt{ExpectedName: "Jane Doe"})
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeUnreachable, res.Outcome)
	assert.Empty(t, s.navigated)
}

func TestDeliverNavigationErrorEscapes(t *testing.T) {
	s := &fakeSession{navErr: errors.New("net down")}
	m := newFastMessenger(s)

	res, err := m.Deliver(context.Background(), Attempt{
		ProfileURL:   "https://www.linkedin.com/in/janedoe",
		ExpectedName: "Hiring Team",
	})
	require.Error(t, err)
	assert.Equal(t, models.OutcomeFailed, res.Outcome)
}

func TestDeliverEditorMissingIsFailed(t *testing.T) {
	s := &fakeSession{elements: map[string][]Element{
		"button|^Connect$":                {&fakeElement{visible: true}},
		`button[aria-label="Add a note"]`: {&fakeElement{visible: true}},
	}}
	m := newFastMessenger(s)

	res, err := m.Deliver(context.Background(), Attempt{
		ProfileURL:   "https://www.linkedin.com/in/hiring",
		ExpectedName: "Hiring Team",
		ShortText:    "note",
	})
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeFailed, res.Outcome)
}

func TestDeliverDisabledSendControlIsFailed(t *testing.T) {
	s := &fakeSession{elements: map[string][]Element{
		"button|^Connect$":             {&fakeElement{visible: true}},
		"textarea":                     {&fakeElement{visible: true}},
		"button.msg-form__send-button": {&fakeElement{visible: true, disabled: true}},
	}}
	m := newFastMessenger(s)

	res, err := m.Deliver(context.Background(), Attempt{
		ProfileURL:   "https://www.linkedin.com/in/hiring",
		ExpectedName: "Hiring Team",
		ShortText:    "note",
	})
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeFailed, res.Outcome)
}
