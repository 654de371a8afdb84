package outreach

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/example/outreachbot/internal/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeElement struct {
	visible  bool
	disabled bool
	text     string
	clickErr error
	typeErr  error

	clicks int
	typed  []string
}

func (f *fakeElement) Visible() bool { return f.visible }
func (f *fakeElement) Enabled() bool { return !f.disabled }
func (f *fakeElement) Text() string  { return f.text }
func (f *fakeElement) Click() error {
	f.clicks++
	return f.clickErr
}
func (f *fakeElement) TypeText(text string) error {
	f.typed = append(f.typed, text)
	return f.typeErr
}

// fakeSession serves canned elements per selector. FindByText results are
// keyed "selector|pattern".
type fakeSession struct {
	navErr    error
	navigated []string
	elements  map[string][]Element
}

func (f *fakeSession) Navigate(_ context.Context, url string) error {
	f.navigated = append(f.navigated, url)
	return f.navErr
}

func (f *fakeSession) Find(selector string) []Element {
	return f.elements[selector]
}

func (f *fakeSession) FindByText(selector, pattern string) []Element {
	return f.elements[selector+"|"+pattern]
}

func newFastMessenger(s Session) *Messenger {
	return &Messenger{
		s:             s,
		log:           discardLogger(),
		noteLimit:     300,
		verifyTimeout: 20 * time.Millisecond,
		settleWait:    time.Millisecond,
		noteWait:      20 * time.Millisecond,
		editorWait:    20 * time.Millisecond,
		poll:          time.Millisecond,
	}
}

// fakeDeliverer scripts protocol results per profile URL.
type fakeDeliverer struct {
	results  map[string]Result
	errs     map[string]error
	attempts []Attempt
}

func (f *fakeDeliverer) Deliver(_ context.Context, a Attempt) (Result, error) {
	f.attempts = append(f.attempts, a)
	if err, ok := f.errs[a.ProfileURL]; ok {
		return Result{Outcome: models.OutcomeFailed}, err
	}
	if r, ok := f.results[a.ProfileURL]; ok {
		return r, nil
	}
	return Result{Outcome: models.OutcomeSent, Channel: models.ChannelNote, Content: "hi"}, nil
}

// memStore records mutations without a database.
type memStore struct {
	records   []models.RecruiterRecord
	updates   map[string]map[string]string
	logged    []string
	sentToday map[models.Stage]int
}

func newMemStore(records ...models.RecruiterRecord) *memStore {
	return &memStore{
		records:   records,
		updates:   map[string]map[string]string{},
		sentToday: map[models.Stage]int{},
	}
}

func (m *memStore) ReadAll(context.Context) ([]models.RecruiterRecord, error) {
	out := make([]models.RecruiterRecord, len(m.records))
	copy(out, m.records)
	return out, nil
}

func (m *memStore) Update(_ context.Context, id string, fields map[string]string) error {
	merged, ok := m.updates[id]
	if !ok {
		merged = map[string]string{}
		m.updates[id] = merged
	}
	for k, v := range fields {
		merged[k] = v
	}
	return nil
}

func (m *memStore) LogSend(_ context.Context, recordID string, _ models.Stage, _ models.Channel, _ string) error {
	m.logged = append(m.logged, recordID)
	return nil
}

func (m *memStore) CountSentToday(_ context.Context, stage models.Stage) (int, error) {
	return m.sentToday[stage], nil
}
