package outreach

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/outreachbot/internal/config"
	"github.com/example/outreachbot/internal/models"
	"github.com/example/outreachbot/internal/stealth"
	"github.com/example/outreachbot/internal/store"
)

// Store is what the engine needs from the persistence layer.
type Store interface {
	ReadAll(ctx context.Context) ([]models.RecruiterRecord, error)
	Update(ctx context.Context, id string, fields map[string]string) error
	LogSend(ctx context.Context, recordID string, stage models.Stage, channel models.Channel, content string) error
	CountSentToday(ctx context.Context, stage models.Stage) (int, error)
}

// Deliverer runs the messaging protocol for one recipient.
type Deliverer interface {
	Deliver(ctx context.Context, a Attempt) (Result, error)
}

// Engine selects eligible records for a stage, drives delivery, and persists
// the resulting state transitions. One terminal outcome (sent or
// unreachable) consumes one unit of quota; safety-skips and failures leave
// the record untouched for a later run.
type Engine struct {
	st    Store
	msgr  Deliverer
	cfg   *config.Config
	tmpls Templates
	log   *slog.Logger

	now   func() time.Time
	sleep func(minMs, maxMs int)
}

func NewEngine(st Store, msgr Deliverer, cfg *config.Config, log *slog.Logger) *Engine {
	return &Engine{
		st:   st,
		msgr: msgr,
		cfg:  cfg,
		tmpls: Templates{
			FirstFull:     cfg.Templates.FirstFull,
			FirstShort:    cfg.Templates.FirstShort,
			FollowupFull:  cfg.Templates.FollowupFull,
			FollowupShort: cfg.Templates.FollowupShort,
		},
		log:   log.With("module", "engine"),
		now:   time.Now,
		sleep: stealth.SleepRandom,
	}
}

// SelectEligible filters records for a stage in store row order.
//
// First stage: pending and message1 not yet sent. Follow-up: message1 sent,
// message2 not, status pending or connected, last contact at least waitDays
// before today. Records whose last-contact date never parsed come back from
// the store with a nil date and are skipped, not errored.
func SelectEligible(records []models.RecruiterRecord, stage models.Stage, today time.Time, waitDays int) []models.RecruiterRecord {
	var out []models.RecruiterRecord
	for _, r := range records {
		if r.Status == models.StatusUnreachable {
			continue
		}
		switch stage {
		case models.StageFirst:
			if r.Status == models.StatusPending && !r.Message1Sent {
				out = append(out, r)
			}
		case models.StageFollowUp:
			if !r.Message1Sent || r.Message2Sent {
				continue
			}
			if r.Status != models.StatusPending && r.Status != models.StatusConnected {
				continue
			}
			if r.LastContacted == nil {
				continue
			}
			if daysBetween(*r.LastContacted, today) >= waitDays {
				out = append(out, r)
			}
		}
	}
	return out
}

func daysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}

// Run processes one stage over the whole store. Returns the number of
// messages actually sent.
func (e *Engine) Run(ctx context.Context, stage models.Stage) (int, error) {
	records, err := e.st.ReadAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("read records: %w", err)
	}

	today := e.now()
	eligible := SelectEligible(records, stage, today, e.cfg.Outreach.FollowupWaitDays)
	quota := e.quotaFor(ctx, stage)
	e.log.Info("run starting", "stage", stage.String(), "eligible", len(eligible), "quota", quota)

	sent, terminal := 0, 0
	for _, rec := range eligible {
		if terminal >= quota {
			e.log.Info("daily limit reached", "stage", stage.String(), "terminal", terminal)
			break
		}
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}

		res, err := e.msgr.Deliver(ctx, e.buildAttempt(rec, stage))
		if err != nil {
			e.log.Error("attempt aborted", "recruiter", rec.RecruiterName, "url", rec.LinkedInURL, "err", err)
			e.pause()
			continue
		}

		switch res.Outcome {
		case models.OutcomeSent:
			if err := e.st.Update(ctx, rec.ID, sentFields(stage, today)); err != nil {
				return sent, fmt.Errorf("persist sent outcome: %w", err)
			}
			if err := e.st.LogSend(ctx, rec.ID, stage, res.Channel, res.Content); err != nil {
				e.log.Warn("send log write failed", "err", err)
			}
			sent++
			terminal++
			e.log.Info("sent", "recruiter", rec.RecruiterName, "channel", string(res.Channel), "stage", stage.String())
		case models.OutcomeUnreachable:
			if err := e.st.Update(ctx, rec.ID, unreachableFields(stage)); err != nil {
				return sent, fmt.Errorf("persist unreachable outcome: %w", err)
			}
			terminal++
			e.log.Info("unreachable", "recruiter", rec.RecruiterName, "stage", stage.String())
		case models.OutcomeSafetySkip:
			e.log.Warn("safety-blocked, will retry on a later run", "recruiter", rec.RecruiterName)
		case models.OutcomeFailed:
			e.log.Warn("attempt failed, will retry on a later run", "recruiter", rec.RecruiterName)
		}

		e.pause()
	}

	e.log.Info("run finished", "stage", stage.String(), "sent", sent, "terminal", terminal)
	return sent, nil
}

// quotaFor deducts today's already-logged sends so quotas hold per calendar
// day across repeated runs, not just within one run.
func (e *Engine) quotaFor(ctx context.Context, stage models.Stage) int {
	limit := e.cfg.Limits.DailyMaxFirst
	if stage == models.StageFollowUp {
		limit = e.cfg.Limits.DailyMaxFollowups
	}
	already, err := e.st.CountSentToday(ctx, stage)
	if err != nil {
		e.log.Warn("daily send count unavailable, using full cap", "err", err)
		return limit
	}
	if left := limit - already; left > 0 {
		return left
	}
	return 0
}

func (e *Engine) buildAttempt(rec models.RecruiterRecord, stage models.Stage) Attempt {
	full, short := e.tmpls.FirstFull, e.tmpls.FirstShort
	if stage == models.StageFollowUp {
		full, short = e.tmpls.FollowupFull, e.tmpls.FollowupShort
	}
	return Attempt{
		ProfileURL:   rec.LinkedInURL,
		ExpectedName: rec.RecruiterName,
		FullText:     FormatMessage(full, rec.RecruiterName, rec.JobTitle, rec.Company),
		ShortText:    FormatMessage(short, rec.RecruiterName, rec.JobTitle, rec.Company),
	}
}

func sentFields(stage models.Stage, today time.Time) map[string]string {
	if stage == models.StageFirst {
		return map[string]string{
			store.ColStatus:        string(models.StatusConnected),
			store.ColMessage1Sent:  store.EncodeFlag(true),
			store.ColLastContacted: store.EncodeDate(today),
		}
	}
	return map[string]string{
		store.ColMessage2Sent:  store.EncodeFlag(true),
		store.ColLastContacted: store.EncodeDate(today),
	}
}

func unreachableFields(stage models.Stage) map[string]string {
	if stage == models.StageFirst {
		return map[string]string{
			store.ColStatus:       string(models.StatusUnreachable),
			store.ColMessage1Sent: store.EncodeFlag(true),
		}
	}
	return map[string]string{
		store.ColStatus:       string(models.StatusUnreachable),
		store.ColMessage2Sent: store.EncodeFlag(true),
	}
}

// pause emulates human pacing between recipients, regardless of outcome.
func (e *Engine) pause() {
	e.sleep(e.cfg.Outreach.MinDelayMs, e.cfg.Outreach.MaxDelayMs)
}
