package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/example/outreachbot/internal/auth"
	"github.com/example/outreachbot/internal/browser"
	"github.com/example/outreachbot/internal/config"
	"github.com/example/outreachbot/internal/ingest"
	"github.com/example/outreachbot/internal/logging"
	"github.com/example/outreachbot/internal/models"
	"github.com/example/outreachbot/internal/outreach"
	"github.com/example/outreachbot/internal/runlock"
	"github.com/example/outreachbot/internal/scrape"
	"github.com/example/outreachbot/internal/stealth"
	"github.com/example/outreachbot/internal/store"
)

func main() {
	ctx := context.Background()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "config.yaml", "Path to config file")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `outreachbot - recruiter outreach automation

Usage:
  outreachbot [--config config.yaml] <command> [options]

Commands:
  collect                       Collect applied-job URLs into the store
  extract                       Extract recruiter contacts from collected jobs
  send-first [--limit N]        Send first outreach messages (daily capped)
  send-followups [--limit N --wait D]
                                Send follow-ups to recruiters contacted >= D days ago
  run-all                       collect, extract, send-first, send-followups in order

Examples:
  outreachbot --config config.yaml collect
  outreachbot send-first --limit 10
`)
	}

	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(cfg.Logging.Level)
	log.Info("outreachbot starting", "version", "0.1.0", "db_path", cfg.Database.Path)

	release, err := runlock.Acquire(cfg.Database.Path + ".lock")
	if err != nil {
		log.Error("run lock", "err", err)
		os.Exit(1)
	}
	defer release()

	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		log.Error("db open failed", "err", err)
		os.Exit(1)
	}
	defer st.Close()
	if err := st.Migrate(ctx); err != nil {
		log.Error("db migration failed", "err", err)
		os.Exit(1)
	}

	cmd := flag.Arg(0)
	log.Info("executing command", "command", cmd)
	switch cmd {
	case "collect":
		err = runCollect(ctx, cfg, st)
	case "extract":
		err = runExtract(ctx, cfg, st)
	case "send-first":
		err = runSend(ctx, cfg, st, models.StageFirst)
	case "send-followups":
		err = runSend(ctx, cfg, st, models.StageFollowUp)
	case "run-all":
		err = runAll(ctx, cfg, st)
	default:
		err = fmt.Errorf("unknown command: %s", cmd)
	}

	if err != nil {
		log.Error("command failed", "cmd", cmd, "err", err)
		fmt.Fprintf(os.Stderr, "\ncommand failed: %v\n", err)
		os.Exit(1)
	}
	log.Info("command completed successfully", "cmd", cmd)
}

func runCollect(ctx context.Context, cfg *config.Config, st *store.Store) error {
	br, err := browser.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer br.Close()

	svc := scrape.New(br, cfg, st)
	added, err := svc.CollectAppliedJobs(ctx)
	if err != nil {
		return err
	}
	logging.New(cfg.Logging.Level).Info("collect complete", "new_job_urls", added)
	return nil
}

func runExtract(ctx context.Context, cfg *config.Config, st *store.Store) error {
	br, err := browser.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer br.Close()

	log := logging.New(cfg.Logging.Level)
	svc := scrape.New(br, cfg, st)
	cands, err := svc.ExtractCandidates(ctx)
	if err != nil {
		return err
	}
	added, err := ingest.Ingest(ctx, st, cands, log.With("module", "ingest"))
	if err != nil {
		return err
	}
	log.Info("extract complete", "candidates", len(cands), "new_records", added)
	return nil
}

func runSend(ctx context.Context, cfg *config.Config, st *store.Store, stage models.Stage) error {
	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	var limit, wait int
	fs.IntVar(&limit, "limit", 0, "Override the daily cap for this run")
	fs.IntVar(&wait, "wait", 0, "Override followup wait days")
	if err := fs.Parse(flag.Args()[1:]); err != nil {
		return err
	}
	if limit > 0 {
		if stage == models.StageFirst {
			cfg.Limits.DailyMaxFirst = limit
		} else {
			cfg.Limits.DailyMaxFollowups = limit
		}
	}
	if wait > 0 {
		cfg.Outreach.FollowupWaitDays = wait
	}

	log := logging.New(cfg.Logging.Level)
	if !stealth.InActiveWindow(cfg.Browser.ActiveStart, cfg.Browser.ActiveEnd) {
		log.Warn("running outside the configured active window",
			"active_hours", fmt.Sprintf("%s-%s", cfg.Browser.ActiveStart, cfg.Browser.ActiveEnd),
			"current_time", time.Now().Format("15:04"))
	}

	br, err := browser.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer br.Close()
	if err := auth.New(br, cfg).EnsureLoggedIn(ctx); err != nil {
		return err
	}

	sess, err := br.NewSession(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	msgr := outreach.NewMessenger(sess, cfg, log)
	eng := outreach.NewEngine(st, msgr, cfg, log)
	sent, err := eng.Run(ctx, stage)
	if err != nil {
		return err
	}
	log.Info("send run complete", "stage", stage.String(), "sent", sent)
	return nil
}

func runAll(ctx context.Context, cfg *config.Config, st *store.Store) error {
	if err := runCollect(ctx, cfg, st); err != nil {
		return err
	}
	if err := runExtract(ctx, cfg, st); err != nil {
		return err
	}
	if err := runSend(ctx, cfg, st, models.StageFirst); err != nil {
		return err
	}
	return runSend(ctx, cfg, st, models.StageFollowUp)
}
