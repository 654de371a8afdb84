package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	LinkedIn struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"linkedin"`
	Scrape struct {
		AppliedJobsURL  string  `yaml:"applied_jobs_url"`
		JobInfoBaseURL  string  `yaml:"job_info_base_url"`
		JobCardSelector string  `yaml:"job_card_selector"`
		RequestsPerSec  float64 `yaml:"requests_per_sec"`
	} `yaml:"scrape"`
	Limits struct {
		DailyMaxFirst     int `yaml:"daily_max_first"`
		DailyMaxFollowups int `yaml:"daily_max_followups"`
	} `yaml:"limits"`
	Outreach struct {
		FollowupWaitDays  int `yaml:"followup_wait_days"`
		NoteCharLimit     int `yaml:"note_char_limit"`
		MinDelayMs        int `yaml:"min_delay_ms"`
		MaxDelayMs        int `yaml:"max_delay_ms"`
		VerifyTimeoutSecs int `yaml:"verify_timeout_secs"`
	} `yaml:"outreach"`
	Browser struct {
		Headless    bool   `yaml:"headless"`
		UserDataDir string `yaml:"user_data_dir"`
		UserAgent   string `yaml:"user_agent"`
		ActiveStart string `yaml:"active_start"`
		ActiveEnd   string `yaml:"active_end"`
	} `yaml:"browser"`
	Templates struct {
		FirstFull     string `yaml:"first_full"`
		FirstShort    string `yaml:"first_short"`
		FollowupFull  string `yaml:"followup_full"`
		FollowupShort string `yaml:"followup_short"`
	} `yaml:"templates"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

func Load(path string) (*Config, error) {
	_ = godotenv.Load() // optional
	cfg := defaultConfig()
	if b, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	applyEnvOverrides(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaultConfig() Config {
	var cfg Config
	cfg.LinkedIn.BaseURL = "https://www.linkedin.com/"
	cfg.Scrape.AppliedJobsURL = "https://jobright.ai/jobs/applied"
	cfg.Scrape.JobInfoBaseURL = "https://jobright.ai/jobs/info/"
	cfg.Scrape.JobCardSelector = `div[class*="job-card"]`
	cfg.Scrape.RequestsPerSec = 0.5
	cfg.Limits.DailyMaxFirst = 20
	cfg.Limits.DailyMaxFollowups = 10
	cfg.Outreach.FollowupWaitDays = 3
	cfg.Outreach.NoteCharLimit = 300
	cfg.Outreach.MinDelayMs = 5000
	cfg.Outreach.MaxDelayMs = 10000
	cfg.Outreach.VerifyTimeoutSecs = 8
	cfg.Browser.Headless = false
	cfg.Browser.UserDataDir = ""
	cfg.Browser.ActiveStart = "09:00"
	cfg.Browser.ActiveEnd = "18:00"
	cfg.Database.Path = "outreachbot.db"
	cfg.Logging.Level = "info"
	cfg.Templates.FirstFull = "Hi {{Name}},\n\nI came across your profile while exploring opportunities for a {{JobTitle}} role at {{Company}}. I work with SQL, Python, ETL pipelines, and dashboard reporting.\n\nIf you're hiring or can point me to the right person on your team, I'd appreciate a quick review of my background.\n\nThanks!"
	cfg.Templates.FirstShort = "Hi {{Name}}, I'm exploring {{JobTitle}} roles at {{Company}}. I work with SQL, Python, ETL, and dashboards. Would appreciate connecting and any guidance on opportunities. Thanks!"
	cfg.Templates.FollowupFull = "Hi {{Name}},\n\nJust following up on my previous note regarding opportunities at {{Company}}. If there's someone else on your team who handles hiring, I'd be grateful if you could point me to them.\n\nThanks again!"
	cfg.Templates.FollowupShort = "Hi {{Name}}, just following up on my earlier note about roles at {{Company}}. If someone else handles hiring, I'd really appreciate it if you could point me their way. Thanks!"
	return cfg
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OUTREACHBOT_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("OUTREACHBOT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("OUTREACHBOT_HEADLESS"); v == "1" || v == "true" {
		cfg.Browser.Headless = true
	}
	if v := os.Getenv("DAILY_MAX_FIRST_MESSAGES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Limits.DailyMaxFirst = n
		}
	}
	if v := os.Getenv("DAILY_MAX_FOLLOWUPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Limits.DailyMaxFollowups = n
		}
	}
}

func validate(cfg *Config) error {
	if cfg.LinkedIn.BaseURL == "" {
		return errors.New("linkedin.base_url is required")
	}
	if cfg.Limits.DailyMaxFirst <= 0 {
		return errors.New("limits.daily_max_first must be > 0")
	}
	if cfg.Limits.DailyMaxFollowups <= 0 {
		return errors.New("limits.daily_max_followups must be > 0")
	}
	if cfg.Outreach.FollowupWaitDays <= 0 {
		return errors.New("outreach.followup_wait_days must be > 0")
	}
	if cfg.Outreach.NoteCharLimit <= 3 {
		return errors.New("outreach.note_char_limit must be > 3")
	}
	if cfg.Outreach.MinDelayMs < 0 || cfg.Outreach.MaxDelayMs < cfg.Outreach.MinDelayMs {
		return errors.New("outreach delay window is invalid")
	}
	if cfg.Database.Path == "" {
		return errors.New("database.path is required")
	}
	return nil
}
