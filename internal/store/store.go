// Package store persists the outreach ledger. The recruiters table keeps the
// original sheet's text representation (flags as "TRUE"/empty, dates as ISO
// calendar dates); conversion to typed values happens here and nowhere else.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/example/outreachbot/internal/models"
)

// Sheet header column names. Update calls address cells by these.
const (
	ColRecruiterName = "recruiter_name"
	ColJobTitle      = "job_title"
	ColCompany       = "company"
	ColLinkedInURL   = "linkedin_url"
	ColStatus        = "status"
	ColMessage1Sent  = "message1_sent"
	ColMessage2Sent  = "message2_sent"
	ColLastContacted = "last_contacted"
	ColNotes         = "notes"
	ColJobURL        = "job_url"
)

// RecordStore is the row-oriented table the ingestion and outreach layers
// work against.
type RecordStore interface {
	// ReadAll returns every record in append order.
	ReadAll(ctx context.Context) ([]models.RecruiterRecord, error)
	// Append inserts a candidate as a new pending record and returns its id.
	Append(ctx context.Context, c models.RecruiterCandidate) (string, error)
	// Update sets cells of one record by column name. Unknown column names
	// are ignored rather than erroring.
	Update(ctx context.Context, id string, fields map[string]string) error
}

type Store struct{ db *sql.DB }

var _ RecordStore = (*Store)(nil)

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() { _ = s.db.Close() }

func (s *Store) Migrate(ctx context.Context) error {
	stmt := `
CREATE TABLE IF NOT EXISTS recruiters (
	id TEXT PRIMARY KEY,
	recruiter_name TEXT,
	job_title TEXT,
	company TEXT,
	linkedin_url TEXT,
	job_url TEXT,
	status TEXT,
	message1_sent TEXT,
	message2_sent TEXT,
	last_contacted TEXT,
	notes TEXT,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS job_urls (
	url TEXT PRIMARY KEY,
	collected_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS send_logs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	record_id TEXT NOT NULL,
	stage TEXT NOT NULL,
	channel TEXT NOT NULL,
	content TEXT NOT NULL,
	sent_on TEXT NOT NULL,
	created_at TEXT NOT NULL,
	FOREIGN KEY(record_id) REFERENCES recruiters(id)
);
CREATE INDEX IF NOT EXISTS idx_send_logs_sent_on ON send_logs (sent_on, stage);
`
	_, err := s.db.ExecContext(ctx, stmt)
	return err
}

func (s *Store) ReadAll(ctx context.Context) ([]models.RecruiterRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, recruiter_name, job_title, company, linkedin_url, job_url, status, message1_sent, message2_sent, last_contacted, notes FROM recruiters ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.RecruiterRecord
	for rows.Next() {
		var (
			r                  models.RecruiterRecord
			status, m1, m2, lc string
		)
		if err := rows.Scan(&r.ID, &r.RecruiterName, &r.JobTitle, &r.Company, &r.LinkedInURL, &r.JobURL, &status, &m1, &m2, &lc, &r.Notes); err != nil {
			return nil, err
		}
		r.Status = models.Status(strings.ToLower(strings.TrimSpace(status)))
		r.Message1Sent = decodeFlag(m1)
		r.Message2Sent = decodeFlag(m2)
		r.LastContacted = decodeDate(lc)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) Append(ctx context.Context, c models.RecruiterCandidate) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `INSERT INTO recruiters
		(id, recruiter_name, job_title, company, linkedin_url, job_url, status, message1_sent, message2_sent, last_contacted, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, '', '', '', ?, ?)`,
		id, c.RecruiterName, c.JobTitle, c.Company, c.LinkedInURL, c.JobURL, string(models.StatusPending), c.Notes, time.Now().Format(time.RFC3339))
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Update(ctx context.Context, id string, fields map[string]string) error {
	sets := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields)+1)
	// Fixed column order so the generated SQL is deterministic.
	for _, col := range []string{ColRecruiterName, ColJobTitle, ColCompany, ColLinkedInURL, ColJobURL, ColStatus, ColMessage1Sent, ColMessage2Sent, ColLastContacted, ColNotes} {
		v, ok := fields[col]
		if !ok {
			continue
		}
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	res, err := s.db.ExecContext(ctx, `UPDATE recruiters SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("no record with id %s", id)
	}
	return nil
}

// LogSend appends one row to the send log; the log drives cross-run daily
// quota accounting. The calendar day is computed in Go and stored as text so
// counting is a plain string match, independent of how the driver binds
// time values.
func (s *Store) LogSend(ctx context.Context, recordID string, stage models.Stage, channel models.Channel, content string) error {
	now := time.Now()
	_, err := s.db.ExecContext(ctx, `INSERT INTO send_logs (record_id, stage, channel, content, sent_on, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		recordID, stage.String(), string(channel), content, EncodeDate(now), now.Format(time.RFC3339))
	return err
}

// CountSentToday reports how many sends of the given stage were logged on
// the current local calendar day, across all runs.
func (s *Store) CountSentToday(ctx context.Context, stage models.Stage) (int, error) {
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM send_logs WHERE stage = ? AND sent_on = ?`, stage.String(), EncodeDate(time.Now()))
	var c int
	if err := row.Scan(&c); err != nil {
		return 0, err
	}
	return c, nil
}

// AddJobURLs persists newly collected job URLs, skipping any already seen.
// Returns the number of new URLs.
func (s *Store) AddJobURLs(ctx context.Context, urls []string) (int, error) {
	added := 0
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		res, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO job_urls (url, collected_at) VALUES (?, ?)`, u, time.Now().Format(time.RFC3339))
		if err != nil {
			return added, err
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			added++
		}
	}
	return added, nil
}

func (s *Store) JobURLs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT url FROM job_urls ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// EncodeFlag serializes a stage flag the way the sheet stores it.
func EncodeFlag(v bool) string {
	if v {
		return "TRUE"
	}
	return ""
}

// EncodeDate serializes a calendar date the way the sheet stores it.
func EncodeDate(t time.Time) string { return t.Format(time.DateOnly) }

func decodeFlag(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRUE", "YES":
		return true
	}
	return false
}

func decodeDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil
	}
	return &t
}
