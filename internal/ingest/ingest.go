// Package ingest merges scraped recruiter candidates into the store without
// creating duplicate rows.
package ingest

import (
	"context"
	"log/slog"
	"strings"

	"github.com/example/outreachbot/internal/models"
	"github.com/example/outreachbot/internal/store"
)

// NormalizeProfileURL strips query parameters and makes relative profile
// links absolute. The normalized form is the dedup key.
func NormalizeProfileURL(u string) string {
	u = strings.TrimSpace(u)
	if i := strings.Index(u, "?"); i >= 0 {
		u = u[:i]
	}
	if u != "" && !strings.HasPrefix(u, "http") {
		u = "https://www.linkedin.com" + u
	}
	return strings.TrimRight(u, "/")
}

// Ingest appends candidates not already represented in the store. A candidate
// is skipped when its normalized profile URL is known, or when its job URL
// belongs to a previously processed job page. Within one batch only the
// profile set grows: a job page often lists several recruiters and each of
// them should land. Candidates without a profile URL are unusable for
// outreach and dropped. Returns the number of rows appended.
func Ingest(ctx context.Context, st store.RecordStore, cands []models.RecruiterCandidate, log *slog.Logger) (int, error) {
	existing, err := st.ReadAll(ctx)
	if err != nil {
		return 0, err
	}

	seenProfiles := make(map[string]bool)
	seenJobs := make(map[string]bool)
	for _, r := range existing {
		if u := NormalizeProfileURL(r.LinkedInURL); u != "" {
			seenProfiles[u] = true
		}
		if u := strings.TrimSpace(r.JobURL); u != "" {
			seenJobs[u] = true
		}
	}

	added := 0
	for _, c := range cands {
		profile := NormalizeProfileURL(c.LinkedInURL)
		if profile == "" {
			log.Debug("dropping candidate without profile url", "name", c.RecruiterName)
			continue
		}
		job := strings.TrimSpace(c.JobURL)
		if seenProfiles[profile] {
			log.Debug("skipping duplicate profile", "url", profile)
			continue
		}
		if job != "" && seenJobs[job] {
			log.Debug("skipping already-processed job", "url", job)
			continue
		}

		c.LinkedInURL = profile
		if _, err := st.Append(ctx, c); err != nil {
			return added, err
		}
		seenProfiles[profile] = true
		added++
		log.Info("recruiter added", "name", c.RecruiterName, "company", c.Company, "url", profile)
	}
	return added, nil
}
