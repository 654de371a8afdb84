// Package scrape collects applied-job URLs and extracts recruiter contact
// candidates from job pages. Selectors here are environment-specific and
// best-effort; extraction yields zero or more candidates and never fails a
// run over missing markup.
package scrape

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"

	"github.com/example/outreachbot/internal/browser"
	"github.com/example/outreachbot/internal/config"
	"github.com/example/outreachbot/internal/ingest"
	"github.com/example/outreachbot/internal/logging"
	"github.com/example/outreachbot/internal/models"
	"github.com/example/outreachbot/internal/stealth"
	"github.com/example/outreachbot/internal/store"
)

type Service struct {
	br      *browser.Browser
	cfg     *config.Config
	st      *store.Store
	log     *logging.Logger
	limiter *hostLimiter
}

func New(br *browser.Browser, cfg *config.Config, st *store.Store) *Service {
	return &Service{
		br:      br,
		cfg:     cfg,
		st:      st,
		log:     logging.New(cfg.Logging.Level).With("module", "scrape"),
		limiter: newHostLimiter(cfg.Scrape.RequestsPerSec, 1),
	}
}

// CollectAppliedJobs deep-scrolls the applied-jobs list, extracts unique job
// URLs, and persists any not seen in earlier runs. Returns the number of new
// URLs stored.
func (s *Service) CollectAppliedJobs(ctx context.Context) (int, error) {
	p, err := s.br.NewPage(ctx)
	if err != nil {
		return 0, err
	}
	defer p.Close()

	s.log.Info("opening applied jobs page", "url", s.cfg.Scrape.AppliedJobsURL)
	if err := p.Navigate(s.cfg.Scrape.AppliedJobsURL); err != nil {
		return 0, fmt.Errorf("open applied jobs page: %w", err)
	}
	if err := p.WaitLoad(); err != nil {
		return 0, fmt.Errorf("load applied jobs page: %w", err)
	}
	time.Sleep(5 * time.Second)

	s.deepScroll(p)

	cards, err := p.Timeout(5 * time.Second).Elements(s.cfg.Scrape.JobCardSelector)
	if err != nil {
		s.log.Warn("no job cards found", "selector", s.cfg.Scrape.JobCardSelector)
		return 0, nil
	}
	s.log.Info("job cards rendered", "count", len(cards))

	seen := map[string]bool{}
	var urls []string
	for _, card := range cards {
		id, err := card.Attribute("id")
		if err != nil || id == nil || *id == "" {
			continue
		}
		u := s.cfg.Scrape.JobInfoBaseURL + *id
		if !seen[u] {
			seen[u] = true
			urls = append(urls, u)
		}
	}

	added, err := s.st.AddJobURLs(ctx, urls)
	if err != nil {
		return 0, fmt.Errorf("persist job urls: %w", err)
	}
	s.log.Info("applied jobs collected", "on_page", len(urls), "new", added)
	return added, nil
}

// deepScroll keeps scrolling the list until the rendered card count stops
// growing. The list may live in an inner scroll container, so the window
// scroll is a fallback.
func (s *Service) deepScroll(p *rod.Page) {
	last, unchanged := 0, 0
	for i := 0; i < 80 && unchanged < 5; i++ {
		cards, _ := p.Timeout(3 * time.Second).Elements(s.cfg.Scrape.JobCardSelector)
		if len(cards) == last {
			unchanged++
		} else {
			unchanged = 0
			last = len(cards)
		}
		_, err := p.Eval(`() => {
			const divs = Array.from(document.querySelectorAll('div'));
			for (const d of divs) {
				const style = window.getComputedStyle(d);
				if ((style.overflowY === 'auto' || style.overflowY === 'scroll') &&
					d.scrollHeight > d.clientHeight + 50 && d.clientHeight > 0) {
					d.scrollTop = d.scrollHeight;
					return true;
				}
			}
			window.scrollTo(0, document.body.scrollHeight);
			return false;
		}`)
		if err != nil {
			stealth.ScrollHumanLike(p)
		}
		stealth.SleepRandom(2000, 3000)
	}
	s.log.Info("deep scroll finished", "cards", last)
}

// ExtractCandidates visits each stored job URL and pulls recruiter profile
// links with job context. Job URLs already present in the recruiter table
// are skipped without navigation.
func (s *Service) ExtractCandidates(ctx context.Context) ([]models.RecruiterCandidate, error) {
	urls, err := s.st.JobURLs(ctx)
	if err != nil {
		return nil, err
	}
	if len(urls) == 0 {
		s.log.Warn("no collected job urls; run collect first")
		return nil, nil
	}

	records, err := s.st.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	done := map[string]bool{}
	for _, r := range records {
		if u := strings.TrimSpace(r.JobURL); u != "" {
			done[u] = true
		}
	}

	p, err := s.br.NewPage(ctx)
	if err != nil {
		return nil, err
	}
	defer p.Close()

	var out []models.RecruiterCandidate
	for _, u := range urls {
		if done[u] {
			s.log.Debug("skipping already-processed job", "url", u)
			continue
		}
		if err := s.limiter.WaitURL(ctx, u); err != nil {
			return out, err
		}
		cands, err := s.extractFromJobPage(p, u)
		if err != nil {
			s.log.Warn("job page extraction failed", "url", u, "err", err)
			continue
		}
		out = append(out, cands...)
		stealth.SleepRandom(1500, 3500)
	}
	s.log.Info("extraction finished", "jobs_visited", len(urls), "candidates", len(out))
	return out, nil
}

func (s *Service) extractFromJobPage(p *rod.Page, jobURL string) ([]models.RecruiterCandidate, error) {
	if err := p.Navigate(jobURL); err != nil {
		return nil, err
	}
	if err := p.WaitLoad(); err != nil {
		return nil, err
	}
	time.Sleep(4 * time.Second)

	html, err := p.HTML()
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(doc.Find("h1").First().Text())
	if title == "" {
		title = "Data Analyst"
	}
	company := strings.TrimSpace(doc.Find("h1").First().Parent().Find("a").First().Text())

	var cands []models.RecruiterCandidate
	doc.Find(`a[href*="linkedin.com/in"]`).Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || !strings.Contains(href, "/in/") {
			return
		}
		name := strings.TrimSpace(sel.Text())
		if name == "" {
			name = "Hiring Team"
		}
		cands = append(cands, models.RecruiterCandidate{
			RecruiterName: name,
			JobTitle:      title,
			Company:       company,
			LinkedInURL:   ingest.NormalizeProfileURL(href),
			JobURL:        jobURL,
			Notes:         "Auto-filled from applied job",
		})
	})

	if len(cands) == 0 {
		s.log.Info("no recruiter profiles on job page", "url", jobURL)
	} else {
		s.log.Info("recruiter profiles found", "url", jobURL, "count", len(cands))
	}
	return cands, nil
}
