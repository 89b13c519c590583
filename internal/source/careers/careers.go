package careers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"alphatrack-engine/internal/rawlog"
	"alphatrack-engine/internal/source"
)

// Scraper walks an HTML-rendered career site: one listings page with a
// table of job links, then one detail page per job carrying labeled
// field/value divs.
type Scraper struct {
	cfg    Config
	client *source.Client
	raw    *rawlog.Archiver
	log    zerolog.Logger
}

type Config struct {
	// BaseURL is the listings page, e.g. https://jobs.example.com/jobs/SearchJobs/
	BaseURL string
}

func New(cfg Config, client *source.Client, raw *rawlog.Archiver, log zerolog.Logger) *Scraper {
	return &Scraper{cfg: cfg, client: client, raw: raw, log: log}
}

func (s *Scraper) Name() string { return "careers" }

func (s *Scraper) Fetch(ctx context.Context) ([]source.Item, error) {
	runTS := time.Now().UTC()

	body, err := s.client.Get(ctx, s.cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("careers listings page: %w", err)
	}
	s.archive(runTS, "main_response.html", body)

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("careers parse listings html: %w", err)
	}

	links := s.jobLinks(doc)
	if len(links) == 0 {
		return nil, errors.New("no job links found on listings page, selector may be broken")
	}

	var items []source.Item
	for _, link := range links {
		item, err := s.fetchJob(ctx, runTS, link)
		if err != nil {
			s.log.Error().Err(err).Str("url", link).Msg("fetch job detail page")
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// jobLinks extracts absolute detail-page URLs from the listings table,
// deduplicated in document order.
func (s *Scraper) jobLinks(doc *goquery.Document) []string {
	base, _ := url.Parse(s.cfg.BaseURL)

	seen := map[string]bool{}
	var links []string
	doc.Find("table.table_basic-1 a[href*='/jobs/ProjectDetail/']").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		abs := strings.TrimSpace(href)
		if abs == "" {
			return
		}
		if base != nil {
			if ref, err := url.Parse(abs); err == nil {
				abs = base.ResolveReference(ref).String()
			}
		}
		if seen[abs] {
			return
		}
		seen[abs] = true
		links = append(links, abs)
	})
	return links
}

func (s *Scraper) fetchJob(ctx context.Context, runTS time.Time, jobURL string) (source.Item, error) {
	body, err := s.client.Get(ctx, jobURL)
	if err != nil {
		return source.Item{}, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return source.Item{}, err
	}

	jobID := parseField(doc, "Job Id")
	if jobID == "" {
		jobID = source.JobIDFromURL(jobURL)
		s.log.Warn().Str("url", jobURL).Str("job_id", jobID).Msg("falling back to URL-derived job id")
	}
	s.archive(runTS, rawlog.Sanitize(jobID)+".html", body)

	location := parseField(doc, "Location:")
	if location == "" {
		location = parseField(doc, "Location")
	}

	item := source.Item{
		JobID:    jobID,
		URL:      jobURL,
		Title:    cleanText(doc.Find("h2.title_page-1").First().Text()),
		Location: location,
		Type:     parseField(doc, "Job Type"),
	}

	if missing := missingFields(item); len(missing) > 0 {
		s.log.Warn().Strs("missing", missing).Str("url", jobURL).Msg("missing fields, selectors may need updating")
	}
	return item, nil
}

// parseField finds a <div> whose full text exactly matches label and
// returns the text of its next fields-data_value sibling.
func parseField(doc *goquery.Document, label string) string {
	var out string
	doc.Find("div").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if cleanText(sel.Text()) != label {
			return true
		}
		value := sel.NextAllFiltered("div.fields-data_value").First()
		if value.Length() == 0 {
			return true
		}
		out = cleanText(value.Text())
		return false
	})
	return out
}

func (s *Scraper) archive(runTS time.Time, filename string, body []byte) {
	if s.raw == nil {
		return
	}
	if _, err := s.raw.Save(s.Name(), filename, body, runTS); err != nil {
		s.log.Warn().Err(err).Str("file", filename).Msg("raw response archive failed")
	}
}

func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}

func missingFields(item source.Item) []string {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"url", item.URL},
		{"job_id", item.JobID},
		{"title", item.Title},
		{"location", item.Location},
		{"type", item.Type},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}
