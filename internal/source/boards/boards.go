package boards

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"alphatrack-engine/internal/rawlog"
	"alphatrack-engine/internal/source"
)

// Scraper reads a hosted job-board API: one JSON document listing every
// open position, in the shape the Greenhouse boards endpoint serves.
type Scraper struct {
	cfg    Config
	client *source.Client
	raw    *rawlog.Archiver
	log    zerolog.Logger
}

type Config struct {
	// BaseURL is the board endpoint, e.g.
	// https://boards-api.greenhouse.io/v1/boards/<board>/jobs
	BaseURL string
}

func New(cfg Config, client *source.Client, raw *rawlog.Archiver, log zerolog.Logger) *Scraper {
	return &Scraper{cfg: cfg, client: client, raw: raw, log: log}
}

func (s *Scraper) Name() string { return "boards" }

// metadata entry holding the employment category on these boards
const experienceField = "experience (for job posting)"

func (s *Scraper) Fetch(ctx context.Context) ([]source.Item, error) {
	runTS := time.Now().UTC()

	body, err := s.client.Get(ctx, s.cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("board listings: %w", err)
	}
	s.archive(runTS, "main_response.json", body)

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("board decode json: %w", err)
	}

	jobs := jmesSlice("jobs", payload)
	items := make([]source.Item, 0, len(jobs))
	for _, job := range jobs {
		jobURL := jmesString("absolute_url", job)

		jobID := jmesString("id", job)
		if jobID == "" {
			jobID = source.JobIDFromURL(jobURL)
			s.log.Warn().Str("url", jobURL).Str("job_id", jobID).Msg("falling back to URL-derived job id")
		}

		item := source.Item{
			JobID:    jobID,
			URL:      jobURL,
			Title:    jmesString("title", job),
			Location: jmesString("location.name", job),
			Type:     parseJobType(job),
		}

		if missing := missingFields(item); len(missing) > 0 {
			s.log.Warn().Strs("missing", missing).Str("url", jobURL).Msg("missing fields, jmes paths may need updating")
		}
		items = append(items, item)
	}
	return items, nil
}

// parseJobType pulls the experience level out of the job's metadata list.
func parseJobType(job any) string {
	for _, entry := range jmesSlice("metadata", job) {
		if strings.EqualFold(jmesString("name", entry), experienceField) {
			return jmesString("value", entry)
		}
	}
	return ""
}

func (s *Scraper) archive(runTS time.Time, filename string, body []byte) {
	if s.raw == nil {
		return
	}
	if _, err := s.raw.Save(s.Name(), filename, body, runTS); err != nil {
		s.log.Warn().Err(err).Str("file", filename).Msg("raw response archive failed")
	}
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
