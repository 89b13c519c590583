package normalize

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"alphatrack-engine/internal/domain"
	"alphatrack-engine/internal/source"
)

// ErrMalformed marks raw items missing a required field. Callers match it
// with errors.Is and skip the item; it never aborts a run.
var ErrMalformed = errors.New("malformed record")

// MalformedError names which required field was absent or empty.
type MalformedError struct {
	Field string
	URL   string
}

func (e *MalformedError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("malformed record: missing %s (url=%s)", e.Field, e.URL)
	}
	return "malformed record: missing " + e.Field
}

func (e *MalformedError) Unwrap() error { return ErrMalformed }

// Record turns one raw item into a canonical record stamped with scrapedAt.
// job_id, url and title are required after trimming; location and type
// default to empty strings. Pure: same item and timestamp, same output.
func Record(item source.Item, scrapedAt time.Time) (domain.Record, error) {
	jobID := clean(item.JobID)
	url := strings.TrimSpace(item.URL)
	title := clean(item.Title)

	switch {
	case jobID == "":
		return domain.Record{}, &MalformedError{Field: "job_id", URL: url}
	case url == "":
		return domain.Record{}, &MalformedError{Field: "url"}
	case title == "":
		return domain.Record{}, &MalformedError{Field: "title", URL: url}
	}

	return domain.Record{
		URL:       url,
		JobID:     jobID,
		Title:     title,
		Location:  clean(item.Location),
		Type:      clean(item.Type),
		ScrapedAt: scrapedAt.UTC(),
	}, nil
}

// clean collapses runs of whitespace and the non-breaking spaces career
// pages pad their labels with.
func clean(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}
