package source

import (
	"context"
	"net/url"
	"path"
	"strings"
)

// Item carries the raw fields an adapter extracted for one listing,
// before normalization. Values may be empty; the normalizer decides
// what is fatal.
type Item struct {
	JobID    string
	URL      string
	Title    string
	Location string
	Type     string
}

// Source is one upstream listing feed. Fetch returns every raw item the
// source currently exposes; a fetch error is fatal for the whole run.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]Item, error)
}

// JobIDFromURL derives a fallback job id from the last URL path segment,
// stripping any query or fragment. Used when a source omits its own id.
func JobIDFromURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	seg := path.Base(strings.TrimRight(u.Path, "/"))
	if seg == "." || seg == "/" {
		return ""
	}
	return seg
}
