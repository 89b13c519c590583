package careers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alphatrack-engine/internal/source"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestParseField(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		label    string
		expected string
	}{
		{
			"basic",
			`<div>Job Id</div><div class="fields-data_value">123</div>`,
			"Job Id", "123",
		},
		{
			"whitespace trimmed",
			`<div>Job Id</div><div class="fields-data_value">  ABC  </div>`,
			"Job Id", "ABC",
		},
		{
			"missing class on value div",
			`<div>Job Id</div><div>no class</div>`,
			"Job Id", "",
		},
		{
			"label absent",
			`<div>Location</div><div class="fields-data_value">SJ</div>`,
			"Job Id", "",
		},
		{
			"value div not adjacent",
			`<div>Job Id</div><span>x</span><div class="fields-data_value">77</div>`,
			"Job Id", "77",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseField(mustDoc(t, tt.html), tt.label))
		})
	}
}

func TestJobLinks(t *testing.T) {
	s := New(Config{BaseURL: "https://jobs.example.com/jobs/SearchJobs/"}, nil, nil, zerolog.Nop())

	doc := mustDoc(t, `
<table class="table_basic-1">
  <tr><td><a href="/jobs/ProjectDetail/role/1420344">Engineer</a></td></tr>
  <tr><td><a href="https://jobs.example.com/jobs/ProjectDetail/role/1420345">Analyst</a></td></tr>
  <tr><td><a href="/jobs/ProjectDetail/role/1420344">Engineer again</a></td></tr>
  <tr><td><a href="/about">About us</a></td></tr>
</table>`)

	links := s.jobLinks(doc)
	assert.Equal(t, []string{
		"https://jobs.example.com/jobs/ProjectDetail/role/1420344",
		"https://jobs.example.com/jobs/ProjectDetail/role/1420345",
	}, links)
}

func detailPage(jobID, title string) string {
	idRow := ""
	if jobID != "" {
		idRow = fmt.Sprintf(`<div>Job Id</div><div class="fields-data_value">%s</div>`, jobID)
	}
	return fmt.Sprintf(`
<html><body>
<h2 class="title_page-1">%s</h2>
%s
<div>Location:</div><div class="fields-data_value">San Jose, CA</div>
<div>Job Type</div><div class="fields-data_value">Professional</div>
</body></html>`, title, idRow)
}

func TestFetch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/jobs/SearchJobs/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `
<table class="table_basic-1">
  <tr><td><a href="/jobs/ProjectDetail/role/1420344">Engineer</a></td></tr>
</table>`)
	})
	mux.HandleFunc("/jobs/ProjectDetail/role/1420344", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, detailPage("1420344", "Software Engineer"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := New(Config{BaseURL: srv.URL + "/jobs/SearchJobs/"}, source.NewClient(nil), nil, zerolog.Nop())

	items, err := s.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, source.Item{
		JobID:    "1420344",
		URL:      srv.URL + "/jobs/ProjectDetail/role/1420344",
		Title:    "Software Engineer",
		Location: "San Jose, CA",
		Type:     "Professional",
	}, items[0])
}

func TestFetchJobIDFallsBackToURL(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/jobs/SearchJobs/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `
<table class="table_basic-1">
  <tr><td><a href="/jobs/ProjectDetail/role/1420399">Engineer</a></td></tr>
</table>`)
	})
	mux.HandleFunc("/jobs/ProjectDetail/role/1420399", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, detailPage("", "Software Engineer"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := New(Config{BaseURL: srv.URL + "/jobs/SearchJobs/"}, source.NewClient(nil), nil, zerolog.Nop())

	items, err := s.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "1420399", items[0].JobID)
}

func TestFetchNoLinksIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>maintenance</p></body></html>`)
	}))
	defer srv.Close()

	s := New(Config{BaseURL: srv.URL}, source.NewClient(nil), nil, zerolog.Nop())

	_, err := s.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no job links")
}

func TestFetchSkipsBrokenDetailPages(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/jobs/SearchJobs/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `
<table class="table_basic-1">
  <tr><td><a href="/jobs/ProjectDetail/role/1">One</a></td></tr>
  <tr><td><a href="/jobs/ProjectDetail/role/2">Two</a></td></tr>
</table>`)
	})
	mux.HandleFunc("/jobs/ProjectDetail/role/1", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})
	mux.HandleFunc("/jobs/ProjectDetail/role/2", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, detailPage("2", "Analyst"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := New(Config{BaseURL: srv.URL + "/jobs/SearchJobs/"}, source.NewClient(nil), nil, zerolog.Nop())

	items, err := s.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "2", items[0].JobID)
}
