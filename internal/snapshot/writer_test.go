package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alphatrack-engine/internal/domain"
)

var runTS = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func sampleRecords() []domain.Record {
	return []domain.Record{{
		URL:       "https://example.com/jobs/1",
		JobID:     "1",
		Title:     "Engineer",
		Location:  "SJ",
		Type:      "Professional",
		ScrapedAt: runTS,
	}}
}

func TestWriteProducesArchiveAndLatest(t *testing.T) {
	w := Writer{Dir: t.TempDir()}

	res, err := w.Write(sampleRecords(), runTS)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(w.Dir, "archive", "20250101T000000Z.json"), res.ArchivePath)
	assert.Equal(t, filepath.Join(w.Dir, "latest.json"), res.LatestPath)

	archive, err := os.ReadFile(res.ArchivePath)
	require.NoError(t, err)
	latest, err := os.ReadFile(res.LatestPath)
	require.NoError(t, err)
	assert.Equal(t, archive, latest)

	var decoded []domain.Record
	require.NoError(t, json.Unmarshal(latest, &decoded))
	assert.Equal(t, sampleRecords(), decoded)
}

func TestWriteStableFieldOrder(t *testing.T) {
	w := Writer{Dir: t.TempDir()}

	res, err := w.Write(sampleRecords(), runTS)
	require.NoError(t, err)

	data, err := os.ReadFile(res.LatestPath)
	require.NoError(t, err)

	order := []string{`"url"`, `"job_id"`, `"title"`, `"location"`, `"type"`, `"scraped_at"`}
	last := -1
	for _, key := range order {
		idx := bytes.Index(data, []byte(key))
		require.Greater(t, idx, last, "field %s out of order", key)
		last = idx
	}
}

func TestWriteEmptyRecordSet(t *testing.T) {
	w := Writer{Dir: t.TempDir()}

	res, err := w.Write(nil, runTS)
	require.NoError(t, err)

	for _, path := range []string{res.ArchivePath, res.LatestPath} {
		data, err := os.ReadFile(path)
		require.NoError(t, err)

		var decoded []domain.Record
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.NotNil(t, decoded)
		assert.Empty(t, decoded)
	}
}

func TestWriteArchiveConflict(t *testing.T) {
	w := Writer{Dir: t.TempDir()}

	res, err := w.Write(sampleRecords(), runTS)
	require.NoError(t, err)

	original, err := os.ReadFile(res.ArchivePath)
	require.NoError(t, err)
	priorLatest, err := os.ReadFile(res.LatestPath)
	require.NoError(t, err)

	// second run in the same second, different content
	changed := sampleRecords()
	changed[0].Title = "Senior Engineer"
	_, err = w.Write(changed, runTS)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConflict))

	// existing archive bytes untouched, latest not replaced either
	after, err := os.ReadFile(res.ArchivePath)
	require.NoError(t, err)
	assert.Equal(t, original, after)

	latest, err := os.ReadFile(res.LatestPath)
	require.NoError(t, err)
	assert.Equal(t, priorLatest, latest)
}

func TestReplaceAtomicKeepsPriorLatestOnFailure(t *testing.T) {
	w := Writer{Dir: t.TempDir()}

	_, err := w.Write(sampleRecords(), runTS)
	require.NoError(t, err)
	latestPath := filepath.Join(w.Dir, "latest.json")
	prior, err := os.ReadFile(latestPath)
	require.NoError(t, err)

	// a write that never reaches the rename must leave latest intact;
	// simulate the crash by staging a temp file and abandoning it
	tmp, err := os.CreateTemp(w.Dir, ".latest-*.json")
	require.NoError(t, err)
	_, err = tmp.Write([]byte(`[{"truncat`))
	require.NoError(t, err)
	require.NoError(t, tmp.Close())

	got, err := os.ReadFile(latestPath)
	require.NoError(t, err)
	assert.Equal(t, prior, got)
}

func TestWriteLatestReplacedNextRun(t *testing.T) {
	w := Writer{Dir: t.TempDir()}

	_, err := w.Write(sampleRecords(), runTS)
	require.NoError(t, err)

	changed := sampleRecords()
	changed[0].Title = "Senior Engineer"
	res, err := w.Write(changed, runTS.Add(24*time.Hour))
	require.NoError(t, err)

	data, err := os.ReadFile(res.LatestPath)
	require.NoError(t, err)

	var decoded []domain.Record
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "Senior Engineer", decoded[0].Title)

	// both archives remain
	entries, err := os.ReadDir(filepath.Join(w.Dir, "archive"))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
