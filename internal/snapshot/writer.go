package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"alphatrack-engine/internal/domain"
)

// ErrConflict means an archive already exists for the run timestamp. The
// existing file is left untouched; the caller decides how loudly to report
// the store/archive mismatch.
var ErrConflict = errors.New("archive snapshot already exists")

const (
	archiveDirName = "archive"
	latestName     = "latest.json"
	// sortable, collision-resistant token, e.g. 20250101T000000Z
	tokenLayout = "20060102T150405Z"
)

// Writer dumps one run's full record set under Dir: an immutable
// timestamp-named archive plus an atomically replaced latest.json.
type Writer struct {
	Dir string
}

type Result struct {
	ArchivePath string
	LatestPath  string
}

// Write serializes the run's full record set and produces both files.
// A nil or empty set still yields valid empty-array files.
func (w Writer) Write(records []domain.Record, runTS time.Time) (Result, error) {
	if records == nil {
		records = []domain.Record{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return Result{}, err
	}
	data = append(data, '\n')

	archiveDir := filepath.Join(w.Dir, archiveDirName)
	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return Result{}, err
	}

	res := Result{
		ArchivePath: filepath.Join(archiveDir, runTS.UTC().Format(tokenLayout)+".json"),
		LatestPath:  filepath.Join(w.Dir, latestName),
	}

	if err := writeExclusive(res.ArchivePath, data); err != nil {
		return Result{}, err
	}
	if err := replaceAtomic(res.LatestPath, data); err != nil {
		return Result{}, err
	}
	return res, nil
}

// writeExclusive refuses to touch an existing archive: two runs landing on
// the same second are a reportable conflict, not silent data loss.
func writeExclusive(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrConflict, path)
		}
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// replaceAtomic stages the new latest in a temp file in the same directory,
// fsyncs, then renames over the old one. A reader sees either the previous
// complete snapshot or the new one, never a truncated mix.
func replaceAtomic(path string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(path), ".latest-*.json")
	if err != nil {
		return err
	}
	tmp := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
