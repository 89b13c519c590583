package rawlog

import (
	"os"
	"path/filepath"
	"regexp"
	"time"
)

// Archiver saves unmodified fetched bytes per run for audit. It is a pure
// side channel: nothing here is reconciled, and callers log failures
// instead of failing the run.
type Archiver struct {
	Dir string
}

const runDirLayout = "20060102_150405"

// Save writes content to <Dir>/<sourceName>/<run ts>/<filename> and
// returns the path. Missing directories are created.
func (a Archiver) Save(sourceName, filename string, content []byte, ts time.Time) (string, error) {
	runDir := filepath.Join(a.Dir, Sanitize(sourceName), ts.UTC().Format(runDirLayout))
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(runDir, Sanitize(filename))
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

var unsafeChars = regexp.MustCompile(`[^\w\-.]+`)

// Sanitize reduces a string to filename-safe characters (alphanumeric,
// dash, underscore, dot).
func Sanitize(s string) string {
	return unsafeChars.ReplaceAllString(s, "_")
}
