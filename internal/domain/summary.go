package domain

import "time"

// UpsertSummary reports what one reconciliation batch did to the store.
type UpsertSummary struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
}

// RunSummary is the per-run result reported by the orchestrator.
type RunSummary struct {
	RunID       string    `json:"run_id"`
	Target      string    `json:"target"`
	StartedAt   time.Time `json:"started_at"`
	Fetched     int       `json:"fetched"`
	Normalized  int       `json:"normalized"`
	Skipped     int       `json:"skipped"`
	Inserted    int       `json:"inserted"`
	Updated     int       `json:"updated"`
	ArchivePath string    `json:"archive_path"`
	LatestPath  string    `json:"latest_path"`
}
