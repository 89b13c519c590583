package domain

import "time"

// Record is the canonical listing shape every source adapter reduces to.
// Field order matters: snapshots are diffed between runs.
type Record struct {
	URL       string    `json:"url"`
	JobID     string    `json:"job_id"`
	Title     string    `json:"title"`
	Location  string    `json:"location"`
	Type      string    `json:"type"`
	ScrapedAt time.Time `json:"scraped_at"`
}

// StoredRecord is a Record plus its observed lifetime in the store.
// FirstSeen is set once on insert and never moves; LastSeen advances on
// every observation, whether or not the mutable fields changed.
type StoredRecord struct {
	Record
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
}
