package store

import "database/sql"

// Migrate creates the jobs schema if this store has never seen it.
// PRAGMA user_version guards reruns.
func Migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}
	if v >= 1 {
		return tx.Commit()
	}

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS jobs (
  job_id     TEXT PRIMARY KEY CHECK (job_id <> ''),
  title      TEXT NOT NULL DEFAULT '',
  location   TEXT NOT NULL DEFAULT '',
  type       TEXT NOT NULL DEFAULT '',
  url        TEXT NOT NULL DEFAULT '',
  first_seen TEXT NOT NULL,
  last_seen  TEXT NOT NULL
);
`); err != nil {
		return err
	}

	// last_seen drives the "not seen since run X" delta query
	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_jobs_last_seen
ON jobs(last_seen);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`PRAGMA user_version = 1;`); err != nil {
		return err
	}

	return tx.Commit()
}
