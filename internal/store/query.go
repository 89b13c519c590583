package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"alphatrack-engine/internal/domain"
)

const recordColumns = `job_id, title, location, type, url, first_seen, last_seen`

// ListRecords returns every record ever reconciled, ordered by job_id so
// successive snapshots diff cleanly.
func (d *DB) ListRecords(ctx context.Context) ([]domain.StoredRecord, error) {
	rows, err := d.Pool.QueryContext(ctx, fmt.Sprintf(`
SELECT %s
FROM jobs
ORDER BY job_id;`, recordColumns))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

// StaleSince returns records whose last_seen predates cutoff: listings
// once observed but missing from every run since. Rows are never deleted,
// so this is the delta between a past run and now.
func (d *DB) StaleSince(ctx context.Context, cutoff time.Time) ([]domain.StoredRecord, error) {
	rows, err := d.Pool.QueryContext(ctx, fmt.Sprintf(`
SELECT %s
FROM jobs
WHERE last_seen < ?
ORDER BY last_seen, job_id;`, recordColumns),
		cutoff.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]domain.StoredRecord, error) {
	var out []domain.StoredRecord
	for rows.Next() {
		var rec domain.StoredRecord
		var firstSeen, lastSeen string
		if err := rows.Scan(
			&rec.JobID,
			&rec.Title,
			&rec.Location,
			&rec.Type,
			&rec.URL,
			&firstSeen,
			&lastSeen,
		); err != nil {
			return nil, err
		}

		var err error
		if rec.FirstSeen, err = time.Parse(time.RFC3339, firstSeen); err != nil {
			return nil, fmt.Errorf("job %q first_seen: %w", rec.JobID, err)
		}
		if rec.LastSeen, err = time.Parse(time.RFC3339, lastSeen); err != nil {
			return nil, fmt.Errorf("job %q last_seen: %w", rec.JobID, err)
		}
		// the stored row is the latest observation
		rec.ScrapedAt = rec.LastSeen
		out = append(out, rec)
	}
	return out, rows.Err()
}
