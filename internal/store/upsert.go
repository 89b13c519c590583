package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"alphatrack-engine/internal/domain"
)

// UpsertBatch reconciles one run's records in a single transaction: either
// every record lands or none do. New job_ids get first_seen = last_seen =
// observedAt; known ones keep first_seen and have their mutable fields plus
// last_seen overwritten, changed or not. Records are independent, so batch
// order does not matter.
func (d *DB) UpsertBatch(ctx context.Context, records []domain.Record, observedAt time.Time) (domain.UpsertSummary, error) {
	var sum domain.UpsertSummary

	tx, err := d.Pool.BeginTx(ctx, nil)
	if err != nil {
		return sum, fmt.Errorf("begin upsert batch: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	ts := observedAt.UTC().Format(time.RFC3339)

	for _, rec := range records {
		var one int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM jobs WHERE job_id = ?;`, rec.JobID).Scan(&one)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			if _, err := tx.ExecContext(ctx, `
INSERT INTO jobs (job_id, title, location, type, url, first_seen, last_seen)
VALUES (?, ?, ?, ?, ?, ?, ?);`,
				rec.JobID, rec.Title, rec.Location, rec.Type, rec.URL, ts, ts,
			); err != nil {
				return domain.UpsertSummary{}, fmt.Errorf("insert job %q: %w", rec.JobID, err)
			}
			sum.Inserted++

		case err != nil:
			return domain.UpsertSummary{}, fmt.Errorf("lookup job %q: %w", rec.JobID, err)

		default:
			// first_seen stays out of the SET list; it is immutable
			if _, err := tx.ExecContext(ctx, `
UPDATE jobs
SET title = ?, location = ?, type = ?, url = ?, last_seen = ?
WHERE job_id = ?;`,
				rec.Title, rec.Location, rec.Type, rec.URL, ts, rec.JobID,
			); err != nil {
				return domain.UpsertSummary{}, fmt.Errorf("update job %q: %w", rec.JobID, err)
			}
			sum.Updated++
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.UpsertSummary{}, fmt.Errorf("commit upsert batch: %w", err)
	}
	return sum, nil
}
