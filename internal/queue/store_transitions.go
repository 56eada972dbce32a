package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gavel/internal/meeting"
)

// Enqueue creates a job for the given meeting reference, or returns the
// existing one. A failed job is reset to pending with its retry count
// incremented; any other state is returned untouched. At most one job ever
// exists per natural key.
func (s *Store) Enqueue(ctx context.Context, ref meeting.Ref, priority int, metadata map[string]string) (*Job, error) {
	if err := ref.Validate(); err != nil {
		return nil, fmt.Errorf("enqueue: %w", err)
	}
	ctx = ensureContext(ctx)

	var metadataJSON any
	if len(metadata) > 0 {
		encoded, err := json.Marshal(metadata)
		if err != nil {
			return nil, fmt.Errorf("marshal metadata: %w", err)
		}
		metadataJSON = string(encoded)
	}

	now := timestamp(time.Now())
	// ON CONFLICT DO NOTHING keeps the insert race-free against concurrent
	// enqueues of the same key; the merge path below handles the loser.
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO jobs (
            year, month, day, committee, committee_code, scheduled_time,
            status, priority, metadata_json, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (year, month, day, committee, committee_code, scheduled_time) DO NOTHING`,
		ref.Year, ref.Month, ref.Day, ref.Committee, ref.Code, ref.ScheduledTime,
		StatusPending, priority, metadataJSON, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected > 0 {
		return s.GetByRef(ctx, ref)
	}

	existing, err := s.GetByRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("enqueue %s: job vanished after conflict", ref)
	}
	if existing.Status != StatusFailed {
		return existing, nil
	}

	// A failed job re-enters the queue automatically on re-enqueue.
	if _, err := s.execWithRetry(
		ctx,
		`UPDATE jobs
         SET status = ?, retry_count = retry_count + 1, priority = ?,
             error_kind = NULL, error_message = NULL, last_heartbeat = NULL,
             started_at = NULL, finished_at = NULL, updated_at = ?
         WHERE id = ? AND status = ?`,
		StatusPending, priority, timestamp(time.Now()), existing.ID, StatusFailed,
	); err != nil {
		return nil, fmt.Errorf("reset failed job: %w", err)
	}
	return s.GetByID(ctx, existing.ID)
}

// ClaimNext atomically claims up to limit pending jobs in priority order
// (priority ascending, then creation time). Each claim is a conditional
// single-row transition, so concurrent callers never claim the same job.
func (s *Store) ClaimNext(ctx context.Context, limit int) ([]*Job, error) {
	if limit <= 0 {
		return nil, nil
	}
	ctx = ensureContext(ctx)

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id FROM jobs WHERE status = ? ORDER BY priority, created_at LIMIT ?`,
		StatusPending, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select pending jobs: %w", err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	claimed := make([]*Job, 0, len(ids))
	for _, id := range ids {
		now := timestamp(time.Now())
		res, err := s.execWithRetry(
			ctx,
			`UPDATE jobs
             SET status = ?, started_at = ?, last_heartbeat = ?,
                 error_kind = NULL, error_message = NULL, updated_at = ?
             WHERE id = ? AND status = ?`,
			StatusProcessing, now, now, now, id, StatusPending,
		)
		if err != nil {
			return claimed, fmt.Errorf("claim job %d: %w", id, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return claimed, fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			// Lost the race to another claimer.
			continue
		}
		job, err := s.GetByID(ctx, id)
		if err != nil {
			return claimed, err
		}
		if job != nil {
			claimed = append(claimed, job)
		}
	}
	return claimed, nil
}

// Complete records a terminal successful outcome. Idempotent when repeated;
// a job never leaves completed.
func (s *Store) Complete(ctx context.Context, id int64, result Result) error {
	now := timestamp(time.Now())
	_, err := s.execWithRetry(
		ensureContext(ctx),
		`UPDATE jobs
         SET status = ?, resolved_url = ?, strategy = ?, file_path = ?,
             file_size = ?, audio_path = ?, transcode_note = ?,
             error_kind = NULL, error_message = NULL, last_heartbeat = NULL,
             finished_at = ?, updated_at = ?
         WHERE id = ? AND status IN (?, ?)`,
		StatusCompleted,
		nullableString(result.ResolvedURL),
		nullableString(result.Strategy),
		nullableString(result.FilePath),
		result.FileSize,
		nullableString(result.AudioPath),
		nullableString(result.TranscodeNote),
		now, now,
		id, StatusProcessing, StatusCompleted,
	)
	if err != nil {
		return fmt.Errorf("complete job %d: %w", id, err)
	}
	return nil
}

// Fail records a terminal failed outcome with a classified kind and
// human-readable detail. Idempotent when repeated; a completed job is never
// demoted to failed.
func (s *Store) Fail(ctx context.Context, id int64, kind, message string) error {
	now := timestamp(time.Now())
	_, err := s.execWithRetry(
		ensureContext(ctx),
		`UPDATE jobs
         SET status = ?, error_kind = ?, error_message = ?, last_heartbeat = NULL,
             finished_at = ?, updated_at = ?
         WHERE id = ? AND status IN (?, ?)`,
		StatusFailed,
		nullableString(kind),
		nullableString(message),
		now, now,
		id, StatusProcessing, StatusFailed,
	)
	if err != nil {
		return fmt.Errorf("fail job %d: %w", id, err)
	}
	return nil
}

// RetryFailed moves failed jobs back to pending, incrementing their retry
// counts. With no ids, all failed jobs are retried. Returns the number of
// jobs re-entered.
func (s *Store) RetryFailed(ctx context.Context, ids ...int64) (int64, error) {
	ctx = ensureContext(ctx)
	now := timestamp(time.Now())

	if len(ids) == 0 {
		res, err := s.execWithRetry(
			ctx,
			`UPDATE jobs
             SET status = ?, retry_count = retry_count + 1,
                 error_kind = NULL, error_message = NULL, last_heartbeat = NULL,
                 started_at = NULL, finished_at = NULL, updated_at = ?
             WHERE status = ?`,
			StatusPending, now, StatusFailed,
		)
		if err != nil {
			return 0, fmt.Errorf("retry failed jobs: %w", err)
		}
		return res.RowsAffected()
	}

	placeholders := makePlaceholders(len(ids))
	args := make([]any, 0, len(ids)+3)
	args = append(args, StatusPending, now, StatusFailed)
	for _, id := range ids {
		args = append(args, id)
	}
	res, err := s.execWithRetry(
		ctx,
		`UPDATE jobs
         SET status = ?, retry_count = retry_count + 1,
             error_kind = NULL, error_message = NULL, last_heartbeat = NULL,
             started_at = NULL, finished_at = NULL, updated_at = ?
         WHERE status = ? AND id IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("retry selected jobs: %w", err)
	}
	return res.RowsAffected()
}

// UpdateHeartbeat stamps the last heartbeat for an in-flight job.
func (s *Store) UpdateHeartbeat(ctx context.Context, id int64) error {
	now := timestamp(time.Now())
	if _, err := s.execWithRetry(
		ensureContext(ctx),
		`UPDATE jobs SET last_heartbeat = ?, updated_at = ? WHERE id = ? AND status = ?`,
		now, now, id, StatusProcessing,
	); err != nil {
		return fmt.Errorf("update heartbeat: %w", err)
	}
	return nil
}

// ReclaimStaleProcessing returns processing jobs whose heartbeats expired
// before cutoff back to pending. Retry counts are untouched: a reclaimed job
// was never tried to completion.
func (s *Store) ReclaimStaleProcessing(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.execWithRetry(
		ensureContext(ctx),
		`UPDATE jobs
         SET status = ?, last_heartbeat = NULL, started_at = NULL, updated_at = ?
         WHERE status = ? AND last_heartbeat IS NOT NULL AND last_heartbeat < ?`,
		StatusPending,
		timestamp(time.Now()),
		StatusProcessing,
		timestamp(cutoff),
	)
	if err != nil {
		return 0, fmt.Errorf("reclaim stale jobs: %w", err)
	}
	return res.RowsAffected()
}
