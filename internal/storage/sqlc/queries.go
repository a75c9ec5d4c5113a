package sqlc

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is the subset of *sql.DB (or *sql.Tx) the generated queries need,
// matching the interface sqlc itself emits.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// Queries wraps a DBTX with one method per transcription_jobs operation.
type Queries struct {
	db DBTX
}

// New returns a Queries bound to db.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// CreateJobParams is the parameter set for CreateJob.
type CreateJobParams struct {
	SegmentPath string
	StartMs     int64
	Status      string
	Priority    int64
	CreatedAt   time.Time
}

const createJob = `
INSERT INTO transcription_jobs (segment_path, start_ms, status, priority, progress, retry_count, created_at)
VALUES (?, ?, ?, ?, 0, 0, ?)
`

// CreateJob inserts a new job row and returns its assigned rowid.
func (q *Queries) CreateJob(ctx context.Context, arg CreateJobParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, createJob, arg.SegmentPath, arg.StartMs, arg.Status, arg.Priority, arg.CreatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const getJobByID = `
SELECT id, segment_path, start_ms, status, priority, progress, retry_count, result_text, error, created_at, started_at, completed_at
FROM transcription_jobs WHERE id = ?
`

// GetJobByID retrieves a single job by its rowid.
func (q *Queries) GetJobByID(ctx context.Context, id int64) (TranscriptionJob, error) {
	row := q.db.QueryRowContext(ctx, getJobByID, id)
	return scanJob(row)
}

const getNextQueuedJob = `
SELECT id, segment_path, start_ms, status, priority, progress, retry_count, result_text, error, created_at, started_at, completed_at
FROM transcription_jobs
WHERE status = 'queued'
ORDER BY priority ASC, id ASC
LIMIT 1
`

// GetNextQueuedJob retrieves the highest-priority (lowest number),
// earliest-submitted queued job.
func (q *Queries) GetNextQueuedJob(ctx context.Context) (TranscriptionJob, error) {
	row := q.db.QueryRowContext(ctx, getNextQueuedJob)
	return scanJob(row)
}

const startJob = `UPDATE transcription_jobs SET status = 'running', started_at = ? WHERE id = ?`

// StartJobParams is the parameter set for StartJob.
type StartJobParams struct {
	StartedAt time.Time
	ID        int64
}

// StartJob transitions a job to running.
func (q *Queries) StartJob(ctx context.Context, arg StartJobParams) error {
	_, err := q.db.ExecContext(ctx, startJob, arg.StartedAt, arg.ID)
	return err
}

const updateJobProgress = `UPDATE transcription_jobs SET progress = ? WHERE id = ?`

// UpdateJobProgressParams is the parameter set for UpdateJobProgress.
type UpdateJobProgressParams struct {
	Progress int64
	ID       int64
}

// UpdateJobProgress sets a job's progress percentage.
func (q *Queries) UpdateJobProgress(ctx context.Context, arg UpdateJobProgressParams) error {
	_, err := q.db.ExecContext(ctx, updateJobProgress, arg.Progress, arg.ID)
	return err
}

const completeJob = `UPDATE transcription_jobs SET status = 'completed', result_text = ?, completed_at = ?, progress = 100 WHERE id = ?`

// CompleteJobParams is the parameter set for CompleteJob.
type CompleteJobParams struct {
	ResultText  string
	CompletedAt time.Time
	ID          int64
}

// CompleteJob marks a job completed with its resulting transcript text.
func (q *Queries) CompleteJob(ctx context.Context, arg CompleteJobParams) error {
	_, err := q.db.ExecContext(ctx, completeJob, arg.ResultText, arg.CompletedAt, arg.ID)
	return err
}

const failJob = `UPDATE transcription_jobs SET status = 'failed', error = ?, completed_at = ? WHERE id = ?`

// FailJobParams is the parameter set for FailJob.
type FailJobParams struct {
	Error       string
	CompletedAt time.Time
	ID          int64
}

// FailJob marks a job failed with an error message.
func (q *Queries) FailJob(ctx context.Context, arg FailJobParams) error {
	_, err := q.db.ExecContext(ctx, failJob, arg.Error, arg.CompletedAt, arg.ID)
	return err
}

const retryJob = `UPDATE transcription_jobs SET status = 'queued', retry_count = retry_count + 1, started_at = NULL WHERE id = ?`

// RetryJob resets a failed job back to queued, incrementing its retry count.
func (q *Queries) RetryJob(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, retryJob, id)
	return err
}

const listJobsByStatus = `
SELECT id, segment_path, start_ms, status, priority, progress, retry_count, result_text, error, created_at, started_at, completed_at
FROM transcription_jobs WHERE status = ? ORDER BY id DESC LIMIT ?
`

// ListJobsByStatusParams is the parameter set for ListJobsByStatus.
type ListJobsByStatusParams struct {
	Status string
	Limit  int64
}

// ListJobsByStatus lists the most recent jobs in a given status.
func (q *Queries) ListJobsByStatus(ctx context.Context, arg ListJobsByStatusParams) ([]TranscriptionJob, error) {
	rows, err := q.db.QueryContext(ctx, listJobsByStatus, arg.Status, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJobs(rows)
}

const listRecentJobs = `
SELECT id, segment_path, start_ms, status, priority, progress, retry_count, result_text, error, created_at, started_at, completed_at
FROM transcription_jobs ORDER BY id DESC LIMIT ?
`

// ListRecentJobs lists the most recently created jobs regardless of status.
func (q *Queries) ListRecentJobs(ctx context.Context, limit int64) ([]TranscriptionJob, error) {
	rows, err := q.db.QueryContext(ctx, listRecentJobs, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJobs(rows)
}

const deleteJob = `DELETE FROM transcription_jobs WHERE id = ?`

// DeleteJob removes a job row.
func (q *Queries) DeleteJob(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteJob, id)
	return err
}

const cleanupCompletedJobs = `DELETE FROM transcription_jobs WHERE status IN ('completed', 'failed') AND completed_at < ?`

// CleanupCompletedJobs deletes completed/failed jobs older than cutoff,
// returning the number of rows removed.
func (q *Queries) CleanupCompletedJobs(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, cleanupCompletedJobs, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const countJobsByStatus = `SELECT status, COUNT(*) FROM transcription_jobs GROUP BY status`

// CountJobsByStatus returns a per-status job count.
func (q *Queries) CountJobsByStatus(ctx context.Context) ([]CountJobsByStatusRow, error) {
	rows, err := q.db.QueryContext(ctx, countJobsByStatus)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CountJobsByStatusRow
	for rows.Next() {
		var r CountJobsByStatusRow
		if err := rows.Scan(&r.Status, &r.Count); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanJob(row *sql.Row) (TranscriptionJob, error) {
	var j TranscriptionJob
	err := row.Scan(&j.ID, &j.SegmentPath, &j.StartMs, &j.Status, &j.Priority, &j.Progress, &j.RetryCount,
		&j.ResultText, &j.Error, &j.CreatedAt, &j.StartedAt, &j.CompletedAt)
	return j, err
}

func scanJobs(rows *sql.Rows) ([]TranscriptionJob, error) {
	var out []TranscriptionJob
	for rows.Next() {
		var j TranscriptionJob
		if err := rows.Scan(&j.ID, &j.SegmentPath, &j.StartMs, &j.Status, &j.Priority, &j.Progress, &j.RetryCount,
			&j.ResultText, &j.Error, &j.CreatedAt, &j.StartedAt, &j.CompletedAt); err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}
