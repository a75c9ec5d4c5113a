package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/naozine/voxengine/internal/storage/sqlc"
)

// Job status values (mirrors the teacher's models.JobStatus* constants).
const (
	JobStatusQueued    = "queued"
	JobStatusRunning   = "running"
	JobStatusFailed    = "failed"
	JobStatusCompleted = "completed"
)

// Job priority values (mirrors the teacher's models.JobPriority* constants).
const (
	JobPriorityImmediate = 0
	JobPriorityNormal    = 5
	JobPriorityBatch     = 9
)

// MaxJobRetries is the retry count at or above which the worker marks a
// failed job failed instead of calling JobRepository.Retry. The worker does
// not dispatch a job again after Retry marks it queued, and nothing in this
// module reads queued rows back from the table.
const MaxJobRetries = 3

// JobRepository is the data-access layer over transcription_jobs: one row
// per speech segment (C5 output) handed to the ASR worker (§10.5).
type JobRepository struct {
	db *DB
}

// NewJobRepository returns a JobRepository bound to db.
func NewJobRepository(db *DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create inserts a new queued job for segmentPath (the on-disk staging
// file holding the segment's raw samples) starting at startMs within the
// source recording, and returns its assigned id.
func (r *JobRepository) Create(ctx context.Context, segmentPath string, startMs int64, priority int) (int64, error) {
	return r.db.Queries.CreateJob(ctx, sqlc.CreateJobParams{
		SegmentPath: segmentPath,
		StartMs:     startMs,
		Status:      JobStatusQueued,
		Priority:    int64(priority),
		CreatedAt:   time.Now(),
	})
}

// GetByID retrieves a job by id. Returns (nil, nil) if no such job exists.
func (r *JobRepository) GetByID(ctx context.Context, id int64) (*sqlc.TranscriptionJob, error) {
	job, err := r.db.Queries.GetJobByID(ctx, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// GetNextQueued retrieves the next job to run, ordered by priority then
// submission order. Returns (nil, nil) when the queue is empty.
func (r *JobRepository) GetNextQueued(ctx context.Context) (*sqlc.TranscriptionJob, error) {
	job, err := r.db.Queries.GetNextQueuedJob(ctx)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// Start transitions a job to running.
func (r *JobRepository) Start(ctx context.Context, id int64) error {
	return r.db.Queries.StartJob(ctx, sqlc.StartJobParams{StartedAt: time.Now(), ID: id})
}

// UpdateProgress sets a job's progress percentage (0-100).
func (r *JobRepository) UpdateProgress(ctx context.Context, id int64, progress int) error {
	return r.db.Queries.UpdateJobProgress(ctx, sqlc.UpdateJobProgressParams{Progress: int64(progress), ID: id})
}

// Complete marks a job completed, recording the transcript text produced.
func (r *JobRepository) Complete(ctx context.Context, id int64, resultText string) error {
	return r.db.Queries.CompleteJob(ctx, sqlc.CompleteJobParams{
		ResultText:  resultText,
		CompletedAt: time.Now(),
		ID:          id,
	})
}

// Fail marks a job failed with the given error message.
func (r *JobRepository) Fail(ctx context.Context, id int64, errorMsg string) error {
	return r.db.Queries.FailJob(ctx, sqlc.FailJobParams{
		Error:       errorMsg,
		CompletedAt: time.Now(),
		ID:          id,
	})
}

// Retry resets a failed job back to queued, incrementing its retry count.
func (r *JobRepository) Retry(ctx context.Context, id int64) error {
	return r.db.Queries.RetryJob(ctx, id)
}

// ListByStatus lists up to limit jobs in the given status, most recent
// first. limit <= 0 defaults to 50.
func (r *JobRepository) ListByStatus(ctx context.Context, status string, limit int) ([]sqlc.TranscriptionJob, error) {
	if limit <= 0 {
		limit = 50
	}
	return r.db.Queries.ListJobsByStatus(ctx, sqlc.ListJobsByStatusParams{Status: status, Limit: int64(limit)})
}

// ListRecent lists up to limit recently created jobs regardless of status.
func (r *JobRepository) ListRecent(ctx context.Context, limit int) ([]sqlc.TranscriptionJob, error) {
	if limit <= 0 {
		limit = 50
	}
	return r.db.Queries.ListRecentJobs(ctx, int64(limit))
}

// Delete removes a job row.
func (r *JobRepository) Delete(ctx context.Context, id int64) error {
	return r.db.Queries.DeleteJob(ctx, id)
}

// CleanupCompleted deletes completed/failed jobs older than olderThanDays,
// returning the number removed.
func (r *JobRepository) CleanupCompleted(ctx context.Context, olderThanDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -olderThanDays)
	return r.db.Queries.CleanupCompletedJobs(ctx, cutoff)
}

// CountByStatus returns a per-status job count, for diagnostics/UI (§11.5).
func (r *JobRepository) CountByStatus(ctx context.Context) ([]sqlc.CountJobsByStatusRow, error) {
	return r.db.Queries.CountJobsByStatus(ctx)
}
