// Package sqlc holds hand-written query types in the style sqlc generates
// for the teacher's own storage layer (zbor/internal/storage/sqlc),
// scoped down to this module's single transcription_jobs table rather
// than the teacher's multi-entity article/source/tag schema.
package sqlc

import "time"

// TranscriptionJob is one row of the transcription_jobs table: the
// segment-to-transcript handoff record the worker (§10.5) tracks.
type TranscriptionJob struct {
	ID          int64
	SegmentPath string
	StartMs     int64
	Status      string
	Priority    int64
	Progress    int64
	RetryCount  int64
	ResultText  *string
	Error       *string
	CreatedAt   time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
}

// CountJobsByStatusRow is the result shape of CountJobsByStatus.
type CountJobsByStatusRow struct {
	Status string
	Count  int64
}
