package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestJobLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewJobRepository(openTestDB(t))

	id, err := repo.Create(ctx, "/tmp/segment-1.wav", 1500, JobPriorityNormal)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	job, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if job == nil {
		t.Fatal("GetByID returned nil for a job that was just created")
	}
	if job.Status != JobStatusQueued {
		t.Errorf("Status = %q, want %q", job.Status, JobStatusQueued)
	}

	next, err := repo.GetNextQueued(ctx)
	if err != nil {
		t.Fatalf("GetNextQueued: %v", err)
	}
	if next == nil || next.ID != id {
		t.Fatalf("GetNextQueued = %v, want job %d", next, id)
	}

	if err := repo.Start(ctx, id); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := repo.Complete(ctx, id, "hello world"); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	job, err = repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID after complete: %v", err)
	}
	if job.Status != JobStatusCompleted {
		t.Errorf("Status after Complete = %q, want %q", job.Status, JobStatusCompleted)
	}
	if job.ResultText == nil || *job.ResultText != "hello world" {
		t.Errorf("ResultText = %v, want %q", job.ResultText, "hello world")
	}
}

func TestJobRetryRequeuesAndIncrementsCount(t *testing.T) {
	ctx := context.Background()
	repo := NewJobRepository(openTestDB(t))

	id, err := repo.Create(ctx, "/tmp/segment-2.wav", 0, JobPriorityBatch)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := repo.Fail(ctx, id, "decode error"); err != nil {
		t.Fatalf("Fail: %v", err)
	}
	if err := repo.Retry(ctx, id); err != nil {
		t.Fatalf("Retry: %v", err)
	}

	job, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if job.Status != JobStatusQueued {
		t.Errorf("Status after Retry = %q, want %q", job.Status, JobStatusQueued)
	}
	if job.RetryCount != 1 {
		t.Errorf("RetryCount = %d, want 1", job.RetryCount)
	}
}

func TestCountByStatusGroupsCorrectly(t *testing.T) {
	ctx := context.Background()
	repo := NewJobRepository(openTestDB(t))

	if _, err := repo.Create(ctx, "/tmp/a.wav", 0, JobPriorityNormal); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.Create(ctx, "/tmp/b.wav", 0, JobPriorityNormal); err != nil {
		t.Fatalf("Create: %v", err)
	}

	counts, err := repo.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("CountByStatus: %v", err)
	}
	var queued int64
	for _, c := range counts {
		if c.Status == JobStatusQueued {
			queued = c.Count
		}
	}
	if queued != 2 {
		t.Errorf("queued count = %d, want 2", queued)
	}
}
