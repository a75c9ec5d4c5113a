// Package worker implements the segmenter-to-ASR handoff (spec §5, §10.5):
// a bounded-channel producer/dedicated-consumer pair. Modeled on the
// teacher's own Worker (zbor/internal/worker/worker.go), in its
// ticker-free variant: segments are pushed onto a channel as the
// segmenter (C5) emits them rather than polled from a queue table, so the
// consumer blocks on channel receive instead of a ticker; the
// Start(ctx)/Stop()/sync.WaitGroup shutdown shape is unchanged.
package worker

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/naozine/voxengine/internal/asr"
	"github.com/naozine/voxengine/internal/storage"
)

// Job is one queued transcription unit: a speech segment (C5 output)
// already staged to disk, plus the database row tracking its progress.
type Job struct {
	ID       int64
	Samples  []int16
	Rate     int
	Channels int
	StartMs  int64
}

// Result is delivered to the worker's result callback after a job
// completes, successfully or not.
type Result struct {
	Job      Job
	Segments []asr.Segment
	Err      error
}

// queueCapacity bounds the producer/consumer channel, per spec §5's
// requirement that the capture thread never blocks for long on a full
// queue; a full channel applies backpressure to the segmenter callback's
// caller rather than growing without bound.
const queueCapacity = 64

// Worker runs one dedicated goroutine that drains a bounded channel of
// Jobs and transcribes each via a Recognizer, persisting status
// transitions through a JobRepository.
type Worker struct {
	jobRepo    *storage.JobRepository
	recognizer *asr.Recognizer

	queue    chan Job
	onResult func(Result)

	stop chan struct{}
	wg   sync.WaitGroup
}

// New returns a Worker that transcribes with recognizer and records job
// status through jobRepo. recognizer must already be initialized.
func New(jobRepo *storage.JobRepository, recognizer *asr.Recognizer) *Worker {
	return &Worker{
		jobRepo:    jobRepo,
		recognizer: recognizer,
		queue:      make(chan Job, queueCapacity),
		stop:       make(chan struct{}),
	}
}

// OnResult installs the callback invoked after each job finishes. Must be
// called before Start.
func (w *Worker) OnResult(fn func(Result)) {
	w.onResult = fn
}

// Start launches the consumer goroutine.
func (w *Worker) Start(ctx context.Context) {
	w.wg.Add(1)
	go w.run(ctx)
	log.Println("worker: started")
}

// Stop signals the consumer to process the jobs already queued and exit, then waits
// for it to finish. Per spec §5, the caller must have already stopped
// capture and flushed the segmenter before calling Stop, since no new
// jobs should be enqueued afterward.
func (w *Worker) Stop() {
	close(w.stop)
	w.wg.Wait()
	log.Println("worker: stopped")
}

// Submit records a new queued job and pushes it onto the dispatch
// channel, blocking if the channel is full. Returns the assigned job id.
func (w *Worker) Submit(ctx context.Context, segmentPath string, job Job, priority int) (int64, error) {
	id, err := w.jobRepo.Create(ctx, segmentPath, job.StartMs, priority)
	if err != nil {
		return 0, fmt.Errorf("worker: submit: %w", err)
	}
	job.ID = id

	select {
	case w.queue <- job:
		log.Printf("worker: job %d submitted (priority %d)", id, priority)
		return id, nil
	case <-ctx.Done():
		return id, ctx.Err()
	}
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			w.drain(ctx)
			return
		case <-w.stop:
			w.drain(ctx)
			return
		case job := <-w.queue:
			w.process(ctx, job)
		}
	}
}

// drain processes any jobs already queued before returning, so a stop
// request does not silently discard in-flight segments.
func (w *Worker) drain(ctx context.Context) {
	for {
		select {
		case job := <-w.queue:
			w.process(ctx, job)
		default:
			return
		}
	}
}

func (w *Worker) process(ctx context.Context, job Job) {
	if err := w.jobRepo.Start(ctx, job.ID); err != nil {
		log.Printf("worker: job %d: marking started: %v", job.ID, err)
	}
	log.Printf("worker: processing job %d (%d samples at %dHz)", job.ID, len(job.Samples), job.Rate)

	segments, err := w.recognizer.TranscribeBuffer(job.Samples, job.Rate, job.Channels)
	if err != nil {
		w.handleFailure(ctx, job, err)
		return
	}

	text := asr.FormatPlain(segments)
	if err := w.jobRepo.Complete(ctx, job.ID, text); err != nil {
		log.Printf("worker: job %d: marking complete: %v", job.ID, err)
	}
	log.Printf("worker: job %d completed (%d segments)", job.ID, len(segments))

	if w.onResult != nil {
		w.onResult(Result{Job: job, Segments: segments})
	}
}

func (w *Worker) handleFailure(ctx context.Context, job Job, jobErr error) {
	dbJob, err := w.jobRepo.GetByID(ctx, job.ID)
	retryCount := 0
	if err == nil && dbJob != nil {
		retryCount = int(dbJob.RetryCount)
	}

	if retryCount < storage.MaxJobRetries {
		if err := w.jobRepo.Retry(ctx, job.ID); err != nil {
			log.Printf("worker: job %d: retry: %v", job.ID, err)
		} else {
			log.Printf("worker: job %d queued for retry (attempt %d/%d): %v", job.ID, retryCount+1, storage.MaxJobRetries, jobErr)
		}
		if w.onResult != nil {
			w.onResult(Result{Job: job, Err: jobErr})
		}
		return
	}

	if err := w.jobRepo.Fail(ctx, job.ID, jobErr.Error()); err != nil {
		log.Printf("worker: job %d: marking failed: %v", job.ID, err)
	}
	log.Printf("worker: job %d failed permanently: %v", job.ID, jobErr)
	if w.onResult != nil {
		w.onResult(Result{Job: job, Err: jobErr})
	}
}
