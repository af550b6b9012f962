package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"github.com/loopforge/api/internal/jobs"
	"github.com/loopforge/api/internal/model"
)

// JobStore is the slice of the job store the worker needs.
type JobStore interface {
	Get(ctx context.Context, jobID string) (*model.Job, error)
	Save(ctx context.Context, job *model.Job) error
}

// Worker executes queued jobs: it loads the persisted record, drives the
// registered processor and mirrors every progress event into both the job
// record and the pub/sub sink.
type Worker struct {
	store      JobStore
	notifier   jobs.Notifier
	processors map[model.JobKind]jobs.Processor
}

func New(store JobStore, notifier jobs.Notifier) *Worker {
	return &Worker{
		store:      store,
		notifier:   notifier,
		processors: make(map[model.JobKind]jobs.Processor),
	}
}

// Register binds a processor to a job kind.
func (w *Worker) Register(kind model.JobKind, p jobs.Processor) {
	w.processors[kind] = p
}

// HandleTask returns the asynq handler for one job kind.
func (w *Worker) HandleTask(kind model.JobKind) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var envelope jobs.TaskEnvelope
		if err := json.Unmarshal(t.Payload(), &envelope); err != nil {
			return fmt.Errorf("failed to unmarshal task envelope: %v: %w", err, asynq.SkipRetry)
		}
		return w.process(ctx, kind, &envelope)
	}
}

func (w *Worker) process(ctx context.Context, kind model.JobKind, envelope *jobs.TaskEnvelope) error {
	proc, ok := w.processors[kind]
	if !ok {
		return fmt.Errorf("no processor for kind %q: %w", kind, asynq.SkipRetry)
	}

	job, err := w.store.Get(ctx, envelope.JobID)
	if err != nil {
		if model.IsCode(err, model.CodeJobNotFound) {
			log.Printf("[Worker] job %s record missing, dropping task", envelope.JobID)
			return fmt.Errorf("job record missing: %w", asynq.SkipRetry)
		}
		return err
	}

	// Terminal states are immutable; a redelivered task for a finished job
	// is a no-op.
	if job.Status.IsTerminal() {
		return nil
	}

	retryCount, _ := asynq.GetRetryCount(ctx)
	job.RetryCount = retryCount
	job.Status = model.JobStatusRunning
	if job.StartedAt == nil {
		now := time.Now()
		job.StartedAt = &now
	}
	if err := w.store.Save(ctx, job); err != nil {
		return err
	}

	log.Printf("[Worker] starting %s job %s (attempt %d)", kind, job.ID, retryCount+1)

	// Seed the monotonic floor from the persisted percent so a retried job
	// never reports backwards.
	progress := jobs.MonotonicProgress(job.Progress, func(percent int, message string) {
		job.Progress = percent
		job.CurrentStep = message
		if err := w.store.Save(ctx, job); err != nil {
			log.Printf("[Worker] failed to persist progress for %s: %v", job.ID, err)
		}
		w.notifier.NotifyProgress(job.ID, percent, model.JobStatusRunning, message)
	})

	result, err := proc(ctx, envelope.Payload, progress)
	if err != nil {
		return w.handleFailure(ctx, job, err, retryCount)
	}

	resultBytes, err := json.Marshal(result)
	if err != nil {
		return w.handleFailure(ctx, job, fmt.Errorf("failed to marshal result: %w", err), retryCount)
	}

	now := time.Now()
	job.Status = model.JobStatusCompleted
	job.Progress = 100
	job.Result = resultBytes
	job.CompletedAt = &now
	if err := w.store.Save(ctx, job); err != nil {
		log.Printf("[Worker] failed to persist completion for %s: %v", job.ID, err)
	}

	w.notifier.NotifyComplete(job.ID, result)
	log.Printf("[Worker] %s job %s completed", kind, job.ID)
	return nil
}

// handleFailure either schedules a retry for transient errors or marks the
// job failed. Exactly one terminal event is emitted per job.
func (w *Worker) handleFailure(ctx context.Context, job *model.Job, procErr error, retryCount int) error {
	appErr := jobs.AsAppError(procErr)

	if isTransient(appErr) && retryCount < jobs.MaxRetry {
		job.Status = model.JobStatusQueued
		job.CurrentStep = "retrying"
		if err := w.store.Save(ctx, job); err != nil {
			log.Printf("[Worker] failed to persist retry state for %s: %v", job.ID, err)
		}
		log.Printf("[Worker] job %s failed transiently, retry %d/%d: %v", job.ID, retryCount+1, jobs.MaxRetry, procErr)
		return procErr
	}

	msg := appErr.Message
	now := time.Now()
	job.Status = model.JobStatusFailed
	job.Error = &msg
	job.ErrorCode = appErr.Code
	job.CompletedAt = &now
	if err := w.store.Save(ctx, job); err != nil {
		log.Printf("[Worker] failed to persist failure for %s: %v", job.ID, err)
	}

	w.notifier.NotifyError(job.ID, string(appErr.Code), appErr.Message)
	log.Printf("[Worker] job %s failed: %v", job.ID, procErr)

	if retryCount < jobs.MaxRetry {
		return fmt.Errorf("%v: %w", procErr, asynq.SkipRetry)
	}
	return procErr
}

// isTransient reports whether a failure is worth retrying. Request-shape and
// missing-media failures never heal on retry; encoder failures might.
func isTransient(err *model.AppError) bool {
	switch err.Code {
	case model.CodeValidation, model.CodeNotFound, model.CodeInvalidArgument:
		return false
	}
	return true
}
