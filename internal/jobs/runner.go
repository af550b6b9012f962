package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/loopforge/api/internal/model"
)

// Asynq task types, one per job kind.
const (
	TaskTypeAudioMix      = "mix:audio"
	TaskTypeVideoAssembly = "assemble:video"
)

// Retry policy for queued jobs: three attempts total, exponential backoff
// starting at two seconds.
const (
	MaxAttempts    = 3
	MaxRetry       = MaxAttempts - 1
	RetryBaseDelay = 2 * time.Second
	taskRetention  = 24 * time.Hour
)

// Mode is the runner's execution mode, chosen once at startup from broker
// reachability. A broker failure at submit time degrades the runner to
// inline for all subsequent submissions.
type Mode string

const (
	ModeQueued Mode = "queued"
	ModeInline Mode = "inline"
)

// Processor executes one job payload, reporting progress through the
// uniform callback.
type Processor func(ctx context.Context, payload []byte, progress ProgressFunc) (interface{}, error)

// Notifier fans progress and terminal events out to the pub/sub sink.
type Notifier interface {
	NotifyProgress(jobID string, percent int, status model.JobStatus, message string)
	NotifyComplete(jobID string, result interface{})
	NotifyError(jobID string, code, message string)
}

// TaskEnvelope is the asynq task payload wrapping a job id with its request.
type TaskEnvelope struct {
	JobID   string          `json:"jobId"`
	Payload json.RawMessage `json:"payload"`
}

// TaskTypeFor maps a job kind to its asynq task type.
func TaskTypeFor(kind model.JobKind) string {
	if kind == model.JobKindVideo {
		return TaskTypeVideoAssembly
	}
	return TaskTypeAudioMix
}

// RetryDelay implements exponential backoff starting at RetryBaseDelay.
func RetryDelay(n int, _ error, _ *asynq.Task) time.Duration {
	d := RetryBaseDelay
	for i := 1; i < n; i++ {
		d *= 2
	}
	return d
}

// JobStore persists job records. Satisfied by *Store; faked in tests.
type JobStore interface {
	Get(ctx context.Context, jobID string) (*model.Job, error)
	Save(ctx context.Context, job *model.Job) error
	Delete(ctx context.Context, jobID string) error
}

// Enqueuer is the slice of the asynq client the runner uses.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Runner submits jobs behind a uniform contract: persisted on the durable
// queue when the broker is reachable, executed inline otherwise. Callers
// branch on the outcome status, never on the mode.
type Runner struct {
	store    JobStore
	client   Enqueuer
	notifier Notifier

	mu         sync.RWMutex
	mode       Mode
	processors map[model.JobKind]Processor
}

// NewRunner builds a runner in the given mode. Queued mode requires a store
// and asynq client; inline mode tolerates both being nil.
func NewRunner(mode Mode, store JobStore, client Enqueuer, notifier Notifier) *Runner {
	return &Runner{
		store:      store,
		client:     client,
		notifier:   notifier,
		mode:       mode,
		processors: make(map[model.JobKind]Processor),
	}
}

// Register binds a processor to a job kind. Must be called for every kind
// before Submit.
func (r *Runner) Register(kind model.JobKind, p Processor) {
	r.processors[kind] = p
}

// Mode returns the current execution mode.
func (r *Runner) Mode() Mode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.mode
}

// degrade switches the whole runner to inline execution after a broker
// failure. Individual requests keep succeeding.
func (r *Runner) degrade(cause error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mode == ModeInline {
		return
	}
	r.mode = ModeInline
	log.Printf("[Runner] broker unreachable, degrading to inline execution: %v", cause)
}

// Submit runs payload under the given kind. In queued mode the job is
// persisted and picked up by a worker; in inline mode the processor runs
// within this call and the outcome carries the final result or error.
func (r *Runner) Submit(ctx context.Context, kind model.JobKind, payload []byte) (*model.SubmitOutcome, error) {
	if !model.IsValidJobKind(kind) {
		return nil, model.NewInvalidArgumentError("unknown job kind %q", kind)
	}
	proc, ok := r.processors[kind]
	if !ok {
		return nil, model.NewInvalidArgumentError("no processor registered for kind %q", kind)
	}

	if r.Mode() == ModeQueued {
		outcome, err := r.submitQueued(ctx, kind, payload)
		if err == nil {
			return outcome, nil
		}
		if !model.IsCode(err, model.CodePersistenceUnavailable) {
			return nil, err
		}
		r.degrade(err)
	}

	return r.runInline(ctx, kind, payload, proc), nil
}

func (r *Runner) submitQueued(ctx context.Context, kind model.JobKind, payload []byte) (*model.SubmitOutcome, error) {
	job := &model.Job{
		ID:        uuid.New().String(),
		Kind:      kind,
		Status:    model.JobStatusQueued,
		Payload:   payload,
		CreatedAt: time.Now(),
	}
	if err := r.store.Save(ctx, job); err != nil {
		return nil, err
	}

	envelope, err := json.Marshal(TaskEnvelope{JobID: job.ID, Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task envelope: %w", err)
	}

	task := asynq.NewTask(TaskTypeFor(kind), envelope)
	_, err = r.client.EnqueueContext(ctx, task,
		asynq.Queue(string(kind)),
		asynq.MaxRetry(MaxRetry),
		asynq.Retention(taskRetention),
	)
	if err != nil {
		// No task will ever pick this record up; remove it rather than
		// leave it reporting queued until the TTL expires.
		if delErr := r.store.Delete(ctx, job.ID); delErr != nil {
			log.Printf("[Runner] failed to remove orphaned job %s: %v", job.ID, delErr)
		}
		return nil, model.NewPersistenceError(err)
	}

	log.Printf("[Runner] queued %s job %s", kind, job.ID)
	return &model.SubmitOutcome{Status: model.JobStatusQueued, JobID: job.ID}, nil
}

// runInline invokes the processor immediately. No persistence, no retry;
// progress still fans out to the notifier. Processor panics surface as a
// failed outcome, never as an exception to the caller.
func (r *Runner) runInline(ctx context.Context, kind model.JobKind, payload []byte, proc Processor) (outcome *model.SubmitOutcome) {
	jobID := uuid.New().String()

	defer func() {
		if rec := recover(); rec != nil {
			appErr := &model.AppError{
				Code:    model.CodeEncoderFailure,
				Message: fmt.Sprintf("job processor panicked: %v", rec),
			}
			r.notifier.NotifyError(jobID, string(appErr.Code), appErr.Message)
			outcome = &model.SubmitOutcome{Status: model.JobStatusFailed, JobID: jobID, Error: appErr}
		}
	}()

	bridge := newProgressBridge(0, func(percent int, message string) {
		r.notifier.NotifyProgress(jobID, percent, model.JobStatusRunning, message)
	})

	log.Printf("[Runner] running %s job %s inline", kind, jobID)
	result, err := proc(ctx, payload, bridge.Progress)
	if err != nil {
		appErr := AsAppError(err)
		r.notifier.NotifyError(jobID, string(appErr.Code), appErr.Message)
		return &model.SubmitOutcome{Status: model.JobStatusFailed, JobID: jobID, Error: appErr}
	}

	r.notifier.NotifyComplete(jobID, result)
	return &model.SubmitOutcome{Status: model.JobStatusCompleted, JobID: jobID, Result: result}
}

// GetJobStatus returns a status snapshot in queued mode. Inline submissions
// return their final status synchronously, so there is nothing to look up.
func (r *Runner) GetJobStatus(ctx context.Context, kind model.JobKind, jobID string) (*model.JobStatusResponse, error) {
	if r.Mode() != ModeQueued {
		return nil, model.NewJobNotFoundError(jobID)
	}

	job, err := r.store.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if kind != "" && job.Kind != kind {
		return nil, model.NewJobNotFoundError(jobID)
	}

	return &model.JobStatusResponse{
		JobID:       job.ID,
		Kind:        job.Kind,
		Status:      job.Status,
		Progress:    job.Progress,
		CurrentStep: job.CurrentStep,
		Error:       job.Error,
	}, nil
}

// JobResult returns the stored result payload of a completed queued job.
func (r *Runner) JobResult(ctx context.Context, jobID string) (json.RawMessage, error) {
	if r.Mode() != ModeQueued {
		return nil, model.NewJobNotFoundError(jobID)
	}
	job, err := r.store.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != model.JobStatusCompleted {
		return nil, model.NewValidationError("job %s is %s, not completed", jobID, job.Status)
	}
	return job.Result, nil
}

// AsAppError normalizes any processor error into the structured taxonomy.
func AsAppError(err error) *model.AppError {
	var ae *model.AppError
	if errors.As(err, &ae) {
		return ae
	}
	return &model.AppError{Code: model.CodeEncoderFailure, Message: err.Error(), Err: err}
}

// DetectMode probes the broker and picks the startup execution mode.
func DetectMode(ctx context.Context, enabled bool, ping func(context.Context) error) Mode {
	if !enabled {
		return ModeInline
	}
	if err := ping(ctx); err != nil {
		log.Printf("[Runner] broker not reachable at startup, using inline execution: %v", err)
		return ModeInline
	}
	return ModeQueued
}
