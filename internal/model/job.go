package model

import "time"

// Job represents a background job. Created on submit, mutated only by the
// runner, immutable once it reaches a terminal status.
type Job struct {
	ID          string     `json:"id"`
	Kind        JobKind    `json:"kind"`
	Status      JobStatus  `json:"status"`
	Progress    int        `json:"progress"`
	CurrentStep string     `json:"currentStep,omitempty"`
	Error       *string    `json:"error,omitempty"`
	ErrorCode   ErrorCode  `json:"errorCode,omitempty"`
	Payload     []byte     `json:"-"` // Stored as JSON
	Result      []byte     `json:"-"` // Stored as JSON
	CreatedAt   time.Time  `json:"createdAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	RetryCount  int        `json:"retryCount"`
}

// SubmitOutcome reports how a submission ran. Callers must branch on Status:
// queued submissions carry JobID only, inline ones carry Result or Error.
type SubmitOutcome struct {
	Status JobStatus   `json:"status"`
	JobID  string      `json:"jobId,omitempty"`
	Result interface{} `json:"result,omitempty"`
	Error  *AppError   `json:"error,omitempty"`
}

// JobStatusResponse is the snapshot returned by status queries.
type JobStatusResponse struct {
	JobID       string    `json:"jobId"`
	Kind        JobKind   `json:"kind"`
	Status      JobStatus `json:"status"`
	Progress    int       `json:"progress"`
	CurrentStep string    `json:"currentStep,omitempty"`
	Error       *string   `json:"error,omitempty"`
}
