package model

import "time"

// WebSocket message types
const (
	WSMessageTypeProgress = "progress"
	WSMessageTypeComplete = "complete"
	WSMessageTypeError    = "error"
	WSMessageTypePing     = "ping"
	WSMessageTypePong     = "pong"
)

// WSMessage represents a generic WebSocket message
type WSMessage struct {
	Type string `json:"type"`
}

// WSProgressMessage carries one progress event for a job.
type WSProgressMessage struct {
	Type      string    `json:"type"`
	JobID     string    `json:"jobId"`
	Percent   int       `json:"percent"`
	Message   string    `json:"message,omitempty"`
	Status    JobStatus `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// WSCompleteMessage announces job completion with its result payload.
type WSCompleteMessage struct {
	Type      string      `json:"type"`
	JobID     string      `json:"jobId"`
	Result    interface{} `json:"result"`
	Timestamp time.Time   `json:"timestamp"`
}

// WSErrorMessage announces job failure.
type WSErrorMessage struct {
	Type      string    `json:"type"`
	JobID     string    `json:"jobId"`
	Error     WSError   `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// WSError represents error details
type WSError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
