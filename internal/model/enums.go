package model

// Job kinds
type JobKind string

const (
	JobKindAudio JobKind = "audio"
	JobKindVideo JobKind = "video"
)

var ValidJobKinds = []JobKind{JobKindAudio, JobKindVideo}

// IsValidJobKind reports whether k names a known job kind.
func IsValidJobKind(k JobKind) bool {
	for _, v := range ValidJobKinds {
		if k == v {
			return true
		}
	}
	return false
}

// Job status
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// IsTerminal reports whether the status is final. Terminal jobs are immutable.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Loop types for video assembly
type LoopType string

const (
	// LoopTypePingPong alternates forward and reversed playback so the loop
	// boundary has no visible jump cut.
	LoopTypePingPong LoopType = "ping-pong"
	// LoopTypeStandard repeats the clip forward only.
	LoopTypeStandard LoopType = "standard"
)

// Stem categories
type StemCategory string

const (
	CategoryRain     StemCategory = "rain"
	CategoryWind     StemCategory = "wind"
	CategoryFire     StemCategory = "fire"
	CategoryWater    StemCategory = "water"
	CategoryForest   StemCategory = "forest"
	CategoryThunder  StemCategory = "thunder"
	CategoryAmbience StemCategory = "ambience"
	CategoryDrone    StemCategory = "drone"
)
