package model

// AssemblyRequest describes one looping-video merge against a generated
// audio track.
type AssemblyRequest struct {
	VideoID string `json:"videoId" validate:"required"`
	// Absolute path of the audio track to lay under the looped video.
	AudioPath string `json:"audioPath" validate:"required"`
	// Length of the audio track in seconds; also the target output length.
	AudioDuration float64  `json:"audioDuration" validate:"required,gte=1"`
	LoopType      LoopType `json:"loopType" validate:"required"`
	OutputName    string   `json:"outputName,omitempty"`
}

// SourceMetadata describes the probed source video.
type SourceMetadata struct {
	Duration float64 `json:"duration"`
	Width    int     `json:"width,omitempty"`
	Height   int     `json:"height,omitempty"`
	Codec    string  `json:"codec,omitempty"`
}

// AssemblyResult is the payload of a completed video assembly job.
type AssemblyResult struct {
	Path           string         `json:"path"`
	FileName       string         `json:"fileName"`
	Duration       float64        `json:"duration"`
	LoopType       LoopType       `json:"loopType"`
	ElapsedSeconds float64        `json:"elapsedSeconds"`
	FileSizeBytes  int64          `json:"fileSizeBytes"`
	Source         SourceMetadata `json:"sourceMetadata"`
	UploadURL      string         `json:"uploadUrl,omitempty"`
}
