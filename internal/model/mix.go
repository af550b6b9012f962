package model

// Mix duration bounds in seconds.
const (
	MinMixDuration = 60
	MaxMixDuration = 36000

	MinMixStems = 1
	MaxMixStems = 10
)

// Stem is a catalog entry for a single looping source clip. Catalog data is
// read-only during generation.
type Stem struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	File       string       `json:"file"`
	Category   StemCategory `json:"category"`
	BaseVolume float64      `json:"baseVolume"`
}

// StemInput references a catalog stem with an optional volume override.
type StemInput struct {
	StemID string   `json:"stemId" validate:"required"`
	Volume *float64 `json:"volume,omitempty" validate:"omitempty,gte=0,lte=1"`
}

// MixRequest describes one ambient mix to generate.
type MixRequest struct {
	Stems []StemInput `json:"stems" validate:"required,min=1,max=10,dive"`
	// Target length in seconds. Output is capped here; every stem loops at
	// the source, so no individual stem's natural length matters.
	Duration int `json:"duration" validate:"required,gte=60,lte=36000"`
	// How far each stem's volume wanders from its base level.
	Volatility float64 `json:"volatility" validate:"gte=0,lte=1"`
	// Accepted for forward compatibility; the mixing math does not read it yet.
	Density float64 `json:"density" validate:"gte=0,lte=1"`
	// How far stems drift across the stereo field.
	SpatialDrift float64 `json:"spatialDrift" validate:"gte=0,lte=1"`
	OutputName   string  `json:"outputName,omitempty"`
}

// MixResult is the payload of a completed audio mix job.
type MixResult struct {
	Path           string  `json:"path"`
	FileName       string  `json:"fileName"`
	Duration       int     `json:"duration"`
	StemCount      int     `json:"stemCount"`
	ElapsedSeconds float64 `json:"elapsedSeconds"`
	FileSizeBytes  int64   `json:"fileSizeBytes"`
	UploadURL      string  `json:"uploadUrl,omitempty"`
}
