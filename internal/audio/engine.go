package audio

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/loopforge/api/internal/ffmpeg"
	"github.com/loopforge/api/internal/model"
)

// progressStep is the minimum percentage gap between emitted progress events.
const progressStep = 5

// Encoder runs one external encode, reporting percent progress parsed from
// the encoder's own stream.
type Encoder interface {
	Run(ctx context.Context, args []string, totalDuration float64, onProgress ffmpeg.ProgressFunc) error
}

// StemResolver resolves stem references to catalog entries with absolute
// source paths.
type StemResolver interface {
	ResolveStem(stemID string) (*model.Stem, error)
}

// ProgressSink receives percent/message updates during a long-running
// generation.
type ProgressSink interface {
	Progress(percent int, message string)
}

type noopSink struct{}

func (noopSink) Progress(int, string) {}

// MixEngine assembles long ambient audio tracks from short looping stems.
type MixEngine struct {
	catalog   StemResolver
	encoder   Encoder
	outputDir string
	newCurves func() *CurveGenerator
}

func NewMixEngine(catalog StemResolver, encoder Encoder, outputDir string) *MixEngine {
	return &MixEngine{
		catalog:   catalog,
		encoder:   encoder,
		outputDir: outputDir,
		// fresh generator per stem so stems drift independently
		newCurves: func() *CurveGenerator { return NewCurveGenerator(nil) },
	}
}

// SetCurveFactory overrides per-stem curve generation. Used by tests to make
// curves deterministic.
func (e *MixEngine) SetCurveFactory(f func() *CurveGenerator) {
	e.newCurves = f
}

// GenerateAudio validates the request, compiles one filter chain per stem and
// drives the encoder to mix and normalize them into a single capped track.
func (e *MixEngine) GenerateAudio(ctx context.Context, req *model.MixRequest, sink ProgressSink) (*model.MixResult, error) {
	if sink == nil {
		sink = noopSink{}
	}
	start := time.Now()

	if err := validateMixRequest(req); err != nil {
		return nil, err
	}

	sink.Progress(0, "Resolving stems...")
	stems := make([]*model.Stem, 0, len(req.Stems))
	for _, in := range req.Stems {
		stem, err := e.catalog.ResolveStem(in.StemID)
		if err != nil {
			return nil, err
		}
		if in.Volume != nil {
			stem.BaseVolume = *in.Volume
		}
		stems = append(stems, stem)
	}

	duration := float64(req.Duration)
	chains := make([]FilterChain, len(stems))
	args := make([]string, 0, len(stems)*4+12)
	for i, stem := range stems {
		gen := e.newCurves()
		volume := gen.VolumeCurve(duration, stem.BaseVolume, req.Volatility)
		pan := gen.PanCurve(duration, req.SpatialDrift)
		chains[i] = StemChain(i, volume, pan)

		// Loop every input at the source so the encoder tiles stems
		// shorter than the target; output length is governed by -t alone.
		args = append(args, "-stream_loop", "-1", "-i", stem.File)
	}

	fileName := req.OutputName
	if fileName == "" {
		fileName = fmt.Sprintf("ambient_mix_%s.m4a", time.Now().Format("20060102_150405"))
	}
	fileName = filepath.Base(fileName)
	outPath := filepath.Join(e.outputDir, fileName)

	args = append(args,
		"-filter_complex", MixGraph(chains),
		"-map", "[aout]",
		"-t", strconv.Itoa(req.Duration),
		"-c:a", "aac",
		"-b:a", "192k",
		"-y",
		outPath,
	)

	log.Printf("[Mix] encoding %d stems for %ds -> %s", len(stems), req.Duration, fileName)
	sink.Progress(0, "Mixing stems...")

	lastSent := 0
	err := e.encoder.Run(ctx, args, duration, func(pct int) {
		if pct >= lastSent+progressStep && pct < 100 {
			lastSent = pct
			sink.Progress(pct, "Mixing stems...")
		}
	})
	if err != nil {
		os.Remove(outPath)
		return nil, model.NewEncoderError("audio mix encode failed", err)
	}

	var size int64
	if fi, err := os.Stat(outPath); err == nil {
		size = fi.Size()
	}

	sink.Progress(100, "completed")

	return &model.MixResult{
		Path:           outPath,
		FileName:       fileName,
		Duration:       req.Duration,
		StemCount:      len(stems),
		ElapsedSeconds: time.Since(start).Seconds(),
		FileSizeBytes:  size,
	}, nil
}

func validateMixRequest(req *model.MixRequest) error {
	if len(req.Stems) < model.MinMixStems || len(req.Stems) > model.MaxMixStems {
		return model.NewValidationError(
			"stem count must be between %d and %d, got %d",
			model.MinMixStems, model.MaxMixStems, len(req.Stems),
		)
	}
	if req.Duration < model.MinMixDuration || req.Duration > model.MaxMixDuration {
		return model.NewValidationError(
			"duration must be between %d and %d seconds, got %d",
			model.MinMixDuration, model.MaxMixDuration, req.Duration,
		)
	}
	for name, v := range map[string]float64{
		"volatility":   req.Volatility,
		"density":      req.Density,
		"spatialDrift": req.SpatialDrift,
	} {
		if v < 0 || v > 1 {
			return model.NewValidationError("%s must be between 0 and 1, got %g", name, v)
		}
	}
	return nil
}
