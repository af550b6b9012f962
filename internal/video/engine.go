package video

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/loopforge/api/internal/catalog"
	"github.com/loopforge/api/internal/ffmpeg"
	"github.com/loopforge/api/internal/model"
)

// Share of reported progress spent materializing the reversed clip; it
// re-encodes the entire source once, the concat merge is a stream copy.
const reversePct = 25

// Encoder runs one external encode, reporting percent progress.
type Encoder interface {
	Run(ctx context.Context, args []string, totalDuration float64, onProgress ffmpeg.ProgressFunc) error
}

// Prober extracts source metadata.
type Prober interface {
	Probe(ctx context.Context, path string) (*ffmpeg.Metadata, error)
}

// VideoResolver resolves video references to catalog entries with absolute
// source paths.
type VideoResolver interface {
	ResolveVideo(videoID string) (*catalog.SourceVideo, error)
}

// ProgressSink receives percent/message updates during assembly.
type ProgressSink interface {
	Progress(percent int, message string)
}

type noopSink struct{}

func (noopSink) Progress(int, string) {}

// AssemblyEngine merges a looping source clip with a generated audio track
// into a single seamless artifact.
type AssemblyEngine struct {
	catalog   VideoResolver
	encoder   Encoder
	prober    Prober
	outputDir string
	tempDir   string
}

func NewAssemblyEngine(cat VideoResolver, encoder Encoder, prober Prober, outputDir, tempDir string) *AssemblyEngine {
	return &AssemblyEngine{
		catalog:   cat,
		encoder:   encoder,
		prober:    prober,
		outputDir: outputDir,
		tempDir:   tempDir,
	}
}

// AssembleVideo plans the loop, materializes the reversed clip when needed,
// concatenates segments losslessly and lays the audio track underneath,
// trimming the output to exactly the audio duration. Intermediate artifacts
// are removed on success and on every failure path.
func (e *AssemblyEngine) AssembleVideo(ctx context.Context, req *model.AssemblyRequest, sink ProgressSink) (*model.AssemblyResult, error) {
	if sink == nil {
		sink = noopSink{}
	}
	start := time.Now()

	source, err := e.catalog.ResolveVideo(req.VideoID)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(req.AudioPath); err != nil {
		return nil, model.NewNotFoundError("audio track missing: %s", req.AudioPath)
	}
	if req.AudioDuration < 1 {
		return nil, model.NewValidationError("audio duration must be at least 1 second, got %g", req.AudioDuration)
	}

	sink.Progress(0, "Probing source video...")
	meta, err := e.prober.Probe(ctx, source.File)
	if err != nil {
		return nil, model.NewEncoderError("failed to probe source video", err)
	}

	plan, err := PlanLoops(meta.Duration, req.AudioDuration, req.LoopType)
	if err != nil {
		return nil, err
	}

	stamp := time.Now().Format("20060102_150405")
	var intermediates []string
	defer func() {
		for _, p := range intermediates {
			os.Remove(p)
		}
	}()

	// Materialize the reversed clip exactly once; every reverse segment in
	// the plan points at this file.
	mergeBase := 0
	reversedPath := ""
	if plan.NeedsReverse() {
		reversedPath = filepath.Join(e.tempDir, fmt.Sprintf("reversed_%s.mp4", stamp))
		intermediates = append(intermediates, reversedPath)
		mergeBase = reversePct

		sink.Progress(1, "Reversing source clip...")
		log.Printf("[Assembly] reversing %s", source.File)
		revArgs := []string{
			"-i", source.File,
			"-vf", "reverse",
			"-an",
			"-y",
			reversedPath,
		}
		err := e.encoder.Run(ctx, revArgs, meta.Duration, func(pct int) {
			scaled := pct * reversePct / 100
			// The phase opened at 1; never report behind it.
			if scaled < 1 {
				scaled = 1
			}
			sink.Progress(scaled, "Reversing source clip...")
		})
		if err != nil {
			return nil, model.NewEncoderError("reverse encode failed", err)
		}
	}

	listPath := filepath.Join(e.tempDir, fmt.Sprintf("segments_%s.txt", stamp))
	intermediates = append(intermediates, listPath)
	if err := writeSegmentList(listPath, plan, source.File, reversedPath); err != nil {
		return nil, err
	}

	fileName := req.OutputName
	if fileName == "" {
		fileName = fmt.Sprintf("ambient_video_%s.mp4", stamp)
	}
	fileName = filepath.Base(fileName)
	outPath := filepath.Join(e.outputDir, fileName)

	sink.Progress(mergeBase, "Merging segments with audio...")
	log.Printf("[Assembly] concatenating %d segments (%s) for %.0fs", len(plan.Segments), req.LoopType, req.AudioDuration)

	mergeArgs := []string{
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-i", req.AudioPath,
		"-map", "0:v",
		"-map", "1:a",
		"-c:v", "copy", // lossless segment join, codec parameters are identical
		"-c:a", "aac",
		"-b:a", "192k",
		"-t", fmt.Sprintf("%.3f", req.AudioDuration),
		"-movflags", "+faststart",
		"-y",
		outPath,
	}
	err = e.encoder.Run(ctx, mergeArgs, req.AudioDuration, func(pct int) {
		sink.Progress(mergeBase+pct*(100-mergeBase)/100, "Merging segments with audio...")
	})
	if err != nil {
		os.Remove(outPath)
		return nil, model.NewEncoderError("concat merge failed", err)
	}

	var size int64
	if fi, err := os.Stat(outPath); err == nil {
		size = fi.Size()
	}

	sink.Progress(100, "completed")

	return &model.AssemblyResult{
		Path:           outPath,
		FileName:       fileName,
		Duration:       req.AudioDuration,
		LoopType:       req.LoopType,
		ElapsedSeconds: time.Since(start).Seconds(),
		FileSizeBytes:  size,
		Source: model.SourceMetadata{
			Duration: meta.Duration,
			Width:    meta.Width,
			Height:   meta.Height,
			Codec:    meta.Codec,
		},
	}, nil
}

// writeSegmentList writes the concat demuxer play list, resolving each
// planned segment to the forward or reversed file.
func writeSegmentList(path string, plan *LoopPlan, forwardPath, reversedPath string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create segment list: %w", err)
	}
	defer f.Close()

	for _, seg := range plan.Segments {
		p := forwardPath
		if seg == SegmentReverse {
			p = reversedPath
		}
		if _, err := fmt.Fprintf(f, "file '%s'\n", p); err != nil {
			return fmt.Errorf("failed to write segment list: %w", err)
		}
	}
	return nil
}
