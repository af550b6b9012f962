package video

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/loopforge/api/internal/catalog"
	"github.com/loopforge/api/internal/ffmpeg"
	"github.com/loopforge/api/internal/model"
)

type stubVideoResolver map[string]string

func (r stubVideoResolver) ResolveVideo(videoID string) (*catalog.SourceVideo, error) {
	path, ok := r[videoID]
	if !ok {
		return nil, model.NewNotFoundError("video %s not in catalog", videoID)
	}
	return &catalog.SourceVideo{ID: videoID, Name: videoID, File: path}, nil
}

type stubProber struct {
	meta ffmpeg.Metadata
}

func (p stubProber) Probe(context.Context, string) (*ffmpeg.Metadata, error) {
	m := p.meta
	return &m, nil
}

// captureEncoder records each invocation and snapshots the segment list at
// merge time, before the engine's cleanup removes it.
type captureEncoder struct {
	failMerge bool
	ticks     []int
	calls     [][]string
	segments  string
}

func (e *captureEncoder) Run(_ context.Context, args []string, _ float64, onProgress ffmpeg.ProgressFunc) error {
	e.calls = append(e.calls, args)
	isMerge := args[0] == "-f" && args[1] == "concat"
	if isMerge {
		data, err := os.ReadFile(args[5])
		if err != nil {
			return err
		}
		e.segments = string(data)
		if e.failMerge {
			return errors.New("concat demuxer error")
		}
	}
	if onProgress != nil {
		ticks := e.ticks
		if ticks == nil {
			ticks = []int{20, 80, 99}
		}
		for _, pct := range ticks {
			onProgress(pct)
		}
	}
	return os.WriteFile(args[len(args)-1], []byte("encoded"), 0o644)
}

type sinkRecorder struct {
	events []int
}

func (s *sinkRecorder) Progress(percent int, _ string) {
	s.events = append(s.events, percent)
}

func newTestAssembly(t *testing.T, enc *captureEncoder, sourceDuration float64) (*AssemblyEngine, string, string, string) {
	t.Helper()
	root := t.TempDir()
	outputDir := filepath.Join(root, "output")
	tempDir := filepath.Join(root, "tmp")
	for _, dir := range []string{outputDir, tempDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("failed to create %s: %v", dir, err)
		}
	}

	sourcePath := filepath.Join(root, "embers.mp4")
	audioPath := filepath.Join(root, "mix.m4a")
	for _, p := range []string{sourcePath, audioPath} {
		if err := os.WriteFile(p, []byte("fixture"), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", p, err)
		}
	}

	resolver := stubVideoResolver{"embers": sourcePath}
	prober := stubProber{meta: ffmpeg.Metadata{Duration: sourceDuration, Width: 1920, Height: 1080, Codec: "h264"}}
	engine := NewAssemblyEngine(resolver, enc, prober, outputDir, tempDir)
	return engine, sourcePath, audioPath, tempDir
}

func TestAssembleVideoPingPong(t *testing.T) {
	enc := &captureEncoder{}
	engine, sourcePath, audioPath, tempDir := newTestAssembly(t, enc, 10)

	req := &model.AssemblyRequest{
		VideoID:       "embers",
		AudioPath:     audioPath,
		AudioDuration: 95,
		LoopType:      model.LoopTypePingPong,
		OutputName:    "fireplace.mp4",
	}
	result, err := engine.AssembleVideo(context.Background(), req, nil)
	if err != nil {
		t.Fatalf("AssembleVideo failed: %v", err)
	}

	if len(enc.calls) != 2 {
		t.Fatalf("expected reverse + merge invocations, got %d", len(enc.calls))
	}
	reverse := strings.Join(enc.calls[0], " ")
	if !strings.Contains(reverse, "-vf reverse") || !strings.Contains(reverse, "-an") {
		t.Errorf("unexpected reverse args: %s", reverse)
	}
	merge := strings.Join(enc.calls[1], " ")
	if !strings.Contains(merge, "-c:v copy") {
		t.Errorf("merge must join segments losslessly: %s", merge)
	}
	if !strings.Contains(merge, "-t 95.000") {
		t.Errorf("merge must trim to the audio duration: %s", merge)
	}
	if !strings.Contains(merge, "-movflags +faststart") {
		t.Errorf("missing faststart flag: %s", merge)
	}

	lines := strings.Split(strings.TrimSpace(enc.segments), "\n")
	if len(lines) != 10 {
		t.Fatalf("expected 10 segment lines, got %d", len(lines))
	}
	for i, line := range lines {
		wantForward := i%2 == 0
		isForward := line == "file '"+sourcePath+"'"
		if wantForward != isForward {
			t.Errorf("segment %d: unexpected entry %s", i, line)
		}
		if !wantForward && !strings.Contains(line, "reversed_") {
			t.Errorf("segment %d: expected reversed clip, got %s", i, line)
		}
	}

	if result.LoopType != model.LoopTypePingPong {
		t.Errorf("unexpected loop type %s", result.LoopType)
	}
	if result.Source.Duration != 10 {
		t.Errorf("expected probed source duration 10, got %g", result.Source.Duration)
	}

	// Intermediates are gone, the artifact stays.
	leftovers, err := os.ReadDir(tempDir)
	if err != nil {
		t.Fatalf("failed to read temp dir: %v", err)
	}
	if len(leftovers) != 0 {
		t.Errorf("expected temp dir cleaned, found %d entries", len(leftovers))
	}
	if _, err := os.Stat(result.Path); err != nil {
		t.Errorf("expected output artifact at %s: %v", result.Path, err)
	}
}

func TestAssembleVideoStandard(t *testing.T) {
	enc := &captureEncoder{}
	engine, sourcePath, audioPath, _ := newTestAssembly(t, enc, 10)

	req := &model.AssemblyRequest{
		VideoID:       "embers",
		AudioPath:     audioPath,
		AudioDuration: 95,
		LoopType:      model.LoopTypeStandard,
	}
	if _, err := engine.AssembleVideo(context.Background(), req, nil); err != nil {
		t.Fatalf("AssembleVideo failed: %v", err)
	}

	if len(enc.calls) != 1 {
		t.Fatalf("standard loop must not materialize a reversed clip, got %d invocations", len(enc.calls))
	}
	lines := strings.Split(strings.TrimSpace(enc.segments), "\n")
	if len(lines) != 10 {
		t.Fatalf("expected 10 segment lines, got %d", len(lines))
	}
	for i, line := range lines {
		if line != "file '"+sourcePath+"'" {
			t.Errorf("segment %d: unexpected entry %s", i, line)
		}
	}
}

func TestAssembleVideoProgress(t *testing.T) {
	// Early reverse-phase ticks scale to 0; they must still be reported
	// at or after the phase's opening 1%.
	enc := &captureEncoder{ticks: []int{2, 3, 50, 99}}
	engine, _, audioPath, _ := newTestAssembly(t, enc, 10)
	sink := &sinkRecorder{}

	req := &model.AssemblyRequest{
		VideoID:       "embers",
		AudioPath:     audioPath,
		AudioDuration: 95,
		LoopType:      model.LoopTypePingPong,
	}
	if _, err := engine.AssembleVideo(context.Background(), req, sink); err != nil {
		t.Fatalf("AssembleVideo failed: %v", err)
	}

	last := 0
	for i, pct := range sink.events {
		if pct < last {
			t.Errorf("event %d: percent %d went backwards from %d", i, pct, last)
		}
		last = pct
	}
	if last != 100 {
		t.Errorf("expected terminal progress 100, got %d", last)
	}
}

func TestAssembleVideoUnknownVideo(t *testing.T) {
	enc := &captureEncoder{}
	engine, _, audioPath, _ := newTestAssembly(t, enc, 10)

	req := &model.AssemblyRequest{
		VideoID:       "nope",
		AudioPath:     audioPath,
		AudioDuration: 95,
		LoopType:      model.LoopTypeStandard,
	}
	_, err := engine.AssembleVideo(context.Background(), req, nil)
	if !model.IsCode(err, model.CodeNotFound) {
		t.Errorf("expected not-found error, got %v", err)
	}
	if len(enc.calls) != 0 {
		t.Errorf("encoder must not run for an unknown video")
	}
}

func TestAssembleVideoMissingAudio(t *testing.T) {
	enc := &captureEncoder{}
	engine, _, _, tempDir := newTestAssembly(t, enc, 10)

	req := &model.AssemblyRequest{
		VideoID:       "embers",
		AudioPath:     filepath.Join(tempDir, "absent.m4a"),
		AudioDuration: 95,
		LoopType:      model.LoopTypeStandard,
	}
	_, err := engine.AssembleVideo(context.Background(), req, nil)
	if !model.IsCode(err, model.CodeNotFound) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestAssembleVideoUnknownLoopType(t *testing.T) {
	enc := &captureEncoder{}
	engine, _, audioPath, _ := newTestAssembly(t, enc, 10)

	req := &model.AssemblyRequest{
		VideoID:       "embers",
		AudioPath:     audioPath,
		AudioDuration: 95,
		LoopType:      model.LoopType("bounce"),
	}
	_, err := engine.AssembleVideo(context.Background(), req, nil)
	if !model.IsCode(err, model.CodeInvalidArgument) {
		t.Errorf("expected invalid-argument error, got %v", err)
	}
	if len(enc.calls) != 0 {
		t.Errorf("encoder must not run for an unknown loop type")
	}
}

func TestAssembleVideoCleanupOnFailure(t *testing.T) {
	enc := &captureEncoder{failMerge: true}
	engine, _, audioPath, tempDir := newTestAssembly(t, enc, 10)

	req := &model.AssemblyRequest{
		VideoID:       "embers",
		AudioPath:     audioPath,
		AudioDuration: 95,
		LoopType:      model.LoopTypePingPong,
		OutputName:    "broken.mp4",
	}
	_, err := engine.AssembleVideo(context.Background(), req, nil)
	if !model.IsCode(err, model.CodeEncoderFailure) {
		t.Fatalf("expected encoder failure, got %v", err)
	}

	leftovers, readErr := os.ReadDir(tempDir)
	if readErr != nil {
		t.Fatalf("failed to read temp dir: %v", readErr)
	}
	if len(leftovers) != 0 {
		t.Errorf("expected intermediates removed on failure, found %d entries", len(leftovers))
	}
}
