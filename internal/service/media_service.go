package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/loopforge/api/internal/catalog"
	"github.com/loopforge/api/internal/jobs"
	"github.com/loopforge/api/internal/model"
)

// MediaService is the thin facade between the HTTP handlers and the job
// runner. It owns payload marshalling and nothing else; all real work
// happens in the engines behind the runner.
type MediaService struct {
	runner  *jobs.Runner
	catalog *catalog.Catalog
}

func NewMediaService(runner *jobs.Runner, cat *catalog.Catalog) *MediaService {
	return &MediaService{runner: runner, catalog: cat}
}

// SubmitMix submits an audio mix job.
func (s *MediaService) SubmitMix(ctx context.Context, req *model.MixRequest) (*model.SubmitOutcome, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal mix request: %w", err)
	}
	return s.runner.Submit(ctx, model.JobKindAudio, payload)
}

// SubmitAssembly submits a video assembly job.
func (s *MediaService) SubmitAssembly(ctx context.Context, req *model.AssemblyRequest) (*model.SubmitOutcome, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal assembly request: %w", err)
	}
	return s.runner.Submit(ctx, model.JobKindVideo, payload)
}

// JobStatus returns a job status snapshot.
func (s *MediaService) JobStatus(ctx context.Context, kind model.JobKind, jobID string) (*model.JobStatusResponse, error) {
	return s.runner.GetJobStatus(ctx, kind, jobID)
}

// JobResult returns the stored result of a completed job.
func (s *MediaService) JobResult(ctx context.Context, jobID string) (json.RawMessage, error) {
	return s.runner.JobResult(ctx, jobID)
}

// RunnerMode exposes the execution mode for health reporting.
func (s *MediaService) RunnerMode() jobs.Mode {
	return s.runner.Mode()
}

// Stems lists the stem catalog.
func (s *MediaService) Stems() ([]model.Stem, error) {
	return s.catalog.Stems()
}

// Videos lists the source-video catalog.
func (s *MediaService) Videos() ([]catalog.SourceVideo, error) {
	return s.catalog.Videos()
}
