package worker

import (
	"context"
	"encoding/json"
	"log"

	"github.com/loopforge/api/internal/audio"
	"github.com/loopforge/api/internal/jobs"
	"github.com/loopforge/api/internal/model"
	"github.com/loopforge/api/internal/storage"
	"github.com/loopforge/api/internal/video"
)

// AudioProcessor adapts the mix engine to the runner's processor contract.
// Finished artifacts are pushed to object storage when an uploader is
// configured; an upload failure does not fail the job.
func AudioProcessor(engine *audio.MixEngine, uploader storage.Uploader) jobs.Processor {
	return func(ctx context.Context, payload []byte, progress jobs.ProgressFunc) (interface{}, error) {
		var req model.MixRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return nil, model.NewValidationError("invalid mix payload: %v", err)
		}

		result, err := engine.GenerateAudio(ctx, &req, jobs.SinkFunc(progress))
		if err != nil {
			return nil, err
		}

		if uploader != nil {
			url, err := uploader.UploadFile(ctx, "mixes/"+result.FileName, result.Path)
			if err != nil {
				log.Printf("[Worker] upload of %s failed: %v", result.FileName, err)
			} else {
				result.UploadURL = url
			}
		}

		return result, nil
	}
}

// VideoProcessor adapts the assembly engine to the runner's processor
// contract.
func VideoProcessor(engine *video.AssemblyEngine, uploader storage.Uploader) jobs.Processor {
	return func(ctx context.Context, payload []byte, progress jobs.ProgressFunc) (interface{}, error) {
		var req model.AssemblyRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return nil, model.NewValidationError("invalid assembly payload: %v", err)
		}

		result, err := engine.AssembleVideo(ctx, &req, jobs.SinkFunc(progress))
		if err != nil {
			return nil, err
		}

		if uploader != nil {
			url, err := uploader.UploadFile(ctx, "videos/"+result.FileName, result.Path)
			if err != nil {
				log.Printf("[Worker] upload of %s failed: %v", result.FileName, err)
			} else {
				result.UploadURL = url
			}
		}

		return result, nil
	}
}
