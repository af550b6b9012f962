package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/loopforge/api/internal/model"
	"github.com/loopforge/api/internal/service"
	"github.com/loopforge/api/pkg/response"
)

type JobHandler struct {
	service *service.MediaService
}

func NewJobHandler(svc *service.MediaService) *JobHandler {
	return &JobHandler{service: svc}
}

// Status handles GET /api/jobs/:kind/:jobId.
func (h *JobHandler) Status(c *fiber.Ctx) error {
	kind := model.JobKind(c.Params("kind"))
	if !model.IsValidJobKind(kind) {
		return response.ValidationError(c, "Unknown job kind", nil)
	}

	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	status, err := h.service.JobStatus(c.Context(), kind, jobID)
	if err != nil {
		return respondError(c, err)
	}

	return response.OK(c, status)
}

// Result handles GET /api/jobs/:jobId/result. It only answers for completed
// jobs; anything else maps to not found.
func (h *JobHandler) Result(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	result, err := h.service.JobResult(c.Context(), jobID)
	if err != nil {
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(result)
}
