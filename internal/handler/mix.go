package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/loopforge/api/internal/model"
	"github.com/loopforge/api/internal/service"
	"github.com/loopforge/api/pkg/response"
)

type MixHandler struct {
	service   *service.MediaService
	validator *validator.Validate
}

func NewMixHandler(svc *service.MediaService, v *validator.Validate) *MixHandler {
	return &MixHandler{
		service:   svc,
		validator: v,
	}
}

// Generate handles POST /api/mix/generate. A queued submission answers 202
// with the job id; an inline one answers with the final outcome.
func (h *MixHandler) Generate(c *fiber.Ctx) error {
	var req model.MixRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	outcome, err := h.service.SubmitMix(c.Context(), &req)
	if err != nil {
		return respondError(c, err)
	}

	return respondOutcome(c, outcome)
}

// respondOutcome maps a submit outcome onto HTTP. Callers of the API branch
// on the status field exactly like in-process callers do.
func respondOutcome(c *fiber.Ctx, outcome *model.SubmitOutcome) error {
	switch outcome.Status {
	case model.JobStatusQueued:
		return response.Accepted(c, outcome)
	case model.JobStatusFailed:
		return response.AppError(c, outcome.Error)
	default:
		return response.OK(c, outcome)
	}
}

func respondError(c *fiber.Ctx, err error) error {
	var ae *model.AppError
	if errors.As(err, &ae) {
		return response.AppError(c, ae)
	}
	return response.ServiceError(c, err.Error())
}

func formatValidationErrors(err error) interface{} {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		errors := make(map[string]string)
		for _, e := range validationErrors {
			errors[e.Field()] = e.Tag()
		}
		return errors
	}
	return nil
}
