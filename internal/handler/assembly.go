package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/loopforge/api/internal/model"
	"github.com/loopforge/api/internal/service"
	"github.com/loopforge/api/pkg/response"
)

type AssemblyHandler struct {
	service   *service.MediaService
	validator *validator.Validate
}

func NewAssemblyHandler(svc *service.MediaService, v *validator.Validate) *AssemblyHandler {
	return &AssemblyHandler{
		service:   svc,
		validator: v,
	}
}

// Assemble handles POST /api/video/assemble.
func (h *AssemblyHandler) Assemble(c *fiber.Ctx) error {
	var req model.AssemblyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	outcome, err := h.service.SubmitAssembly(c.Context(), &req)
	if err != nil {
		return respondError(c, err)
	}

	return respondOutcome(c, outcome)
}
