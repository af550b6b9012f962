package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/loopforge/api/internal/service"
	"github.com/loopforge/api/pkg/response"
)

type CatalogHandler struct {
	service *service.MediaService
}

func NewCatalogHandler(svc *service.MediaService) *CatalogHandler {
	return &CatalogHandler{service: svc}
}

// Stems handles GET /api/stems.
func (h *CatalogHandler) Stems(c *fiber.Ctx) error {
	stems, err := h.service.Stems()
	if err != nil {
		return respondError(c, err)
	}
	return response.OK(c, fiber.Map{"stems": stems, "count": len(stems)})
}

// Videos handles GET /api/videos.
func (h *CatalogHandler) Videos(c *fiber.Ctx) error {
	videos, err := h.service.Videos()
	if err != nil {
		return respondError(c, err)
	}
	return response.OK(c, fiber.Map{"videos": videos, "count": len(videos)})
}
