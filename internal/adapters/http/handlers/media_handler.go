package handlers

import (
	"pawnbook/internal/core/services"
	"pawnbook/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// maxUploadSize caps image uploads at 10 MB.
const maxUploadSize = 10 << 20

// MediaHandler handles image upload endpoints
type MediaHandler struct {
	media *services.MediaService
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(media *services.MediaService) *MediaHandler {
	return &MediaHandler{media: media}
}

// Upload handles uploading an image
// @Summary Upload image
// @Description Upload a customer, ornament or release photograph and get back its URL
// @Tags Media
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param image formData file true "Image file"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /media/upload [post]
func (h *MediaHandler) Upload(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return response.BadRequest(c, "Image file is required")
	}
	if file.Size > maxUploadSize {
		return response.BadRequest(c, "Image must be 10 MB or smaller")
	}

	url, err := h.media.UploadImage(c.Context(), file)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Created(c, "Image uploaded successfully", fiber.Map{
		"url": url,
	})
}
