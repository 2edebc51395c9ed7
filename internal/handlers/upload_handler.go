package handlers

import (
	"fmt"

	"gnsons/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UploadHandler handles product image uploads.
type UploadHandler struct {
	service *services.UploadService
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(service *services.UploadService) *UploadHandler {
	return &UploadHandler{service: service}
}

// RegisterRoutes registers the upload routes. Deleting requires an admin.
func (h *UploadHandler) RegisterRoutes(router fiber.Router, g Guards) {
	uploadRoutes := router.Group("/upload")
	uploadRoutes.Post("/", h.HandleUpload)
	uploadRoutes.Delete("/:fileName", g.Required, g.Admin, h.HandleDelete)
}

// HandleUpload stores the multipart "file" field.
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return fmt.Errorf("%w: no file provided", services.ErrValidation)
	}
	file, err := h.service.Save(fh)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"message":  "Image uploaded",
		"imageUrl": file.URL,
		"fileName": file.FileName,
		"file":     file,
	})
}

func (h *UploadHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Params("fileName")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "Image deleted"})
}
