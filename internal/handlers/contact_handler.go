package handlers

import (
	"gnsons/internal/models"
	"gnsons/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ContactHandler handles contact-form HTTP requests.
type ContactHandler struct {
	service *services.ContactService
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(service *services.ContactService) *ContactHandler {
	return &ContactHandler{service: service}
}

// RegisterRoutes registers the contact routes.
func (h *ContactHandler) RegisterRoutes(router fiber.Router, g Guards) {
	contactRoutes := router.Group("/contact")
	contactRoutes.Post("/", h.HandleSubmit)
	contactRoutes.Get("/admin/all", g.Required, g.Admin, h.HandleList)
	contactRoutes.Put("/:id/status", g.Required, g.Admin, h.HandleUpdateStatus)
}

func (h *ContactHandler) HandleSubmit(c *fiber.Ctx) error {
	var in services.ContactInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	result, err := h.service.Submit(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":      true,
		"message":      "Your message has been sent.",
		"contactId":    result.Contact.ID,
		"confirmation": sideEffectJSON(result.Confirmation),
	})
}

func (h *ContactHandler) HandleList(c *fiber.Ctx) error {
	contacts, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "count": len(contacts), "contacts": contacts})
}

func (h *ContactHandler) HandleUpdateStatus(c *fiber.Ctx) error {
	var req statusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.service.UpdateStatus(c.UserContext(), c.Params("id"), models.ContactStatus(req.Status)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "Contact status updated"})
}
