package handlers

import (
	"gnsons/internal/middleware"
	"gnsons/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ChatHandler handles HTTP requests for customer chat.
type ChatHandler struct {
	service *services.ChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(service *services.ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

// RegisterRoutes registers the chat routes.
func (h *ChatHandler) RegisterRoutes(router fiber.Router, g Guards) {
	chatRoutes := router.Group("/chat")
	chatRoutes.Post("/send", g.Optional, h.HandleSend)
	chatRoutes.Get("/conversation/:conversationId", h.HandleConversation)
	chatRoutes.Get("/admin/conversations", g.Required, g.Admin, h.HandleConversations)
	chatRoutes.Put("/:messageId/read", g.Required, g.Admin, h.HandleMarkRead)
	chatRoutes.Delete("/:messageId", g.Required, g.Admin, h.HandleDelete)
}

// HandleSend stores a message.
func (h *ChatHandler) HandleSend(c *fiber.Ctx) error {
	var in services.SendMessageInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	if claims := middleware.Claims(c); claims != nil && in.SenderID == "" {
		in.SenderID = claims.UID
	}
	msg, err := h.service.Send(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":   true,
		"message":   "Message sent successfully",
		"messageId": msg.ID,
		"data":      msg,
	})
}

// HandleConversation returns one conversation, oldest message first.
func (h *ChatHandler) HandleConversation(c *fiber.Ctx) error {
	id := c.Params("conversationId")
	msgs, err := h.service.Conversation(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "conversationId": id, "messageCount": len(msgs), "messages": msgs})
}

// HandleConversations lists every conversation for the back office.
func (h *ChatHandler) HandleConversations(c *fiber.Ctx) error {
	convs, err := h.service.Conversations(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "count": len(convs), "conversations": convs})
}

func (h *ChatHandler) HandleMarkRead(c *fiber.Ctx) error {
	if err := h.service.MarkRead(c.UserContext(), c.Params("messageId")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "Message marked as read"})
}

func (h *ChatHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("messageId")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "Message deleted successfully"})
}
