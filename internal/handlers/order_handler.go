package handlers

import (
	"gnsons/internal/middleware"
	"gnsons/internal/models"
	"gnsons/internal/services"

	"github.com/gofiber/fiber/v2"
)

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// RegisterRoutes registers the order routes.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, g Guards) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Post("/", g.Optional, h.HandleCreateOrder)
	orderRoutes.Get("/admin/all", g.Required, g.Admin, h.HandleGetAllOrders)
	orderRoutes.Get("/user/:userId", h.HandleGetUserOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Put("/:id/status", g.Required, g.Admin, h.HandleUpdateOrderStatus)
}

// HandleCreateOrder places an order. The response reports the outcome of the
// confirmation email and cart reset without letting them fail the request.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var in services.CreateOrderInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	in.UserID = resolveUserID(c, in.UserID)

	result, err := h.service.CreateOrder(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":      true,
		"message":      "Order created successfully",
		"orderId":      result.Order.ID,
		"order":        result.Order,
		"notification": sideEffectJSON(result.Notification),
		"cartReset":    sideEffectJSON(result.CartReset),
	})
}

// HandleGetUserOrders lists a user's orders.
func (h *OrderHandler) HandleGetUserOrders(c *fiber.Ctx) error {
	orders, err := h.service.GetUserOrders(c.UserContext(), c.Params("userId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "orders": orders})
}

// HandleGetOrderByID returns one order.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.service.GetOrderByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "order": order})
}

// HandleGetAllOrders lists every order for the back office.
func (h *OrderHandler) HandleGetAllOrders(c *fiber.Ctx) error {
	orders, err := h.service.GetAllOrders(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "orders": orders, "total": len(orders)})
}

// HandleUpdateOrderStatus moves an order to a new status.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	var req statusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	order, err := h.service.UpdateStatus(c.UserContext(), c.Params("id"), models.OrderStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":   true,
		"message":   "Order status updated successfully",
		"order":     order,
		"updatedBy": middleware.Admin(c).Email,
	})
}
