package handlers

import (
	"strings"

	"gnsons/internal/middleware"
	"gnsons/internal/models"
	"gnsons/internal/services"

	"github.com/gofiber/fiber/v2"
)

type cartItemRequest struct {
	UserID    string  `json:"userId"`
	ProductID string  `json:"productId" validate:"required"`
	Name      string  `json:"name"`
	Price     float64 `json:"price" validate:"gte=0"`
	Quantity  int     `json:"quantity" validate:"required,gte=1"`
	Image     string  `json:"image"`
}

type cartRemoveRequest struct {
	UserID    string `json:"userId"`
	ProductID string `json:"productId" validate:"required"`
}

// CartHandler handles HTTP requests for carts. A verified token's subject
// takes precedence over any client-supplied user id.
type CartHandler struct {
	service *services.CartService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{service: service}
}

// RegisterRoutes registers the cart routes.
func (h *CartHandler) RegisterRoutes(router fiber.Router, g Guards) {
	cartRoutes := router.Group("/cart", g.Optional)
	cartRoutes.Get("/:userId", h.HandleGetCart)
	cartRoutes.Post("/add", h.HandleAddItem)
	cartRoutes.Post("/remove", h.HandleRemoveItem)
	cartRoutes.Post("/update", h.HandleUpdateItem)
	cartRoutes.Post("/clear/:userId", h.HandleClear)
}

func resolveUserID(c *fiber.Ctx, supplied string) string {
	if claims := middleware.Claims(c); claims != nil {
		return claims.UID
	}
	return strings.TrimSpace(supplied)
}

// HandleGetCart returns the cart, empty when none exists yet.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	cart, err := h.service.GetCart(c.UserContext(), resolveUserID(c, c.Params("userId")))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "cart": cart})
}

// HandleAddItem adds or merges an item.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req cartItemRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	cart, err := h.service.AddItem(c.UserContext(), resolveUserID(c, req.UserID), models.CartItem{
		ProductID: req.ProductID,
		Name:      req.Name,
		Price:     req.Price,
		Quantity:  req.Quantity,
		Image:     req.Image,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "Item added to cart", "cart": cart})
}

// HandleRemoveItem drops an item.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	var req cartRemoveRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	cart, err := h.service.RemoveItem(c.UserContext(), resolveUserID(c, req.UserID), req.ProductID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "Item removed from cart", "cart": cart})
}

// HandleUpdateItem sets an item's quantity.
func (h *CartHandler) HandleUpdateItem(c *fiber.Ctx) error {
	var req cartItemRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	cart, err := h.service.UpdateItem(c.UserContext(), resolveUserID(c, req.UserID), req.ProductID, req.Quantity)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "Cart updated", "cart": cart})
}

// HandleClear empties the cart.
func (h *CartHandler) HandleClear(c *fiber.Ctx) error {
	if err := h.service.Clear(c.UserContext(), resolveUserID(c, c.Params("userId"))); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "Cart cleared"})
}
