package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"gnsons/internal/models"
	"gnsons/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for the catalog.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

// RegisterRoutes registers the product routes. Reads are public.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, g Guards) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleListProducts)
	productRoutes.Get("/list/categories", h.HandleCategories)
	productRoutes.Get("/:id", h.HandleGetProduct)
	productRoutes.Post("/", g.Required, g.Admin, h.HandleCreateProduct)
	productRoutes.Put("/:id", g.Required, g.Admin, h.HandleUpdateProduct)
	productRoutes.Delete("/:id", g.Required, g.Admin, h.HandleDeleteProduct)
}

func queryFloat(c *fiber.Ctx, key string) (*float64, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a number", services.ErrValidation, key)
	}
	return &v, nil
}

func productFilter(c *fiber.Ctx) (models.ProductFilter, error) {
	filter := models.ProductFilter{
		Category:   c.Query("category"),
		Search:     strings.TrimSpace(c.Query("search")),
		Featured:   c.QueryBool("featured"),
		NewArrival: c.QueryBool("newArrival"),
		Used:       c.QueryBool("used"),
	}
	var err error
	if filter.MinPrice, err = queryFloat(c, "minPrice"); err != nil {
		return filter, err
	}
	if filter.MaxPrice, err = queryFloat(c, "maxPrice"); err != nil {
		return filter, err
	}
	return filter, nil
}

// HandleListProducts lists products matching the query filters.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	filter, err := productFilter(c)
	if err != nil {
		return err
	}
	products, err := h.service.ListProducts(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "count": len(products), "products": products})
}

// HandleCategories lists distinct categories.
func (h *ProductHandler) HandleCategories(c *fiber.Ctx) error {
	categories, err := h.service.Categories(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "categories": categories})
}

// HandleGetProduct returns one product.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.service.GetProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "product": product})
}

// HandleCreateProduct adds a product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var in services.ProductInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	product, err := h.service.CreateProduct(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":   true,
		"message":   "Product added successfully",
		"productId": product.ID,
		"product":   product,
	})
}

// HandleUpdateProduct applies a partial update.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var in services.ProductInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	product, err := h.service.UpdateProduct(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "Product updated successfully", "product": product})
}

// HandleDeleteProduct removes a product.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "Product deleted successfully"})
}
