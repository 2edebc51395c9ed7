package handlers

import (
	"gnsons/internal/middleware"
	"gnsons/internal/services"

	"github.com/gofiber/fiber/v2"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// AuthHandler handles HTTP requests for admin authentication.
type AuthHandler struct {
	auth *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// RegisterRoutes registers the authentication routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, g Guards) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/admin-login", h.HandleLogin)
	authRoutes.Post("/admin-register", h.HandleRegister)
	authRoutes.Post("/refresh-token", h.HandleRefresh)
	authRoutes.Get("/admin/current", g.Required, g.Admin, h.HandleCurrentAdmin)
}

// HandleLogin issues an access and refresh token pair.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":      true,
		"token":        result.AccessToken,
		"refreshToken": result.RefreshToken,
		"admin":        result.Admin,
	})
}

// HandleRegister creates an admin account.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	profile, err := h.auth.Register(c.UserContext(), req.Email, req.Password, req.Name)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "admin": profile})
}

// HandleRefresh mints a new access token from a refresh token.
func (h *AuthHandler) HandleRefresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	token, err := h.auth.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "token": token})
}

// HandleCurrentAdmin returns the caller's profile.
func (h *AuthHandler) HandleCurrentAdmin(c *fiber.Ctx) error {
	admin := middleware.Admin(c)
	if admin == nil {
		return services.ErrUnauthorized
	}
	return c.JSON(fiber.Map{"success": true, "admin": admin.Profile()})
}
