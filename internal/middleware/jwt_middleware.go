package middleware

import (
	"context"
	"strings"

	"gnsons/internal/models"
	"gnsons/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Locals keys set by the auth middleware.
const (
	LocalClaims = "auth_claims"
	LocalAdmin  = "auth_admin"
)

// Authenticator verifies access tokens and resolves their admin subject.
type Authenticator interface {
	Authenticate(token string) (*services.AccessClaims, error)
	ResolveAdmin(ctx context.Context, claims *services.AccessClaims) (*models.Admin, error)
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(c *fiber.Ctx) (string, bool) {
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// AuthRequired rejects requests without a valid access token.
func AuthRequired(auth Authenticator, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c)
		if !ok {
			return services.ErrUnauthorized
		}
		claims, err := auth.Authenticate(token)
		if err != nil {
			log.Debug("Access token rejected", zap.String("path", c.Path()))
			return err
		}
		c.Locals(LocalClaims, claims)
		return c.Next()
	}
}

// AuthOptional attaches claims when a valid token is present and otherwise
// lets the request through unauthenticated.
func AuthOptional(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token, ok := bearerToken(c); ok {
			if claims, err := auth.Authenticate(token); err == nil {
				c.Locals(LocalClaims, claims)
			}
		}
		return c.Next()
	}
}

// RequireAdmin must run after AuthRequired. It re-fetches the admin on every
// request so a deleted account's unexpired token stops working immediately.
func RequireAdmin(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := Claims(c)
		if claims == nil {
			return services.ErrUnauthorized
		}
		admin, err := auth.ResolveAdmin(c.UserContext(), claims)
		if err != nil {
			return err
		}
		c.Locals(LocalAdmin, admin)
		return c.Next()
	}
}

// Claims returns the verified claims of the request, or nil.
func Claims(c *fiber.Ctx) *services.AccessClaims {
	claims, _ := c.Locals(LocalClaims).(*services.AccessClaims)
	return claims
}

// Admin returns the admin resolved by RequireAdmin, or nil.
func Admin(c *fiber.Ctx) *models.Admin {
	admin, _ := c.Locals(LocalAdmin).(*models.Admin)
	return admin
}
