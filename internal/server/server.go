package server

import (
	"fmt"
	"strings"
	"time"

	"gnsons/internal/config"
	"gnsons/internal/handlers"
	"gnsons/internal/metrics"
	"gnsons/internal/middleware"
	"gnsons/internal/repositories"
	"gnsons/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
)

// Deps are the collaborators the HTTP application is built from.
type Deps struct {
	Config   *config.Config
	Store    *repositories.Store
	Notifier services.Notifier
	// LimiterStorage backs the rate limiter; nil keeps counters in memory.
	LimiterStorage fiber.Storage
	Log            *zap.Logger
}

// New wires services, middleware and routes into a fiber application.
func New(deps Deps) (*fiber.App, error) {
	cfg, store, log := deps.Config, deps.Store, deps.Log

	notifier := deps.Notifier
	if notifier == nil {
		notifier = services.NewLogNotifier(log)
	}

	uploads, err := services.NewUploadService(cfg.UploadDir, cfg.UploadMaxBytes, log)
	if err != nil {
		return nil, err
	}
	tokens := services.NewTokenService(services.TokenConfig{
		AccessSecret:  cfg.JWTSecret,
		RefreshSecret: cfg.RefreshTokenSecret,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
	}, store.Admins)
	authService := services.NewAuthService(store.Admins, tokens, log)
	productService := services.NewProductService(store.Products, uploads, log)
	cartService := services.NewCartService(store.Carts, log)
	orderService := services.NewOrderService(store.Orders, store.Carts, notifier, log)
	chatService := services.NewChatService(store.Messages, log)
	contactService := services.NewContactService(store.Contacts, notifier, cfg.AdminEmail, log)

	app := fiber.New(fiber.Config{
		AppName:      "GN SONS API",
		BodyLimit:    int(cfg.UploadMaxBytes) + 1<<20,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: handlers.ErrorHandler(log),
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(helmet.New(helmet.Config{CrossOriginResourcePolicy: "cross-origin"}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: !strings.Contains(cfg.CORSOrigins, "*"),
	}))
	app.Use(logger.New(logger.Config{
		Format: "${time} | ${locals:requestid} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${error}\n",
	}))
	app.Use(metrics.Middleware())

	app.Static("/uploads", uploads.Dir())
	app.Get("/metrics", metrics.Handler())

	guards := handlers.Guards{
		Required: middleware.AuthRequired(authService, log),
		Optional: middleware.AuthOptional(authService),
		Admin:    middleware.RequireAdmin(authService),
	}

	api := app.Group("/api", middleware.RateLimit(cfg.RateLimitMaxRequests, cfg.RateLimitWindow, deps.LimiterStorage))
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "OK",
			"timestamp": time.Now().UTC(),
			"database":  cfg.DatabaseDriver,
		})
	})

	handlers.NewAuthHandler(authService).RegisterRoutes(api, guards)
	handlers.NewProductHandler(productService).RegisterRoutes(api, guards)
	handlers.NewCartHandler(cartService).RegisterRoutes(api, guards)
	handlers.NewOrderHandler(orderService).RegisterRoutes(api, guards)
	handlers.NewChatHandler(chatService).RegisterRoutes(api, guards)
	handlers.NewContactHandler(contactService).RegisterRoutes(api, guards)
	handlers.NewUploadHandler(uploads).RegisterRoutes(api, guards)

	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("Route %s %s not found", c.Method(), c.Path()))
	})

	return app, nil
}
