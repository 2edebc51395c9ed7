package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RateLimitMessage is returned once a client exhausts its window.
const RateLimitMessage = "Too many requests from this IP, please try again later."

// RateLimit caps each client IP to max requests per fixed window. storage may
// be nil for process-local counters.
func RateLimit(max int, window time.Duration, storage fiber.Storage) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(window.Seconds())))
			return fiber.NewError(fiber.StatusTooManyRequests, RateLimitMessage)
		},
		Storage:           storage,
		LimiterMiddleware: limiter.FixedWindow{},
	})
}
