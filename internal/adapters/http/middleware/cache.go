package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

// CatalogCache returns cache middleware for public catalog reads
// (book and category listings change rarely; 5 minute cache)
func CatalogCache() fiber.Handler {
	return CacheControl(5 * time.Minute)
}

// CacheControl sets public cache headers on successful GET responses
func CacheControl(maxAge time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() == "GET" && c.Response().StatusCode() == 200 {
			c.Set("Cache-Control", "public, max-age="+strconv.Itoa(int(maxAge.Seconds())))
		}

		return err
	}
}

// NoCacheHeaders sets no-cache headers (for auth and ticket endpoints)
func NoCacheHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("Cache-Control", "no-store, no-cache, must-revalidate")
		c.Set("Pragma", "no-cache")
		c.Set("Expires", "0")
		return c.Next()
	}
}
