package middleware

import "github.com/gofiber/fiber/v2"

// Security sets the response headers of a JSON-only API, adding HSTS in production.
func Security(production bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "no-referrer")
		c.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		// Search pages are per session; shared caches must not keep them.
		c.Set("Cache-Control", "no-store")
		c.Set("Vary", SessionHeader)
		if production {
			c.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		return c.Next()
	}
}
