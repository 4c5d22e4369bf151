package middleware

import "github.com/gofiber/fiber/v2"

// RobotsMiddleware answers robots.txt directly. The API carries member
// data and should never be crawled.
func RobotsMiddleware(c *fiber.Ctx) error {
	if c.Path() == "/robots.txt" {
		c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.SendString("User-agent: *\nDisallow: /\n")
	}
	return c.Next()
}
