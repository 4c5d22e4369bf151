package middleware

import (
	"github.com/gofiber/fiber/v2"

	"ecocrm/app/database"
)

// AdminMiddleware runs after AuthMiddleware. Authenticated but
// non-admin callers are rejected with Forbidden.
func AdminMiddleware(c *fiber.Ctx) error {
	user := c.Locals("user").(database.User)

	if !user.IsAdmin() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "The user does not have permissions to perform this action",
		})
	}

	return c.Next()
}
