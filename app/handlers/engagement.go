package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ecocrm/app/platform/engagement"
)

// GetEngagementStats returns the admin dashboard aggregates.
func GetEngagementStats(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	return c.JSON(engagement.NewService(db).Stats())
}

// GetUserEngagement returns per-user engagement counters, most active
// users first.
func GetUserEngagement(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	rows, err := engagement.NewService(db).Users()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(rows)
}
