package handlers

import (
	"errors"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ecocrm/app/config"
	"ecocrm/app/database"
	"ecocrm/app/platform/storage"
)

// GetNewsletters lists published newsletters, newest first. Public.
func GetNewsletters(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	var newsletters []database.Newsletter
	result := db.Order("created_at DESC").Find(&newsletters)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(newsletters)
}

func GetNewsletter(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	var newsletter database.Newsletter
	result := db.First(&newsletter, "id = ?", c.Params("newsletter_id"))
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Newsletter not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(newsletter)
}

type NewsletterInput struct {
	Title       string     `json:"title" validate:"required"`
	Content     string     `json:"content" validate:"required"`
	Image       *string    `json:"image"`
	PublishDate *time.Time `json:"publish_date"`
}

func CreateNewsletter(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	var input NewsletterInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	err := config.Validate.Struct(input)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	newsletter := database.Newsletter{
		Title:       input.Title,
		Content:     input.Content,
		Image:       input.Image,
		PublishDate: input.PublishDate,
	}
	result := db.Create(&newsletter)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.Status(fiber.StatusCreated).JSON(newsletter)
}

func UpdateNewsletter(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	var input NewsletterInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	err := config.Validate.Struct(input)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	var newsletter database.Newsletter
	result := db.First(&newsletter, "id = ?", c.Params("newsletter_id"))
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Newsletter not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	newsletter.Title = input.Title
	newsletter.Content = input.Content
	newsletter.Image = input.Image
	newsletter.PublishDate = input.PublishDate

	result = db.Save(&newsletter)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(newsletter)
}

func DeleteNewsletter(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	var newsletter database.Newsletter
	result := db.First(&newsletter, "id = ?", c.Params("newsletter_id"))
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Newsletter not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	result = db.Delete(&newsletter)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// UploadNewsletterImage stores an image in the bucket and returns the
// key to reference from a newsletter's image field.
func UploadNewsletterImage(c *fiber.Ctx) error {
	cfg := c.Locals("config").(*config.Config)

	file, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "No image provided"})
	}

	storageService := storage.NewStorageService(cfg.Storage())

	if !storageService.IsImageAllowed(file.Filename) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "File type not allowed"})
	}

	key := "newsletters/" + storageService.GenerateKeyName() + filepath.Ext(file.Filename)
	if err := storageService.SaveFile(file, key, c); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to store image"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"image": key})
}
