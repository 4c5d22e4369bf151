package handlers

import (
	"github.com/gofiber/fiber/v2"

	"ecocrm/app/config"
	"ecocrm/app/mail"
)

func GetIP(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"ip": c.IP()})
}

func GetHeaders(c *fiber.Ctx) error {
	return c.JSON(c.GetReqHeaders())
}

// SendTestMail verifies the mail configuration end to end. Admin only.
func SendTestMail(c *fiber.Ctx) error {
	cfg := c.Locals("config").(*config.Config)

	type EmailInput struct {
		Subject string `json:"subject" validate:"required"`
		Body    string `json:"body" validate:"required"`
		To      string `json:"to" validate:"required,email"`
	}

	var input EmailInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	err := config.Validate.Struct(input)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	message := mail.Email{
		Subject: input.Subject,
		Body:    input.Body,
		From:    cfg.MailFrom,
		To:      []string{input.To},
	}

	mailer := mail.NewMailer(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunAPIBase)
	if err := mailer.SendMail(&message); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to send message"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Message sent"})
}
