package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ecocrm/app/config"
	"ecocrm/app/database"
	pmentor "ecocrm/app/platform/mentor"
)

func listMentors(c *fiber.Ctx, order string) error {
	db := c.Locals("db").(*gorm.DB)

	query := db.Model(&database.Mentor{})

	if q := c.Query("q"); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where(
			"LOWER(full_name) LIKE ? OR LOWER(COALESCE(organization, '')) LIKE ? OR LOWER(COALESCE(expertise, '')) LIKE ? OR LOWER(COALESCE(tags, '')) LIKE ?",
			like, like, like, like)
	}

	var mentors []database.Mentor
	result := query.Order(order).Find(&mentors)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(mentors)
}

// GetMentors lists the mentor directory, optionally filtered by a
// case-insensitive search over name, organization, expertise and tags.
func GetMentors(c *fiber.Ctx) error {
	return listMentors(c, "full_name ASC")
}

// GetOpportunities is the public directory listing, newest entries
// first. The route name predates the mentor rename.
func GetOpportunities(c *fiber.Ctx) error {
	return listMentors(c, "created_at DESC")
}

func GetMentor(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	var mentor database.Mentor
	result := db.First(&mentor, "id = ?", c.Params("mentor_id"))
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Mentor not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(mentor)
}

type MentorInput struct {
	FullName     string  `json:"full_name" validate:"required"`
	Email        string  `json:"email" validate:"required,email"`
	Organization *string `json:"organization"`
	Bio          *string `json:"bio"`
	Expertise    *string `json:"expertise"`
	MentorType   *string `json:"mentor_type"`
	Location     *string `json:"location"`
	IsVirtual    bool    `json:"is_virtual"`
	Tags         *string `json:"tags"`
}

func CreateMentor(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	var input MentorInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	err := config.Validate.Struct(input)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	email := strings.ToLower(input.Email)

	var count int64
	result := db.Model(&database.Mentor{}).Where("email = ?", email).Count(&count)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}
	if count > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "A mentor with this email already exists"})
	}

	mentor := database.Mentor{
		FullName:     input.FullName,
		Email:        email,
		Organization: input.Organization,
		Bio:          input.Bio,
		Expertise:    input.Expertise,
		MentorType:   input.MentorType,
		Location:     input.Location,
		IsVirtual:    input.IsVirtual,
		Tags:         input.Tags,
	}
	result = db.Create(&mentor)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.Status(fiber.StatusCreated).JSON(mentor)
}

func UpdateMentor(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	var input MentorInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	err := config.Validate.Struct(input)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	var mentor database.Mentor
	result := db.First(&mentor, "id = ?", c.Params("mentor_id"))
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Mentor not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	email := strings.ToLower(input.Email)
	if email != mentor.Email {
		var count int64
		result := db.Model(&database.Mentor{}).Where("email = ? AND id <> ?", email, mentor.ID).Count(&count)
		if result.Error != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
		}
		if count > 0 {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "A mentor with this email already exists"})
		}
	}

	mentor.FullName = input.FullName
	mentor.Email = email
	mentor.Organization = input.Organization
	mentor.Bio = input.Bio
	mentor.Expertise = input.Expertise
	mentor.MentorType = input.MentorType
	mentor.Location = input.Location
	mentor.IsVirtual = input.IsVirtual
	mentor.Tags = input.Tags

	result = db.Save(&mentor)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(mentor)
}

func DeleteMentor(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	var mentor database.Mentor
	result := db.First(&mentor, "id = ?", c.Params("mentor_id"))
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Mentor not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("mentor_id = ?", mentor.ID).Delete(&database.MentorContactRequest{}).Error; err != nil {
			return err
		}
		return tx.Delete(&mentor).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// CreateMentorContact submits a connection request to a mentor. The
// email_sent flag in the response is soft: the record always persists
// even when the notification mail fails.
func CreateMentorContact(c *fiber.Ctx) error {
	cfg := c.Locals("config").(*config.Config)
	db := c.Locals("db").(*gorm.DB)

	type MentorContactInput struct {
		MentorID     int     `json:"mentor_id" validate:"required"`
		ContactName  string  `json:"contact_name" validate:"required"`
		ContactEmail string  `json:"contact_email" validate:"required,email"`
		ContactMajor *string `json:"contact_major"`
		ContactYear  *string `json:"contact_year"`
		Reason       string  `json:"reason" validate:"required"`
	}

	var input MentorContactInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	err := config.Validate.Struct(input)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	request, emailSent, err := pmentor.NewService(db, cfg).CreateContactRequest(pmentor.ContactRequestInput{
		MentorID:     input.MentorID,
		ContactName:  input.ContactName,
		ContactEmail: input.ContactEmail,
		ContactMajor: input.ContactMajor,
		ContactYear:  input.ContactYear,
		Reason:       input.Reason,
	})
	if err != nil {
		if errors.Is(err, pmentor.ErrMentorNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Mentor not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	response := fiber.Map{
		"id":         request.ID,
		"mentor_id":  request.MentorID,
		"status":     request.Status,
		"email_sent": emailSent,
	}
	if !emailSent {
		response["message"] = "Request saved, but the notification email could not be sent"
	}

	return c.Status(fiber.StatusCreated).JSON(response)
}

// GetMentorContacts lists contact requests, newest first. Admin only.
func GetMentorContacts(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	var requests []database.MentorContactRequest
	result := db.Order("created_at DESC").Find(&requests)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(requests)
}
