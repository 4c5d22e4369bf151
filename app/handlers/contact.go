package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"ecocrm/app/config"
	"ecocrm/app/database"
	"ecocrm/app/mail"
	puser "ecocrm/app/platform/user"
)

// GetContacts lists contacts with their linked user and tags. The
// optional q parameter searches name, email, linked-user role and tag
// names, case-insensitively.
func GetContacts(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	query := db.Model(&database.Contact{}).Preload("User").Preload("Tags")

	if q := c.Query("q"); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Distinct("contacts.*").
			Joins("LEFT JOIN users ON users.id = contacts.user_id").
			Joins("LEFT JOIN contact_tags ON contact_tags.contact_id = contacts.id").
			Joins("LEFT JOIN tags ON tags.id = contact_tags.tag_id").
			Where("LOWER(contacts.full_name) LIKE ? OR LOWER(contacts.email) LIKE ? OR LOWER(users.role) LIKE ? OR LOWER(tags.name) LIKE ?",
				like, like, like, like)
	}

	var contacts []database.Contact
	result := query.Order("contacts.created_at DESC").Find(&contacts)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(contacts)
}

type UserCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type ContactCreateResponse struct {
	Contact         database.Contact `json:"contact"`
	UserCredentials *UserCredentials `json:"user_credentials"`
}

// CreateContact creates a contact and, unless create_user_account is
// false, provisions a linked user account in the same transaction. The
// generated plaintext password is returned in this response only and
// cannot be recovered afterwards.
func CreateContact(c *fiber.Ctx) error {
	cfg := c.Locals("config").(*config.Config)
	db := c.Locals("db").(*gorm.DB)

	type ContactInput struct {
		Email             string   `json:"email" validate:"required,email"`
		FullName          string   `json:"full_name" validate:"required"`
		Role              string   `json:"role" validate:"omitempty,oneof=member admin"`
		Tags              []string `json:"tags"`
		CreateUserAccount *bool    `json:"create_user_account"`
	}

	var input ContactInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	err := config.Validate.Struct(input)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	email := strings.ToLower(input.Email)

	var count int64
	result := db.Model(&database.User{}).Where("email = ?", email).Count(&count)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}
	if count > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "A user with this email already exists"})
	}

	result = db.Model(&database.Contact{}).Where("email = ?", email).Count(&count)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}
	if count > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "A contact with this email already exists"})
	}

	provision := input.CreateUserAccount == nil || *input.CreateUserAccount

	var contact database.Contact
	var credentials *UserCredentials

	err = db.Transaction(func(tx *gorm.DB) error {
		tags, err := findOrCreateTags(tx, input.Tags)
		if err != nil {
			return err
		}

		contact = database.Contact{
			Email:    email,
			FullName: input.FullName,
			Tags:     tags,
		}

		var account *database.User
		if provision {
			var password string
			account, password, err = puser.NewService(tx).Provision(email, input.FullName, input.Role)
			if err != nil {
				return err
			}

			contact.UserID = &account.ID
			credentials = &UserCredentials{
				Username: account.Username,
				Password: password,
				Role:     account.Role,
			}
		}

		if err := tx.Create(&contact).Error; err != nil {
			return err
		}
		contact.User = account
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	if credentials != nil {
		// Welcome mail is best effort.
		mailer := mail.NewMailer(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunAPIBase)
		message := mail.Email{
			Subject: "Your EcoSystem CRM account",
			Body: "Hello " + contact.FullName + ",\n\nAn account has been created for you. " +
				"Sign in with the username " + credentials.Username + " and the temporary password shared by your administrator.\n",
			From: cfg.MailFrom,
			To:   []string{contact.Email},
		}
		if err := mailer.SendMail(&message); err != nil {
			log.Errorf("Failed to send welcome email: %v", err)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(ContactCreateResponse{
		Contact:         contact,
		UserCredentials: credentials,
	})
}

func UpdateContact(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	type ContactUpdateInput struct {
		Email    string    `json:"email" validate:"required,email"`
		FullName string    `json:"full_name" validate:"required"`
		Tags     *[]string `json:"tags"`
	}

	var input ContactUpdateInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	err := config.Validate.Struct(input)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	var contact database.Contact
	result := db.Preload("Tags").First(&contact, "id = ?", c.Params("contact_id"))
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Contact not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	email := strings.ToLower(input.Email)
	if email != contact.Email {
		var count int64
		result := db.Model(&database.Contact{}).Where("email = ? AND id <> ?", email, contact.ID).Count(&count)
		if result.Error != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
		}
		if count > 0 {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "A contact with this email already exists"})
		}
	}

	contact.FullName = input.FullName
	contact.Email = email

	err = db.Transaction(func(tx *gorm.DB) error {
		if input.Tags != nil {
			tags, err := findOrCreateTags(tx, *input.Tags)
			if err != nil {
				return err
			}
			if err := tx.Model(&contact).Association("Tags").Replace(tags); err != nil {
				return err
			}
			contact.Tags = tags
		}
		return tx.Save(&contact).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(contact)
}

// DeleteContact removes a contact and, when a user account is linked,
// everything that references that user: tasks assigned to or created by
// them, login sessions, RSVPs and mentor contact requests. One
// transaction so no orphans survive a partial failure.
func DeleteContact(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	var contact database.Contact
	result := db.Preload("User").First(&contact, "id = ?", c.Params("contact_id"))
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Contact not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if contact.User != nil {
			userID := contact.User.ID

			if err := tx.Where("assigned_to_id = ? OR created_by_id = ?", userID, userID).Delete(&database.Task{}).Error; err != nil {
				return err
			}
			if err := tx.Where("user_id = ?", userID).Delete(&database.LoginSession{}).Error; err != nil {
				return err
			}
			if err := tx.Where("user_id = ?", userID).Delete(&database.EventRSVP{}).Error; err != nil {
				return err
			}
			if err := tx.Where("user_id = ?", userID).Delete(&database.MentorContactRequest{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&database.User{}, "id = ?", userID).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&contact).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&contact).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func GetTags(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	var tags []database.Tag
	result := db.Order("name ASC").Find(&tags)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(tags)
}

// findOrCreateTags resolves tag names to rows, creating missing ones.
func findOrCreateTags(tx *gorm.DB, names []string) ([]database.Tag, error) {
	var tags []database.Tag
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		var tag database.Tag
		result := tx.Where("name = ?", name).FirstOrCreate(&tag, database.Tag{Name: name})
		if result.Error != nil {
			return nil, result.Error
		}
		tags = append(tags, tag)
	}
	return tags, nil
}
