package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ecocrm/app/config"
	"ecocrm/app/database"
)

// GetEvents lists all events, most recent start date first. Public.
func GetEvents(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	var events []database.Event
	result := db.Order("start_date DESC").Find(&events)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(events)
}

type EventInput struct {
	Title       string     `json:"title" validate:"required"`
	Description *string    `json:"description"`
	StartDate   time.Time  `json:"start_date" validate:"required"`
	EndDate     *time.Time `json:"end_date"`
	Location    *string    `json:"location"`
}

func CreateEvent(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	var input EventInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	err := config.Validate.Struct(input)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	var count int64
	result := db.Model(&database.Event{}).Where("title = ?", input.Title).Count(&count)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}
	if count > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "An event with this title already exists"})
	}

	event := database.Event{
		Title:       input.Title,
		Description: input.Description,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		Location:    input.Location,
	}
	result = db.Create(&event)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.Status(fiber.StatusCreated).JSON(event)
}

func UpdateEvent(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	var input EventInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	err := config.Validate.Struct(input)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	var event database.Event
	result := db.First(&event, "id = ?", c.Params("event_id"))
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Event not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	if input.Title != event.Title {
		var count int64
		result := db.Model(&database.Event{}).Where("title = ? AND id <> ?", input.Title, event.ID).Count(&count)
		if result.Error != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
		}
		if count > 0 {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "An event with this title already exists"})
		}
	}

	event.Title = input.Title
	event.Description = input.Description
	event.StartDate = input.StartDate
	event.EndDate = input.EndDate
	event.Location = input.Location

	result = db.Save(&event)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(event)
}

func DeleteEvent(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	var event database.Event
	result := db.First(&event, "id = ?", c.Params("event_id"))
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Event not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", event.ID).Delete(&database.EventRSVP{}).Error; err != nil {
			return err
		}
		return tx.Delete(&event).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// RSVPEvent records the authenticated user's RSVP. Repeated calls
// update the existing row in place; the engagement counter only moves
// when a row is first created.
func RSVPEvent(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)
	user := c.Locals("user").(database.User)

	type RSVPInput struct {
		RSVPStatus string `json:"rsvp_status" validate:"omitempty,oneof=confirmed declined maybe"`
	}

	var input RSVPInput
	if err := c.BodyParser(&input); err != nil && !errors.Is(err, fiber.ErrUnprocessableEntity) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}
	if input.RSVPStatus == "" {
		input.RSVPStatus = database.RSVPConfirmed
	}

	err := config.Validate.Struct(input)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	var event database.Event
	result := db.First(&event, "id = ?", c.Params("event_id"))
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Event not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	var rsvp database.EventRSVP
	created := false

	err = db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("event_id = ? AND user_id = ?", event.ID, user.ID).First(&rsvp)
		if result.Error != nil {
			if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return result.Error
			}

			rsvp = database.EventRSVP{
				EventID:    event.ID,
				UserID:     &user.ID,
				Email:      user.Email,
				RSVPStatus: input.RSVPStatus,
			}
			if err := tx.Create(&rsvp).Error; err != nil {
				return err
			}
			created = true

			return tx.Model(&database.User{}).Where("id = ?", user.ID).
				Update("rsvps", gorm.Expr("rsvps + ?", 1)).Error
		}

		rsvp.RSVPStatus = input.RSVPStatus
		return tx.Save(&rsvp).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	if created {
		return c.Status(fiber.StatusCreated).JSON(rsvp)
	}
	return c.JSON(rsvp)
}

// PublicRSVPEvent records an RSVP identified by email only. When the
// email belongs to a registered user the row is linked to that account
// instead, so a later login sees the RSVP as their own.
func PublicRSVPEvent(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	type PublicRSVPInput struct {
		Email      string `json:"email" validate:"required,email"`
		RSVPStatus string `json:"rsvp_status" validate:"omitempty,oneof=confirmed declined maybe"`
	}

	var input PublicRSVPInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}
	if input.RSVPStatus == "" {
		input.RSVPStatus = database.RSVPConfirmed
	}

	err := config.Validate.Struct(input)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	email := strings.ToLower(input.Email)

	var event database.Event
	result := db.First(&event, "id = ?", c.Params("event_id"))
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Event not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	var member database.User
	isMember := true
	result = db.Where("email = ?", email).First(&member)
	if result.Error != nil {
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
		}
		isMember = false
	}

	var rsvp database.EventRSVP
	created := false

	err = db.Transaction(func(tx *gorm.DB) error {
		lookup := tx.Where("event_id = ? AND email = ?", event.ID, email)
		if isMember {
			lookup = tx.Where("event_id = ? AND (user_id = ? OR email = ?)", event.ID, member.ID, email)
		}

		result := lookup.First(&rsvp)
		if result.Error != nil {
			if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return result.Error
			}

			rsvp = database.EventRSVP{
				EventID:    event.ID,
				Email:      email,
				RSVPStatus: input.RSVPStatus,
			}
			if isMember {
				rsvp.UserID = &member.ID
			}
			if err := tx.Create(&rsvp).Error; err != nil {
				return err
			}
			created = true

			if isMember {
				return tx.Model(&database.User{}).Where("id = ?", member.ID).
					Update("rsvps", gorm.Expr("rsvps + ?", 1)).Error
			}
			return nil
		}

		rsvp.RSVPStatus = input.RSVPStatus
		if isMember && rsvp.UserID == nil {
			rsvp.UserID = &member.ID
		}
		return tx.Save(&rsvp).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	response := fiber.Map{
		"id":          rsvp.ID,
		"event_id":    rsvp.EventID,
		"email":       rsvp.Email,
		"rsvp_status": rsvp.RSVPStatus,
		"is_member":   isMember,
		"user_id":     rsvp.UserID,
	}
	if created {
		return c.Status(fiber.StatusCreated).JSON(response)
	}
	return c.JSON(response)
}

func GetEventRSVPs(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	var event database.Event
	result := db.First(&event, "id = ?", c.Params("event_id"))
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Event not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	var rsvps []database.EventRSVP
	result = db.Preload("User").Where("event_id = ?", event.ID).Order("created_at DESC").Find(&rsvps)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(rsvps)
}

// GetMyEvents lists the events the current user confirmed, soonest
// first.
func GetMyEvents(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)
	user := c.Locals("user").(database.User)

	var events []database.Event
	result := db.
		Joins("JOIN event_rsvps ON event_rsvps.event_id = events.id").
		Where("event_rsvps.user_id = ? AND event_rsvps.rsvp_status = ?", user.ID, database.RSVPConfirmed).
		Order("events.start_date ASC").
		Find(&events)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(events)
}
