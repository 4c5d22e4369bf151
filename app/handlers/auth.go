package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"ecocrm/app/auth"
	"ecocrm/app/config"
	"ecocrm/app/database"
	puser "ecocrm/app/platform/user"
	"ecocrm/pkg/utils"
)

type AuthToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserType    string `json:"user_type"`
	UserID      int    `json:"user_id"`
	Username    string `json:"username"`
	IsAdmin     bool   `json:"isAdmin"`
}

// Login verifies a username-or-email plus password pair and issues a
// bearer token. Counter and session side effects are committed before
// the token is returned.
func Login(c *fiber.Ctx) error {
	cfg := c.Locals("config").(*config.Config)
	db := c.Locals("db").(*gorm.DB)

	userService := puser.NewService(db)

	type LoginInput struct {
		Username string `json:"username" form:"username" validate:"required"`
		Password string `json:"password" form:"password" validate:"required"`
	}

	var input LoginInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	err := config.Validate.Struct(input)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	user, err := userService.GetUserByLogin(input.Username)
	if err != nil {
		if errors.Is(err, puser.ErrNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Incorrect username or password"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	if !utils.VerifyPassword(input.Password, user.PasswordHash) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Incorrect username or password"})
	}

	if err := userService.RecordLogin(user, c.IP(), c.Get(fiber.HeaderUserAgent)); err != nil {
		log.Errorf("Failed to record login: %v", err)
	}

	expiry := time.Duration(cfg.TokenExpiryMinutes) * time.Minute
	token, err := auth.GenerateJWT(cfg.JWTSecret, user.Username, user.ID, user.Role, expiry)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(AuthToken{
		AccessToken: token,
		TokenType:   "bearer",
		UserType:    user.Role,
		UserID:      user.ID,
		Username:    user.Username,
		IsAdmin:     user.IsAdmin(),
	})
}

// Register creates a member account. Admins are created via the CLI or
// promoted afterwards, never through this endpoint.
func Register(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	type RegisterInput struct {
		Email    string   `json:"email" validate:"required,email"`
		Username string   `json:"username" validate:"required,min=3"`
		Password string   `json:"password" validate:"required,min=8"`
		FullName string   `json:"full_name" validate:"required"`
		Bio      *string  `json:"bio"`
		Interest []string `json:"interests"`
	}

	var input RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	err := config.Validate.Struct(input)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	email := strings.ToLower(input.Email)

	var count int64
	result := db.Model(&database.User{}).Where("email = ? OR username = ?", email, input.Username).Count(&count)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}
	if count > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "Email or username already registered"})
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	user := database.User{
		Email:        email,
		Username:     input.Username,
		PasswordHash: hash,
		FullName:     input.FullName,
		Bio:          input.Bio,
		Interests:    input.Interest,
		Role:         database.RoleMember,
	}

	if err := db.Create(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}
