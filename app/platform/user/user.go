package user

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"ecocrm/app/database"
	"ecocrm/pkg/utils"
)

var ErrNotFound = errors.New("user not found")

type UserService struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) Create(user *database.User) error {
	result := s.db.Create(user)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

func (s *UserService) GetUserByID(userID int) (*database.User, error) {
	var user database.User

	result := s.db.First(&user, "id = ?", userID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

func (s *UserService) GetUserByEmail(email string) (*database.User, error) {
	var user database.User

	result := s.db.First(&user, "email = ?", email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

// GetUserByLogin matches the identity against either the username or the
// email column. Exactly one user can match since both are unique.
func (s *UserService) GetUserByLogin(identity string) (*database.User, error) {
	var user database.User

	result := s.db.First(&user, "username = ? OR email = ?", identity, identity)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

func (s *UserService) Update(user *database.User) error {
	result := s.db.Save(user)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

// RecordLogin bumps the login counter, stamps last_login and writes a
// LoginSession audit row. The audit row is best effort: a failure there
// is logged and must not block the login.
func (s *UserService) RecordLogin(user *database.User, ipAddress, userAgent string) error {
	now := time.Now().UTC()

	result := s.db.Model(user).Updates(map[string]any{
		"logins":     gorm.Expr("logins + ?", 1),
		"last_login": now,
	})
	if result.Error != nil {
		return result.Error
	}
	user.Logins++
	user.LastLogin = &now

	session := database.LoginSession{
		UserID:    user.ID,
		IPAddress: &ipAddress,
		UserAgent: &userAgent,
	}
	if err := s.db.Create(&session).Error; err != nil {
		log.Errorf("Failed to record login session: %v", err)
	}

	return nil
}

// NextUsername returns the first free username derived from the base,
// appending an incrementing numeric suffix on collision.
func (s *UserService) NextUsername(base string) (string, error) {
	username := base
	for counter := 1; ; counter++ {
		var count int64
		if err := s.db.Model(&database.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return username, nil
		}
		username = fmt.Sprintf("%s%d", base, counter)
	}
}

// Provision creates a member account for a contact with a generated
// username and a one-time password. The plaintext password is returned
// to the caller exactly once and is never persisted.
func (s *UserService) Provision(email, fullName, role string) (*database.User, string, error) {
	base := utils.UsernameFromEmail(email)
	if base == "" {
		base = utils.UsernameFromName(fullName)
	}

	username, err := s.NextUsername(base)
	if err != nil {
		return nil, "", err
	}

	password := utils.GenerateTempPassword()
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	if role == "" {
		role = database.RoleMember
	}

	user := database.User{
		Email:        email,
		Username:     username,
		FullName:     fullName,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, "", err
	}

	return &user, password, nil
}
