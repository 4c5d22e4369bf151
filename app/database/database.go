package database

import (
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"ecocrm/app/config"
)

func Connect(c *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(c.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatal(err)
	}

	log.Debug("GORM connected to database")

	return db, err
}

// Migrate creates or updates the schema for all CRM entities. Safe to run
// on every startup.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Contact{},
		&Tag{},
		&Task{},
		&Event{},
		&EventRSVP{},
		&Mentor{},
		&MentorContactRequest{},
		&LoginSession{},
		&Newsletter{},
	)
}
