package storage

import (
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage/s3/v2"
	"github.com/google/uuid"
)

// StorageService stores newsletter images in the configured bucket.
type StorageService interface {
	// SaveFile saves a file to the storage
	SaveFile(file *multipart.FileHeader, path string, c *fiber.Ctx) error

	// IsImageAllowed checks if the filename carries an accepted image extension
	IsImageAllowed(filename string) bool

	// GenerateKeyName generates a unique key name for file storage
	GenerateKeyName() string
}

type storageService struct {
	storage *s3.Storage
}

func NewStorageService(storage *s3.Storage) StorageService {
	return &storageService{
		storage: storage,
	}
}

func (s *storageService) SaveFile(file *multipart.FileHeader, path string, c *fiber.Ctx) error {
	return c.SaveFileToStorage(file, path, s.storage)
}

func (s *storageService) IsImageAllowed(filename string) bool {
	allowedExtensions := []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
	lower := strings.ToLower(filename)
	for _, ext := range allowedExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func (s *storageService) GenerateKeyName() string {
	return uuid.NewString()
}
