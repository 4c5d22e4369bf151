package utils

import (
	cryptorand "crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/rand"
)

func init() {
	rand.Seed(uint64(time.Now().UnixNano()))
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func GenerateRandomString(limit int) string {
	const chars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, limit)
	for i := range result {
		result[i] = chars[rand.Intn(len(chars))]
	}

	return string(result)
}

// GenerateTempPassword returns a random hex string suitable as a one-time
// credential for provisioned accounts.
func GenerateTempPassword() string {
	buf := make([]byte, 8)
	if _, err := cryptorand.Read(buf); err != nil {
		return GenerateRandomString(16)
	}
	return hex.EncodeToString(buf)
}

// UsernameFromEmail derives a username candidate from the local part of
// an email address. Uniqueness is handled by the caller.
func UsernameFromEmail(email string) string {
	local := email
	if at := strings.Index(email, "@"); at >= 0 {
		local = email[:at]
	}
	return strings.ToLower(strings.TrimSpace(local))
}

// UsernameFromName slugifies a full name into a username base, for when
// the email local part comes up empty.
func UsernameFromName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, " ", ".")
	return strings.ReplaceAll(name, "-", ".")
}
