package utils

import (
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-passw0rd")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	if hash == "s3cret-passw0rd" {
		t.Fatal("hash must not equal the plaintext")
	}

	if !VerifyPassword("s3cret-passw0rd", hash) {
		t.Error("correct password rejected")
	}
	if VerifyPassword("wrong-password", hash) {
		t.Error("wrong password accepted")
	}
}

func TestGenerateRandomString(t *testing.T) {
	s := GenerateRandomString(32)
	if len(s) != 32 {
		t.Errorf("expected length 32, got %d", len(s))
	}

	if GenerateRandomString(32) == s {
		t.Error("two generated strings should not collide")
	}
}

func TestGenerateTempPassword(t *testing.T) {
	password := GenerateTempPassword()
	if len(password) != 16 {
		t.Errorf("expected 16 hex characters, got %d", len(password))
	}
	if password == GenerateTempPassword() {
		t.Error("two generated passwords should not collide")
	}
}

func TestUsernameFromEmail(t *testing.T) {
	tests := []struct {
		email    string
		expected string
	}{
		{"jane.doe@example.com", "jane.doe"},
		{"Jane.Doe@Example.com", "jane.doe"},
		{"plainaddress", "plainaddress"},
		{" padded@example.com", "padded"},
		{"@example.com", ""},
	}

	for _, tt := range tests {
		if got := UsernameFromEmail(tt.email); got != tt.expected {
			t.Errorf("UsernameFromEmail(%q) = %q, expected %q", tt.email, got, tt.expected)
		}
	}
}

func TestUsernameFromName(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"Jane Doe", "jane.doe"},
		{"Anne-Marie van Dijk", "anne.marie.van.dijk"},
		{"  Solo  ", "solo"},
	}

	for _, tt := range tests {
		if got := UsernameFromName(tt.name); got != tt.expected {
			t.Errorf("UsernameFromName(%q) = %q, expected %q", tt.name, got, tt.expected)
		}
	}
}
