package auth

import (
	"errors"
	"testing"
)

func TestHashPassword(t *testing.T) {
	// Digest pinned because stored files depend on it.
	got := HashPassword("secret123")
	want := "fcf730b6d95236ecd3c9fc2d92d7b6b2bb061514961aec041d6c7a7192f592e4"
	if got != want {
		t.Errorf("HashPassword(secret123) = %s, want %s", got, want)
	}
}

func TestVerifyPassword(t *testing.T) {
	hash := HashPassword("obra2024")
	if !VerifyPassword("obra2024", hash) {
		t.Error("expected correct password to verify")
	}
	if VerifyPassword("obra2025", hash) {
		t.Error("expected wrong password to fail")
	}
	if VerifyPassword("", hash) {
		t.Error("expected empty password to fail")
	}
}

func TestValidateCredentials(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		email    string
		wantErr  error
	}{
		{"valid", "maria", "secret123", "maria@site.com", nil},
		{"valid without email", "maria", "secret123", "", nil},
		{"short username", "ma", "secret123", "maria@site.com", ErrUsernameTooShort},
		{"username of spaces", "   ", "secret123", "maria@site.com", ErrUsernameTooShort},
		{"short password", "maria", "12345", "maria@site.com", ErrPasswordTooShort},
		{"email without at", "maria", "secret123", "maria.site.com", ErrInvalidEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCredentials(tt.username, tt.password, tt.email)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateCredentials(%q, %q, %q) = %v, want %v",
					tt.username, tt.password, tt.email, err, tt.wantErr)
			}
		})
	}
}
